// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dao

import (
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/holiman/uint256"
	"github.com/moznion/go-optional"
)

const percentScale = 100

// Propose opens a poll on proposal. The proposer's escrow is pulled into
// the DAO by a transfer that runs after this call
func (d *Dao) Propose(ctx host.Context, proposal Proposal) ([]host.Operation, error) {
	if err := ctx.RequireNoAmount(); err != nil {
		return nil, err
	}
	if d.state.poll.IsSome() {
		return nil, ErrPollUnderway
	}
	params := d.state.params
	startBlock := ctx.Level + params.VoteDelayBlocks
	poll := Poll{
		ID:               d.state.nextProposalID,
		Proposal:         proposal,
		VotingStartBlock: startBlock,
		VotingEndBlock:   startBlock + params.VoteLengthBlocks,
		Voters:           make(map[host.Address]VoteRecord),
		Author:           ctx.Sender,
		EscrowAmount:     params.EscrowAmount,
		Quorum:           d.state.quorum,
		QuorumCap:        params.QuorumCap,
	}
	d.state.poll = optional.Some(poll)
	d.state.nextProposalID++
	d.metrics.stage(func(m *daoMetrics) { m.proposals.Inc() })
	d.logger.Info(
		"poll opened",
		"component", "dao",
		"id", poll.ID,
		"title", proposal.Title,
		"author", poll.Author,
		"voting_start", poll.VotingStartBlock,
		"voting_end", poll.VotingEndBlock,
	)
	ctx.Emit(PollOpenedEventType, PollOpenedEvent{Poll: poll.clone(), Level: ctx.Level})
	return []host.Operation{
		token.TransferOperation(d.tokenAddress, ctx.Sender, d.address, poll.EscrowAmount),
	}, nil
}

// EndVoting closes the open poll once its voting window has passed. Escrow
// is returned to the author or forfeited to the community fund, a poll that
// reached super majority and quorum moves to the timelock, and the quorum
// moves toward the poll's participation
func (d *Dao) EndVoting(ctx host.Context) ([]host.Operation, error) {
	if err := ctx.RequireNoAmount(); err != nil {
		return nil, err
	}
	poll, err := d.state.poll.Take()
	if err != nil {
		return nil, ErrNoPoll
	}
	if d.state.timelockItem.IsSome() {
		return nil, ErrItemInTimelock
	}
	if ctx.Level <= poll.VotingEndBlock {
		return nil, ErrVotingNotFinished
	}
	params := d.state.params
	var opinionated uint256.Int
	if _, overflow := opinionated.AddOverflow(&poll.YayVotes, &poll.NayVotes); overflow {
		return nil, ErrOverflow
	}
	yayForEscrow := percentOf(opinionated, params.MinYayVotesPercentForEscrowReturn)
	yayForSuperMajority := percentOf(opinionated, params.PercentageForSuperMajority)

	recipient := poll.Author
	// Meeting the threshold exactly forfeits the escrow
	if !poll.YayVotes.Gt(&yayForEscrow) {
		recipient = d.communityFund
	}

	outcome := OutcomeFailed
	timelockItem := optional.None[TimelockItem]()
	if !poll.YayVotes.Lt(&yayForSuperMajority) && !poll.TotalVotes.Lt(&poll.Quorum) {
		outcome = OutcomeInTimelock
		timelockItem = optional.Some(TimelockItem{
			ID:          poll.ID,
			Proposal:    poll.Proposal,
			EndBlock:    ctx.Level + params.BlocksInTimelockForExecution,
			CancelBlock: ctx.Level + params.BlocksInTimelockForCancellation,
			Author:      poll.Author,
		})
	}
	d.state.timelockItem = timelockItem
	d.state.outcomes[poll.ID] = HistoricalOutcome{Outcome: outcome, Poll: poll}
	d.state.poll = optional.None[Poll]()
	d.state.quorum = NextQuorum(poll.Quorum, poll.TotalVotes, poll.QuorumCap)

	quorum := natToFloat(d.state.quorum)
	d.metrics.stage(func(m *daoMetrics) {
		m.outcomes.WithLabelValues(outcome.String()).Inc()
		m.quorum.Set(quorum)
	})
	d.logger.Info(
		"poll closed",
		"component", "dao",
		"id", poll.ID,
		"outcome", outcome.String(),
		"yay", poll.YayVotes.Dec(),
		"nay", poll.NayVotes.Dec(),
		"abstain", poll.AbstainVotes.Dec(),
		"escrow_recipient", recipient,
		"quorum", d.state.quorum.Dec(),
	)
	ctx.Emit(
		PollClosedEventType,
		PollClosedEvent{
			Poll:            poll.clone(),
			Outcome:         outcome,
			EscrowRecipient: recipient,
			NewQuorum:       d.state.quorum,
			TimelockItem:    timelockItem,
			Level:           ctx.Level,
		},
	)
	return []host.Operation{
		token.TransferOperation(d.tokenAddress, d.address, recipient, poll.EscrowAmount),
	}, nil
}

// NextQuorum blends the previous quorum (80%) with the participation of the
// poll (20%) and clamps the result to quorumCap
func NextQuorum(quorum uint256.Int, totalVotes uint256.Int, quorumCap QuorumCap) uint256.Int {
	lastWeight := percentOf(quorum, 80)
	participation := percentOf(totalVotes, 20)
	ret, overflow := new(uint256.Int).AddOverflow(&lastWeight, &participation)
	if overflow {
		ret.SetAllOne()
	}
	if ret.Lt(&quorumCap.Lower) {
		ret.Set(&quorumCap.Lower)
	}
	if ret.Gt(&quorumCap.Upper) {
		ret.Set(&quorumCap.Upper)
	}
	return *ret
}

// percentOf returns v * pct / 100, truncated
func percentOf(v uint256.Int, pct uint64) uint256.Int {
	// Percentages are validated to be at most 100, so the quotient fits
	ret, _ := new(uint256.Int).MulDivOverflow(
		&v,
		uint256.NewInt(pct),
		uint256.NewInt(percentScale),
	)
	return *ret
}
