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

// VoteCallbackParams is the balance answer delivered by the token contract
type VoteCallbackParams = token.PriorBalanceResult

// Vote starts a vote for the sender. The vote is tallied by VoteCallback
// once the token reports the sender's balance as of the poll's voting
// start block. Only one vote may await its balance at a time
func (d *Dao) Vote(ctx host.Context, value VoteValue) ([]host.Operation, error) {
	if err := ctx.RequireNoAmount(); err != nil {
		return nil, err
	}
	if d.state.machine != StateIdle {
		return nil, ErrBadState
	}
	poll, err := d.state.poll.Take()
	if err != nil {
		return nil, ErrNoPoll
	}
	if !value.Valid() {
		return nil, ErrBadVoteValue
	}
	d.state.machine = StateWaitingForBalance
	d.state.votingState = optional.Some(VotingState{
		Value:   value,
		Address: ctx.Sender,
		Level:   poll.VotingStartBlock,
		PollID:  poll.ID,
	})
	d.logger.Debug(
		"vote awaiting balance",
		"component", "dao",
		"id", poll.ID,
		"voter", ctx.Sender,
		"value", value.String(),
		"level", poll.VotingStartBlock,
	)
	return []host.Operation{
		token.PriorBalanceOperation(
			d.tokenAddress,
			ctx.Sender,
			poll.VotingStartBlock,
			host.Callback{Target: d.address, Entrypoint: EntrypointVoteCallback},
		),
	}, nil
}

// VoteCallback tallies the pending vote with the weight reported by the
// token contract
func (d *Dao) VoteCallback(ctx host.Context, result VoteCallbackParams) error {
	if err := ctx.RequireNoAmount(); err != nil {
		return err
	}
	if d.state.machine != StateWaitingForBalance {
		return ErrBadState
	}
	if ctx.Sender != d.tokenAddress {
		return ErrNotTokenContract
	}
	pending, err := d.state.votingState.Take()
	if err != nil {
		return ErrBadState
	}
	if pending.Address != result.Address || pending.Level != result.Level {
		return ErrUnknown
	}
	poll, err := d.state.poll.Take()
	// The poll the vote was cast in has been closed in the meantime
	if err != nil || poll.ID != pending.PollID {
		return ErrVotingFinished
	}
	if _, ok := poll.Voters[pending.Address]; ok {
		return ErrAlreadyVoted
	}
	if ctx.Level > poll.VotingEndBlock {
		return ErrVotingFinished
	}
	weight := result.Result
	var tally *uint256.Int
	switch pending.Value {
	case VoteYay:
		tally = &poll.YayVotes
	case VoteNay:
		tally = &poll.NayVotes
	case VoteAbstain:
		tally = &poll.AbstainVotes
	default:
		return ErrBadVoteValue
	}
	if _, overflow := tally.AddOverflow(tally, &weight); overflow {
		return ErrOverflow
	}
	if _, overflow := poll.TotalVotes.AddOverflow(&poll.TotalVotes, &weight); overflow {
		return ErrOverflow
	}
	poll = poll.clone()
	record := VoteRecord{Value: pending.Value, Level: ctx.Level, Votes: weight}
	poll.Voters[pending.Address] = record
	d.state.poll = optional.Some(poll)
	d.state.machine = StateIdle
	d.state.votingState = optional.None[VotingState]()

	d.metrics.stage(func(m *daoMetrics) {
		m.votes.WithLabelValues(pending.Value.String()).Inc()
	})
	d.logger.Info(
		"vote tallied",
		"component", "dao",
		"id", poll.ID,
		"voter", pending.Address,
		"value", pending.Value.String(),
		"weight", weight.Dec(),
	)
	ctx.Emit(
		VoteTalliedEventType,
		VoteTalliedEvent{
			PollID: poll.ID,
			Voter:  pending.Address,
			Record: record,
		},
	)
	return nil
}
