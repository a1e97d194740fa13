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

package indexer

import (
	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/database"
	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/types"
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/token"
)

func (i *Indexer) handleBlockAdvanced(evt event.Event) error {
	e, err := eventData[event.BlockAdvancedEvent](evt)
	if err != nil {
		return err
	}
	// An empty commit moves the commit level forward
	return i.write(e.Level, func(*database.Txn) error { return nil })
}

func (i *Indexer) handleCheckpoint(evt event.Event) error {
	e, err := eventData[token.CheckpointEvent](evt)
	if err != nil {
		return err
	}
	return i.write(e.Checkpoint.FromBlock, func(txn *database.Txn) error {
		return i.db.SetCheckpoint(e.Account, e.Index, e.Checkpoint, txn)
	})
}

func (i *Indexer) handlePollOpened(evt event.Event) error {
	e, err := eventData[dao.PollOpenedEvent](evt)
	if err != nil {
		return err
	}
	poll := pollModel(e.Poll)
	poll.OpenedBlock = e.Level
	return i.write(e.Level, func(txn *database.Txn) error {
		return i.db.SetPoll(poll, txn)
	})
}

func (i *Indexer) handleVoteTallied(evt event.Event) error {
	e, err := eventData[dao.VoteTalliedEvent](evt)
	if err != nil {
		return err
	}
	return i.write(e.Record.Level, func(txn *database.Txn) error {
		return i.db.AddVote(
			&models.Vote{
				PollID: e.PollID,
				Voter:  e.Voter.String(),
				Value:  uint8(e.Record.Value), //nolint:gosec
				Level:  e.Record.Level,
				Weight: types.NewNat(e.Record.Votes),
			},
			txn,
		)
	})
}

func (i *Indexer) handlePollClosed(evt event.Event) error {
	e, err := eventData[dao.PollClosedEvent](evt)
	if err != nil {
		return err
	}
	poll := pollModel(e.Poll)
	closedBlock := e.Level
	poll.ClosedBlock = &closedBlock
	poll.EscrowRecipient = e.EscrowRecipient.String()
	return i.write(e.Level, func(txn *database.Txn) error {
		if err := i.db.SetPoll(poll, txn); err != nil {
			return err
		}
		if err := i.db.SetOutcome(
			e.Poll.ID,
			uint8(e.Outcome), //nolint:gosec
			e.Level,
			txn,
		); err != nil {
			return err
		}
		if e.TimelockItem.IsNone() {
			return nil
		}
		item := e.TimelockItem.Unwrap()
		return i.db.SetTimelockItem(
			&models.TimelockItem{
				PollID:      item.ID,
				Author:      item.Author.String(),
				EndBlock:    item.EndBlock,
				CancelBlock: item.CancelBlock,
			},
			txn,
		)
	})
}

func (i *Indexer) handleTimelockClosed(evt event.Event) error {
	e, err := eventData[dao.TimelockClosedEvent](evt)
	if err != nil {
		return err
	}
	return i.write(e.Level, func(txn *database.Txn) error {
		if err := i.db.CloseTimelockItem(
			e.Item.ID,
			e.Level,
			e.Sender.String(),
			txn,
		); err != nil {
			return err
		}
		return i.db.SetOutcome(
			e.Item.ID,
			uint8(e.Outcome), //nolint:gosec
			e.Level,
			txn,
		)
	})
}

func (i *Indexer) handleParametersUpdated(evt event.Event) error {
	e, err := eventData[dao.ParametersUpdatedEvent](evt)
	if err != nil {
		return err
	}
	p := e.Parameters
	return i.write(e.Level, func(txn *database.Txn) error {
		return i.db.AddParameterUpdate(
			&models.ParameterUpdate{
				AddedBlock:                        e.Level,
				EscrowAmount:                      types.NewNat(p.EscrowAmount),
				VoteDelayBlocks:                   p.VoteDelayBlocks,
				VoteLengthBlocks:                  p.VoteLengthBlocks,
				MinYayVotesPercentForEscrowReturn: p.MinYayVotesPercentForEscrowReturn,
				BlocksInTimelockForExecution:      p.BlocksInTimelockForExecution,
				BlocksInTimelockForCancellation:   p.BlocksInTimelockForCancellation,
				PercentageForSuperMajority:        p.PercentageForSuperMajority,
				QuorumCapLower:                    types.NewNat(p.QuorumCap.Lower),
				QuorumCapUpper:                    types.NewNat(p.QuorumCap.Upper),
			},
			txn,
		)
	})
}

func pollModel(p dao.Poll) *models.Poll {
	return &models.Poll{
		PollID:           p.ID,
		Title:            p.Proposal.Title,
		DescriptionLink:  p.Proposal.DescriptionLink,
		DescriptionHash:  p.Proposal.DescriptionHash,
		Author:           p.Author.String(),
		VotingStartBlock: p.VotingStartBlock,
		VotingEndBlock:   p.VotingEndBlock,
		YayVotes:         types.NewNat(p.YayVotes),
		NayVotes:         types.NewNat(p.NayVotes),
		AbstainVotes:     types.NewNat(p.AbstainVotes),
		TotalVotes:       types.NewNat(p.TotalVotes),
		EscrowAmount:     types.NewNat(p.EscrowAmount),
		Quorum:           types.NewNat(p.Quorum),
		QuorumCapLower:   types.NewNat(p.QuorumCap.Lower),
		QuorumCapUpper:   types.NewNat(p.QuorumCap.Upper),
	}
}
