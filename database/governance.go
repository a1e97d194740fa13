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

package database

import (
	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/types"
)

func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

// SetPoll creates or updates an indexed poll
func (d *Database) SetPoll(poll *models.Poll, txn *Txn) error {
	return d.metadata.SetPoll(poll, metadataTxn(txn))
}

// ClosePoll marks an indexed poll closed
func (d *Database) ClosePoll(
	pollID, closedBlock uint64,
	escrowRecipient string,
	txn *Txn,
) error {
	return d.metadata.ClosePoll(pollID, closedBlock, escrowRecipient, metadataTxn(txn))
}

func (d *Database) Poll(pollID uint64, txn *Txn) (*models.Poll, error) {
	return d.metadata.GetPoll(pollID, metadataTxn(txn))
}

func (d *Database) Polls(txn *Txn) ([]models.Poll, error) {
	return d.metadata.GetPolls(metadataTxn(txn))
}

func (d *Database) AddVote(vote *models.Vote, txn *Txn) error {
	return d.metadata.AddVote(vote, metadataTxn(txn))
}

func (d *Database) Votes(pollID uint64, txn *Txn) ([]models.Vote, error) {
	return d.metadata.GetVotes(pollID, metadataTxn(txn))
}

func (d *Database) SetOutcome(
	pollID uint64,
	outcome uint8,
	block uint64,
	txn *Txn,
) error {
	return d.metadata.SetOutcome(pollID, outcome, block, metadataTxn(txn))
}

func (d *Database) Outcome(pollID uint64, txn *Txn) (*models.Outcome, error) {
	return d.metadata.GetOutcome(pollID, metadataTxn(txn))
}

func (d *Database) Outcomes(txn *Txn) ([]models.Outcome, error) {
	return d.metadata.GetOutcomes(metadataTxn(txn))
}

func (d *Database) SetTimelockItem(item *models.TimelockItem, txn *Txn) error {
	return d.metadata.SetTimelockItem(item, metadataTxn(txn))
}

func (d *Database) CloseTimelockItem(
	pollID, closedBlock uint64,
	closedBy string,
	txn *Txn,
) error {
	return d.metadata.CloseTimelockItem(pollID, closedBlock, closedBy, metadataTxn(txn))
}

func (d *Database) TimelockItem(
	pollID uint64,
	txn *Txn,
) (*models.TimelockItem, error) {
	return d.metadata.GetTimelockItem(pollID, metadataTxn(txn))
}

func (d *Database) AddParameterUpdate(
	update *models.ParameterUpdate,
	txn *Txn,
) error {
	return d.metadata.AddParameterUpdate(update, metadataTxn(txn))
}

func (d *Database) ParameterUpdates(txn *Txn) ([]models.ParameterUpdate, error) {
	return d.metadata.GetParameterUpdates(metadataTxn(txn))
}
