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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetPoll creates or updates a poll record keyed by poll ID.
// The opened block is preserved on conflict.
func (d *MetadataStoreSqlite) SetPoll(
	poll *models.Poll,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "poll_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"yay_votes",
			"nay_votes",
			"abstain_votes",
			"total_votes",
			"quorum",
			"closed_block",
			"escrow_recipient",
		}),
	}
	if result := db.Clauses(onConflict).Create(poll); result.Error != nil {
		return result.Error
	}
	return nil
}

// ClosePoll marks a poll as closed and records where its escrow went
func (d *MetadataStoreSqlite) ClosePoll(
	pollID uint64,
	closedBlock uint64,
	escrowRecipient string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Poll{}).
		Where("poll_id = ?", pollID).
		Updates(map[string]any{
			"closed_block":     closedBlock,
			"escrow_recipient": escrowRecipient,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetPoll returns the poll with the given ID, or nil if not found
func (d *MetadataStoreSqlite) GetPoll(
	pollID uint64,
	txn types.Txn,
) (*models.Poll, error) {
	var poll models.Poll
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("poll_id = ?", pollID).First(&poll); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &poll, nil
}

// GetPolls returns all polls ordered by poll ID
func (d *MetadataStoreSqlite) GetPolls(txn types.Txn) ([]models.Poll, error) {
	var polls []models.Poll
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("poll_id ASC").Find(&polls); result.Error != nil {
		return nil, result.Error
	}
	return polls, nil
}

// AddVote records a tallied vote. A voter may appear at most once per poll.
func (d *MetadataStoreSqlite) AddVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetVotes returns the votes cast on a poll in tally order
func (d *MetadataStoreSqlite) GetVotes(
	pollID uint64,
	txn types.Txn,
) ([]models.Vote, error) {
	var votes []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where("poll_id = ?", pollID).
		Order("id ASC").
		Find(&votes)
	if result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}

// SetOutcome records the outcome of a poll. The first write sets the added
// block; later writes move the outcome and set the updated block.
func (d *MetadataStoreSqlite) SetOutcome(
	pollID uint64,
	outcome uint8,
	block uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	var existing models.Outcome
	result := db.Where("poll_id = ?", pollID).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		tmpOutcome := models.Outcome{
			PollID:     pollID,
			Outcome:    outcome,
			AddedBlock: block,
		}
		return db.Create(&tmpOutcome).Error
	}
	return db.Model(&existing).Updates(map[string]any{
		"outcome":       outcome,
		"updated_block": block,
	}).Error
}

// GetOutcome returns the outcome of a poll, or nil if not found
func (d *MetadataStoreSqlite) GetOutcome(
	pollID uint64,
	txn types.Txn,
) (*models.Outcome, error) {
	var outcome models.Outcome
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("poll_id = ?", pollID).First(&outcome); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &outcome, nil
}

// GetOutcomes returns all historical outcomes ordered by poll ID
func (d *MetadataStoreSqlite) GetOutcomes(
	txn types.Txn,
) ([]models.Outcome, error) {
	var outcomes []models.Outcome
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("poll_id ASC").Find(&outcomes); result.Error != nil {
		return nil, result.Error
	}
	return outcomes, nil
}

// SetTimelockItem records a poll entering the timelock
func (d *MetadataStoreSqlite) SetTimelockItem(
	item *models.TimelockItem,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "poll_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"end_block",
			"cancel_block",
		}),
	}
	if result := db.Clauses(onConflict).Create(item); result.Error != nil {
		return result.Error
	}
	return nil
}

// CloseTimelockItem marks a timelock item as executed or cancelled
func (d *MetadataStoreSqlite) CloseTimelockItem(
	pollID uint64,
	closedBlock uint64,
	closedBy string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.TimelockItem{}).
		Where("poll_id = ? AND closed_block IS NULL", pollID).
		Updates(map[string]any{
			"closed_block": closedBlock,
			"closed_by":    closedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetTimelockItem returns the timelock record of a poll, or nil if not found
func (d *MetadataStoreSqlite) GetTimelockItem(
	pollID uint64,
	txn types.Txn,
) (*models.TimelockItem, error) {
	var item models.TimelockItem
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("poll_id = ?", pollID).First(&item); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &item, nil
}

// AddParameterUpdate records a change of governance parameters
func (d *MetadataStoreSqlite) AddParameterUpdate(
	update *models.ParameterUpdate,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(update).Error
}

// GetParameterUpdates returns all parameter updates in the order they were applied
func (d *MetadataStoreSqlite) GetParameterUpdates(
	txn types.Txn,
) ([]models.ParameterUpdate, error) {
	var updates []models.ParameterUpdate
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("id ASC").Find(&updates); result.Error != nil {
		return nil, result.Error
	}
	return updates, nil
}
