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

	"github.com/blinklabs-io/murmuration/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	commitLevelRowId = 1
)

// CommitLevel represents the sqlite table used to track the chain level of the last commit
type CommitLevel struct {
	ID    uint `gorm:"primarykey"`
	Level uint64
}

func (CommitLevel) TableName() string {
	return "commit_level"
}

func (d *MetadataStoreSqlite) GetCommitLevel() (uint64, error) {
	var tmpCommitLevel CommitLevel
	result := d.DB().First(&tmpCommitLevel)
	if result.Error != nil {
		// It's not an error if there's no records found
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCommitLevel.Level, nil
}

func (d *MetadataStoreSqlite) SetCommitLevel(
	level uint64,
	txn types.Txn,
) error {
	tmpCommitLevel := CommitLevel{
		ID:    commitLevelRowId,
		Level: level,
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level"}),
	}).Create(&tmpCommitLevel)
	return result.Error
}
