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

package models

// TimelockItem is a poll that passed into the timelock
type TimelockItem struct {
	ID          uint    `gorm:"primarykey"`
	PollID      uint64  `gorm:"uniqueIndex;not null"`
	Author      string  `gorm:"not null"`
	EndBlock    uint64  `gorm:"not null"`
	CancelBlock uint64  `gorm:"not null"`
	ClosedBlock *uint64 `gorm:"index"`
	ClosedBy    string
}

func (TimelockItem) TableName() string {
	return "timelock_item"
}
