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

import "github.com/blinklabs-io/murmuration/database/types"

// Poll is an opened poll with its final tallies once closed
type Poll struct {
	ID               uint      `gorm:"primarykey"`
	PollID           uint64    `gorm:"uniqueIndex;not null"`
	Title            string    `gorm:"not null"`
	DescriptionLink  string    `gorm:"size:255"`
	DescriptionHash  string    `gorm:"size:128"`
	Author           string    `gorm:"index;not null"`
	VotingStartBlock uint64    `gorm:"not null"`
	VotingEndBlock   uint64    `gorm:"not null"`
	YayVotes         types.Nat `gorm:"not null"`
	NayVotes         types.Nat `gorm:"not null"`
	AbstainVotes     types.Nat `gorm:"not null"`
	TotalVotes       types.Nat `gorm:"not null"`
	EscrowAmount     types.Nat `gorm:"not null"`
	Quorum           types.Nat `gorm:"not null"`
	QuorumCapLower   types.Nat `gorm:"not null"`
	QuorumCapUpper   types.Nat `gorm:"not null"`
	OpenedBlock      uint64    `gorm:"not null"`
	ClosedBlock      *uint64   `gorm:"index"`
	EscrowRecipient  string
}

func (Poll) TableName() string {
	return "poll"
}
