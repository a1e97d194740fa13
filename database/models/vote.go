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

// Vote constants mirror the on-chain vote values
const (
	VoteYay     = 0
	VoteNay     = 1
	VoteAbstain = 2
)

// Vote is a tallied vote. Each voter votes at most once per poll
type Vote struct {
	ID     uint      `gorm:"primarykey"`
	PollID uint64    `gorm:"index:idx_vote_poll;uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter  string    `gorm:"uniqueIndex:idx_vote_unique,priority:2;not null"`
	Value  uint8     `gorm:"not null"` // 0=Yay, 1=Nay, 2=Abstain
	Level  uint64    `gorm:"index;not null"`
	Weight types.Nat `gorm:"not null"`
}

func (Vote) TableName() string {
	return "vote"
}
