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

// Outcome constants mirror the on-chain poll outcomes
const (
	OutcomeFailed     = 0
	OutcomeInTimelock = 1
	OutcomeExecuted   = 2
	OutcomeCancelled  = 3
)

// Outcome is the historical outcome of a poll. It is written when the poll
// closes and updated once more if the poll leaves the timelock
type Outcome struct {
	ID           uint   `gorm:"primarykey"`
	PollID       uint64 `gorm:"uniqueIndex;not null"`
	Outcome      uint8  `gorm:"not null"`
	AddedBlock   uint64 `gorm:"not null"`
	UpdatedBlock *uint64
}

func (Outcome) TableName() string {
	return "outcome"
}

// OutcomeName returns a display name for an outcome value
func OutcomeName(outcome uint8) string {
	switch outcome {
	case OutcomeFailed:
		return "failed"
	case OutcomeInTimelock:
		return "in_timelock"
	case OutcomeExecuted:
		return "executed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
