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

// ParameterUpdate records governance parameters installed by an executed proposal
type ParameterUpdate struct {
	ID                                uint      `gorm:"primarykey"`
	AddedBlock                        uint64    `gorm:"index;not null"`
	EscrowAmount                      types.Nat `gorm:"not null"`
	VoteDelayBlocks                   uint64
	VoteLengthBlocks                  uint64
	MinYayVotesPercentForEscrowReturn uint64
	BlocksInTimelockForExecution      uint64
	BlocksInTimelockForCancellation   uint64
	PercentageForSuperMajority        uint64
	QuorumCapLower                    types.Nat `gorm:"not null"`
	QuorumCapUpper                    types.Nat `gorm:"not null"`
}

func (ParameterUpdate) TableName() string {
	return "parameter_update"
}
