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
	"fmt"
	"maps"

	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
)

// VoteValue is a voter's choice
type VoteValue uint64

const (
	VoteYay     VoteValue = 0
	VoteNay     VoteValue = 1
	VoteAbstain VoteValue = 2
)

func (v VoteValue) Valid() bool {
	return v <= VoteAbstain
}

func (v VoteValue) String() string {
	switch v {
	case VoteYay:
		return "yay"
	case VoteNay:
		return "nay"
	case VoteAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(v))
	}
}

// Outcome is the recorded result of a poll
type Outcome uint64

const (
	OutcomeFailed     Outcome = 0
	OutcomeInTimelock Outcome = 1
	OutcomeExecuted   Outcome = 2
	OutcomeCancelled  Outcome = 3
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeInTimelock:
		return "in_timelock"
	case OutcomeExecuted:
		return "executed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(o))
	}
}

// State is the voting state machine of the DAO
type State int

const (
	StateIdle State = iota
	StateWaitingForBalance
)

func (s State) String() string {
	if s == StateWaitingForBalance {
		return "waiting_for_balance"
	}
	return "idle"
}

// QuorumCap bounds the adaptive quorum
type QuorumCap struct {
	Lower uint256.Int
	Upper uint256.Int
}

// GovernanceParameters are the DAO settings that only the DAO itself may change
type GovernanceParameters struct {
	EscrowAmount                      uint256.Int
	QuorumCap                         QuorumCap
	VoteDelayBlocks                   uint64
	VoteLengthBlocks                  uint64
	MinYayVotesPercentForEscrowReturn uint64
	BlocksInTimelockForExecution      uint64
	BlocksInTimelockForCancellation   uint64
	PercentageForSuperMajority        uint64
}

// DefaultParameters returns the parameters a DAO starts with when none are given
func DefaultParameters() GovernanceParameters {
	return GovernanceParameters{
		EscrowAmount:                      *uint256.NewInt(100),
		VoteDelayBlocks:                   1,
		VoteLengthBlocks:                  180,
		MinYayVotesPercentForEscrowReturn: 20,
		BlocksInTimelockForExecution:      10,
		BlocksInTimelockForCancellation:   15,
		PercentageForSuperMajority:        80,
		QuorumCap: QuorumCap{
			Lower: *uint256.NewInt(1),
			Upper: *uint256.NewInt(2),
		},
	}
}

// DefaultQuorum is the quorum of a newly created DAO
const DefaultQuorum = 100

// ProposalLambda produces the operations a proposal performs when executed.
// The operations run with the DAO as sender
type ProposalLambda func(ctx host.Context) ([]host.Operation, error)

type Proposal struct {
	Lambda          ProposalLambda
	Title           string
	DescriptionLink string
	DescriptionHash string
}

// VoteRecord is a tallied vote
type VoteRecord struct {
	Votes uint256.Int
	Value VoteValue
	Level uint64
}

type Poll struct {
	Voters           map[host.Address]VoteRecord
	Author           host.Address
	Proposal         Proposal
	YayVotes         uint256.Int
	NayVotes         uint256.Int
	AbstainVotes     uint256.Int
	TotalVotes       uint256.Int
	EscrowAmount     uint256.Int
	Quorum           uint256.Int
	QuorumCap        QuorumCap
	ID               uint64
	VotingStartBlock uint64
	VotingEndBlock   uint64
}

func (p Poll) clone() Poll {
	p.Voters = maps.Clone(p.Voters)
	return p
}

// TimelockItem is a passed proposal waiting to be executed or cancelled
type TimelockItem struct {
	Author      host.Address
	Proposal    Proposal
	ID          uint64
	EndBlock    uint64
	CancelBlock uint64
}

// HistoricalOutcome records how a poll ended along with its final tallies
type HistoricalOutcome struct {
	Poll    Poll
	Outcome Outcome
}

// VotingState is the vote awaiting a balance lookup
type VotingState struct {
	Address host.Address
	Value   VoteValue
	Level   uint64
	PollID  uint64
}
