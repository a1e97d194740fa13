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
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
	"github.com/moznion/go-optional"
)

const (
	PollOpenedEventType        event.EventType = "dao.poll.opened"
	VoteTalliedEventType       event.EventType = "dao.vote.tallied"
	PollClosedEventType        event.EventType = "dao.poll.closed"
	TimelockExecutedEventType  event.EventType = "dao.timelock.executed"
	TimelockCancelledEventType event.EventType = "dao.timelock.cancelled"
	ParametersUpdatedEventType event.EventType = "dao.parameters.updated"
)

type PollOpenedEvent struct {
	Poll  Poll
	Level uint64
}

type VoteTalliedEvent struct {
	Voter  host.Address
	Record VoteRecord
	PollID uint64
}

// PollClosedEvent carries the final tallies of a poll and what became of it
type PollClosedEvent struct {
	EscrowRecipient host.Address
	TimelockItem    optional.Option[TimelockItem]
	Poll            Poll
	NewQuorum       uint256.Int
	Level           uint64
	Outcome         Outcome
}

// TimelockClosedEvent is emitted when a timelock item is executed or cancelled
type TimelockClosedEvent struct {
	Sender  host.Address
	Item    TimelockItem
	Level   uint64
	Outcome Outcome
}

type ParametersUpdatedEvent struct {
	Parameters GovernanceParameters
	Level      uint64
}
