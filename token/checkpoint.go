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

package token

import (
	"slices"

	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
)

// Checkpoint is the balance of an account from a given block onward
type Checkpoint struct {
	FromBlock uint64
	Balance   uint256.Int
}

// CheckpointIndex gives indexed access to an account's checkpoint history.
// Indexes run from 0 to NumCheckpoints-1 in increasing FromBlock order
type CheckpointIndex interface {
	NumCheckpoints(account host.Address) (uint64, error)
	CheckpointAt(account host.Address, idx uint64) (Checkpoint, error)
}

// WriteKind describes what a checkpoint write did
type WriteKind int

const (
	WriteSkipped WriteKind = iota
	WriteAppended
	WriteReplaced
)

func (k WriteKind) String() string {
	switch k {
	case WriteAppended:
		return "appended"
	case WriteReplaced:
		return "replaced"
	default:
		return "skipped"
	}
}

// CheckpointStore keeps an append-only checkpoint history per account
type CheckpointStore struct {
	checkpoints map[host.Address][]Checkpoint
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[host.Address][]Checkpoint),
	}
}

// Write records newBalance for account at the given block level. A second
// write in the same block overwrites the last checkpoint, and a write that
// does not change the balance is skipped. It returns the index of the
// affected checkpoint
func (s *CheckpointStore) Write(
	account host.Address,
	level uint64,
	newBalance uint256.Int,
) (uint64, WriteKind) {
	cps := s.checkpoints[account]
	n := uint64(len(cps))
	if n == 0 {
		s.checkpoints[account] = append(cps, Checkpoint{FromBlock: level, Balance: newBalance})
		return 0, WriteAppended
	}
	last := cps[n-1]
	if last.FromBlock == level {
		// Snapshots share the backing array, so the history is copied
		// rather than written in place
		s.checkpoints[account] = append(
			cps[:n-1:n-1],
			Checkpoint{FromBlock: level, Balance: newBalance},
		)
		return n - 1, WriteReplaced
	}
	if !last.Balance.Eq(&newBalance) {
		s.checkpoints[account] = append(cps, Checkpoint{FromBlock: level, Balance: newBalance})
		return n, WriteAppended
	}
	return n - 1, WriteSkipped
}

func (s *CheckpointStore) NumCheckpoints(account host.Address) (uint64, error) {
	return uint64(len(s.checkpoints[account])), nil
}

func (s *CheckpointStore) CheckpointAt(account host.Address, idx uint64) (Checkpoint, error) {
	cps := s.checkpoints[account]
	if idx >= uint64(len(cps)) {
		return Checkpoint{}, ErrCheckpointNotFound
	}
	return cps[idx], nil
}

// Checkpoints returns a copy of the account's checkpoint history
func (s *CheckpointStore) Checkpoints(account host.Address) []Checkpoint {
	return slices.Clone(s.checkpoints[account])
}

// PriorBalance returns the balance of account as of block level
func (s *CheckpointStore) PriorBalance(
	account host.Address,
	level uint64,
	currentLevel uint64,
) (uint256.Int, error) {
	return PriorBalance(s, account, level, currentLevel)
}

func (s *CheckpointStore) clone() *CheckpointStore {
	ret := &CheckpointStore{
		checkpoints: make(map[host.Address][]Checkpoint, len(s.checkpoints)),
	}
	// Histories only grow by append, and clipping forces both sides to
	// reallocate on their next append
	for k, v := range s.checkpoints {
		ret.checkpoints[k] = slices.Clip(v)
	}
	return ret
}

// PriorBalance returns the balance recorded by the last checkpoint at or
// before level, or zero when level predates the account's history. The
// level must be strictly lower than currentLevel
func PriorBalance(
	index CheckpointIndex,
	account host.Address,
	level uint64,
	currentLevel uint64,
) (uint256.Int, error) {
	if level >= currentLevel {
		return uint256.Int{}, ErrBlockLevelTooSoon
	}
	n, err := index.NumCheckpoints(account)
	if err != nil {
		return uint256.Int{}, err
	}
	if n == 0 {
		return uint256.Int{}, nil
	}
	// Most lookups are for a level after the latest change
	last, err := index.CheckpointAt(account, n-1)
	if err != nil {
		return uint256.Int{}, err
	}
	if last.FromBlock <= level {
		return last.Balance, nil
	}
	first, err := index.CheckpointAt(account, 0)
	if err != nil {
		return uint256.Int{}, err
	}
	if first.FromBlock > level {
		return uint256.Int{}, nil
	}
	lower := uint64(0)
	upper := n - 1
	for upper > lower {
		// Midpoint rounded up so that lower = center always makes progress
		center := upper - (upper-lower)/2
		cp, err := index.CheckpointAt(account, center)
		if err != nil {
			return uint256.Int{}, err
		}
		switch {
		case cp.FromBlock == level:
			return cp.Balance, nil
		case cp.FromBlock < level:
			lower = center
		default:
			upper = center - 1
		}
	}
	cp, err := index.CheckpointAt(account, lower)
	if err != nil {
		return uint256.Int{}, err
	}
	return cp.Balance, nil
}
