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
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/types"
	"github.com/blinklabs-io/murmuration/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func testPoll(pollID uint64) *models.Poll {
	return &models.Poll{
		PollID:           pollID,
		Title:            "raise escrow",
		DescriptionLink:  "ipfs://proposal",
		Author:           "tz1alice",
		VotingStartBlock: 11,
		VotingEndBlock:   16,
		EscrowAmount:     types.NewNat(testutil.Nat(10)),
		Quorum:           types.NewNat(testutil.Nat(100)),
		QuorumCapLower:   types.NewNat(testutil.Nat(1)),
		QuorumCapUpper:   types.NewNat(testutil.Nat(99)),
		OpenedBlock:      10,
	}
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	first := setupTestStore(t)
	second := setupTestStore(t)
	require.NoError(t, first.SetPoll(testPoll(0), nil))
	poll, err := second.GetPoll(0, nil)
	require.NoError(t, err)
	assert.Nil(t, poll)
}

func TestOnDiskStore(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "meta")
	store, err := New(WithDataDir(dataDir))
	require.NoError(t, err)
	require.NoError(t, store.SetCommitLevel(42, nil))
	require.NoError(t, store.Close())
	assert.FileExists(t, filepath.Join(dataDir, "metadata.sqlite"))

	store, err = New(WithDataDir(dataDir))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	level, err := store.GetCommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), level)
}

func TestVacuum(t *testing.T) {
	store, err := New(
		WithDataDir(t.TempDir()),
		WithVacuumInterval(time.Hour),
	)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, store.vacuumEvery)
	require.NoError(t, store.SetPoll(testPoll(0), nil))
	require.NoError(t, store.runVacuum())
	require.NoError(t, store.Close())
	// Vacuum is skipped once closed
	require.NoError(t, store.runVacuum())
	assert.Nil(t, store.timerVacuum)
}

func TestCommitLevel(t *testing.T) {
	store := setupTestStore(t)
	level, err := store.GetCommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), level)

	txn := store.Transaction()
	require.NoError(t, store.SetCommitLevel(7, txn))
	require.NoError(t, txn.Commit())
	txn = store.Transaction()
	require.NoError(t, store.SetCommitLevel(9, txn))
	require.NoError(t, txn.Commit())

	level, err = store.GetCommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), level)
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetPoll(testPoll(3), txn))
	require.NoError(t, txn.Rollback())
	// Second rollback is a no-op
	require.NoError(t, txn.Rollback())

	poll, err := store.GetPoll(3, nil)
	require.NoError(t, err)
	assert.Nil(t, poll)
}

type foreignTxn struct{}

func (foreignTxn) Commit() error   { return nil }
func (foreignTxn) Rollback() error { return nil }

func TestWrongTransactionType(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetPolls(foreignTxn{})
	require.ErrorIs(t, err, types.ErrTxnWrongType)
}

func TestPollLifecycle(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SetPoll(testPoll(0), nil))

	updated := testPoll(0)
	updated.OpenedBlock = 999
	updated.YayVotes = types.NewNat(testutil.Nat(40))
	updated.TotalVotes = types.NewNat(testutil.Nat(45))
	require.NoError(t, store.SetPoll(updated, nil))
	require.NoError(t, store.ClosePoll(0, 17, "tz1alice", nil))

	poll, err := store.GetPoll(0, nil)
	require.NoError(t, err)
	require.NotNil(t, poll)
	assert.Equal(t, "raise escrow", poll.Title)
	assert.Equal(t, uint64(10), poll.OpenedBlock, "opened block survives upsert")
	assert.Equal(t, testutil.Nat(40), poll.YayVotes.Int)
	assert.Equal(t, testutil.Nat(45), poll.TotalVotes.Int)
	require.NotNil(t, poll.ClosedBlock)
	assert.Equal(t, uint64(17), *poll.ClosedBlock)
	assert.Equal(t, "tz1alice", poll.EscrowRecipient)

	require.Error(t, store.ClosePoll(5, 17, "tz1alice", nil))
}

func TestGetPollsOrdered(t *testing.T) {
	store := setupTestStore(t)
	for _, id := range []uint64{2, 0, 1} {
		require.NoError(t, store.SetPoll(testPoll(id), nil))
	}
	polls, err := store.GetPolls(nil)
	require.NoError(t, err)
	require.Len(t, polls, 3)
	for i, poll := range polls {
		assert.Equal(t, uint64(i), poll.PollID)
	}
}

func TestVotes(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.AddVote(&models.Vote{
		PollID: 0,
		Voter:  "tz1alice",
		Value:  models.VoteYay,
		Level:  10,
		Weight: types.NewNat(testutil.Nat(100)),
	}, nil))
	require.NoError(t, store.AddVote(&models.Vote{
		PollID: 0,
		Voter:  "tz1bob",
		Value:  models.VoteNay,
		Level:  10,
		Weight: types.NewNat(testutil.Nat(50)),
	}, nil))
	// Same voter on another poll is fine
	require.NoError(t, store.AddVote(&models.Vote{
		PollID: 1,
		Voter:  "tz1alice",
		Value:  models.VoteAbstain,
		Level:  20,
		Weight: types.NewNat(testutil.Nat(100)),
	}, nil))
	// Same voter on the same poll is rejected
	require.Error(t, store.AddVote(&models.Vote{
		PollID: 0,
		Voter:  "tz1alice",
		Value:  models.VoteNay,
		Level:  11,
		Weight: types.NewNat(testutil.Nat(100)),
	}, nil))

	votes, err := store.GetVotes(0, nil)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "tz1alice", votes[0].Voter)
	assert.Equal(t, testutil.Nat(100), votes[0].Weight.Int)
	assert.Equal(t, "tz1bob", votes[1].Voter)
	assert.Equal(t, uint8(models.VoteNay), votes[1].Value)
}

func TestOutcomes(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SetOutcome(0, models.OutcomeFailed, 17, nil))
	require.NoError(t, store.SetOutcome(1, models.OutcomeInTimelock, 30, nil))
	require.NoError(t, store.SetOutcome(1, models.OutcomeExecuted, 33, nil))

	outcome, err := store.GetOutcome(1, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, uint8(models.OutcomeExecuted), outcome.Outcome)
	assert.Equal(t, uint64(30), outcome.AddedBlock)
	require.NotNil(t, outcome.UpdatedBlock)
	assert.Equal(t, uint64(33), *outcome.UpdatedBlock)

	outcomes, err := store.GetOutcomes(nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, uint64(0), outcomes[0].PollID)
	assert.Nil(t, outcomes[0].UpdatedBlock)
	assert.Equal(t, "executed", models.OutcomeName(outcomes[1].Outcome))

	missing, err := store.GetOutcome(9, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTimelockItems(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SetTimelockItem(&models.TimelockItem{
		PollID:      4,
		Author:      "tz1alice",
		EndBlock:    19,
		CancelBlock: 21,
	}, nil))
	require.NoError(t, store.CloseTimelockItem(4, 20, "tz1alice", nil))
	// Already closed
	require.Error(t, store.CloseTimelockItem(4, 22, "tz1bob", nil))

	item, err := store.GetTimelockItem(4, nil)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, uint64(19), item.EndBlock)
	assert.Equal(t, uint64(21), item.CancelBlock)
	require.NotNil(t, item.ClosedBlock)
	assert.Equal(t, uint64(20), *item.ClosedBlock)
	assert.Equal(t, "tz1alice", item.ClosedBy)
}

func TestParameterUpdates(t *testing.T) {
	store := setupTestStore(t)
	for _, escrow := range []uint64{10, 25} {
		require.NoError(t, store.AddParameterUpdate(&models.ParameterUpdate{
			AddedBlock:     escrow,
			EscrowAmount:   types.NewNat(testutil.Nat(escrow)),
			QuorumCapLower: types.NewNat(testutil.Nat(1)),
			QuorumCapUpper: types.NewNat(testutil.Nat(99)),
		}, nil))
	}
	updates, err := store.GetParameterUpdates(nil)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, testutil.Nat(10), updates[0].EscrowAmount.Int)
	assert.Equal(t, testutil.Nat(25), updates[1].EscrowAmount.Int)
}
