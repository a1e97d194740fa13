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

package database

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/types"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/internal/test/testutil"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice host.Address = "tz1alice"

func newTestDatabase(t *testing.T, dataDir string) *Database {
	t.Helper()
	db, err := New(nil, nil, dataDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func checkpoint(fromBlock, balance uint64) token.Checkpoint {
	return token.Checkpoint{FromBlock: fromBlock, Balance: testutil.Nat(balance)}
}

func TestCheckpointPersistence(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *Txn) error {
		if err := db.SetCheckpoint(alice, 0, checkpoint(2, 100), txn); err != nil {
			return err
		}
		if err := db.SetCheckpoint(alice, 1, checkpoint(5, 60), txn); err != nil {
			return err
		}
		// Same-block overwrite of the latest checkpoint
		return db.SetCheckpoint(alice, 1, checkpoint(5, 70), txn)
	}))

	cps, err := db.Checkpoints(alice)
	require.NoError(t, err)
	assert.Equal(t, []token.Checkpoint{checkpoint(2, 100), checkpoint(5, 70)}, cps)

	cps, err = db.Checkpoints("tz1nobody")
	require.NoError(t, err)
	assert.Empty(t, cps)
}

func TestCheckpointGap(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *Txn) error {
		return db.SetCheckpoint(alice, 1, checkpoint(2, 100), txn)
	})
	require.ErrorIs(t, err, ErrCheckpointGap)
	require.ErrorIs(t, db.SetCheckpoint(alice, 0, checkpoint(2, 1), nil), types.ErrNilTxn)
}

func TestPriorBalanceMatchesTokenStore(t *testing.T) {
	db := newTestDatabase(t, "")
	store := token.NewCheckpointStore()
	writes := []token.Checkpoint{
		checkpoint(1, 10),
		checkpoint(3, 30),
		checkpoint(4, 0),
		checkpoint(8, 80),
		checkpoint(9, 90),
	}
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *Txn) error {
		for _, cp := range writes {
			idx, _ := store.Write(alice, cp.FromBlock, cp.Balance)
			if err := db.SetCheckpoint(alice, idx, cp, txn); err != nil {
				return err
			}
		}
		return nil
	}))
	for level := range uint64(12) {
		expected, err := store.PriorBalance(alice, level, 12)
		require.NoError(t, err)
		actual, err := db.PriorBalance(alice, level, 12)
		require.NoError(t, err)
		assert.Equal(t, expected, actual, "level %d", level)
	}
	_, err := db.PriorBalance(alice, 12, 12)
	require.ErrorIs(t, err, token.ErrBlockLevelTooSoon)
}

func TestTxnRollbackDiscardsBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *Txn) error {
		if err := db.SetCheckpoint(alice, 0, checkpoint(2, 100), txn); err != nil {
			return err
		}
		if err := db.SetOutcome(0, models.OutcomeFailed, 2, txn); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	cps, err := db.Checkpoints(alice)
	require.NoError(t, err)
	assert.Empty(t, cps)
	outcomes, err := db.Outcomes(nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestCommitLevel(t *testing.T) {
	dataDir := t.TempDir()
	db, err := New(nil, nil, dataDir)
	require.NoError(t, err)
	txn := db.Transaction(true)
	txn.SetLevel(17)
	require.NoError(t, txn.Do(func(txn *Txn) error {
		return db.SetOutcome(0, models.OutcomeInTimelock, 17, txn)
	}))
	level, err := db.CommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(17), level)
	require.NoError(t, db.Close())

	// Reopen and verify both stores agree
	db, err = New(nil, nil, dataDir)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	level, err = db.CommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(17), level)
	outcome, err := db.Outcome(0, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, uint8(models.OutcomeInTimelock), outcome.Outcome)
}

func TestCommitLevelMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := New(nil, nil, dataDir)
	require.NoError(t, err)
	// Advance only the metadata store
	require.NoError(t, db.Metadata().SetCommitLevel(5, nil))
	require.NoError(t, db.Close())

	db, err = New(nil, nil, dataDir)
	require.NotNil(t, db)
	defer db.Close() //nolint:errcheck
	var levelErr CommitLevelError
	require.ErrorAs(t, err, &levelErr)
	assert.Equal(t, uint64(5), levelErr.MetadataLevel)
	assert.Equal(t, uint64(0), levelErr.BlobLevel)
}

func TestGovernanceHistory(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *Txn) error {
		if err := db.SetPoll(&models.Poll{
			PollID:         0,
			Title:          "noop",
			Author:         alice.String(),
			VotingEndBlock: 16,
		}, txn); err != nil {
			return err
		}
		if err := db.AddVote(&models.Vote{
			PollID: 0,
			Voter:  alice.String(),
			Value:  models.VoteYay,
			Level:  10,
			Weight: types.NewNat(testutil.Nat(100)),
		}, txn); err != nil {
			return err
		}
		if err := db.ClosePoll(0, 17, alice.String(), txn); err != nil {
			return err
		}
		if err := db.SetTimelockItem(&models.TimelockItem{
			PollID:      0,
			Author:      alice.String(),
			EndBlock:    19,
			CancelBlock: 21,
		}, txn); err != nil {
			return err
		}
		return db.CloseTimelockItem(0, 20, alice.String(), txn)
	}))

	polls, err := db.Polls(nil)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	require.NotNil(t, polls[0].ClosedBlock)
	votes, err := db.Votes(0, nil)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	item, err := db.TimelockItem(0, nil)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, alice.String(), item.ClosedBy)
}
