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

package indexer_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/database"
	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/indexer"
	"github.com/blinklabs-io/murmuration/internal/test/testutil"
	"github.com/blinklabs-io/murmuration/token"
)

const (
	daoAddr    host.Address = "KT1dao"
	tokenAddr  host.Address = "KT1token"
	fundAddr   host.Address = "KT1fund"
	tokenAdmin host.Address = "tz1admin"
	alice      host.Address = "tz1alice"
	bob        host.Address = "tz1bob"
)

type fixture struct {
	chain   *host.Chain
	db      *database.Database
	bus     *event.EventBus
	indexer *indexer.Indexer
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New(nil, nil, "")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	f := &fixture{
		db:  db,
		bus: event.NewEventBus(nil, nil),
		reg: prometheus.NewRegistry(),
	}
	t.Cleanup(f.bus.Stop)
	f.indexer = indexer.New(db, f.bus, indexer.WithPromRegistry(f.reg))
	f.indexer.Start()
	t.Cleanup(f.indexer.Stop)

	params := dao.DefaultParameters()
	params.EscrowAmount = testutil.Nat(10)
	params.VoteLengthBlocks = 2
	params.BlocksInTimelockForExecution = 1
	params.BlocksInTimelockForCancellation = 3
	params.QuorumCap = dao.QuorumCap{Lower: testutil.Nat(1), Upper: testutil.Nat(99)}

	f.chain = host.NewChain(host.WithEventBus(f.bus), host.WithLevel(1))
	require.NoError(t, f.chain.Register(token.New(tokenAddr, token.WithAdministrator(tokenAdmin))))
	require.NoError(t, f.chain.Register(dao.New(
		daoAddr,
		tokenAddr,
		fundAddr,
		dao.WithParameters(params),
		dao.WithQuorum(testutil.Nat(45)),
	)))
	f.submit(t, tokenAdmin, tokenAddr, token.EntrypointMint, token.MintParams{Address: alice, Value: testutil.Nat(100)})
	f.submit(t, tokenAdmin, tokenAddr, token.EntrypointMint, token.MintParams{Address: bob, Value: testutil.Nat(50)})
	return f
}

func (f *fixture) submit(
	t *testing.T,
	sender host.Address,
	target host.Address,
	entrypoint string,
	param any,
) {
	t.Helper()
	_, err := f.chain.Submit(sender, host.Operation{Target: target, Entrypoint: entrypoint, Param: param})
	require.NoError(t, err)
}

func TestIndexGovernanceLifecycle(t *testing.T) {
	f := newFixture(t)

	f.submit(t, alice, tokenAddr, token.EntrypointApprove, token.ApproveParams{Spender: daoAddr, Value: testutil.Nat(10)})
	f.chain.Bake(1)
	f.submit(t, alice, daoAddr, dao.EntrypointPropose, dao.Proposal{
		Title:           "noop",
		DescriptionLink: "ipfs://noop",
		Lambda:          dao.NoopLambda(),
	})
	require.NoError(t, f.chain.SetLevel(4))
	f.submit(t, alice, daoAddr, dao.EntrypointVote, dao.VoteYay)
	f.submit(t, bob, daoAddr, dao.EntrypointVote, dao.VoteAbstain)
	require.NoError(t, f.chain.SetLevel(6))
	f.submit(t, bob, daoAddr, dao.EntrypointEndVoting, nil)
	require.NoError(t, f.chain.SetLevel(8))
	f.submit(t, alice, daoAddr, dao.EntrypointExecuteTimelock, nil)
	require.NoError(t, f.indexer.Err())

	polls, err := f.db.Polls(nil)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	poll := polls[0]
	assert.Equal(t, "noop", poll.Title)
	assert.Equal(t, "ipfs://noop", poll.DescriptionLink)
	assert.Equal(t, uint64(2), poll.OpenedBlock)
	assert.Equal(t, uint64(3), poll.VotingStartBlock)
	assert.Equal(t, uint64(5), poll.VotingEndBlock)
	assert.Equal(t, testutil.Nat(90), poll.YayVotes.Int)
	assert.Equal(t, testutil.Nat(50), poll.AbstainVotes.Int)
	assert.Equal(t, testutil.Nat(140), poll.TotalVotes.Int)
	require.NotNil(t, poll.ClosedBlock)
	assert.Equal(t, uint64(6), *poll.ClosedBlock)
	assert.Equal(t, alice.String(), poll.EscrowRecipient)

	votes, err := f.db.Votes(0, nil)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, alice.String(), votes[0].Voter)
	assert.Equal(t, uint8(models.VoteYay), votes[0].Value)
	assert.Equal(t, uint64(4), votes[0].Level)
	assert.Equal(t, testutil.Nat(90), votes[0].Weight.Int)
	assert.Equal(t, bob.String(), votes[1].Voter)
	assert.Equal(t, uint8(models.VoteAbstain), votes[1].Value)

	outcome, err := f.db.Outcome(0, nil)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, uint8(models.OutcomeExecuted), outcome.Outcome)
	assert.Equal(t, uint64(6), outcome.AddedBlock)
	require.NotNil(t, outcome.UpdatedBlock)
	assert.Equal(t, uint64(8), *outcome.UpdatedBlock)

	item, err := f.db.TimelockItem(0, nil)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, uint64(7), item.EndBlock)
	assert.Equal(t, uint64(9), item.CancelBlock)
	require.NotNil(t, item.ClosedBlock)
	assert.Equal(t, uint64(8), *item.ClosedBlock)
	assert.Equal(t, alice.String(), item.ClosedBy)

	// Escrow left alice at level 2 and came back at level 6
	cps, err := f.db.Checkpoints(alice)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]token.Checkpoint{
			{FromBlock: 1, Balance: testutil.Nat(100)},
			{FromBlock: 2, Balance: testutil.Nat(90)},
			{FromBlock: 6, Balance: testutil.Nat(100)},
		},
		cps,
	)
	balance, err := f.db.PriorBalance(alice, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, testutil.Nat(90), balance)
	balance, err = f.db.PriorBalance(daoAddr, 5, 8)
	require.NoError(t, err)
	assert.Equal(t, testutil.Nat(10), balance)

	level, err := f.db.CommitLevel()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), level)

	count, err := promtestutil.GatherAndCount(f.reg, "murmur_indexer_events_total")
	require.NoError(t, err)
	assert.Positive(t, count)
	expected := `
# HELP murmur_indexer_level chain level of the last indexed commit
# TYPE murmur_indexer_level gauge
murmur_indexer_level 8
`
	require.NoError(t, promtestutil.GatherAndCompare(
		f.reg,
		strings.NewReader(expected),
		"murmur_indexer_level",
	))
}

func TestIndexParameterUpdate(t *testing.T) {
	f := newFixture(t)
	params := dao.DefaultParameters()
	params.EscrowAmount = testutil.Nat(25)
	f.chain.Bake(2)
	// The DAO may update its own parameters directly
	f.submit(t, daoAddr, daoAddr, dao.EntrypointSetParameters, params)
	require.NoError(t, f.indexer.Err())

	updates, err := f.db.ParameterUpdates(nil)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, uint64(3), updates[0].AddedBlock)
	assert.Equal(t, testutil.Nat(25), updates[0].EscrowAmount.Int)
	assert.Equal(t, params.PercentageForSuperMajority, updates[0].PercentageForSuperMajority)
}

func TestIndexFailureStopsSubscription(t *testing.T) {
	f := newFixture(t)
	f.bus.Publish(
		token.CheckpointEventType,
		event.NewEvent(token.CheckpointEventType, "not a checkpoint"),
	)
	err := f.indexer.Err()
	require.ErrorIs(t, err, indexer.ErrUnexpectedEventData)

	// Later checkpoints are no longer indexed
	f.submit(t, tokenAdmin, tokenAddr, token.EntrypointMint, token.MintParams{Address: bob, Value: testutil.Nat(1)})
	cps, err := f.db.Checkpoints(bob)
	require.NoError(t, err)
	require.Len(t, cps, 1)
	assert.Equal(t, testutil.Nat(50), cps[0].Balance)

	expected := `
# HELP murmur_indexer_errors_total events that failed to index by type
# TYPE murmur_indexer_errors_total counter
murmur_indexer_errors_total{type="token.checkpoint"} 1
`
	require.NoError(t, promtestutil.GatherAndCompare(
		f.reg,
		strings.NewReader(expected),
		"murmur_indexer_errors_total",
	))
}
