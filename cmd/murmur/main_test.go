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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testScenario = "../../internal/scenario/testdata/governance.yaml"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Quorum = "45"
	cfg.Governance.EscrowAmount = "10"
	cfg.Governance.VoteLengthBlocks = 2
	cfg.Governance.BlocksInTimelockForExecution = 1
	cfg.Governance.BlocksInTimelockForCancellation = 3
	cfg.Governance.QuorumCapUpper = "99"
	return cfg
}

func TestSimulateThenQuery(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "murmur.prom")
	var report bytes.Buffer
	require.NoError(
		t,
		simulateRun(context.Background(), cfg, nil, testScenario, &report),
	)
	assert.Contains(t, report.String(), "name: raise escrow")

	metrics, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "murmur_indexer_level 8")

	var out bytes.Buffer
	require.NoError(t, outcomesRun(cfg, nil, &out))
	var rows []outcomeRow
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "raise escrow", rows[0].Title)
	assert.Equal(t, "tz1alice", rows[0].Author)
	assert.Equal(t, "executed", rows[0].Outcome)
	assert.Equal(t, "90", rows[0].YayVotes)
	assert.Equal(t, "50", rows[0].AbstainVotes)
	assert.Equal(t, 2, rows[0].Votes)
	require.NotNil(t, rows[0].ClosedBlock)
	assert.Equal(t, uint64(6), *rows[0].ClosedBlock)
	require.NotNil(t, rows[0].UpdatedBlock)
	assert.Equal(t, uint64(8), *rows[0].UpdatedBlock)

	testCases := []struct {
		level    uint64
		expected string
	}{
		{level: 0, expected: "0\n"},
		{level: 1, expected: "100\n"},
		{level: 3, expected: "90\n"},
		{level: 7, expected: "100\n"},
	}
	for _, tc := range testCases {
		var balance bytes.Buffer
		require.NoError(
			t,
			priorBalanceRun(cfg, nil, "tz1alice", tc.level, 8, &balance),
		)
		assert.Equal(t, tc.expected, balance.String(), "level %d", tc.level)
	}
	err = priorBalanceRun(cfg, nil, "tz1alice", 8, 8, &bytes.Buffer{})
	require.ErrorContains(t, err, "BLOCK_LEVEL_TOO_SOON")
}

func TestSimulateRefusesIndexedDataDir(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(
		t,
		simulateRun(context.Background(), cfg, nil, testScenario, &bytes.Buffer{}),
	)
	err := simulateRun(context.Background(), cfg, nil, testScenario, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrDataDirInUse)
}

func TestSimulateMissingScenario(t *testing.T) {
	cfg := testConfig(t)
	err := simulateRun(
		context.Background(),
		cfg,
		nil,
		filepath.Join(t.TempDir(), "missing.yaml"),
		&bytes.Buffer{},
	)
	require.Error(t, err)
}

func TestOutcomesEmptyDataDir(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	require.NoError(t, outcomesRun(cfg, nil, &out))
	assert.Equal(t, "[]\n", out.String())
}
