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

package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/blinklabs-io/murmuration/internal/test/testutil"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Quorum = "45"
	cfg.Governance.EscrowAmount = "10"
	cfg.Governance.VoteLengthBlocks = 2
	cfg.Governance.BlocksInTimelockForExecution = 1
	cfg.Governance.BlocksInTimelockForCancellation = 3
	cfg.Governance.QuorumCapUpper = "99"
	return cfg
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := NewRunner(testConfig())
	require.NoError(t, err)
	t.Cleanup(r.EventBus().Stop)
	return r
}

func TestRunGovernanceScenario(t *testing.T) {
	s, err := Load("testdata/governance.yaml")
	require.NoError(t, err)
	r := newTestRunner(t)
	report, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, report.Steps, len(s.Steps))
	assert.Equal(t, "raise escrow", report.Name)
	assert.Equal(t, uint64(8), report.Level)
	assert.Equal(t, "64", report.Quorum)
	assert.Equal(t, "150", report.TotalSupply)
	assert.False(t, report.PollOpen)
	assert.False(t, report.InTimelock)
	assert.Equal(
		t,
		[]OutcomeSummary{
			{
				ID:           0,
				Title:        "raise escrow",
				Outcome:      "executed",
				YayVotes:     "90",
				NayVotes:     "0",
				AbstainVotes: "50",
			},
		},
		report.Outcomes,
	)
	assert.Equal(t, "100", report.Balances["tz1alice"])
	assert.Equal(t, "50", report.Balances["tz1bob"])
	assert.Equal(t, "0", report.Balances["KT1dao"])

	// The vote round trip runs as three operations
	voteStep := report.Steps[7]
	assert.Equal(t, dao.EntrypointVote, voteStep.Call)
	assert.Equal(t, 3, voteStep.Operations)
	assert.Equal(t, "NOT_AUTHOR", report.Steps[14].Expected)
	assert.Contains(t, report.Steps[14].Error, "NOT_AUTHOR")

	// The executed proposal installed the new escrow amount
	assert.Equal(t, testutil.Nat(20), r.Dao().Parameters().EscrowAmount)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *report, decoded)
}

func TestRunTokenAdministration(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "100"}
  - sender: tz1admin
    call: setPause
    args: {paused: true}
  - sender: tz1alice
    call: transfer
    args: {from: tz1alice, to: tz1bob, value: "5"}
    expectError: NOT_ALLOWED
  - sender: tz1alice
    call: approve
    args: {spender: tz1bob, value: "5"}
    expectError: PAUSED
  - sender: tz1admin
    call: transfer
    args: {from: tz1alice, to: tz1bob, value: "5"}
  - sender: tz1admin
    call: setPause
    args: {paused: false}
  - sender: tz1alice
    call: transfer
    args: {from: tz1alice, to: tz1bob, value: "500"}
    expectError: LOW_BALANCE
  - sender: tz1admin
    call: disableMinting
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "1"}
    expectError: MINTING_DISABLED
  - sender: tz1admin
    call: setAdministrator
  - sender: tz1admin
    call: setPause
    args: {paused: true}
    expectError: NOT_ADMINISTRATOR
  - level: 3
    sender: tz1alice
    call: getPriorBalance
    args: {address: tz1alice, level: 1}
    expectError: BAD_STATE
  - sender: tz1alice
    call: voteCallback
    args: {address: tz1alice, level: 1, result: "100"}
    expectError: BAD_STATE
`))
	require.NoError(t, err)
	r := newTestRunner(t)
	_, err = r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, testutil.Nat(95), r.Token().Balance("tz1alice"))
	assert.Equal(t, testutil.Nat(5), r.Token().Balance("tz1bob"))
	assert.True(t, r.Token().MintingDisabled())
	assert.True(t, r.Token().Administrator().IsNone())
}

func TestRunStopsOnUnexpectedResult(t *testing.T) {
	testDefs := []struct {
		name   string
		doc    string
		reason error
	}{
		{
			name: "unexpected failure",
			doc: `
steps:
  - sender: tz1alice
    call: mint
    args: {address: tz1alice, value: "100"}
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "100"}
`,
			reason: token.ErrNotAdministrator,
		},
		{
			name: "unexpected success",
			doc: `
steps:
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "100"}
    expectError: NOT_ADMINISTRATOR
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "100"}
`,
		},
		{
			name: "different failure",
			doc: `
steps:
  - sender: tz1alice
    call: endVoting
    expectError: TOO_SOON
  - sender: tz1admin
    call: mint
    args: {address: tz1alice, value: "100"}
`,
			reason: dao.ErrNoPoll,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			s, err := Parse([]byte(testDef.doc))
			require.NoError(t, err)
			r := newTestRunner(t)
			report, err := r.Run(context.Background(), s)
			require.ErrorIs(t, err, ErrUnexpectedResult)
			if testDef.reason != nil {
				require.ErrorIs(t, err, testDef.reason)
			}
			require.NotNil(t, report)
			assert.Len(t, report.Steps, 1)
		})
	}
}

func TestRunBadSteps(t *testing.T) {
	testDefs := []struct {
		name   string
		doc    string
		reason error
	}{
		{
			name:   "unknown call",
			doc:    "steps:\n  - sender: tz1alice\n    call: burn\n",
			reason: ErrUnknownCall,
		},
		{
			name:   "unknown action",
			doc:    "steps:\n  - sender: tz1alice\n    call: propose\n    args: {action: {type: selfdestruct}}\n",
			reason: ErrUnknownAction,
		},
		{
			name:   "bad value",
			doc:    "steps:\n  - sender: tz1admin\n    call: mint\n    args: {address: tz1alice, value: lots}\n",
			reason: ErrBadArgs,
		},
		{
			name:   "bad vote value",
			doc:    "steps:\n  - sender: tz1alice\n    call: vote\n    args: {value: maybe}\n",
			reason: ErrBadArgs,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			s, err := Parse([]byte(testDef.doc))
			require.NoError(t, err)
			r := newTestRunner(t)
			_, err = r.Run(context.Background(), s)
			require.ErrorIs(t, err, testDef.reason)
		})
	}
}

func TestParseRejectsIncompleteSteps(t *testing.T) {
	_, err := Parse([]byte("steps:\n  - sender: tz1alice\n"))
	require.ErrorIs(t, err, ErrUnknownCall)
	_, err = Parse([]byte("steps:\n  - call: endVoting\n"))
	require.Error(t, err)
	_, err = Parse([]byte("steps: [\n"))
	require.Error(t, err)
}

func TestRunHonoursContext(t *testing.T) {
	s, err := Parse([]byte("steps:\n  - sender: tz1alice\n    call: endVoting\n    expectError: NO_POLL\n"))
	require.NoError(t, err)
	r := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := r.Run(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Steps)
}

func TestHasReason(t *testing.T) {
	s, err := Parse([]byte("steps:\n  - sender: tz1alice\n    call: endVoting\n"))
	require.NoError(t, err)
	r := newTestRunner(t)
	_, err = r.Run(context.Background(), s)
	assert.True(t, hasReason(err, "NO_POLL"))
	assert.False(t, hasReason(err, "NO_ITEM_IN_TIMELOCK"))
	assert.False(t, hasReason(nil, "NO_POLL"))
}
