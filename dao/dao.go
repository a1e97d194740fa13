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

// Package dao implements the governance contract: a single active poll
// weighted by historical token balances, an adaptive quorum, and a timelock
// through which passed proposals act with the DAO's own authority.
package dao

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EntrypointPropose         = "propose"
	EntrypointVote            = "vote"
	EntrypointVoteCallback    = "voteCallback"
	EntrypointEndVoting       = "endVoting"
	EntrypointExecuteTimelock = "executeTimelock"
	EntrypointCancelTimelock  = "cancelTimelock"
	EntrypointSetParameters   = "setParameters"
)

type state struct {
	poll           optional.Option[Poll]
	timelockItem   optional.Option[TimelockItem]
	votingState    optional.Option[VotingState]
	outcomes       map[uint64]HistoricalOutcome
	params         GovernanceParameters
	quorum         uint256.Int
	nextProposalID uint64
	machine        State
}

func (s *state) clone() *state {
	ret := *s
	if poll, err := s.poll.Take(); err == nil {
		ret.poll = optional.Some(poll.clone())
	}
	// Closed polls are never modified, so their voter maps are shared
	ret.outcomes = maps.Clone(s.outcomes)
	return &ret
}

// Dao is the governance contract
type Dao struct {
	logger        *slog.Logger
	metrics       *daoMetrics
	state         *state
	address       host.Address
	tokenAddress  host.Address
	communityFund host.Address
}

type DaoOptionFunc func(*Dao)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) DaoOptionFunc {
	return func(d *Dao) {
		d.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) DaoOptionFunc {
	return func(d *Dao) {
		if registry != nil {
			d.metrics = newDaoMetrics(registry)
		}
	}
}

// WithParameters specifies the initial governance parameters
func WithParameters(params GovernanceParameters) DaoOptionFunc {
	return func(d *Dao) {
		d.state.params = params
	}
}

// WithQuorum specifies the initial quorum
func WithQuorum(quorum uint256.Int) DaoOptionFunc {
	return func(d *Dao) {
		d.state.quorum = quorum
	}
}

// New creates a DAO deployed at addr that weighs votes with the token at
// tokenAddr and forfeits escrow to communityFund
func New(
	addr host.Address,
	tokenAddr host.Address,
	communityFund host.Address,
	opts ...DaoOptionFunc,
) *Dao {
	d := &Dao{
		address:       addr,
		tokenAddress:  tokenAddr,
		communityFund: communityFund,
		state: &state{
			poll:         optional.None[Poll](),
			timelockItem: optional.None[TimelockItem](),
			votingState:  optional.None[VotingState](),
			outcomes:     make(map[uint64]HistoricalOutcome),
			params:       DefaultParameters(),
			quorum:       *uint256.NewInt(DefaultQuorum),
			machine:      StateIdle,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if d.metrics != nil {
		d.metrics.quorum.Set(natToFloat(d.state.quorum))
	}
	return d
}

func (d *Dao) Address() host.Address {
	return d.address
}

func (d *Dao) TokenAddress() host.Address {
	return d.tokenAddress
}

func (d *Dao) CommunityFund() host.Address {
	return d.communityFund
}

func (d *Dao) Snapshot() any {
	return d.state.clone()
}

func (d *Dao) Restore(snapshot any) {
	d.state = snapshot.(*state)
	d.metrics.discard()
}

// Commit publishes the metrics of a committed call
func (d *Dao) Commit() {
	d.metrics.commit()
}

// Call dispatches an entrypoint by name
func (d *Dao) Call(
	ctx host.Context,
	entrypoint string,
	param any,
) ([]host.Operation, error) {
	switch entrypoint {
	case EntrypointPropose:
		p, err := host.Param[Proposal](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return d.Propose(ctx, p)
	case EntrypointVote:
		p, err := host.Param[VoteValue](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return d.Vote(ctx, p)
	case EntrypointVoteCallback:
		p, err := host.Param[VoteCallbackParams](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, d.VoteCallback(ctx, p)
	case EntrypointEndVoting:
		return d.EndVoting(ctx)
	case EntrypointExecuteTimelock:
		return d.ExecuteTimelock(ctx)
	case EntrypointCancelTimelock:
		return nil, d.CancelTimelock(ctx)
	case EntrypointSetParameters:
		p, err := host.Param[GovernanceParameters](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, d.SetParameters(ctx, p)
	}
	return nil, host.UnknownEntrypoint(d.address, entrypoint)
}

// Poll returns the open poll, if any
func (d *Dao) Poll() optional.Option[Poll] {
	if poll, err := d.state.poll.Take(); err == nil {
		return optional.Some(poll.clone())
	}
	return optional.None[Poll]()
}

// TimelockItem returns the pending timelock item, if any
func (d *Dao) TimelockItem() optional.Option[TimelockItem] {
	return d.state.timelockItem
}

func (d *Dao) Parameters() GovernanceParameters {
	return d.state.params
}

func (d *Dao) Quorum() uint256.Int {
	return d.state.quorum
}

// NextProposalID returns the id the next proposal will receive
func (d *Dao) NextProposalID() uint64 {
	return d.state.nextProposalID
}

func (d *Dao) State() State {
	return d.state.machine
}

// VotingState returns the vote awaiting its balance callback, if any
func (d *Dao) VotingState() optional.Option[VotingState] {
	return d.state.votingState
}

// Outcome returns the historical outcome of the poll with the given id
func (d *Dao) Outcome(id uint64) (HistoricalOutcome, bool) {
	outcome, ok := d.state.outcomes[id]
	if !ok {
		return HistoricalOutcome{}, false
	}
	outcome.Poll = outcome.Poll.clone()
	return outcome, true
}

// Outcomes returns the ids of all recorded outcomes in ascending order
func (d *Dao) Outcomes() []uint64 {
	return slices.Sorted(maps.Keys(d.state.outcomes))
}

func natToFloat(v uint256.Int) float64 {
	return v.Float64()
}
