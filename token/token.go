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

// Package token implements the governance token: a balance and allowance
// ledger that records a checkpoint for every balance change so that voting
// power can be computed as of a past block.
package token

import (
	"io"
	"log/slog"
	"maps"

	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EntrypointTransfer         = "transfer"
	EntrypointApprove          = "approve"
	EntrypointMint             = "mint"
	EntrypointGetPriorBalance  = "getPriorBalance"
	EntrypointDisableMinting   = "disableMinting"
	EntrypointSetAdministrator = "setAdministrator"
	EntrypointSetPause         = "setPause"
)

// CheckpointEventType is emitted for every checkpoint that is appended or overwritten
const CheckpointEventType event.EventType = "token.checkpoint"

// CheckpointEvent describes a committed checkpoint write
type CheckpointEvent struct {
	Account    host.Address
	Index      uint64
	Checkpoint Checkpoint
	Replaced   bool
}

type TransferParams struct {
	From  host.Address
	To    host.Address
	Value uint256.Int
}

type ApproveParams struct {
	Spender host.Address
	Value   uint256.Int
}

type MintParams struct {
	Address host.Address
	Value   uint256.Int
}

// PriorBalanceRequest asks for the balance of Address as of Level, to be
// delivered to Callback
type PriorBalanceRequest struct {
	Callback host.Callback
	Address  host.Address
	Level    uint64
}

// PriorBalanceResult is the payload delivered to a PriorBalanceRequest callback
type PriorBalanceResult struct {
	Address host.Address
	Result  uint256.Int
	Level   uint64
}

type account struct {
	approvals map[host.Address]uint256.Int
	balance   uint256.Int
}

type state struct {
	balances        map[host.Address]*account
	checkpoints     *CheckpointStore
	administrator   optional.Option[host.Address]
	totalSupply     uint256.Int
	paused          bool
	mintingDisabled bool
}

func (s *state) clone() *state {
	ret := &state{
		balances:        make(map[host.Address]*account, len(s.balances)),
		checkpoints:     s.checkpoints.clone(),
		administrator:   s.administrator,
		totalSupply:     s.totalSupply,
		paused:          s.paused,
		mintingDisabled: s.mintingDisabled,
	}
	for k, v := range s.balances {
		ret.balances[k] = &account{
			balance:   v.balance,
			approvals: maps.Clone(v.approvals),
		}
	}
	return ret
}

// Token is the governance token contract
type Token struct {
	logger  *slog.Logger
	metrics *tokenMetrics
	state   *state
	address host.Address
}

type TokenOptionFunc func(*Token)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) TokenOptionFunc {
	return func(t *Token) {
		t.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) TokenOptionFunc {
	return func(t *Token) {
		if registry != nil {
			t.metrics = newTokenMetrics(registry)
		}
	}
}

// WithAdministrator sets the initial token administrator
func WithAdministrator(admin host.Address) TokenOptionFunc {
	return func(t *Token) {
		t.state.administrator = optional.Some(admin)
	}
}

// New creates a token contract deployed at addr
func New(addr host.Address, opts ...TokenOptionFunc) *Token {
	t := &Token{
		address: addr,
		state: &state{
			balances:      make(map[host.Address]*account),
			checkpoints:   NewCheckpointStore(),
			administrator: optional.None[host.Address](),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return t
}

func (t *Token) Address() host.Address {
	return t.address
}

func (t *Token) Snapshot() any {
	return t.state.clone()
}

func (t *Token) Restore(snapshot any) {
	t.state = snapshot.(*state)
	t.metrics.discard()
}

// Commit publishes the metrics of a committed call
func (t *Token) Commit() {
	t.metrics.commit()
}

// Call dispatches an entrypoint by name
func (t *Token) Call(
	ctx host.Context,
	entrypoint string,
	param any,
) ([]host.Operation, error) {
	if err := ctx.RequireNoAmount(); err != nil {
		return nil, err
	}
	switch entrypoint {
	case EntrypointTransfer:
		p, err := host.Param[TransferParams](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, t.Transfer(ctx, p)
	case EntrypointApprove:
		p, err := host.Param[ApproveParams](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, t.Approve(ctx, p)
	case EntrypointMint:
		p, err := host.Param[MintParams](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, t.Mint(ctx, p)
	case EntrypointGetPriorBalance:
		p, err := host.Param[PriorBalanceRequest](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return t.GetPriorBalance(ctx, p)
	case EntrypointDisableMinting:
		return nil, t.DisableMinting(ctx)
	case EntrypointSetAdministrator:
		p, err := host.Param[optional.Option[host.Address]](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, t.SetAdministrator(ctx, p)
	case EntrypointSetPause:
		p, err := host.Param[bool](entrypoint, param)
		if err != nil {
			return nil, err
		}
		return nil, t.SetPause(ctx, p)
	}
	return nil, host.UnknownEntrypoint(t.address, entrypoint)
}

// Transfer moves value from p.From to p.To. The administrator may move any
// funds; other senders need to own the funds or hold a sufficient allowance,
// and are refused while the token is paused
func (t *Token) Transfer(ctx host.Context, p TransferParams) error {
	isAdmin := t.isAdministrator(ctx.Sender)
	if !isAdmin {
		if t.state.paused {
			return ErrNotAllowed
		}
		if p.From != ctx.Sender {
			allowance := t.Allowance(p.From, ctx.Sender)
			if allowance.Lt(&p.Value) {
				return ErrNotAllowed
			}
		}
	}
	from := t.account(p.From)
	if from.balance.Lt(&p.Value) {
		return ErrLowBalance
	}
	// Moving funds to the same account is not a balance change
	if p.From == p.To {
		return nil
	}
	to := t.account(p.To)
	newTo, overflow := new(uint256.Int).AddOverflow(&to.balance, &p.Value)
	if overflow {
		return ErrOverflow
	}
	from.balance.Sub(&from.balance, &p.Value)
	to.balance = *newTo
	if p.From != ctx.Sender && !isAdmin {
		allowance := from.approvals[ctx.Sender]
		allowance.Sub(&allowance, &p.Value)
		from.approvals[ctx.Sender] = allowance
	}
	t.writeCheckpoint(ctx, p.From, from.balance)
	t.writeCheckpoint(ctx, p.To, to.balance)
	t.metrics.stage(func(m *tokenMetrics) { m.transfers.Inc() })
	return nil
}

// Approve sets the allowance of p.Spender over the sender's funds. A
// non-zero allowance must be reset to zero before it can be changed
func (t *Token) Approve(ctx host.Context, p ApproveParams) error {
	if t.state.paused {
		return ErrPaused
	}
	acct := t.account(ctx.Sender)
	current := acct.approvals[p.Spender]
	if !current.IsZero() && !p.Value.IsZero() {
		return ErrUnsafeAllowanceChange
	}
	acct.approvals[p.Spender] = p.Value
	return nil
}

// Mint creates new tokens for p.Address
func (t *Token) Mint(ctx host.Context, p MintParams) error {
	if t.state.mintingDisabled {
		return ErrMintingDisabled
	}
	if !t.isAdministrator(ctx.Sender) {
		return ErrNotAdministrator
	}
	supply, overflow := new(uint256.Int).AddOverflow(&t.state.totalSupply, &p.Value)
	if overflow {
		return ErrOverflow
	}
	acct := t.account(p.Address)
	// Balances never exceed the total supply
	acct.balance.Add(&acct.balance, &p.Value)
	t.state.totalSupply = *supply
	t.writeCheckpoint(ctx, p.Address, acct.balance)
	t.metrics.stage(func(m *tokenMetrics) { m.mints.Inc() })
	return nil
}

// GetPriorBalance answers a balance-as-of request by emitting a call to the
// requested callback
func (t *Token) GetPriorBalance(
	ctx host.Context,
	req PriorBalanceRequest,
) ([]host.Operation, error) {
	bal, err := t.state.checkpoints.PriorBalance(req.Address, req.Level, ctx.Level)
	if err != nil {
		return nil, err
	}
	return []host.Operation{
		{
			Target:     req.Callback.Target,
			Entrypoint: req.Callback.Entrypoint,
			Param: PriorBalanceResult{
				Result:  bal,
				Address: req.Address,
				Level:   req.Level,
			},
		},
	}, nil
}

func (t *Token) DisableMinting(ctx host.Context) error {
	if !t.isAdministrator(ctx.Sender) {
		return ErrNotAdministrator
	}
	t.state.mintingDisabled = true
	return nil
}

// SetAdministrator replaces the administrator. None leaves the token without one
func (t *Token) SetAdministrator(
	ctx host.Context,
	admin optional.Option[host.Address],
) error {
	if !t.isAdministrator(ctx.Sender) {
		return ErrNotAdministrator
	}
	t.state.administrator = admin
	return nil
}

func (t *Token) SetPause(ctx host.Context, paused bool) error {
	if !t.isAdministrator(ctx.Sender) {
		return ErrNotAdministrator
	}
	t.state.paused = paused
	return nil
}

// Balance returns the current balance of addr
func (t *Token) Balance(addr host.Address) uint256.Int {
	if acct, ok := t.state.balances[addr]; ok {
		return acct.balance
	}
	return uint256.Int{}
}

// Allowance returns the amount spender may transfer on behalf of owner
func (t *Token) Allowance(owner, spender host.Address) uint256.Int {
	if acct, ok := t.state.balances[owner]; ok {
		return acct.approvals[spender]
	}
	return uint256.Int{}
}

func (t *Token) TotalSupply() uint256.Int {
	return t.state.totalSupply
}

func (t *Token) Administrator() optional.Option[host.Address] {
	return t.state.administrator
}

func (t *Token) Paused() bool {
	return t.state.paused
}

func (t *Token) MintingDisabled() bool {
	return t.state.mintingDisabled
}

// NumCheckpoints returns the number of checkpoints recorded for addr
func (t *Token) NumCheckpoints(addr host.Address) uint64 {
	n, _ := t.state.checkpoints.NumCheckpoints(addr)
	return n
}

// Checkpoints returns a copy of the checkpoint history for addr
func (t *Token) Checkpoints(addr host.Address) []Checkpoint {
	return t.state.checkpoints.Checkpoints(addr)
}

// PriorBalance is the synchronous form of the getPriorBalance view
func (t *Token) PriorBalance(
	addr host.Address,
	level uint64,
	currentLevel uint64,
) (uint256.Int, error) {
	return t.state.checkpoints.PriorBalance(addr, level, currentLevel)
}

func (t *Token) isAdministrator(addr host.Address) bool {
	admin, err := t.state.administrator.Take()
	return err == nil && admin == addr
}

// account returns the ledger entry for addr, creating an empty one if needed
func (t *Token) account(addr host.Address) *account {
	acct, ok := t.state.balances[addr]
	if !ok {
		acct = &account{approvals: make(map[host.Address]uint256.Int)}
		t.state.balances[addr] = acct
	}
	return acct
}

func (t *Token) writeCheckpoint(
	ctx host.Context,
	addr host.Address,
	newBalance uint256.Int,
) {
	idx, kind := t.state.checkpoints.Write(addr, ctx.Level, newBalance)
	if kind == WriteSkipped {
		return
	}
	t.metrics.stage(func(m *tokenMetrics) {
		m.checkpoints.WithLabelValues(kind.String()).Inc()
	})
	t.logger.Debug(
		"wrote checkpoint",
		"component", "token",
		"account", addr,
		"index", idx,
		"level", ctx.Level,
		"balance", newBalance.Dec(),
		"kind", kind.String(),
	)
	ctx.Emit(
		CheckpointEventType,
		CheckpointEvent{
			Account:    addr,
			Index:      idx,
			Checkpoint: Checkpoint{FromBlock: ctx.Level, Balance: newBalance},
			Replaced:   kind == WriteReplaced,
		},
	)
}
