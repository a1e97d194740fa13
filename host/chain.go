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

package host

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/murmuration/event"
)

const DefaultMaxOperations = 1000

// AppliedOperation records one successfully applied operation
type AppliedOperation struct {
	Sender     Address
	Target     Address
	Entrypoint string
	Depth      int
}

// Receipt describes a committed top-level call
type Receipt struct {
	Operations []AppliedOperation
	Events     []event.Event
	Level      uint64
}

// Chain applies top-level calls one at a time. Each call and every
// operation it emits either commits as a whole or leaves no trace
type Chain struct {
	logger        *slog.Logger
	eventBus      *event.EventBus
	contracts     map[Address]Contract
	level         uint64
	maxOperations int
	mu            sync.Mutex
}

type ChainOptionFunc func(*Chain)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ChainOptionFunc {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithEventBus specifies the event bus that committed events are published to
func WithEventBus(eventBus *event.EventBus) ChainOptionFunc {
	return func(c *Chain) {
		c.eventBus = eventBus
	}
}

// WithLevel specifies the starting block level
func WithLevel(level uint64) ChainOptionFunc {
	return func(c *Chain) {
		c.level = level
	}
}

// WithMaxOperations limits the operations a single top-level call may apply
func WithMaxOperations(maxOperations int) ChainOptionFunc {
	return func(c *Chain) {
		c.maxOperations = maxOperations
	}
}

func NewChain(opts ...ChainOptionFunc) *Chain {
	c := &Chain{
		contracts:     make(map[Address]Contract),
		maxOperations: DefaultMaxOperations,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

// Register adds a contract to the chain
func (c *Chain) Register(contract Contract) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := contract.Address()
	if _, ok := c.contracts[addr]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateContract, addr)
	}
	c.contracts[addr] = contract
	return nil
}

// Contract returns the contract registered at addr
func (c *Chain) Contract(addr Address) (Contract, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	contract, ok := c.contracts[addr]
	return contract, ok
}

// Level returns the current block level
func (c *Chain) Level() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Bake advances the chain by n blocks and returns the new level
func (c *Chain) Bake(n uint64) uint64 {
	c.mu.Lock()
	prev := c.level
	c.level += n
	level := c.level
	c.mu.Unlock()
	if n > 0 {
		c.publish(
			event.NewEvent(
				event.BlockAdvancedEventType,
				event.BlockAdvancedEvent{PreviousLevel: prev, Level: level},
			),
		)
	}
	return level
}

// SetLevel moves the chain to the given level, which must not be lower
// than the current one
func (c *Chain) SetLevel(level uint64) error {
	c.mu.Lock()
	cur := c.level
	c.mu.Unlock()
	if level < cur {
		return fmt.Errorf("%w: %d < %d", ErrLevelRegression, level, cur)
	}
	c.Bake(level - cur)
	return nil
}

// Submit applies a top-level call from sender. On failure every contract the
// call reached is restored to its state before the call and no events are
// published
func (c *Chain) Submit(sender Address, op Operation) (*Receipt, error) {
	rcpt, err := c.submit(sender, op)
	if err != nil {
		c.logger.Debug(
			"call reverted",
			"component", "host",
			"sender", sender,
			"target", op.Target,
			"entrypoint", op.Entrypoint,
			"error", err,
		)
		return nil, err
	}
	c.logger.Debug(
		"call applied",
		"component", "host",
		"sender", sender,
		"target", op.Target,
		"entrypoint", op.Entrypoint,
		"level", rcpt.Level,
		"operations", len(rcpt.Operations),
	)
	for _, evt := range rcpt.Events {
		c.publish(evt)
	}
	return rcpt, nil
}

// callState tracks one top-level call while it is applied
type callState struct {
	rcpt      *Receipt
	snapshots map[Address]any
	touched   []Contract
	count     int
}

func (c *Chain) submit(sender Address, op Operation) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	call := &callState{
		rcpt:      &Receipt{Level: c.level},
		snapshots: make(map[Address]any),
	}
	if err := c.apply(sender, op, 0, call); err != nil {
		for _, contract := range call.touched {
			contract.Restore(call.snapshots[contract.Address()])
		}
		return nil, err
	}
	for _, contract := range call.touched {
		if committer, ok := contract.(Committer); ok {
			committer.Commit()
		}
	}
	return call.rcpt, nil
}

// apply runs op and then, depth-first, each operation it emits. A contract is
// snapshotted the first time the call reaches it
func (c *Chain) apply(
	sender Address,
	op Operation,
	depth int,
	call *callState,
) error {
	call.count++
	if call.count > c.maxOperations {
		return fmt.Errorf("%w: %d", ErrTooManyOperations, c.maxOperations)
	}
	contract, ok := c.contracts[op.Target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContract, op.Target)
	}
	if _, ok := call.snapshots[op.Target]; !ok {
		call.snapshots[op.Target] = contract.Snapshot()
		call.touched = append(call.touched, contract)
	}
	ctx := Context{
		Sender: sender,
		Self:   op.Target,
		Amount: op.Amount,
		Level:  c.level,
		events: &call.rcpt.Events,
	}
	emitted, err := invoke(contract, ctx, op)
	if err != nil {
		return fmt.Errorf("%s%%%s: %w", op.Target, op.Entrypoint, err)
	}
	call.rcpt.Operations = append(
		call.rcpt.Operations,
		AppliedOperation{
			Sender:     sender,
			Target:     op.Target,
			Entrypoint: op.Entrypoint,
			Depth:      depth,
		},
	)
	for _, next := range emitted {
		if err := c.apply(op.Target, next, depth+1, call); err != nil {
			return err
		}
	}
	return nil
}

// invoke calls the contract entrypoint and turns a panic into ErrContractPanic
func invoke(contract Contract, ctx Context, op Operation) (emitted []Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			emitted = nil
			err = fmt.Errorf("%w: %v", ErrContractPanic, r)
		}
	}()
	return contract.Call(ctx, op.Entrypoint, op.Param)
}

func (c *Chain) publish(evt event.Event) {
	if c.eventBus == nil {
		return
	}
	c.eventBus.Publish(evt.Type, evt)
}
