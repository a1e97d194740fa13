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

// Package host provides the deterministic execution environment the
// governance contracts run in: addresses, per-call contexts, internal
// operations and an atomic, single-threaded chain that applies them.
package host

import (
	"github.com/blinklabs-io/murmuration/event"
)

// Address identifies an account or a contract
type Address string

func (a Address) String() string {
	return string(a)
}

// Context describes the invocation of a single entrypoint
type Context struct {
	// Sender is the immediate caller. For operations emitted by a contract
	// this is the emitting contract
	Sender Address
	// Self is the address of the contract being called
	Self Address
	// Amount is the native value attached to the call
	Amount uint64
	// Level is the current block level
	Level uint64

	events *[]event.Event
}

// Emit records an event that is published once the enclosing top-level
// call commits. Events emitted outside a chain are dropped
func (c Context) Emit(eventType event.EventType, data any) {
	if c.events == nil {
		return
	}
	*c.events = append(*c.events, event.NewEvent(eventType, data))
}

// WithEventSink returns a copy of the context that records emitted events
// into sink
func (c Context) WithEventSink(sink *[]event.Event) Context {
	c.events = sink
	return c
}

// RequireNoAmount fails with ErrBadAmount when value was attached to the call
func (c Context) RequireNoAmount() error {
	if c.Amount != 0 {
		return ErrBadAmount
	}
	return nil
}

// Operation is an internal transaction emitted by a contract
type Operation struct {
	Param      any
	Target     Address
	Entrypoint string
	Amount     uint64
}

// Callback names an entrypoint that receives the response of a view request
type Callback struct {
	Target     Address
	Entrypoint string
}

// Committer is implemented by contracts that defer side effects outside
// their state, such as metrics, until a call commits
type Committer interface {
	Commit()
}

// Contract is implemented by every contract the chain can dispatch to
type Contract interface {
	Address() Address
	// Call runs an entrypoint and returns the operations it emits
	Call(ctx Context, entrypoint string, param any) ([]Operation, error)
	// Snapshot returns a deep copy of the contract state
	Snapshot() any
	// Restore replaces the contract state with a value returned by Snapshot
	Restore(snapshot any)
}
