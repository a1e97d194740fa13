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

package dao

import (
	"fmt"

	"github.com/blinklabs-io/murmuration/host"
	"github.com/moznion/go-optional"
)

// ExecuteTimelock runs the pending proposal. Only its author may execute
// it, and only after its end block. The proposal's operations run after
// this call with the DAO as sender
func (d *Dao) ExecuteTimelock(ctx host.Context) ([]host.Operation, error) {
	if err := ctx.RequireNoAmount(); err != nil {
		return nil, err
	}
	item, err := d.state.timelockItem.Take()
	if err != nil {
		return nil, ErrNoItemInTimelock
	}
	if ctx.Sender != item.Author {
		return nil, ErrNotAuthor
	}
	if ctx.Level <= item.EndBlock {
		return nil, ErrTooSoon
	}
	var ops []host.Operation
	if item.Proposal.Lambda != nil {
		ops, err = item.Proposal.Lambda(ctx)
		if err != nil {
			return nil, fmt.Errorf("proposal %d: %w", item.ID, err)
		}
	}
	d.closeTimelock(ctx, item, OutcomeExecuted)
	return ops, nil
}

// CancelTimelock discards the pending proposal without running it. Anyone
// may cancel once the cancel block is reached
func (d *Dao) CancelTimelock(ctx host.Context) error {
	if err := ctx.RequireNoAmount(); err != nil {
		return err
	}
	item, err := d.state.timelockItem.Take()
	if err != nil {
		return ErrNoItemInTimelock
	}
	if ctx.Level < item.CancelBlock {
		return ErrTooSoon
	}
	d.closeTimelock(ctx, item, OutcomeCancelled)
	return nil
}

func (d *Dao) closeTimelock(ctx host.Context, item TimelockItem, outcome Outcome) {
	historical := d.state.outcomes[item.ID]
	historical.Outcome = outcome
	d.state.outcomes[item.ID] = historical
	d.state.timelockItem = optional.None[TimelockItem]()
	d.metrics.stage(func(m *daoMetrics) {
		m.outcomes.WithLabelValues(outcome.String()).Inc()
	})
	d.logger.Info(
		"timelock closed",
		"component", "dao",
		"id", item.ID,
		"outcome", outcome.String(),
		"sender", ctx.Sender,
	)
	evtType := TimelockExecutedEventType
	if outcome == OutcomeCancelled {
		evtType = TimelockCancelledEventType
	}
	ctx.Emit(
		evtType,
		TimelockClosedEvent{
			Item:    item,
			Outcome: outcome,
			Sender:  ctx.Sender,
			Level:   ctx.Level,
		},
	)
}
