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
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/prometheus/client_golang/prometheus"
)

// Runner owns a chain with one token and one DAO built from config
type Runner struct {
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	eventBus     *event.EventBus
	cfg          *config.Config
	chain        *host.Chain
	token        *token.Token
	dao          *dao.Dao
	tokenAddress host.Address
	daoAddress   host.Address
}

type RunnerOptionFunc func(*Runner)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) RunnerOptionFunc {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry for contract metrics
func WithPromRegistry(registry prometheus.Registerer) RunnerOptionFunc {
	return func(r *Runner) {
		r.promRegistry = registry
	}
}

// WithEventBus specifies the event bus the chain publishes to
func WithEventBus(eventBus *event.EventBus) RunnerOptionFunc {
	return func(r *Runner) {
		r.eventBus = eventBus
	}
}

func NewRunner(cfg *config.Config, opts ...RunnerOptionFunc) (*Runner, error) {
	r := &Runner{
		cfg:          cfg,
		tokenAddress: host.Address(cfg.TokenAddress),
		daoAddress:   host.Address(cfg.DaoAddress),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if r.eventBus == nil {
		r.eventBus = event.NewEventBus(r.promRegistry, r.logger)
	}
	params, err := cfg.Governance.Parameters()
	if err != nil {
		return nil, err
	}
	quorum, err := cfg.QuorumValue()
	if err != nil {
		return nil, err
	}
	tokenOpts := []token.TokenOptionFunc{
		token.WithLogger(r.logger),
		token.WithPromRegistry(r.promRegistry),
	}
	if cfg.TokenAdministrator != "" {
		tokenOpts = append(tokenOpts, token.WithAdministrator(host.Address(cfg.TokenAdministrator)))
	}
	r.token = token.New(r.tokenAddress, tokenOpts...)
	r.dao = dao.New(
		r.daoAddress,
		r.tokenAddress,
		host.Address(cfg.CommunityFund),
		dao.WithLogger(r.logger),
		dao.WithPromRegistry(r.promRegistry),
		dao.WithParameters(params),
		dao.WithQuorum(quorum),
	)
	r.chain = host.NewChain(
		host.WithLogger(r.logger),
		host.WithEventBus(r.eventBus),
		host.WithLevel(cfg.InitialLevel),
	)
	if err := r.chain.Register(r.token); err != nil {
		return nil, err
	}
	if err := r.chain.Register(r.dao); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) Chain() *host.Chain {
	return r.chain
}

func (r *Runner) Token() *token.Token {
	return r.token
}

func (r *Runner) Dao() *dao.Dao {
	return r.dao
}

func (r *Runner) EventBus() *event.EventBus {
	return r.eventBus
}

// Run executes every step in order. A step whose result differs from its
// expectation stops the run; the report covers the steps run so far
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	report := &Report{Name: s.Name}
	for idx := range s.Steps {
		if err := ctx.Err(); err != nil {
			return r.finish(report), err
		}
		result, err := r.runStep(idx, &s.Steps[idx])
		report.Steps = append(report.Steps, result)
		if err != nil {
			return r.finish(report), fmt.Errorf("step %d (%s): %w", idx, s.Steps[idx].Call, err)
		}
	}
	return r.finish(report), nil
}

func (r *Runner) runStep(idx int, step *Step) (StepResult, error) {
	if step.Level > 0 {
		if err := r.chain.SetLevel(step.Level); err != nil {
			return StepResult{Index: idx, Call: step.Call, Sender: step.Sender}, err
		}
	}
	result := StepResult{
		Index:    idx,
		Level:    r.chain.Level(),
		Sender:   step.Sender,
		Call:     step.Call,
		Expected: step.ExpectError,
	}
	op, err := r.operation(step)
	if err != nil {
		return result, err
	}
	rcpt, callErr := r.chain.Submit(host.Address(step.Sender), op)
	if callErr != nil {
		result.Error = callErr.Error()
	} else {
		result.Operations = len(rcpt.Operations)
		result.Events = len(rcpt.Events)
	}
	r.logger.Debug(
		"scenario step",
		"component", "scenario",
		"index", idx,
		"call", step.Call,
		"sender", step.Sender,
		"level", result.Level,
		"error", callErr,
	)
	switch {
	case step.ExpectError == "" && callErr != nil:
		return result, fmt.Errorf("%w: %w", ErrUnexpectedResult, callErr)
	case step.ExpectError != "" && callErr == nil:
		return result, fmt.Errorf("%w: expected %s, call succeeded", ErrUnexpectedResult, step.ExpectError)
	case step.ExpectError != "" && !hasReason(callErr, step.ExpectError):
		return result, fmt.Errorf(
			"%w: expected %s, got %w",
			ErrUnexpectedResult,
			step.ExpectError,
			callErr,
		)
	}
	return result, nil
}

// hasReason reports whether any error in err's tree has the text reason
func hasReason(err error, reason string) bool {
	if err == nil {
		return false
	}
	if err.Error() == reason {
		return true
	}
	switch e := err.(type) { //nolint:errorlint
	case interface{ Unwrap() error }:
		return hasReason(e.Unwrap(), reason)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if hasReason(inner, reason) {
				return true
			}
		}
	}
	return false
}
