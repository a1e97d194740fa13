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

// Package indexer persists governance events into the database as the
// chain publishes them.
package indexer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/database"
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrUnexpectedEventData = errors.New("unexpected event data")

type Indexer struct {
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	db           *database.Database
	eventBus     *event.EventBus
	metrics      *indexerMetrics
	subIds       map[event.EventType]event.EventSubscriberId
	err          error
	mu           sync.Mutex
}

type IndexerOptionFunc func(*Indexer)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) IndexerOptionFunc {
	return func(i *Indexer) {
		i.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) IndexerOptionFunc {
	return func(i *Indexer) {
		i.promRegistry = registry
	}
}

func New(
	db *database.Database,
	eventBus *event.EventBus,
	opts ...IndexerOptionFunc,
) *Indexer {
	i := &Indexer{
		db:       db,
		eventBus: eventBus,
		subIds:   make(map[event.EventType]event.EventSubscriberId),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	i.metrics = newIndexerMetrics(i.promRegistry)
	return i
}

// Start subscribes the indexer to every governance event type
func (i *Indexer) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	handlers := map[event.EventType]func(event.Event) error{
		event.BlockAdvancedEventType:   i.handleBlockAdvanced,
		token.CheckpointEventType:      i.handleCheckpoint,
		dao.PollOpenedEventType:        i.handlePollOpened,
		dao.VoteTalliedEventType:       i.handleVoteTallied,
		dao.PollClosedEventType:        i.handlePollClosed,
		dao.TimelockExecutedEventType:  i.handleTimelockClosed,
		dao.TimelockCancelledEventType: i.handleTimelockClosed,
		dao.ParametersUpdatedEventType: i.handleParametersUpdated,
	}
	for evtType, fn := range handlers {
		if _, ok := i.subIds[evtType]; ok {
			continue
		}
		i.subIds[evtType] = i.eventBus.RegisterSubscriber(
			evtType,
			&subscriber{indexer: i, handler: fn},
		)
	}
	i.logger.Debug(
		"indexer started",
		"component", "indexer",
		"subscriptions", len(i.subIds),
	)
}

// Stop removes the indexer's subscriptions
func (i *Indexer) Stop() {
	i.mu.Lock()
	subIds := i.subIds
	i.subIds = make(map[event.EventType]event.EventSubscriberId)
	i.mu.Unlock()
	for evtType, subId := range subIds {
		i.eventBus.Unsubscribe(evtType, subId)
	}
}

// Err returns the first error that stopped indexing of an event type, if any
func (i *Indexer) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

func (i *Indexer) fail(evtType event.EventType, err error) error {
	err = fmt.Errorf("index %s: %w", evtType, err)
	i.mu.Lock()
	if i.err == nil {
		i.err = err
	}
	// The bus drops a subscriber whose delivery fails
	delete(i.subIds, evtType)
	i.mu.Unlock()
	i.metrics.errors.WithLabelValues(string(evtType)).Inc()
	i.logger.Error(
		"failed to index event",
		"component", "indexer",
		"type", evtType,
		"error", err,
	)
	return err
}

// subscriber adapts one indexer handler to the event bus
type subscriber struct {
	indexer *Indexer
	handler func(event.Event) error
}

func (s *subscriber) Deliver(evt event.Event) error {
	if err := s.handler(evt); err != nil {
		return s.indexer.fail(evt.Type, err)
	}
	s.indexer.metrics.events.WithLabelValues(string(evt.Type)).Inc()
	return nil
}

func (s *subscriber) Close() {}

// write runs fn in a read-write transaction stamped with the given chain level
func (i *Indexer) write(level uint64, fn func(*database.Txn) error) error {
	txn := i.db.Transaction(true)
	txn.SetLevel(level)
	if err := txn.Do(fn); err != nil {
		return err
	}
	i.metrics.level.Set(float64(level))
	return nil
}

func eventData[T any](evt event.Event) (T, error) {
	data, ok := evt.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf(
			"%w: wanted %T, got %T",
			ErrUnexpectedEventData,
			zero,
			evt.Data,
		)
	}
	return data, nil
}
