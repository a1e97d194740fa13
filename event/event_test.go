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

package event_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/murmuration/event"
	itestutil "github.com/blinklabs-io/murmuration/internal/test/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSingleSubscriber(t *testing.T) {
	testEvtData := 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	evt := itestutil.RequireReceive(t, subCh, time.Second, "event")
	v, ok := evt.Data.(int)
	require.True(t, ok, "event data was not of expected type, got %T", evt.Data)
	assert.Equal(t, testEvtData, v)
}

func TestEventBusUnsubscribeClosesChannel(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	_, ok := <-subCh
	assert.False(t, ok, "expected closed channel")
	// Publishing with no subscribers is a no-op
	eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
}

func TestEventBusSubscribeFuncStopsOnStop(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	var mu sync.Mutex
	var got []int
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt.Data.(int))
	})
	for i := range 5 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	itestutil.WaitForCondition(
		t,
		func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == 5
		},
		time.Second,
		"handler did not receive all events",
	)
	mu.Lock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	mu.Unlock()
	// Stop closes the channel and lets the handler goroutine exit (goleak)
	eb.Stop()
}

type recordingSubscriber struct {
	events []event.Event
	err    error
	closed int
}

func (r *recordingSubscriber) Deliver(evt event.Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingSubscriber) Close() {
	r.closed++
}

func TestEventBusRegisterSubscriberSynchronous(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	sub := &recordingSubscriber{}
	eb.RegisterSubscriber(testEvtType, sub)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "a"))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "b"))
	require.Len(t, sub.events, 2)
	assert.Equal(t, "a", sub.events[0].Data)
	assert.Equal(t, "b", sub.events[1].Data)
	eb.Stop()
	assert.Equal(t, 1, sub.closed)
}

func TestEventBusFailingSubscriberRemoved(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	sub := &recordingSubscriber{err: errors.New("boom")}
	eb.RegisterSubscriber(testEvtType, sub)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	assert.Equal(t, 1, sub.closed)
	// A second publish does not reach the removed subscriber
	sub.err = nil
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	assert.Empty(t, sub.events)
	count, err := testutil.GatherAndCount(reg, "murmur_event_delivery_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type panickingSubscriber struct{ closed bool }

func (p *panickingSubscriber) Deliver(event.Event) error { panic("boom") }
func (p *panickingSubscriber) Close()                    { p.closed = true }

func TestEventBusPanickingSubscriberRecovered(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	sub := &panickingSubscriber{}
	eb.RegisterSubscriber(testEvtType, sub)
	require.NotPanics(t, func() {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	})
	assert.True(t, sub.closed)
}
