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

package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type tokenMetrics struct {
	checkpoints *prometheus.CounterVec
	transfers   prometheus.Counter
	mints       prometheus.Counter
	pending     []func(*tokenMetrics)
}

// stage queues a metric update until the enclosing call commits
func (m *tokenMetrics) stage(fn func(*tokenMetrics)) {
	if m == nil {
		return
	}
	m.pending = append(m.pending, fn)
}

func (m *tokenMetrics) commit() {
	if m == nil {
		return
	}
	for _, fn := range m.pending {
		fn(m)
	}
	m.pending = nil
}

func (m *tokenMetrics) discard() {
	if m == nil {
		return
	}
	m.pending = nil
}

func newTokenMetrics(promRegistry prometheus.Registerer) *tokenMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &tokenMetrics{
		checkpoints: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "murmur_token_checkpoints_total",
				Help: "checkpoint writes by kind (appended or replaced)",
			},
			[]string{"kind"},
		),
		transfers: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "murmur_token_transfers_total",
			Help: "total balance-changing transfers",
		}),
		mints: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "murmur_token_mints_total",
			Help: "total mint operations",
		}),
	}
}
