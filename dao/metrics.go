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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type daoMetrics struct {
	proposals prometheus.Counter
	votes     *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	quorum    prometheus.Gauge
	pending   []func(*daoMetrics)
}

// stage queues a metric update until the enclosing call commits
func (m *daoMetrics) stage(fn func(*daoMetrics)) {
	if m == nil {
		return
	}
	m.pending = append(m.pending, fn)
}

func (m *daoMetrics) commit() {
	if m == nil {
		return
	}
	for _, fn := range m.pending {
		fn(m)
	}
	m.pending = nil
}

func (m *daoMetrics) discard() {
	if m == nil {
		return
	}
	m.pending = nil
}

func newDaoMetrics(promRegistry prometheus.Registerer) *daoMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &daoMetrics{
		proposals: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "murmur_dao_proposals_total",
			Help: "total polls opened",
		}),
		votes: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "murmur_dao_votes_total",
				Help: "total votes tallied by value",
			},
			[]string{"value"},
		),
		outcomes: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "murmur_dao_outcomes_total",
				Help: "poll outcome transitions by outcome",
			},
			[]string{"outcome"},
		),
		quorum: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "murmur_dao_quorum",
			Help: "current quorum",
		}),
	}
}
