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

package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type indexerMetrics struct {
	events *prometheus.CounterVec
	errors *prometheus.CounterVec
	level  prometheus.Gauge
}

// newIndexerMetrics builds the indexer metrics. With a nil registry the
// collectors are created but not registered
func newIndexerMetrics(promRegistry prometheus.Registerer) *indexerMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &indexerMetrics{
		events: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "murmur_indexer_events_total",
				Help: "total events indexed by type",
			},
			[]string{"type"},
		),
		errors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "murmur_indexer_errors_total",
				Help: "events that failed to index by type",
			},
			[]string{"type"},
		),
		level: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "murmur_indexer_level",
				Help: "chain level of the last indexed commit",
			},
		),
	}
}
