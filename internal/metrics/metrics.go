// Copyright 2025 The Distsearch Authors.
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

// Package metrics exposes the cluster's Prometheus counters and gauges.
// Barrels and Gateways each start their own /metrics endpoint; the two
// roles register distinct metric sets through the same tiny wrapper so
// neither pulls in the other's counters.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Barrel holds the counters a Barrel process reports.
type Barrel struct {
	PagesIndexed   prometheus.Counter
	SaveFailures   prometheus.Counter
	SnapshotBytes  prometheus.Gauge
	SearchRequests prometheus.Counter

	registry *prometheus.Registry
}

// NewBarrel builds and registers a fresh Barrel metric set against its own
// registry, so two Barrels in the same process (as in tests) never collide
// on global metric names.
func NewBarrel() *Barrel {
	reg := prometheus.NewRegistry()
	m := &Barrel{
		PagesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_barrel_pages_indexed_total",
			Help: "Total pages successfully stored via Index.",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_barrel_snapshot_save_failures_total",
			Help: "Total snapshot save failures; the in-memory index keeps serving regardless.",
		}),
		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "distsearch_barrel_snapshot_bytes",
			Help: "Size in bytes of the last successfully saved snapshot.",
		}),
		SearchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_barrel_search_requests_total",
			Help: "Total Search RPCs served.",
		}),
	}
	reg.MustRegister(m.PagesIndexed, m.SaveFailures, m.SnapshotBytes, m.SearchRequests)
	m.registry = reg
	return m
}

// Gateway holds the counters a Gateway process reports.
type Gateway struct {
	SearchesServed        prometheus.Counter
	BarrelsOffline        prometheus.Gauge
	QueueDepth            prometheus.Gauge
	ResponseMillis        prometheus.Histogram
	UnimplementedHit      prometheus.Counter
	IndexFanoutAllOffline prometheus.Counter

	registry *prometheus.Registry
}

// NewGateway builds and registers a fresh Gateway metric set.
func NewGateway() *Gateway {
	reg := prometheus.NewRegistry()
	m := &Gateway{
		SearchesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_gateway_searches_served_total",
			Help: "Total Search RPCs answered with at least one online Barrel.",
		}),
		BarrelsOffline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "distsearch_gateway_barrels_offline",
			Help: "Number of Barrels marked offline as of the last fan-out.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "distsearch_gateway_queue_depth",
			Help: "Number of URLs currently waiting in the frontier queue.",
		}),
		ResponseMillis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "distsearch_gateway_response_millis",
			Help:    "Per-call Barrel response time, in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
		UnimplementedHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_gateway_unimplemented_calls_total",
			Help: "Total calls to the three reserved Gateway RPC methods.",
		}),
		IndexFanoutAllOffline: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distsearch_gateway_index_fanout_all_offline_total",
			Help: "Total Index broadcasts where every Barrel was offline, silently dropping the write.",
		}),
		registry: reg,
	}
	reg.MustRegister(m.SearchesServed, m.BarrelsOffline, m.QueueDepth, m.ResponseMillis, m.UnimplementedHit, m.IndexFanoutAllOffline)
	return m
}

func (b *Barrel) registryHandler() http.Handler {
	return promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{})
}

func (g *Gateway) registryHandler() http.Handler {
	return promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{})
}

// Serve starts a background HTTP server exposing /metrics for h at addr.
// Errors from the listener are not surfaced; the caller logs around this
// call instead, matching the rest of the cluster's style.
func Serve(addr string, h http.Handler) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.ListenAndServe()
	}()
}

// Handler exposes the metric registry as an http.Handler, for embedding in
// an existing mux instead of a standalone listener.
func (b *Barrel) Handler() http.Handler  { return b.registryHandler() }
func (g *Gateway) Handler() http.Handler { return g.registryHandler() }
