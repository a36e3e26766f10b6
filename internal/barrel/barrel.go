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

// Package barrel implements the Barrel service: an independent index
// replica holding one indexstore.Store behind a single mutex. Barrels
// never talk to each other; replication and fan-out are the Gateway's
// loadbalancer's job.
package barrel

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"distsearch/internal/indexstore"
	"distsearch/internal/metrics"
	"distsearch/internal/page"
	"distsearch/internal/rpc"
)

// Barrel owns one IndexStore and its persistence sink.
type Barrel struct {
	address   string
	persister indexstore.Persister
	log       *slog.Logger
	metrics   *metrics.Barrel

	mu    sync.Mutex
	store *indexstore.Store
	size  int64
}

// Open loads (or creates) the index at persister and returns a ready
// Barrel listening logically at address (used only in Health's response).
func Open(ctx context.Context, address string, persister indexstore.Persister, log *slog.Logger) (*Barrel, error) {
	if log == nil {
		log = slog.Default()
	}
	store, err := indexstore.Load(ctx, persister)
	if err != nil {
		return nil, err
	}
	return &Barrel{address: address, persister: persister, log: log, store: store, metrics: metrics.NewBarrel()}, nil
}

// Metrics exposes the Barrel's Prometheus registry for /metrics handlers.
func (b *Barrel) Metrics() *metrics.Barrel { return b.metrics }

// Health returns a static liveness descriptor naming this Barrel's address.
func (b *Barrel) Health(context.Context, rpc.HealthRequest) (rpc.HealthResponse, error) {
	return rpc.HealthResponse{Status: "OK, listening at " + b.address}, nil
}

// Status returns a static "OK" descriptor, per the RPC surface.
func (b *Barrel) Status(context.Context, rpc.BarrelStatusRequest) (rpc.BarrelStatusResponse, error) {
	return rpc.BarrelStatusResponse{Status: "OK"}, nil
}

// Index stores a page's words and outlinks. Malformed outlink URLs are
// dropped with a log entry rather than aborting the call. A save failure is
// logged and swallowed: the in-memory write is never rolled back, and the
// response reports the last successful on-disk size.
func (b *Barrel) Index(ctx context.Context, req rpc.IndexRequest) (rpc.IndexResponse, error) {
	outlinks := make([]string, 0, len(req.Outlinks))
	for _, raw := range req.Outlinks {
		if _, err := url.Parse(raw); err != nil {
			b.log.Warn("dropping malformed outlink", "url", raw, "error", err)
			continue
		}
		outlinks = append(outlinks, raw)
	}

	p := req.Page.ToPage(time.Now())

	b.mu.Lock()
	b.store.Store(p, req.Words, outlinks)
	n, err := b.store.Save(ctx, b.persister)
	if err != nil {
		b.log.Error("index snapshot save failed, keeping in-memory state", "error", err)
		b.metrics.SaveFailures.Inc()
	} else {
		b.size = n
		b.metrics.SnapshotBytes.Set(float64(n))
	}
	size := b.size
	b.mu.Unlock()
	b.metrics.PagesIndexed.Inc()

	return rpc.IndexResponse{SizeBytes: uint64(size)}, nil
}

// Search delegates to IndexStore.SearchByRelevance.
func (b *Barrel) Search(_ context.Context, req rpc.SearchRequest) (rpc.SearchResponse, error) {
	b.metrics.SearchRequests.Inc()
	b.mu.Lock()
	pages := b.store.SearchByRelevance(req.Words)
	b.mu.Unlock()

	return rpc.SearchResponse{Status: rpc.Success, Pages: toDTOs(pages)}, nil
}

// ConsultBacklinks returns the URLs that link to req.URL, or InvalidUrl if
// the URL does not parse.
func (b *Barrel) ConsultBacklinks(_ context.Context, req rpc.BacklinksRequest) (rpc.BacklinksResponse, error) {
	if _, err := url.Parse(req.URL); err != nil || req.URL == "" {
		return rpc.BacklinksResponse{Status: rpc.InvalidUrl}, nil
	}
	b.mu.Lock()
	backlinks := b.store.ConsultBacklinks(req.URL)
	b.mu.Unlock()
	return rpc.BacklinksResponse{Status: rpc.Success, Backlinks: backlinks}, nil
}

// ConsultOutlinks returns the URLs that req.URL links to, or InvalidUrl if
// the URL does not parse.
func (b *Barrel) ConsultOutlinks(_ context.Context, req rpc.OutlinksRequest) (rpc.OutlinksResponse, error) {
	if _, err := url.Parse(req.URL); err != nil || req.URL == "" {
		return rpc.OutlinksResponse{Status: rpc.InvalidUrl}, nil
	}
	b.mu.Lock()
	outlinks := b.store.ConsultOutlinks(req.URL)
	b.mu.Unlock()
	return rpc.OutlinksResponse{Status: rpc.Success, Outlinks: outlinks}, nil
}

// SizeBytes reports the size in bytes of the last successfully saved
// snapshot, for the status stream.
func (b *Barrel) SizeBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// RegisterRPC wires every Barrel RPC method onto srv.
func RegisterRPC(srv *rpc.Server, b *Barrel) {
	rpc.Handle(srv, "Health", b.Health)
	rpc.Handle(srv, "Status", b.Status)
	rpc.Handle(srv, "Index", b.Index)
	rpc.Handle(srv, "Search", b.Search)
	rpc.Handle(srv, "ConsultBacklinks", b.ConsultBacklinks)
	rpc.Handle(srv, "ConsultOutlinks", b.ConsultOutlinks)
}

func toDTOs(pages []page.Page) []rpc.PageDTO {
	out := make([]rpc.PageDTO, len(pages))
	for i, p := range pages {
		out[i] = rpc.FromPage(p)
	}
	return out
}
