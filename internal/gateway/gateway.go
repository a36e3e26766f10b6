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

// Package gateway implements the Gateway service: it composes the URL
// frontier, the LoadBalancer fan-out to Barrels, TopSearches/ResponseTime
// bookkeeping, and the two broadcast-notification channels (queue and
// status) that give DequeueUrl and RealTimeStatus their blocking,
// push-like behavior.
package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"

	"distsearch/internal/frontier"
	"distsearch/internal/loadbalancer"
	"distsearch/internal/metrics"
	"distsearch/internal/notify"
	"distsearch/internal/responsetime"
	"distsearch/internal/rpc"
	"distsearch/internal/topsearches"
)

// Gateway is the coordination-plane process: the single entry point
// Downloaders and Clients talk to.
type Gateway struct {
	address     string
	lb          *loadbalancer.LoadBalancer
	log         *slog.Logger
	interactive bool

	queue       *frontier.Queue
	queueNotify *notify.Broadcast

	statusMu     sync.Mutex
	statusNotify *notify.Broadcast
	topSearches  *topsearches.Counter
	responseTime responsetime.Aggregate

	metrics *metrics.Gateway
}

// New builds a Gateway listening logically at address, fanning out through
// lb, with the given domain filter and seed URLs for its frontier.
func New(address string, lb *loadbalancer.LoadBalancer, filter frontier.DomainFilter, seed []string, interactive bool, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		address:      address,
		lb:           lb,
		log:          log,
		interactive:  interactive,
		queue:        frontier.New(filter, seed),
		queueNotify:  notify.New(),
		statusNotify: notify.New(),
		topSearches:  topsearches.NewCounter(),
		metrics:      metrics.NewGateway(),
	}
}

// Metrics exposes the Gateway's Prometheus registry for /metrics handlers.
func (g *Gateway) Metrics() *metrics.Gateway { return g.metrics }

// Health returns a constant descriptor naming this Gateway's address. In
// interactive mode it first blocks on an operator keypress, an operational
// aid rather than a protocol feature.
func (g *Gateway) Health(context.Context, rpc.HealthRequest) (rpc.HealthResponse, error) {
	if g.interactive {
		fmt.Fprintf(os.Stderr, "Health probe received; press Enter to reply... ")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}
	return rpc.HealthResponse{Status: "OK, listening at " + g.address}, nil
}

// EnqueueUrl admits a URL into the frontier. Invalid URLs never reach the
// queue. On success it wakes both the dequeue waiters and the status
// watchers.
func (g *Gateway) EnqueueUrl(_ context.Context, req rpc.EnqueueRequest) (rpc.EnqueueResponse, error) {
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return rpc.EnqueueResponse{Status: rpc.InvalidUrl}, nil
	}

	status, snapshot := g.queue.Enqueue(req.URL)
	if status == frontier.Success {
		g.queueNotify.Signal()
		g.signalStatus()
	}
	g.metrics.QueueDepth.Set(float64(len(snapshot)))
	return rpc.EnqueueResponse{Status: toWireStatus(status), Queue: snapshot}, nil
}

// DequeueUrl blocks until a URL is available, then returns it and wakes
// status watchers.
func (g *Gateway) DequeueUrl(ctx context.Context, _ rpc.DequeueRequest) (rpc.DequeueResponse, error) {
	for {
		if u, ok := g.queue.Dequeue(); ok {
			g.signalStatus()
			return rpc.DequeueResponse{URL: u}, nil
		}

		select {
		case <-g.queueNotify.Wait():
		case <-ctx.Done():
			return rpc.DequeueResponse{}, ctx.Err()
		}
	}
}

// Index admits a fetched page's outlinks into the frontier, then
// broadcasts the write to every Barrel. Each Barrel's reported index size
// is recorded against its address so RealTimeStatus/GetBarrelsStatus stay
// current. The response itself is always Ok with size_bytes = 0: no single
// Barrel's size is privileged through this call.
func (g *Gateway) Index(ctx context.Context, req rpc.IndexRequest) (rpc.IndexResponse, error) {
	for _, outlink := range req.Outlinks {
		if _, err := url.ParseRequestURI(outlink); err != nil {
			continue
		}
		if status, _ := g.queue.Enqueue(outlink); status == frontier.Success {
			g.queueNotify.Signal()
		}
	}

	result := loadbalancer.Broadcast(g.lb, func(_ string, client *rpc.Client) (rpc.IndexResponse, error) {
		return rpc.Call[rpc.IndexRequest, rpc.IndexResponse](ctx, client, "Index", req)
	})
	if !result.Ok {
		g.log.Error("index broadcast: all barrels offline")
		g.metrics.IndexFanoutAllOffline.Inc()
	} else {
		for i, resp := range result.Responses {
			g.lb.RecordSize(result.Addresses[i], resp.SizeBytes)
		}
	}
	g.metrics.BarrelsOffline.Set(float64(result.OfflineCount))

	g.signalStatus()
	return rpc.IndexResponse{SizeBytes: 0}, nil
}

// Search sends the query to the first responsive Barrel, updates the
// running response-time aggregate and the top-searches counter on success,
// and wakes status watchers.
func (g *Gateway) Search(ctx context.Context, req rpc.SearchRequest) (rpc.SearchResponse, error) {
	result := loadbalancer.SendUntil(g.lb, func(_ string, client *rpc.Client) (rpc.SearchResponse, error) {
		return rpc.Call[rpc.SearchRequest, rpc.SearchResponse](ctx, client, "Search", req)
	})
	if !result.Ok {
		return rpc.SearchResponse{Status: rpc.UnavailableBarrels}, nil
	}
	g.metrics.SearchesServed.Inc()
	g.metrics.ResponseMillis.Observe(result.ResponseTime.MeanMillis)

	g.statusMu.Lock()
	g.responseTime.Update(result.ResponseTime)
	for _, w := range req.Words {
		g.topSearches.AddSearch(w)
	}
	g.statusMu.Unlock()
	g.signalStatus()

	return result.Responses[0], nil
}

// ConsultBacklinks forwards to the first responsive Barrel.
func (g *Gateway) ConsultBacklinks(ctx context.Context, req rpc.BacklinksRequest) (rpc.BacklinksResponse, error) {
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return rpc.BacklinksResponse{Status: rpc.InvalidUrl}, nil
	}
	result := loadbalancer.SendUntil(g.lb, func(_ string, client *rpc.Client) (rpc.BacklinksResponse, error) {
		return rpc.Call[rpc.BacklinksRequest, rpc.BacklinksResponse](ctx, client, "ConsultBacklinks", req)
	})
	if !result.Ok {
		return rpc.BacklinksResponse{Status: rpc.UnavailableBarrels}, nil
	}
	return result.Responses[0], nil
}

// ConsultOutlinks forwards to the first responsive Barrel.
func (g *Gateway) ConsultOutlinks(ctx context.Context, req rpc.OutlinksRequest) (rpc.OutlinksResponse, error) {
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return rpc.OutlinksResponse{Status: rpc.InvalidUrl}, nil
	}
	result := loadbalancer.SendUntil(g.lb, func(_ string, client *rpc.Client) (rpc.OutlinksResponse, error) {
		return rpc.Call[rpc.OutlinksRequest, rpc.OutlinksResponse](ctx, client, "ConsultOutlinks", req)
	})
	if !result.Ok {
		return rpc.OutlinksResponse{Status: rpc.UnavailableBarrels}, nil
	}
	return result.Responses[0], nil
}

// RealTimeStatus blocks until the next status-change notification, then
// returns one snapshot: top-10 searches, per-Barrel status, mean response
// time, and the current queue. Clients poll this in a loop for a
// push-like stream.
func (g *Gateway) RealTimeStatus(ctx context.Context, _ rpc.RealTimeStatusRequest) (rpc.RealTimeStatusResponse, error) {
	select {
	case <-g.statusNotify.Wait():
	case <-ctx.Done():
		return rpc.RealTimeStatusResponse{}, ctx.Err()
	}
	return g.snapshotStatus(), nil
}

func (g *Gateway) snapshotStatus() rpc.RealTimeStatusResponse {
	g.statusMu.Lock()
	top := g.topSearches.TopN(10)
	avg := float32(g.responseTime.MeanMillis)
	g.statusMu.Unlock()

	words := make([]string, len(top))
	for i, e := range top {
		words[i] = e.Word
	}

	barrels := g.lb.GetBarrelsStatus()
	wireBarrels := make([]rpc.BarrelStatus, len(barrels))
	for i, b := range barrels {
		wireBarrels[i] = rpc.BarrelStatus{Address: b.Address, Online: b.Online, IndexSizeBytes: b.SizeBytes}
	}

	return rpc.RealTimeStatusResponse{
		Top10Searches:     words,
		Barrels:           wireBarrels,
		AvgResponseTimeMs: avg,
		Queue:             g.queue.Snapshot(),
	}
}

func (g *Gateway) signalStatus() {
	g.statusNotify.Signal()
}

// unimplementedError is returned by the three RPC methods reserved for a
// future protocol revision (§6: BroadcastIndex / RequestIndex / Status).
var unimplementedError = errors.New("rpc: " + rpc.Unimplemented.String())

// BroadcastIndex, RequestIndex, and Status are reserved for a future
// protocol revision.
func (g *Gateway) BroadcastIndex(context.Context, rpc.IndexRequest) (rpc.IndexResponse, error) {
	g.metrics.UnimplementedHit.Inc()
	return rpc.IndexResponse{}, unimplementedError
}

func (g *Gateway) RequestIndex(context.Context, rpc.DequeueRequest) (rpc.DequeueResponse, error) {
	g.metrics.UnimplementedHit.Inc()
	return rpc.DequeueResponse{}, unimplementedError
}

func (g *Gateway) Status(context.Context, rpc.BarrelStatusRequest) (rpc.BarrelStatusResponse, error) {
	g.metrics.UnimplementedHit.Inc()
	return rpc.BarrelStatusResponse{}, unimplementedError
}

func toWireStatus(s frontier.Status) rpc.Status {
	switch s {
	case frontier.Success:
		return rpc.Success
	case frontier.AlreadyIndexedUrl:
		return rpc.AlreadyIndexedUrl
	default:
		return rpc.Error
	}
}

// RegisterRPC wires every Gateway RPC method onto srv.
func RegisterRPC(srv *rpc.Server, g *Gateway) {
	rpc.Handle(srv, "Health", g.Health)
	rpc.Handle(srv, "EnqueueUrl", g.EnqueueUrl)
	rpc.Handle(srv, "DequeueUrl", g.DequeueUrl)
	rpc.Handle(srv, "Index", g.Index)
	rpc.Handle(srv, "Search", g.Search)
	rpc.Handle(srv, "ConsultBacklinks", g.ConsultBacklinks)
	rpc.Handle(srv, "ConsultOutlinks", g.ConsultOutlinks)
	rpc.Handle(srv, "RealTimeStatus", g.RealTimeStatus)
	rpc.Handle(srv, "BroadcastIndex", g.BroadcastIndex)
	rpc.Handle(srv, "RequestIndex", g.RequestIndex)
	rpc.Handle(srv, "Status", g.Status)
}
