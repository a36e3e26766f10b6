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

package gateway

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"distsearch/internal/frontier"
	"distsearch/internal/loadbalancer"
	"distsearch/internal/rpc"
)

// fakeBarrel is a minimal in-process stand-in for the barrel package's RPC
// surface, so Gateway tests don't need a real Barrel or IndexStore.
func fakeBarrel(t *testing.T, pages []rpc.PageDTO) *httptest.Server {
	t.Helper()
	srv := rpc.NewServer()
	rpc.Handle(srv, "Index", func(_ context.Context, req rpc.IndexRequest) (rpc.IndexResponse, error) {
		return rpc.IndexResponse{SizeBytes: 123}, nil
	})
	rpc.Handle(srv, "Search", func(_ context.Context, req rpc.SearchRequest) (rpc.SearchResponse, error) {
		return rpc.SearchResponse{Status: rpc.Success, Pages: pages}, nil
	})
	rpc.Handle(srv, "ConsultBacklinks", func(_ context.Context, req rpc.BacklinksRequest) (rpc.BacklinksResponse, error) {
		return rpc.BacklinksResponse{Status: rpc.Success, Backlinks: []string{"https://linker.example/"}}, nil
	})
	rpc.Handle(srv, "ConsultOutlinks", func(_ context.Context, req rpc.OutlinksRequest) (rpc.OutlinksResponse, error) {
		return rpc.OutlinksResponse{Status: rpc.Success, Outlinks: []string{"https://linked.example/"}}, nil
	})
	return httptest.NewServer(srv.Handler())
}

func newTestGateway(t *testing.T, barrelURLs []string) *Gateway {
	t.Helper()
	lb := loadbalancer.New(barrelURLs, nil)
	return New("test-gateway:9000", lb, frontier.DomainFilter{}, nil, false, nil)
}

func TestEnqueueUrlInvalid(t *testing.T) {
	g := newTestGateway(t, nil)
	resp, err := g.EnqueueUrl(context.Background(), rpc.EnqueueRequest{URL: "not a url"})
	if err != nil {
		t.Fatalf("EnqueueUrl() error = %v", err)
	}
	if resp.Status != rpc.InvalidUrl {
		t.Fatalf("EnqueueUrl(invalid) = %v, want InvalidUrl", resp.Status)
	}
}

func TestEnqueueThenDequeue(t *testing.T) {
	g := newTestGateway(t, nil)
	ctx := context.Background()

	enqResp, err := g.EnqueueUrl(ctx, rpc.EnqueueRequest{URL: "https://a.example/"})
	if err != nil || enqResp.Status != rpc.Success {
		t.Fatalf("EnqueueUrl() = (%v, %v)", enqResp, err)
	}

	dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	deqResp, err := g.DequeueUrl(dctx, rpc.DequeueRequest{})
	if err != nil {
		t.Fatalf("DequeueUrl() error = %v", err)
	}
	if deqResp.URL != "https://a.example/" {
		t.Fatalf("DequeueUrl() = %q, want a.example", deqResp.URL)
	}
}

func TestDequeueUrlBlocksUntilEnqueue(t *testing.T) {
	g := newTestGateway(t, nil)

	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		resp, err := g.DequeueUrl(ctx, rpc.DequeueRequest{})
		done <- result{url: resp.URL, err: err}
	}()

	// Give DequeueUrl time to start blocking before enqueuing.
	time.Sleep(20 * time.Millisecond)
	if _, err := g.EnqueueUrl(context.Background(), rpc.EnqueueRequest{URL: "https://late.example/"}); err != nil {
		t.Fatalf("EnqueueUrl() error = %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil || r.url != "https://late.example/" {
			t.Fatalf("DequeueUrl() = (%q, %v), want (late.example, nil)", r.url, r.err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("DequeueUrl() never returned after a matching EnqueueUrl")
	}
}

func TestSearchAllBarrelsOffline(t *testing.T) {
	g := newTestGateway(t, []string{"http://127.0.0.1:1"})
	resp, err := g.Search(context.Background(), rpc.SearchRequest{Words: []string{"go"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Status != rpc.UnavailableBarrels {
		t.Fatalf("Search() with all barrels offline = %v, want UnavailableBarrels", resp.Status)
	}
}

func TestSearchSuccessUpdatesTopSearchesAndResponseTime(t *testing.T) {
	ts := fakeBarrel(t, []rpc.PageDTO{{URL: "https://found.example/"}})
	defer ts.Close()

	g := newTestGateway(t, []string{ts.URL})
	resp, err := g.Search(context.Background(), rpc.SearchRequest{Words: []string{"go", "lang"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Status != rpc.Success || len(resp.Pages) != 1 {
		t.Fatalf("Search() = %+v, want one page", resp)
	}

	g.statusMu.Lock()
	count := g.topSearches.TopN(10)
	rt := g.responseTime
	g.statusMu.Unlock()

	if len(count) != 2 {
		t.Fatalf("topSearches has %d entries, want 2", len(count))
	}
	if rt.Count != 1 {
		t.Fatalf("responseTime.Count = %d, want 1", rt.Count)
	}
}

func TestConsultBacklinksAndOutlinksInvalidURL(t *testing.T) {
	g := newTestGateway(t, nil)
	ctx := context.Background()

	if resp, _ := g.ConsultBacklinks(ctx, rpc.BacklinksRequest{URL: "bad url with spaces"}); resp.Status != rpc.InvalidUrl {
		t.Fatalf("ConsultBacklinks(invalid) = %v, want InvalidUrl", resp.Status)
	}
	if resp, _ := g.ConsultOutlinks(ctx, rpc.OutlinksRequest{URL: "bad url with spaces"}); resp.Status != rpc.InvalidUrl {
		t.Fatalf("ConsultOutlinks(invalid) = %v, want InvalidUrl", resp.Status)
	}
}

func TestConsultBacklinksForwardsToBarrel(t *testing.T) {
	ts := fakeBarrel(t, nil)
	defer ts.Close()

	g := newTestGateway(t, []string{ts.URL})
	resp, err := g.ConsultBacklinks(context.Background(), rpc.BacklinksRequest{URL: "https://a.example/"})
	if err != nil {
		t.Fatalf("ConsultBacklinks() error = %v", err)
	}
	if resp.Status != rpc.Success || len(resp.Backlinks) != 1 {
		t.Fatalf("ConsultBacklinks() = %+v", resp)
	}
}

func TestIndexAdmitsOutlinksAndBroadcasts(t *testing.T) {
	ts := fakeBarrel(t, nil)
	defer ts.Close()

	g := newTestGateway(t, []string{ts.URL})
	resp, err := g.Index(context.Background(), rpc.IndexRequest{
		Page:     rpc.PageDTO{URL: "https://a.example/"},
		Words:    []string{"go"},
		Outlinks: []string{"https://discovered.example/"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if resp.SizeBytes != 0 {
		t.Fatalf("Index() response SizeBytes = %d, want 0 (not surfaced)", resp.SizeBytes)
	}

	if snap := g.queue.Snapshot(); len(snap) != 1 || snap[0] != "https://discovered.example/" {
		t.Fatalf("queue after Index() = %v, want discovered outlink admitted", snap)
	}

	status := g.lb.GetBarrelsStatus()
	if len(status) != 1 || status[0].SizeBytes != 123 {
		t.Fatalf("GetBarrelsStatus() = %+v, want SizeBytes=123 from the Index response", status)
	}
}

func TestIndexAllBarrelsOfflineIncrementsFanoutMetric(t *testing.T) {
	g := newTestGateway(t, []string{"http://127.0.0.1:1"})

	before := testutil.ToFloat64(g.metrics.IndexFanoutAllOffline)
	if _, err := g.Index(context.Background(), rpc.IndexRequest{Page: rpc.PageDTO{URL: "https://a.example/"}}); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	after := testutil.ToFloat64(g.metrics.IndexFanoutAllOffline)
	if after != before+1 {
		t.Fatalf("IndexFanoutAllOffline = %v, want %v", after, before+1)
	}
}

func TestReservedMethodsAreUnimplemented(t *testing.T) {
	g := newTestGateway(t, nil)
	ctx := context.Background()

	if _, err := g.BroadcastIndex(ctx, rpc.IndexRequest{}); err == nil {
		t.Fatal("BroadcastIndex() returned nil error")
	}
	if _, err := g.RequestIndex(ctx, rpc.DequeueRequest{}); err == nil {
		t.Fatal("RequestIndex() returned nil error")
	}
	if _, err := g.Status(ctx, rpc.BarrelStatusRequest{}); err == nil {
		t.Fatal("Status() returned nil error")
	}
}

func TestRealTimeStatusBlocksUntilSignal(t *testing.T) {
	g := newTestGateway(t, nil)

	type result struct {
		resp rpc.RealTimeStatusResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		resp, err := g.RealTimeStatus(ctx, rpc.RealTimeStatusRequest{})
		done <- result{resp, err}
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := g.EnqueueUrl(context.Background(), rpc.EnqueueRequest{URL: "https://trigger.example/"}); err != nil {
		t.Fatalf("EnqueueUrl() error = %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("RealTimeStatus() error = %v", r.err)
		}
		if len(r.resp.Queue) != 1 {
			t.Fatalf("RealTimeStatus().Queue = %v, want 1 entry", r.resp.Queue)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("RealTimeStatus() never returned after EnqueueUrl signaled")
	}
}
