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

package barrel

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"distsearch/internal/indexstore"
	"distsearch/internal/rpc"
)

func newTestBarrel(t *testing.T) *Barrel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	persister := indexstore.NewFilePersister(path)

	b, err := Open(context.Background(), "test-barrel:9001", persister, slog.Default())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return b
}

func TestHealthReportsAddress(t *testing.T) {
	b := newTestBarrel(t)
	resp, err := b.Health(context.Background(), rpc.HealthRequest{})
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if resp.Status != "OK, listening at test-barrel:9001" {
		t.Fatalf("Health() = %q", resp.Status)
	}
}

func TestIndexThenSearch(t *testing.T) {
	b := newTestBarrel(t)
	ctx := context.Background()

	indexResp, err := b.Index(ctx, rpc.IndexRequest{
		Page:     rpc.PageDTO{URL: "https://a.example/", Title: "A"},
		Words:    []string{"go", "search"},
		Outlinks: []string{"https://b.example/", "not a url but still a string"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if indexResp.SizeBytes == 0 {
		t.Fatal("Index() reported SizeBytes = 0 after a successful save")
	}

	searchResp, err := b.Search(ctx, rpc.SearchRequest{Words: []string{"go"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if searchResp.Status != rpc.Success || len(searchResp.Pages) != 1 {
		t.Fatalf("Search() = %+v, want one page", searchResp)
	}
}

func TestIndexDropsMalformedOutlinkButStillIndexes(t *testing.T) {
	b := newTestBarrel(t)
	ctx := context.Background()

	if _, err := b.Index(ctx, rpc.IndexRequest{
		Page:     rpc.PageDTO{URL: "https://a.example/"},
		Words:    []string{"ok"},
		Outlinks: []string{"http://%zz/bad-escape"},
	}); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	out := b.store.ConsultOutlinks("https://a.example/")
	if len(out) != 0 {
		t.Fatalf("ConsultOutlinks() = %v, want empty (malformed outlink dropped)", out)
	}
}

func TestConsultBacklinksInvalidURL(t *testing.T) {
	b := newTestBarrel(t)
	resp, err := b.ConsultBacklinks(context.Background(), rpc.BacklinksRequest{URL: ""})
	if err != nil {
		t.Fatalf("ConsultBacklinks() error = %v", err)
	}
	if resp.Status != rpc.InvalidUrl {
		t.Fatalf("ConsultBacklinks(\"\") = %v, want InvalidUrl", resp.Status)
	}
}

func TestStatusIsStaticOK(t *testing.T) {
	b := newTestBarrel(t)
	resp, _ := b.Status(context.Background(), rpc.BarrelStatusRequest{})
	if resp.Status != "OK" {
		t.Fatalf("Status() = %q, want OK", resp.Status)
	}
}
