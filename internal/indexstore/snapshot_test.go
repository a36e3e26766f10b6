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

package indexstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"distsearch/internal/page"
)

// memPersister is an in-memory Persister stand-in for FilePersister/
// RedisPersister, used so snapshot round-trip tests don't touch disk.
type memPersister struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func (m *memPersister) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.ok = true
	return nil
}

func (m *memPersister) Load(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.ok, nil
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}

	s := New()
	s.Store(page.Page{URL: "https://a.example/", Title: "A", Timestamp: time.Now()}, []string{"go", "lang"}, []string{"https://b.example/"})

	n, err := s.Save(ctx, p)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if n == 0 {
		t.Fatalf("Save() wrote 0 bytes")
	}

	loaded, err := Load(ctx, p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	pages := loaded.Search([]string{"go", "lang"})
	if len(pages) != 1 || pages[0].URL != "https://a.example/" {
		t.Fatalf("Load().Search() = %v, want [a.example]", pages)
	}
	if got := loaded.ConsultOutlinks("https://a.example/"); len(got) != 1 || got[0] != "https://b.example/" {
		t.Fatalf("Load().ConsultOutlinks() = %v, want [b.example]", got)
	}
	if loaded.SizeBytes() != n {
		t.Fatalf("loaded.SizeBytes() = %d, want %d", loaded.SizeBytes(), n)
	}
}

func TestLoadAbsentSnapshotReturnsEmptyStore(t *testing.T) {
	loaded, err := Load(context.Background(), &memPersister{})
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if pages := loaded.Search([]string{"anything"}); pages != nil {
		t.Fatalf("Load() on absent snapshot returned non-empty store: %v", pages)
	}
}

func TestLoadMalformedSnapshotIsFatal(t *testing.T) {
	p := &memPersister{data: []byte("{not json"), ok: true}
	if _, err := Load(context.Background(), p); err == nil {
		t.Fatalf("Load() with malformed snapshot returned nil error, want error")
	}
}
