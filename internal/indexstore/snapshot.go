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
	"encoding/json"
	"fmt"

	"distsearch/internal/page"
)

// snapshot is the wire/disk shape of a Store. Field names follow the
// persisted-state table: indexed_pages, url2pages, index, invert_index,
// backlinks, outlinks. filepath and sizeBytes are runtime-only and never
// appear here.
type snapshot struct {
	IndexedPages map[string]page.Page        `json:"indexed_pages"`
	URL2Pages    map[string]page.Page        `json:"url2pages"`
	Index        map[string][]string         `json:"index"`
	InvertIndex  map[string][]string         `json:"invert_index"`
	Backlinks    map[string][]string         `json:"backlinks"`
	Outlinks     map[string][]string         `json:"outlinks"`
}

func (s *Store) toSnapshot() snapshot {
	snap := snapshot{
		IndexedPages: s.indexedPages,
		URL2Pages:    s.urlToPage,
		Index:        make(map[string][]string, len(s.forwardIndex)),
		InvertIndex:  make(map[string][]string, len(s.invertedIndex)),
		Backlinks:    make(map[string][]string, len(s.backlinks)),
		Outlinks:     make(map[string][]string, len(s.outlinks)),
	}
	for w, urls := range s.forwardIndex {
		snap.Index[w] = urls.slice()
	}
	for u, words := range s.invertedIndex {
		snap.InvertIndex[u] = words.slice()
	}
	for u, urls := range s.backlinks {
		snap.Backlinks[u] = urls.slice()
	}
	for u, urls := range s.outlinks {
		snap.Outlinks[u] = urls.slice()
	}
	return snap
}

func fromSnapshot(snap snapshot) *Store {
	s := New()
	if snap.IndexedPages != nil {
		s.indexedPages = snap.IndexedPages
	}
	if snap.URL2Pages != nil {
		s.urlToPage = snap.URL2Pages
	}
	for w, urls := range snap.Index {
		set := make(urlSet, len(urls))
		for _, u := range urls {
			set.add(u)
		}
		s.forwardIndex[w] = set
	}
	for u, words := range snap.InvertIndex {
		set := make(urlSet, len(words))
		for _, w := range words {
			set.add(w)
		}
		s.invertedIndex[u] = set
	}
	for u, urls := range snap.Backlinks {
		set := make(urlSet, len(urls))
		for _, o := range urls {
			set.add(o)
		}
		s.backlinks[u] = set
	}
	for u, urls := range snap.Outlinks {
		set := make(urlSet, len(urls))
		for _, o := range urls {
			set.add(o)
		}
		s.outlinks[u] = set
	}
	return s
}

// Persister is the minimal storage abstraction a Store saves to and loads
// from: a single full-snapshot blob, written and read atomically. This
// mirrors the teacher's persistence.IdempotentPersister shape, simplified
// since a full-file snapshot has no per-key idempotency concern.
type Persister interface {
	// Save writes data as the entire current snapshot, replacing whatever
	// was there before.
	Save(ctx context.Context, data []byte) error
	// Load reads back the most recent snapshot. ok is false if nothing has
	// been saved yet (a fresh Barrel), which is not an error.
	Load(ctx context.Context) (data []byte, ok bool, err error)
}

// Save serializes the whole Store as JSON and writes it via persister.
// It records the number of bytes written in sizeBytes and returns it.
func (s *Store) Save(ctx context.Context, persister Persister) (int64, error) {
	data, err := json.Marshal(s.toSnapshot())
	if err != nil {
		return s.sizeBytes, fmt.Errorf("marshal index snapshot: %w", err)
	}
	if err := persister.Save(ctx, data); err != nil {
		return s.sizeBytes, fmt.Errorf("save index snapshot: %w", err)
	}
	s.sizeBytes = int64(len(data))
	return s.sizeBytes, nil
}

// pathed is implemented by Persisters that have a stable path or key a
// loaded Store should be bound to (FilePersister, RedisPersister).
type pathed interface {
	Path() string
}

// Load reads a Store back via persister. If nothing has been saved yet, it
// returns a fresh empty Store rather than an error. A malformed snapshot is
// a fatal error the caller should treat as such (Barrel startup aborts). If
// persister reports a path or key through a Path() method (FilePersister and
// RedisPersister do), the returned Store is bound to it; otherwise the
// Store's Path() is empty.
func Load(ctx context.Context, persister Persister) (*Store, error) {
	data, ok, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index snapshot: %w", err)
	}

	var s *Store
	if !ok {
		s = New()
	} else {
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse index snapshot: %w", err)
		}
		s = fromSnapshot(snap)
		s.sizeBytes = int64(len(data))
	}

	if p, ok := persister.(pathed); ok {
		s.path = p.Path()
	}
	return s, nil
}
