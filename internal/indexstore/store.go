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

// Package indexstore implements the per-Barrel inverted index: a forward
// index (word -> URLs), an inverted index (URL -> words), and the backlink
// and outlink adjacency maps, snapshotted as a single JSON document.
//
// Store itself holds no lock. Callers that share a Store across goroutines
// (the Barrel service does) are responsible for serializing access; this
// mirrors the teacher's core.Store, which instead relies on sync.Map for its
// own concurrency and leaves locking decisions to callers one layer up.
package indexstore

import (
	"sort"

	"distsearch/internal/page"
	"distsearch/internal/wordset"
)

const dayLayout = "2006-01-02"

type urlSet map[string]struct{}

func (s urlSet) add(u string) {
	s[u] = struct{}{}
}

func (s urlSet) slice() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Store is the atomic unit persisted to disk (or to whichever Persister
// backs it): indexed pages, the forward/inverted index, and the link graph.
// filepath/sizeBytes are deliberately not part of the serialized snapshot.
type Store struct {
	indexedPages map[string]page.Page // keyed by "url|YYYY-MM-DD"
	urlToPage    map[string]page.Page
	forwardIndex map[string]urlSet // word -> URLs
	invertedIndex map[string]urlSet // url -> words
	backlinks    map[string]urlSet // url -> URLs linking to it
	outlinks     map[string]urlSet // url -> URLs it links to

	path      string // transient: where/how this store persists
	sizeBytes int64  // transient: bytes of the last successful Save/Load
}

// New returns an empty Store bound to no backing path.
func New() *Store {
	return &Store{
		indexedPages:  make(map[string]page.Page),
		urlToPage:     make(map[string]page.Page),
		forwardIndex:  make(map[string]urlSet),
		invertedIndex: make(map[string]urlSet),
		backlinks:     make(map[string]urlSet),
		outlinks:      make(map[string]urlSet),
	}
}

func dayKey(p page.Page) string {
	return p.URL + "|" + p.Timestamp.UTC().Format(dayLayout)
}

// Store inserts page into the index with idempotent set-union semantics: it
// never removes anything. words are lowercased once; outlinks extend the
// link graph and seed the reverse backlinks entries.
func (s *Store) Store(p page.Page, words []string, outlinkURLs []string) {
	s.indexedPages[dayKey(p)] = p
	s.urlToPage[p.URL] = p

	for _, w := range words {
		lw := wordset.Lower(w)
		if s.forwardIndex[lw] == nil {
			s.forwardIndex[lw] = make(urlSet)
		}
		s.forwardIndex[lw].add(p.URL)

		if s.invertedIndex[p.URL] == nil {
			s.invertedIndex[p.URL] = make(urlSet)
		}
		s.invertedIndex[p.URL].add(lw)
	}

	if len(outlinkURLs) > 0 {
		if s.outlinks[p.URL] == nil {
			s.outlinks[p.URL] = make(urlSet)
		}
		for _, o := range outlinkURLs {
			s.outlinks[p.URL].add(o)
			if s.backlinks[o] == nil {
				s.backlinks[o] = make(urlSet)
			}
			s.backlinks[o].add(p.URL)
		}
	}
}

// Search returns the set of pages whose posting lists intersect across all
// given words. An empty word list, or any word absent from the forward
// index, yields an empty result. Matching is case-insensitive.
func (s *Store) Search(words []string) []page.Page {
	if len(words) == 0 {
		return nil
	}

	var postings []urlSet
	for _, w := range words {
		lw := wordset.Lower(w)
		p, ok := s.forwardIndex[lw]
		if !ok {
			return nil
		}
		postings = append(postings, p)
	}

	// Intersect starting from the smallest posting list.
	sort.Slice(postings, func(i, j int) bool { return len(postings[i]) < len(postings[j]) })
	result := make(urlSet, len(postings[0]))
	for u := range postings[0] {
		inAll := true
		for _, p := range postings[1:] {
			if _, ok := p[u]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			result.add(u)
		}
	}

	pages := make([]page.Page, 0, len(result))
	for u := range result {
		if pg, ok := s.urlToPage[u]; ok {
			pages = append(pages, pg)
		}
	}
	return pages
}

// SearchByRelevance runs Search and sorts the result descending by backlink
// count (0 if the URL has no recorded backlinks). Ties keep the order
// produced by sort.SliceStable.
func (s *Store) SearchByRelevance(words []string) []page.Page {
	pages := s.Search(words)
	sort.SliceStable(pages, func(i, j int) bool {
		return len(s.backlinks[pages[i].URL]) > len(s.backlinks[pages[j].URL])
	})
	return pages
}

// ConsultBacklinks returns the URLs known to link to url, or an empty slice.
func (s *Store) ConsultBacklinks(url string) []string {
	return s.backlinks[url].slice()
}

// ConsultOutlinks returns the URLs url is known to link to, or an empty slice.
func (s *Store) ConsultOutlinks(url string) []string {
	return s.outlinks[url].slice()
}

// SizeBytes reports the byte length of the last successful Save or Load.
func (s *Store) SizeBytes() int64 { return s.sizeBytes }

// Path reports the backing path or key this Store was loaded from / will
// save to, for diagnostics only.
func (s *Store) Path() string { return s.path }
