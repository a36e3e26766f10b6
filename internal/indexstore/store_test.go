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
	"sort"
	"testing"
	"time"

	"distsearch/internal/page"
)

func TestStoreSearchIntersection(t *testing.T) {
	s := New()
	now := time.Now()
	s.Store(page.Page{URL: "https://a.example/", Timestamp: now}, []string{"go", "search"}, nil)
	s.Store(page.Page{URL: "https://b.example/", Timestamp: now}, []string{"go", "rust"}, nil)

	pages := s.Search([]string{"go"})
	if len(pages) != 2 {
		t.Fatalf("Search([go]) returned %d pages, want 2", len(pages))
	}

	pages = s.Search([]string{"go", "search"})
	if len(pages) != 1 || pages[0].URL != "https://a.example/" {
		t.Fatalf("Search([go, search]) = %v, want [a.example]", pages)
	}

	if pages := s.Search([]string{"missing"}); pages != nil {
		t.Fatalf("Search([missing]) = %v, want nil", pages)
	}
}

func TestStoreIsIdempotentSetUnion(t *testing.T) {
	s := New()
	now := time.Now()
	p := page.Page{URL: "https://a.example/", Timestamp: now}
	s.Store(p, []string{"go"}, []string{"https://b.example/"})
	s.Store(p, []string{"go", "lang"}, []string{"https://b.example/", "https://c.example/"})

	if got := s.ConsultOutlinks("https://a.example/"); len(got) != 2 {
		t.Fatalf("ConsultOutlinks() = %v, want 2 entries", got)
	}
	if pages := s.Search([]string{"lang"}); len(pages) != 1 {
		t.Fatalf("Search([lang]) = %v, want 1 page", pages)
	}
}

func TestSearchByRelevanceOrdersByBacklinkCount(t *testing.T) {
	s := New()
	now := time.Now()
	s.Store(page.Page{URL: "https://popular.example/", Timestamp: now}, []string{"go"}, nil)
	s.Store(page.Page{URL: "https://obscure.example/", Timestamp: now}, []string{"go"}, nil)
	s.Store(page.Page{URL: "https://l1.example/", Timestamp: now}, nil, []string{"https://popular.example/"})
	s.Store(page.Page{URL: "https://l2.example/", Timestamp: now}, nil, []string{"https://popular.example/"})

	pages := s.SearchByRelevance([]string{"go"})
	if len(pages) != 2 || pages[0].URL != "https://popular.example/" {
		t.Fatalf("SearchByRelevance() = %v, want popular first", pages)
	}
}

func TestConsultBacklinksAndOutlinks(t *testing.T) {
	s := New()
	now := time.Now()
	s.Store(page.Page{URL: "https://a.example/", Timestamp: now}, nil, []string{"https://b.example/", "https://c.example/"})

	back := s.ConsultBacklinks("https://b.example/")
	if len(back) != 1 || back[0] != "https://a.example/" {
		t.Fatalf("ConsultBacklinks(b) = %v, want [a]", back)
	}

	out := s.ConsultOutlinks("https://a.example/")
	sort.Strings(out)
	want := []string{"https://b.example/", "https://c.example/"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("ConsultOutlinks(a) = %v, want %v", out, want)
		}
	}

	if got := s.ConsultBacklinks("https://unknown.example/"); len(got) != 0 {
		t.Fatalf("ConsultBacklinks(unknown) = %v, want empty", got)
	}
}

func TestDayKeySameURLDifferentDaysCoexist(t *testing.T) {
	s := New()
	url := "https://daily.example/"
	day1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)

	s.Store(page.Page{URL: url, Timestamp: day1}, []string{"first"}, nil)
	s.Store(page.Page{URL: url, Timestamp: day2}, []string{"second"}, nil)

	if len(s.indexedPages) != 2 {
		t.Fatalf("indexedPages has %d entries, want 2 (one per day)", len(s.indexedPages))
	}
	// urlToPage keeps only the latest write for this URL.
	if s.urlToPage[url].Timestamp != day2 {
		t.Fatalf("urlToPage[%s].Timestamp = %v, want %v", url, s.urlToPage[url].Timestamp, day2)
	}
}
