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

// Package page defines the crawled-document record shared by every
// component that touches the index: its identity, equality, and ordering.
package page

import "time"

// Page is one crawled document. Identity is its URL; two Pages for the same
// URL on the same calendar day are considered the same page (see Equal).
type Page struct {
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Equal reports whether p and o identify the same page: same URL, and their
// timestamps fall on the same calendar day (UTC).
func (p Page) Equal(o Page) bool {
	if p.URL != o.URL {
		return false
	}
	py, pm, pd := p.Timestamp.UTC().Date()
	oy, om, od := o.Timestamp.UTC().Date()
	return py == oy && pm == om && pd == od
}

// Before orders pages by timestamp ascending.
func (p Page) Before(o Page) bool {
	return p.Timestamp.Before(o.Timestamp)
}

// ByTimestamp sorts a slice of Pages ascending by Timestamp. It implements
// sort.Interface.
type ByTimestamp []Page

func (s ByTimestamp) Len() int           { return len(s) }
func (s ByTimestamp) Less(i, j int) bool { return s[i].Before(s[j]) }
func (s ByTimestamp) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
