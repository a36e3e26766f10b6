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

// Package wordset tokenizes page bodies into the lowercased, alphanumeric
// words the index stores, filtering out a configured stop-word set.
package wordset

import "strings"

// Filter lowercases and tokenizes whitespace-separated words, keeping only
// purely alphanumeric tokens and dropping anything present in stop.
type Filter struct {
	stop map[string]struct{}
}

// NewFilter builds a Filter from a stop-word list. Words are matched
// case-insensitively.
func NewFilter(stopWords []string) *Filter {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Filter{stop: stop}
}

// Tokenize splits body on whitespace and returns the set of lowercased,
// purely-alphanumeric tokens that are not stop words. Order is not
// significant; duplicates are collapsed.
func (f *Filter) Tokenize(body string) []string {
	fields := strings.Fields(body)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, raw := range fields {
		w := strings.ToLower(raw)
		if !isAlphanumeric(w) {
			continue
		}
		if _, skip := f.stop[w]; skip {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// Lower lowercases a single word the same way Tokenize does, for callers
// (e.g. Search) that need to normalize a query term.
func Lower(w string) string {
	return strings.ToLower(w)
}
