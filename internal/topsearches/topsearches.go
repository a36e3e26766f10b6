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

// Package topsearches counts searched words and answers "top N by count"
// queries using a bounded min-heap, so TopN runs in O(m log n) for m unique
// words and heap size n rather than sorting the whole map.
package topsearches

import "container/heap"

// Counter tracks how many times each word has been searched.
type Counter struct {
	counts map[string]int64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// AddSearch increments word's count by one.
func (c *Counter) AddSearch(word string) {
	c.counts[word]++
}

// Entry is one (word, count) result from TopN.
type Entry struct {
	Word  string
	Count int64
}

// TopN returns up to n entries with the highest counts, descending. Ties
// are resolved by heap ordering and are not otherwise guaranteed.
func (c *Counter) TopN(n int) []Entry {
	if n <= 0 || len(c.counts) == 0 {
		return nil
	}

	h := &minHeap{}
	heap.Init(h)
	for word, count := range c.counts {
		if h.Len() < n {
			heap.Push(h, Entry{Word: word, Count: count})
			continue
		}
		if count > (*h)[0].Count {
			heap.Pop(h)
			heap.Push(h, Entry{Word: word, Count: count})
		}
	}

	out := make([]Entry, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Entry)
	}
	return out
}

// minHeap is a container/heap.Interface over Entry, ordered by ascending
// Count so the smallest of the retained top-N sits at the root and is
// cheap to evict when a bigger count arrives.
type minHeap []Entry

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].Count < h[j].Count }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
