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

// Package frontier implements the URL frontier: a deduplicated FIFO queue
// of URLs with a domain whitelist/blacklist filter. Blocking dequeue
// semantics are layered on top by the Gateway via internal/notify; this
// package only implements the non-blocking pop-front plus dedup described
// in the design notes (never a bounded channel, so producers enqueuing
// outlinks never back-pressure on the consumer).
package frontier

import (
	"net/url"
	"sync"
)

// Status is the outcome of an Enqueue call.
type Status int

const (
	// Success means the URL was admitted into the queue.
	Success Status = iota
	// AlreadyIndexedUrl means the URL was already seen and was not
	// re-enqueued.
	AlreadyIndexedUrl
	// Rejected means a domain filter rule rejected the URL's host.
	Rejected
)

// DomainFilter decides whether a host may be enqueued: hosts in Blacklist
// are rejected; if Whitelist is non-empty, only hosts present in it are
// admitted.
type DomainFilter struct {
	Whitelist map[string]struct{}
	Blacklist map[string]struct{}
}

// NewDomainFilter builds a DomainFilter from plain host lists.
func NewDomainFilter(whitelist, blacklist []string) DomainFilter {
	f := DomainFilter{}
	if len(whitelist) > 0 {
		f.Whitelist = make(map[string]struct{}, len(whitelist))
		for _, h := range whitelist {
			f.Whitelist[h] = struct{}{}
		}
	}
	if len(blacklist) > 0 {
		f.Blacklist = make(map[string]struct{}, len(blacklist))
		for _, h := range blacklist {
			f.Blacklist[h] = struct{}{}
		}
	}
	return f
}

// Allows reports whether host passes the filter.
func (f DomainFilter) Allows(host string) bool {
	if _, blocked := f.Blacklist[host]; blocked {
		return false
	}
	if len(f.Whitelist) > 0 {
		_, ok := f.Whitelist[host]
		return ok
	}
	return true
}

// Queue is the URL frontier: an ordered sequence of URLs, a seen-set for
// dedup, and a domain filter, all guarded by a single mutex (§5: Queue is
// guarded by its own mutex held for the duration of one operation).
type Queue struct {
	mu     sync.Mutex
	order  []string
	seen   map[string]struct{}
	filter DomainFilter
}

// New returns an empty Queue with the given domain filter and seed URLs.
// Seed URLs bypass the filter, matching how a Gateway's initial
// configuration-driven queue is trusted input.
func New(filter DomainFilter, seed []string) *Queue {
	q := &Queue{
		seen:   make(map[string]struct{}, len(seed)),
		filter: filter,
	}
	for _, u := range seed {
		q.order = append(q.order, u)
		q.seen[u] = struct{}{}
	}
	return q
}

// Enqueue appends url to the queue unless it was already seen or its host
// is rejected by the domain filter. It returns the resulting status and a
// snapshot of the queue as it stands immediately after the call.
func (q *Queue) Enqueue(rawURL string) (Status, []string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, dup := q.seen[rawURL]; dup {
		return AlreadyIndexedUrl, q.snapshotLocked()
	}

	if host := hostOf(rawURL); host != "" && !q.filter.Allows(host) {
		return Rejected, q.snapshotLocked()
	}

	q.order = append(q.order, rawURL)
	q.seen[rawURL] = struct{}{}
	return Success, q.snapshotLocked()
}

// Dequeue pops the front of the queue, if any. It never removes the URL
// from the seen-set: dedup persists across the URL's lifetime even after
// it has been fetched.
func (q *Queue) Dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return "", false
	}
	u := q.order[0]
	q.order = q.order[1:]
	return u, true
}

// ClearSeen rebuilds the seen-set from the URLs currently still queued,
// discarding history of already-dequeued URLs. This is a manual operator
// action: it allows previously-fetched URLs to be re-enqueued.
func (q *Queue) ClearSeen() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seen = make(map[string]struct{}, len(q.order))
	for _, u := range q.order {
		q.seen[u] = struct{}{}
	}
}

// Snapshot returns the queue's current contents, front to back.
func (q *Queue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Queue) snapshotLocked() []string {
	out := make([]string, len(q.order))
	copy(out, q.order)
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
