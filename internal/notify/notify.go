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

// Package notify implements the broadcast notification primitive described
// in the design notes: a signal wakes every current waiter and leaves
// nothing queued for late subscribers. It is the channel-based equivalent
// of a condition variable's Broadcast, built by closing and recreating a
// one-shot channel.
package notify

import "sync"

// Broadcast wakes all current waiters on Signal. A waiter that calls Wait
// after Signal has already fired will block until the next Signal; no
// signal is "remembered" (edges, not levels).
type Broadcast struct {
	mu sync.Mutex
	ch chan struct{}
}

// New returns a ready-to-use Broadcast.
func New() *Broadcast {
	return &Broadcast{ch: make(chan struct{})}
}

// Wait returns a channel that closes on the next Signal call. Spurious
// wakeups are acceptable by design; callers should re-check whatever
// condition they were waiting on after the channel closes.
func (b *Broadcast) Wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch
}

// Signal wakes every goroutine currently blocked in Wait and rearms the
// primitive for the next round.
func (b *Broadcast) Signal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.ch)
	b.ch = make(chan struct{})
}
