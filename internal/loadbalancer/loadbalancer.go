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

// Package loadbalancer fans Gateway RPCs out to the configured Barrels. The
// Barrel list is fixed at construction time and iterated in that exact
// order on every call: no weighted routing, no hashing, no retries against
// a single host. That determinism is what keeps ResponseTime samples and
// each Barrel's online flag meaningful to an operator watching the status
// stream.
package loadbalancer

import (
	"sync"
	"time"

	"distsearch/internal/responsetime"
	"distsearch/internal/rpc"
)

// barrel is one configured Barrel's connection and liveness state.
type barrel struct {
	address string

	mu        sync.Mutex
	online    bool
	sizeBytes uint64
}

// LoadBalancer fans calls out to an ordered, fixed list of Barrels.
type LoadBalancer struct {
	barrels []*barrel
	dial    func(address string) *rpc.Client
}

// New builds a LoadBalancer over addresses, in the given order. dial
// constructs a fresh RPC client for one address; tests pass a fake.
func New(addresses []string, dial func(address string) *rpc.Client) *LoadBalancer {
	if dial == nil {
		dial = func(address string) *rpc.Client { return rpc.NewClient(address) }
	}
	barrels := make([]*barrel, len(addresses))
	for i, addr := range addresses {
		barrels[i] = &barrel{address: addr}
	}
	return &LoadBalancer{barrels: barrels, dial: dial}
}

// Call is the per-call function a LoadBalancer invokes against a freshly
// dialed client for one Barrel. address is that Barrel's configured
// address, for callers that need to associate a response back to its
// origin (e.g. to record a per-Barrel index size).
type Call[Resp any] func(address string, client *rpc.Client) (Resp, error)

// Result is the tagged-union outcome of Broadcast/SendUntil: exactly one of
// its accessor pairs is meaningful, discriminated by Ok. Addresses is
// parallel to Responses: Addresses[i] is the Barrel that produced
// Responses[i].
type Result[Resp any] struct {
	Ok                bool
	Responses         []Resp
	Addresses         []string
	OfflineCount      int
	ResponseTime      responsetime.Aggregate
	AllOfflineBarrels int
}

// Broadcast calls fn against every Barrel, in fixed order, always attempting
// all of them (no short-circuit on failure or on success). Barrels that
// fail to connect or return an error are marked offline; responding
// Barrels are marked online and contribute one latency sample.
func Broadcast[Resp any](lb *LoadBalancer, fn Call[Resp]) Result[Resp] {
	var (
		responses []Resp
		addresses []string
		offline   int
		agg       responsetime.Aggregate
	)

	for _, b := range lb.barrels {
		client := lb.dial(b.address)
		start := time.Now()
		resp, err := fn(b.address, client)
		client.Close()

		if err != nil {
			b.setOnline(false)
			offline++
			continue
		}

		agg.NewSample(start)
		b.setOnline(true)
		responses = append(responses, resp)
		addresses = append(addresses, b.address)
	}

	if len(responses) == 0 {
		return Result[Resp]{Ok: false, OfflineCount: offline, AllOfflineBarrels: len(lb.barrels)}
	}
	return Result[Resp]{Ok: true, Responses: responses, Addresses: addresses, OfflineCount: offline, ResponseTime: agg}
}

// SendUntil calls fn against Barrels in fixed order and returns the first
// successful response. Every Barrel tried before the first success is
// marked offline.
func SendUntil[Resp any](lb *LoadBalancer, fn Call[Resp]) Result[Resp] {
	var offline int

	for _, b := range lb.barrels {
		client := lb.dial(b.address)
		start := time.Now()
		resp, err := fn(b.address, client)
		client.Close()

		if err != nil {
			b.setOnline(false)
			offline++
			continue
		}

		var agg responsetime.Aggregate
		agg.NewSample(start)
		b.setOnline(true)
		return Result[Resp]{Ok: true, Responses: []Resp{resp}, Addresses: []string{b.address}, OfflineCount: offline, ResponseTime: agg}
	}

	return Result[Resp]{Ok: false, OfflineCount: offline, AllOfflineBarrels: len(lb.barrels)}
}

// RecordSize lets a caller that just learned a Barrel's on-disk index size
// (e.g. from an Index response, keyed by Result.Addresses) stash it for the
// next GetBarrelsStatus call. It does not change the online flag.
func (lb *LoadBalancer) RecordSize(address string, sizeBytes uint64) {
	for _, b := range lb.barrels {
		if b.address == address {
			b.mu.Lock()
			b.sizeBytes = sizeBytes
			b.mu.Unlock()
			return
		}
	}
}

func (b *barrel) setOnline(online bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.online = online
}

// Status is one Barrel's row in a GetBarrelsStatus snapshot.
type Status struct {
	Address   string
	Online    bool
	SizeBytes uint64
}

// GetBarrelsStatus snapshots every configured Barrel's address, online
// flag, and last-known index size, in configured order.
func (lb *LoadBalancer) GetBarrelsStatus() []Status {
	out := make([]Status, len(lb.barrels))
	for i, b := range lb.barrels {
		b.mu.Lock()
		out[i] = Status{Address: b.address, Online: b.online, SizeBytes: b.sizeBytes}
		b.mu.Unlock()
	}
	return out
}

// Len reports how many Barrels this LoadBalancer was configured with.
func (lb *LoadBalancer) Len() int {
	return len(lb.barrels)
}
