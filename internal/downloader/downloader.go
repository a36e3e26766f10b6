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

// Package downloader implements the Downloader external collaborator: a
// pool of workers that repeatedly calls the Gateway's DequeueUrl, fetches
// and parses each URL, classifies its host's reputation, and reports the
// result back through the Gateway's Index RPC. Retries on fetch failure
// back off exponentially and never give up; a worker retrying one URL takes
// no other work meanwhile, while the other workers keep going.
package downloader

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/dgryski/go-rendezvous"

	"distsearch/internal/htmlparse"
	"distsearch/internal/reputation"
	"distsearch/internal/rpc"
	"distsearch/internal/wordset"
)

// dequeuePollInterval bounds how long a single DequeueUrl call is allowed to
// block before a worker re-checks its own lane inbox. It keeps a lane's
// hand-off traffic flowing even while every worker's own Gateway dequeue is
// still outstanding.
const dequeuePollInterval = 500 * time.Millisecond

// laneInboxSize is the buffer depth of each worker's local hand-off inbox.
// It only needs to absorb the in-flight mismatches between two dequeuePoll
// cycles; a full inbox falls back to out-of-lane processing rather than
// blocking or dropping the URL.
const laneInboxSize = 64

// Pool is a set of Downloader workers sharing one Gateway client.
type Pool struct {
	gateway     *rpc.Client
	fetcher     htmlparse.Fetcher
	reputation  reputation.Lookup
	filter      *wordset.Filter
	numWorkers  int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	log         *slog.Logger

	lanes   *rendezvous.Table
	inboxes map[string]chan string
}

// Config configures a Pool.
type Config struct {
	Workers    int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// New builds a Pool of cfg.Workers downloaders, all pulling from gateway.
func New(gateway *rpc.Client, fetcher htmlparse.Fetcher, rep reputation.Lookup, filter *wordset.Filter, cfg Config, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}

	lanes := make([]string, cfg.Workers)
	inboxes := make(map[string]chan string, cfg.Workers)
	for i := range lanes {
		lanes[i] = laneName(i)
		inboxes[lanes[i]] = make(chan string, laneInboxSize)
	}

	return &Pool{
		gateway:    gateway,
		fetcher:    fetcher,
		reputation: rep,
		filter:     filter,
		numWorkers: cfg.Workers,
		minBackoff: cfg.MinBackoff,
		maxBackoff: cfg.MaxBackoff,
		log:        log,
		lanes:      rendezvous.New(lanes, rendezvousHash),
		inboxes:    inboxes,
	}
}

// Run starts numWorkers worker goroutines and blocks until ctx is done.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(p.numWorkers)
	for i := 0; i < p.numWorkers; i++ {
		lane := laneName(i)
		go func() {
			defer wg.Done()
			p.workerLoop(ctx, lane)
		}()
	}
	wg.Wait()
}

// workerLoop repeatedly dequeues a URL from the Gateway. A URL that hashes
// to this worker's own lane is fetched and indexed directly; one that
// belongs to a different lane is handed off to that lane's local inbox
// instead of being re-enqueued. The frontier's seen-set is never cleared
// on Dequeue (so a Gateway re-enqueue of an already-seen URL would be
// silently dropped), which is exactly why this hand-off stays entirely
// in-process: the owning lane drains its inbox itself, and the URL never
// makes a second trip through the Gateway. This gives per-host affinity
// across the worker pool without any shared mutable routing table: every
// worker derives the same assignment from the same rendezvous hash.
func (p *Pool) workerLoop(ctx context.Context, lane string) {
	inbox := p.inboxes[lane]
	for {
		select {
		case <-ctx.Done():
			return
		case rawURL := <-inbox:
			p.processWithRetry(ctx, rawURL)
			continue
		default:
		}

		dctx, cancel := context.WithTimeout(ctx, dequeuePollInterval)
		deqResp, err := rpc.Call[rpc.DequeueRequest, rpc.DequeueResponse](dctx, p.gateway, "DequeueUrl", rpc.DequeueRequest{})
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if dctx.Err() != nil {
				// Just a poll-interval timeout; loop around to drain the
				// inbox and try again.
				continue
			}
			p.sleepBackoff(ctx, 0)
			continue
		}
		if deqResp.URL == "" {
			continue
		}

		laneKey := deqResp.URL
		if u, err := url.Parse(deqResp.URL); err == nil && u.Hostname() != "" {
			laneKey = u.Hostname()
		}
		owner := p.lanes.Get(laneKey)
		if owner != lane {
			p.handOff(ctx, lane, owner, deqResp.URL)
			continue
		}

		p.processWithRetry(ctx, deqResp.URL)
	}
}

// handOff delivers rawURL to owner's local inbox so its sticky owner
// processes it, without ever touching the Gateway's dedup-protected
// frontier. If the owner's inbox is momentarily full, rawURL is processed
// out of lane instead of risking a block or a drop.
func (p *Pool) handOff(ctx context.Context, lane, owner, rawURL string) {
	select {
	case p.inboxes[owner] <- rawURL:
	default:
		p.log.Warn("lane inbox full, processing out of lane", "url", rawURL, "lane", lane, "owner", owner)
		p.processWithRetry(ctx, rawURL)
	}
}

// processWithRetry fetches and indexes rawURL, retrying with capped
// exponential backoff until it succeeds or ctx is done. The URL is never
// handed back to the queue, and this worker takes no other work while it
// retries.
func (p *Pool) processWithRetry(ctx context.Context, rawURL string) {
	backoff := p.minBackoff
	for attempt := 0; ; attempt++ {
		if err := p.process(ctx, rawURL); err != nil {
			p.log.Warn("fetch failed, retrying", "url", rawURL, "attempt", attempt, "backoff", backoff, "error", err)
			p.sleepBackoff(ctx, backoff)
			if ctx.Err() != nil {
				return
			}
			backoff *= 2
			if backoff > p.maxBackoff {
				backoff = p.maxBackoff
			}
			continue
		}
		return
	}
}

func (p *Pool) process(ctx context.Context, rawURL string) error {
	doc, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	category := string(reputation.Unknown)
	if verdict, err := p.reputation.Classify(ctx, host); err == nil {
		category = string(verdict)
	}

	words := p.filter.Tokenize(doc.Body)

	_, err = rpc.Call[rpc.IndexRequest, rpc.IndexResponse](ctx, p.gateway, "Index", rpc.IndexRequest{
		Page: rpc.PageDTO{
			URL:      rawURL,
			Title:    doc.Title,
			Summary:  doc.Summary,
			Icon:     doc.Icon,
			Category: category,
		},
		Words:    words,
		Outlinks: doc.Outlinks,
	})
	return err
}

func (p *Pool) sleepBackoff(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = p.minBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func laneName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return "lane-" + string(letters[i])
	}
	return "lane-overflow"
}

// rendezvousHash is the hash function go-rendezvous uses to score
// (key, node) pairs; fnv-1a keeps the scoring cheap per dequeued URL.
func rendezvousHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
