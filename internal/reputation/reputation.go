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

// Package reputation models the domain-reputation collaborator the
// Downloader consults to populate a Page's Category. The real service is a
// third-party classification API, out of scope here; Lookup is the seam a
// production build would implement against that API.
package reputation

import (
	"context"
	"hash/fnv"
)

// Verdict is the reputation classification attached to Page.Category.
type Verdict string

const (
	Safe     Verdict = "safe"
	Malware  Verdict = "malware"
	Phishing Verdict = "phishing"
	Unknown  Verdict = "unknown"
)

// Lookup classifies a host. Implementations may call a remote service;
// callers should treat it as possibly slow and pass a bounded context.
type Lookup interface {
	Classify(ctx context.Context, host string) (Verdict, error)
}

// Stub is a deterministic, offline Lookup: it hashes the host into one of
// Safe, Malware or Phishing (never Unknown) so tests and local runs get
// stable, reproducible categories without a live network dependency.
type Stub struct{}

// Classify never returns an error; it derives a Verdict from host's hash.
func (Stub) Classify(_ context.Context, host string) (Verdict, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	switch h.Sum32() % 20 {
	case 0:
		return Phishing, nil
	case 1, 2:
		return Malware, nil
	default:
		return Safe, nil
	}
}
