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

// Package responsetime maintains an incremental mean of observed RPC
// latencies. It is a running arithmetic mean, not an exponential moving
// average.
package responsetime

import "time"

// Aggregate is (meanMillis, count), updated incrementally.
type Aggregate struct {
	MeanMillis float64
	Count      int64
}

// NewSample records a single elapsed-time sample, updating the aggregate
// in place: mean <- (mean*count + d) / (count+1).
func (a *Aggregate) NewSample(start time.Time) {
	d := float64(time.Since(start).Microseconds()) / 1000.0
	a.MeanMillis = (a.MeanMillis*float64(a.Count) + d) / float64(a.Count+1)
	a.Count++
}

// AddMillis is like NewSample but takes an already-measured duration in
// milliseconds; useful for tests and for callers that measured elapsed time
// themselves.
func (a *Aggregate) AddMillis(ms float64) {
	a.MeanMillis = (a.MeanMillis*float64(a.Count) + ms) / float64(a.Count+1)
	a.Count++
}

// Update merges other into a by count-weighted mean:
// mean <- (meanA*countA + meanB*countB) / (countA+countB).
func (a *Aggregate) Update(other Aggregate) {
	if other.Count == 0 {
		return
	}
	total := a.Count + other.Count
	a.MeanMillis = (a.MeanMillis*float64(a.Count) + other.MeanMillis*float64(other.Count)) / float64(total)
	a.Count = total
}
