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

// Package rpc defines the wire messages shared by the Gateway and Barrel
// services and the small HTTP/2 request/response transport they ride on.
// Message names and field shapes follow the external-interfaces table:
// field types are semantic, not a literal protobuf/IDL rendering, since the
// spec only requires request/response semantics and typed messages.
package rpc

import (
	"time"

	"distsearch/internal/page"
)

// Status is the wire-level outcome enum. It is the contract surfaced to
// clients; transport errors are a separate, lower-level concern.
type Status int

const (
	Success Status = iota
	Error
	InvalidUrl
	AlreadyIndexedUrl
	UnavailableBarrels
	Unimplemented
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case InvalidUrl:
		return "InvalidUrl"
	case AlreadyIndexedUrl:
		return "AlreadyIndexedUrl"
	case UnavailableBarrels:
		return "UnavailableBarrels"
	case Unimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

// PageDTO is the wire shape of page.Page: empty string fields mean absent.
type PageDTO struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// ToPage converts a wire PageDTO into a page.Page. The wire shape carries no
// timestamp field, so the caller stamps it (normally time.Now at receipt).
func (p PageDTO) ToPage(timestamp time.Time) page.Page {
	return page.Page{
		URL:       p.URL,
		Title:     p.Title,
		Summary:   p.Summary,
		Icon:      p.Icon,
		Category:  p.Category,
		Timestamp: timestamp,
	}
}

// FromPage converts a page.Page into its wire shape.
func FromPage(p page.Page) PageDTO {
	return PageDTO{URL: p.URL, Title: p.Title, Summary: p.Summary, Icon: p.Icon, Category: p.Category}
}

// HealthRequest/HealthResponse: liveness probe.
type HealthRequest struct{}
type HealthResponse struct {
	Status string `json:"status"`
}

// EnqueueRequest/EnqueueResponse: admit a URL into the Gateway's frontier.
type EnqueueRequest struct {
	URL string `json:"url"`
}
type EnqueueResponse struct {
	Status Status   `json:"status"`
	Queue  []string `json:"queue"`
}

// DequeueRequest/DequeueResponse: pull one URL for a Downloader to fetch.
type DequeueRequest struct{}
type DequeueResponse struct {
	URL string `json:"url"`
}

// IndexRequest/IndexResponse: submit a fetched page's words and outlinks.
type IndexRequest struct {
	Page     PageDTO  `json:"page"`
	Words    []string `json:"words"`
	Outlinks []string `json:"outlinks"`
}
type IndexResponse struct {
	SizeBytes uint64 `json:"size_bytes"`
}

// SearchRequest/SearchResponse: ranked keyword query.
type SearchRequest struct {
	Words []string `json:"words"`
}
type SearchResponse struct {
	Status Status    `json:"status"`
	Pages  []PageDTO `json:"pages"`
}

// BacklinksRequest/BacklinksResponse and OutlinksRequest/OutlinksResponse:
// link-graph lookups.
type BacklinksRequest struct {
	URL string `json:"url"`
}
type BacklinksResponse struct {
	Status    Status   `json:"status"`
	Backlinks []string `json:"backlinks"`
}

type OutlinksRequest struct {
	URL string `json:"url"`
}
type OutlinksResponse struct {
	Status   Status   `json:"status"`
	Outlinks []string `json:"outlinks"`
}

// BarrelStatus is one Barrel's row in a RealTimeStatusResponse.
type BarrelStatus struct {
	Address        string `json:"address"`
	Online         bool   `json:"online"`
	IndexSizeBytes uint64 `json:"index_size_bytes"`
}

// RealTimeStatusRequest/RealTimeStatusResponse: one push-like status
// snapshot, returned after the Gateway's status notification fires.
type RealTimeStatusRequest struct{}
type RealTimeStatusResponse struct {
	Top10Searches     []string       `json:"top10_searches"`
	Barrels           []BarrelStatus `json:"barrels"`
	AvgResponseTimeMs float32        `json:"avg_response_time_ms"`
	Queue             []string       `json:"queue"`
}

// BarrelStatusRequest/BarrelStatusResponse: a Barrel's own static descriptor.
type BarrelStatusRequest struct{}
type BarrelStatusResponse struct {
	Status string `json:"status"`
}
