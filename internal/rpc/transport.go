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

package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server is a thin typed-method registry over http.ServeMux, served as
// HTTP/2 cleartext (h2c) so Gateway<->Barrel and Downloader<->Gateway calls
// get HTTP/2 framing and multiplexing without needing TLS certificates on
// every node.
type Server struct {
	mux *http.ServeMux
}

// NewServer returns an empty Server ready for Handle registrations.
func NewServer() *Server {
	return &Server{mux: http.NewServeMux()}
}

// Handle registers a typed RPC method: method becomes the URL path, and the
// request/response bodies are JSON. Go does not allow generic methods, so
// this is a package-level function parameterized over the message types
// rather than a method on *Server.
func Handle[Req, Resp any](s *Server, method string, fn func(context.Context, Req) (Resp, error)) {
	s.mux.HandleFunc("/"+method, func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if r.Body != nil {
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		resp, err := fn(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Handler returns the server's handler wrapped for HTTP/2 cleartext.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.mux, &http2.Server{})
}

// ListenAndServe serves the registered methods on addr until the process is
// stopped or the listener errors.
func (s *Server) ListenAndServe(addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return httpServer.ListenAndServe()
}

// Client calls typed RPC methods against one peer's base URL (scheme+host,
// no trailing slash), e.g. "http://barrel-0:9001".
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient returns a Client that talks HTTP/2 cleartext to baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http2.Transport{
				AllowHTTP: true,
				DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, network, addr)
				},
			},
		},
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}

// Call invokes method on the client's peer with req and decodes the JSON
// response into a Resp. Like Handle, this is a free function because Go
// forbids generic methods.
func Call[Req, Resp any](ctx context.Context, c *Client, method string, req Req) (Resp, error) {
	var zero Resp

	body, err := json.Marshal(req)
	if err != nil {
		return zero, fmt.Errorf("rpc: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("rpc: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("rpc: %s: %w", method, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(res.Body)
		return zero, fmt.Errorf("rpc: %s: peer returned %d: %s", method, res.StatusCode, string(msg))
	}

	var resp Resp
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return zero, fmt.Errorf("rpc: %s: decode response: %w", method, err)
	}
	return resp, nil
}
