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

// Package main provides a thin HTTP edge in front of a Gateway, intended
// for a browser-facing search box. It is explicitly out of scope for this
// system's core design: it does no templating or session handling, just a
// JSON passthrough to the Gateway's Search RPC.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"distsearch/internal/config"
	"distsearch/internal/rpc"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (web_server section)")
	address := flag.String("address", "", "Override web_server.address")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.WebServer{Address: ":8000", GatewayAddress: "http://localhost:9000"}
	if *configPath != "" {
		root, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = root.WebServer
	}
	if *address != "" {
		cfg.Address = *address
	}

	gatewayClient := rpc.NewClient(cfg.GatewayAddress)
	defer gatewayClient.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		words := r.URL.Query()["q"]
		if len(words) == 0 {
			http.Error(w, "missing q parameter", http.StatusBadRequest)
			return
		}
		resp, err := rpc.Call[rpc.SearchRequest, rpc.SearchResponse](r.Context(), gatewayClient, "Search", rpc.SearchRequest{Words: words})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	log.Info("web-server listening", "address", cfg.Address, "gateway", cfg.GatewayAddress)
	if err := http.ListenAndServe(cfg.Address, mux); err != nil {
		log.Error("web-server stopped", "error", err)
		os.Exit(1)
	}
}
