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

// Package main provides the entry point for the Downloader process: a pool
// of workers that fetches URLs handed out by the Gateway and reports the
// parsed page back to it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"distsearch/internal/config"
	"distsearch/internal/downloader"
	"distsearch/internal/htmlparse"
	"distsearch/internal/reputation"
	"distsearch/internal/rpc"
	"distsearch/internal/wordset"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (downloader section)")
	gatewayAddr := flag.String("gateway_address", "", "Override downloader.gateway_address")
	workers := flag.Int("workers", 0, "Override downloader.workers")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.DefaultDownloader()
	if *configPath != "" {
		root, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = root.Downloader
	}
	if *gatewayAddr != "" {
		cfg.GatewayAddress = *gatewayAddr
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	gatewayClient := rpc.NewClient(cfg.GatewayAddress)
	defer gatewayClient.Close()

	fetcher := htmlparse.NewHTTPFetcher(nil, cfg.UserAgent)
	filter := wordset.NewFilter(cfg.StopWords)

	pool := downloader.New(gatewayClient, fetcher, reputation.Stub{}, filter, downloader.Config{
		Workers:    cfg.Workers,
		MinBackoff: cfg.MinBackoff,
		MaxBackoff: cfg.MaxBackoff,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("shutting down downloader")
		cancel()
	}()

	log.Info("downloader starting", "gateway", cfg.GatewayAddress, "workers", cfg.Workers)
	pool.Run(ctx)
}
