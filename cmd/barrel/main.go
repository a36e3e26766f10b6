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

// Package main provides the entry point for the Barrel process: one
// independent index replica serving Index/Search/ConsultBacklinks/
// ConsultOutlinks RPCs to the Gateway's LoadBalancer.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distsearch/internal/barrel"
	"distsearch/internal/config"
	"distsearch/internal/indexstore"
	"distsearch/internal/metrics"
	"distsearch/internal/rpc"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (barrel section)")
	address := flag.String("address", "", "Override barrel.address")
	snapshotPath := flag.String("snapshot_path", "", "Override barrel.snapshot_path")
	metricsAddress := flag.String("metrics_address", "", "Override barrel.metrics_address (empty disables /metrics)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.DefaultBarrel()
	if *configPath != "" {
		root, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = root.Barrel
	}
	if *address != "" {
		cfg.Address = *address
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}
	if *metricsAddress != "" {
		cfg.MetricsAddress = *metricsAddress
	}

	persister, err := indexstore.BuildPersister(cfg.PersistenceAdapter, cfg.SnapshotPath, cfg.RedisAddr, cfg.RedisKey, cfg.RedisTTL)
	if err != nil {
		log.Error("build persister", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	b, err := barrel.Open(ctx, cfg.Address, persister, log)
	cancel()
	if err != nil {
		log.Error("open barrel", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsAddress != "" {
		metrics.Serve(cfg.MetricsAddress, b.Metrics().Handler())
		log.Info("barrel metrics listening", "address", cfg.MetricsAddress)
	}

	srv := rpc.NewServer()
	barrel.RegisterRPC(srv, b)

	errCh := make(chan error, 1)
	go func() {
		log.Info("barrel listening", "address", cfg.Address)
		errCh <- srv.ListenAndServe(cfg.Address)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("barrel server stopped", "error", err)
		os.Exit(1)
	case <-stop:
		log.Info("shutting down barrel")
	}
}
