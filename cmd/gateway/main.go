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

// Package main provides the entry point for the Gateway process: the
// single coordination-plane service Downloaders and Clients talk to.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"distsearch/internal/config"
	"distsearch/internal/frontier"
	"distsearch/internal/gateway"
	"distsearch/internal/loadbalancer"
	"distsearch/internal/metrics"
	"distsearch/internal/rpc"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (gateway section)")
	address := flag.String("address", "", "Override gateway.address")
	metricsAddress := flag.String("metrics_address", "", "Override gateway.metrics_address (empty disables /metrics)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.DefaultGateway()
	if *configPath != "" {
		root, err := config.Load(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = root.Gateway
	}
	if *address != "" {
		cfg.Address = *address
	}
	if *metricsAddress != "" {
		cfg.MetricsAddress = *metricsAddress
	}

	filter := frontier.NewDomainFilter(cfg.DomainWhitelist, cfg.DomainBlacklist)
	lb := loadbalancer.New(cfg.BarrelAddresses, nil)
	gw := gateway.New(cfg.Address, lb, filter, cfg.SeedURLs, cfg.Interactive, log)

	if cfg.MetricsAddress != "" {
		metrics.Serve(cfg.MetricsAddress, gw.Metrics().Handler())
		log.Info("gateway metrics listening", "address", cfg.MetricsAddress)
	}

	srv := rpc.NewServer()
	gateway.RegisterRPC(srv, gw)

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", "address", cfg.Address, "barrels", cfg.BarrelAddresses)
		errCh <- srv.ListenAndServe(cfg.Address)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("gateway server stopped", "error", err)
		os.Exit(1)
	case <-stop:
		log.Info("shutting down gateway")
	}
}
