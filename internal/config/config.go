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

// Package config loads the TOML configuration files for each of the five
// process roles (Gateway, Barrel, Downloader, Client, web server). Every
// role's section lives in the same file shape so a single deployment-wide
// config can be split or shared as operators prefer.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Barrel is a Barrel process's configuration.
type Barrel struct {
	Address            string        `toml:"address"`
	PersistenceAdapter string        `toml:"persistence_adapter"`
	SnapshotPath       string        `toml:"snapshot_path"`
	RedisAddr          string        `toml:"redis_addr"`
	RedisKey           string        `toml:"redis_key"`
	RedisTTL           time.Duration `toml:"redis_ttl"`
	MetricsAddress     string        `toml:"metrics_address"`
}

// Gateway is a Gateway process's configuration.
type Gateway struct {
	Address         string   `toml:"address"`
	BarrelAddresses []string `toml:"barrel_addresses"`
	SeedURLs        []string `toml:"seed_urls"`
	DomainWhitelist []string `toml:"domain_whitelist"`
	DomainBlacklist []string `toml:"domain_blacklist"`
	Interactive     bool     `toml:"interactive"`
	MetricsAddress  string   `toml:"metrics_address"`
}

// Downloader is a Downloader process's configuration.
type Downloader struct {
	GatewayAddress string        `toml:"gateway_address"`
	Workers        int           `toml:"workers"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MinBackoff     time.Duration `toml:"min_backoff"`
	MaxBackoff     time.Duration `toml:"max_backoff"`
	UserAgent      string        `toml:"user_agent"`
	StopWords      []string      `toml:"stop_words"`
}

// Client is the interactive/scripted CLI's configuration.
type Client struct {
	GatewayAddress string        `toml:"gateway_address"`
	Retries        int           `toml:"retries"`
	Timeout        time.Duration `toml:"timeout"`
}

// WebServer is the thin HTTP/WS edge's configuration.
type WebServer struct {
	Address        string `toml:"address"`
	GatewayAddress string `toml:"gateway_address"`
}

// Root is the whole-deployment configuration file shape: every role's
// section is optional, so a single file can describe one node or the
// whole cluster for local development.
type Root struct {
	Barrel     Barrel     `toml:"barrel"`
	Gateway    Gateway    `toml:"gateway"`
	Downloader Downloader `toml:"downloader"`
	Client     Client     `toml:"client"`
	WebServer  WebServer  `toml:"web_server"`
}

// Load parses the TOML file at path into a Root.
func Load(path string) (Root, error) {
	var root Root
	if _, err := toml.DecodeFile(path, &root); err != nil {
		return Root{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return root, nil
}

// DefaultBarrel returns a Barrel config with the defaults used when no
// config file is supplied.
func DefaultBarrel() Barrel {
	return Barrel{
		Address:            ":9001",
		PersistenceAdapter: "file",
		SnapshotPath:       "barrel-snapshot.json",
	}
}

// DefaultGateway returns a Gateway config with the defaults used when no
// config file is supplied.
func DefaultGateway() Gateway {
	return Gateway{
		Address:         ":9000",
		BarrelAddresses: []string{"http://localhost:9001"},
	}
}

// DefaultDownloader returns a Downloader config with the defaults used
// when no config file is supplied.
func DefaultDownloader() Downloader {
	return Downloader{
		GatewayAddress: "http://localhost:9000",
		Workers:        4,
		RequestTimeout: 15 * time.Second,
		MinBackoff:     time.Second,
		MaxBackoff:     60 * time.Second,
		UserAgent:      "distsearch-downloader/1.0",
	}
}

// DefaultClient returns a Client config with the defaults used when no
// config file is supplied.
func DefaultClient() Client {
	return Client{
		GatewayAddress: "http://localhost:9000",
		Retries:        3,
		Timeout:        10 * time.Second,
	}
}
