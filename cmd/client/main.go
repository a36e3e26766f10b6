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

// Package main provides the distsearch client CLI: a thin wrapper over the
// Gateway RPCs for interactive and scripted use.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"distsearch/internal/rpc"
)

var (
	address string
	retries int
	timeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "distsearch-client",
		Short: "Talk to a distsearch Gateway",
	}
	root.PersistentFlags().StringVar(&address, "address", "http://localhost:9000", "Gateway base URL")
	root.PersistentFlags().IntVar(&retries, "retries", 3, "Number of retries on RPC failure")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-call timeout")

	root.AddCommand(enqueueCmd(), searchCmd(), consultCmd(), healthCmd(), realTimeStatusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func enqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <url>",
		Short: "Submit a URL to the frontier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callWithRetry(func(ctx context.Context, client *rpc.Client) (rpc.EnqueueResponse, error) {
				return rpc.Call[rpc.EnqueueRequest, rpc.EnqueueResponse](ctx, client, "EnqueueUrl", rpc.EnqueueRequest{URL: args[0]})
			})
			if err != nil {
				return err
			}
			fmt.Printf("status=%s queue=%v\n", resp.Status, resp.Queue)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <word> [word...]",
		Short: "Search the index for a set of words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callWithRetry(func(ctx context.Context, client *rpc.Client) (rpc.SearchResponse, error) {
				return rpc.Call[rpc.SearchRequest, rpc.SearchResponse](ctx, client, "Search", rpc.SearchRequest{Words: args})
			})
			if err != nil {
				return err
			}
			fmt.Printf("status=%s\n", resp.Status)
			for _, p := range resp.Pages {
				fmt.Printf("- %s  %s\n", p.URL, p.Title)
			}
			return nil
		},
	}
}

func consultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consult",
		Short: "Consult the link graph for a URL",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "backlinks <url>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callWithRetry(func(ctx context.Context, client *rpc.Client) (rpc.BacklinksResponse, error) {
				return rpc.Call[rpc.BacklinksRequest, rpc.BacklinksResponse](ctx, client, "ConsultBacklinks", rpc.BacklinksRequest{URL: args[0]})
			})
			if err != nil {
				return err
			}
			fmt.Printf("status=%s\n%s\n", resp.Status, strings.Join(resp.Backlinks, "\n"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "outlinks <url>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callWithRetry(func(ctx context.Context, client *rpc.Client) (rpc.OutlinksResponse, error) {
				return rpc.Call[rpc.OutlinksRequest, rpc.OutlinksResponse](ctx, client, "ConsultOutlinks", rpc.OutlinksRequest{URL: args[0]})
			})
			if err != nil {
				return err
			}
			fmt.Printf("status=%s\n%s\n", resp.Status, strings.Join(resp.Outlinks, "\n"))
			return nil
		},
	})
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the Gateway's liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callWithRetry(func(ctx context.Context, client *rpc.Client) (rpc.HealthResponse, error) {
				return rpc.Call[rpc.HealthRequest, rpc.HealthResponse](ctx, client, "Health", rpc.HealthRequest{})
			})
			if err != nil {
				return err
			}
			fmt.Println(resp.Status)
			return nil
		},
	}
}

func realTimeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "real-time-status",
		Short: "Stream status snapshots as they change (Ctrl-C to stop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rpc.NewClient(address)
			defer client.Close()
			for {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				resp, err := rpc.Call[rpc.RealTimeStatusRequest, rpc.RealTimeStatusResponse](ctx, client, "RealTimeStatus", rpc.RealTimeStatusRequest{})
				cancel()
				if err != nil {
					return err
				}
				fmt.Printf("top10=%v avg_ms=%.2f queue_len=%d barrels=%v\n",
					resp.Top10Searches, resp.AvgResponseTimeMs, len(resp.Queue), resp.Barrels)
			}
		},
	}
}

// callWithRetry attempts fn up to retries+1 times, doubling its backoff
// between attempts starting from one second.
func callWithRetry[Resp any](fn func(ctx context.Context, client *rpc.Client) (Resp, error)) (Resp, error) {
	client := rpc.NewClient(address)
	defer client.Close()

	var lastErr error
	var zero Resp
	backoff := time.Second
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		resp, err := fn(ctx, client)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
