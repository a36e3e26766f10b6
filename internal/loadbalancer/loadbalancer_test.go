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

package loadbalancer

import (
	"errors"
	"testing"

	"distsearch/internal/rpc"
)

func TestBroadcastAttemptsEveryBarrel(t *testing.T) {
	addrs := []string{"http://127.0.0.1:1", "http://127.0.0.1:2", "http://127.0.0.1:3"}
	lb := New(addrs, nil)

	result := Broadcast(lb, func(_ string, client *rpc.Client) (string, error) {
		return "", errors.New("unreachable")
	})

	if result.Ok {
		t.Fatalf("Broadcast() with all-failing barrels returned Ok=true")
	}
	if result.AllOfflineBarrels != len(addrs) {
		t.Fatalf("AllOfflineBarrels = %d, want %d", result.AllOfflineBarrels, len(addrs))
	}
	if result.OfflineCount != len(addrs) {
		t.Fatalf("OfflineCount = %d, want %d (every barrel attempted)", result.OfflineCount, len(addrs))
	}

	status := lb.GetBarrelsStatus()
	for _, s := range status {
		if s.Online {
			t.Fatalf("barrel %s marked online after every call failed", s.Address)
		}
	}
}

func TestBroadcastAllSuccess(t *testing.T) {
	addrs := []string{"ok-1", "ok-2", "ok-3"}
	lb := New(addrs, nil)

	result := Broadcast(lb, func(_ string, client *rpc.Client) (int, error) {
		return 1, nil
	})
	if !result.Ok {
		t.Fatalf("Broadcast() with a working fn returned Ok=false")
	}
	if len(result.Responses) != len(addrs) {
		t.Fatalf("Responses = %v, want %d entries", result.Responses, len(addrs))
	}
	if result.OfflineCount != 0 {
		t.Fatalf("OfflineCount = %d, want 0", result.OfflineCount)
	}
	if len(result.Addresses) != len(addrs) {
		t.Fatalf("Addresses = %v, want %d entries", result.Addresses, len(addrs))
	}
	for i, addr := range result.Addresses {
		if addr != addrs[i] {
			t.Fatalf("Addresses[%d] = %q, want %q", i, addr, addrs[i])
		}
	}
}

func TestBroadcastRecordSizeUsesResponseAddress(t *testing.T) {
	addrs := []string{"barrel-1", "barrel-2"}
	lb := New(addrs, nil)

	sizes := map[string]uint64{"barrel-1": 111, "barrel-2": 222}
	result := Broadcast(lb, func(address string, client *rpc.Client) (uint64, error) {
		return sizes[address], nil
	})
	for i, resp := range result.Responses {
		lb.RecordSize(result.Addresses[i], resp)
	}

	status := lb.GetBarrelsStatus()
	for _, s := range status {
		if s.SizeBytes != sizes[s.Address] {
			t.Fatalf("barrel %s SizeBytes = %d, want %d", s.Address, s.SizeBytes, sizes[s.Address])
		}
	}
}

func TestSendUntilReturnsFirstSuccess(t *testing.T) {
	addrs := []string{"a", "b", "c"}
	lb := New(addrs, nil)

	var calls int
	result := SendUntil(lb, func(_ string, client *rpc.Client) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("fail")
		}
		return "ok", nil
	})

	if !result.Ok || len(result.Responses) != 1 || result.Responses[0] != "ok" {
		t.Fatalf("SendUntil() = %+v, want one Ok response", result)
	}
	if result.OfflineCount != 1 {
		t.Fatalf("OfflineCount = %d, want 1 (one failed attempt before success)", result.OfflineCount)
	}
}

func TestSendUntilAllOffline(t *testing.T) {
	addrs := []string{"a", "b"}
	lb := New(addrs, nil)

	result := SendUntil(lb, func(_ string, client *rpc.Client) (string, error) {
		return "", errors.New("always fails")
	})
	if result.Ok {
		t.Fatalf("SendUntil() with all-failing barrels returned Ok=true")
	}
	if result.AllOfflineBarrels != len(addrs) {
		t.Fatalf("AllOfflineBarrels = %d, want %d", result.AllOfflineBarrels, len(addrs))
	}
}

func TestGetBarrelsStatusPreservesConfiguredOrder(t *testing.T) {
	addrs := []string{"first", "second", "third"}
	lb := New(addrs, nil)

	status := lb.GetBarrelsStatus()
	for i, s := range status {
		if s.Address != addrs[i] {
			t.Fatalf("status[%d].Address = %q, want %q", i, s.Address, addrs[i])
		}
	}
}

func TestRecordSizeUpdatesStatus(t *testing.T) {
	lb := New([]string{"only"}, nil)
	lb.RecordSize("only", 42)

	status := lb.GetBarrelsStatus()
	if status[0].SizeBytes != 42 {
		t.Fatalf("SizeBytes = %d, want 42", status[0].SizeBytes)
	}
}
