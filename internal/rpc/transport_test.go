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
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

type echoRequest struct {
	Value string `json:"value"`
}

type echoResponse struct {
	Echoed string `json:"echoed"`
}

func TestHandleAndCallRoundTrip(t *testing.T) {
	srv := NewServer()
	Handle(srv, "Echo", func(_ context.Context, req echoRequest) (echoResponse, error) {
		return echoResponse{Echoed: req.Value}, nil
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := NewClient(ts.URL)
	defer client.Close()

	resp, err := Call[echoRequest, echoResponse](context.Background(), client, "Echo", echoRequest{Value: "hi"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if resp.Echoed != "hi" {
		t.Fatalf("Call() = %+v, want Echoed=hi", resp)
	}
}

func TestHandlerPropagatesHandlerError(t *testing.T) {
	srv := NewServer()
	Handle(srv, "Fail", func(_ context.Context, _ echoRequest) (echoResponse, error) {
		return echoResponse{}, errors.New("boom")
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := NewClient(ts.URL)
	defer client.Close()

	if _, err := Call[echoRequest, echoResponse](context.Background(), client, "Fail", echoRequest{}); err == nil {
		t.Fatal("Call() returned nil error for a handler that failed")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Success:            "Success",
		Error:              "Error",
		InvalidUrl:         "InvalidUrl",
		AlreadyIndexedUrl:  "AlreadyIndexedUrl",
		UnavailableBarrels: "UnavailableBarrels",
		Unimplemented:      "Unimplemented",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
