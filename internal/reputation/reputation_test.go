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

package reputation

import (
	"context"
	"testing"
)

func TestStubClassifyIsDeterministic(t *testing.T) {
	var s Stub
	v1, err := s.Classify(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	v2, _ := s.Classify(context.Background(), "example.com")
	if v1 != v2 {
		t.Fatalf("Classify() not deterministic: %v != %v", v1, v2)
	}
}

func TestStubClassifyNeverErrors(t *testing.T) {
	var s Stub
	hosts := []string{"a.example", "b.example", "", "phish-ish-host.example"}
	for _, h := range hosts {
		if _, err := s.Classify(context.Background(), h); err != nil {
			t.Errorf("Classify(%q) error = %v, want nil", h, err)
		}
	}
}
