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

package indexstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// FilePersister is the default Persister: the whole snapshot is written to
// a single path with create-and-truncate semantics, via a temp-file-then-
// rename so a reader never observes a half-written file. This is the
// "file" adapter in barrel.persistence_adapter; write amplification on every
// Store is deliberate per the spec's resource policy.
type FilePersister struct {
	path string
}

// NewFilePersister returns a Persister that snapshots to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path reports the file this persister reads from and writes to, so a Load
// can bind its returned Store to it.
func (f *FilePersister) Path() string { return f.path }

func (f *FilePersister) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".indexstore-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp snapshot file: %w", err)
	}
	return nil
}

func (f *FilePersister) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// RedisPersister snapshots the same full-blob under a single Redis key
// instead of a local path, for a Barrel deployment that wants its index
// survivable across container restarts without a mounted volume. Grounded
// on the teacher's persistence.GoRedisEvaler wrapper over *redis.Client.
type RedisPersister struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisPersister returns a Persister backed by a Redis key. ttl of zero
// means the key never expires, matching a durable on-disk file's lifetime.
func NewRedisPersister(addr, key string, ttl time.Duration) *RedisPersister {
	return &RedisPersister{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
		ttl:    ttl,
	}
}

func (r *RedisPersister) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

func (r *RedisPersister) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Path reports the Redis key this persister reads from and writes to, so a
// Load can bind its returned Store to it.
func (r *RedisPersister) Path() string { return r.key }

// BuildPersister constructs a Persister from a config-driven adapter name.
// Supported adapters: "file" (default) and "redis". This mirrors the
// teacher's persistence.BuildPersister adapter-selector pattern.
func BuildPersister(adapter string, path, redisAddr, redisKey string, redisTTL time.Duration) (Persister, error) {
	switch adapter {
	case "", "file":
		if path == "" {
			return nil, errors.New("barrel.snapshot_path is required for the file persistence adapter")
		}
		return NewFilePersister(path), nil
	case "redis":
		if redisAddr == "" {
			return nil, errors.New("barrel.redis_addr is required for the redis persistence adapter")
		}
		if redisKey == "" {
			redisKey = "distsearch:index"
		}
		return NewRedisPersister(redisAddr, redisKey, redisTTL), nil
	default:
		return nil, fmt.Errorf("unknown persistence adapter: %s", adapter)
	}
}
