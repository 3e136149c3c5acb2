// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache holds bounded in-memory caches of shared entities. A cache is created once and
// handed to every provider of one entity kind; places and routes get separate caches.
package cache

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Loader produces the value for a key that isn't cached.
type Loader[V any] func(ctx context.Context, key string) (V, error)

// Cache is a fixed-size least recently used cache that fills itself through a Loader. It is safe
// for concurrent use.
type Cache[V any] struct {
	lru  *lru.Cache[string, V]
	load Loader[V]
}

// New creates a cache holding at most size entries. load may be nil if every lookup goes through
// Load.
func New[V any](size int, load Loader[V]) (*Cache[V], error) {
	l, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache of size %d: %w", size, err)
	}
	return &Cache[V]{lru: l, load: load}, nil
}

// Get returns the cached value for key, loading and storing it on a miss. If two callers miss on
// the same key at once, both load but the first value stored is the one both get back.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, error) {
	return c.Load(ctx, key, c.load)
}

// Load is Get with a loader for this lookup only.
func (c *Cache[V]) Load(ctx context.Context, key string, load Loader[V]) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	if load == nil {
		var zero V
		return zero, errors.New("cache miss with no loader")
	}
	v, err := load(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	if prev, ok, _ := c.lru.PeekOrAdd(key, v); ok {
		return prev, nil
	}
	return v, nil
}

// Peek returns the cached value for key without loading it or refreshing its recency.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.lru.Peek(key)
}

// Put stores v under key, replacing whatever was there.
func (c *Cache[V]) Put(key string, v V) {
	c.lru.Add(key, v)
}

func (c *Cache[V]) Remove(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
