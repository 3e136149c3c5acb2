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

package cache

import (
	"context"
	"errors"

	"github.com/mapblocks/service/blocks/place"
)

// Places caches place proxies by place ID, so every provider looking at one place shares a single
// object and the fields any of them has fetched.
type Places struct {
	c *Cache[*place.Place]
}

// NewPlaces returns a cache of at most size places. Misses create an unfetched proxy from sdk;
// fetching is up to the caller.
func NewPlaces(size int, sdk place.SDK) (*Places, error) {
	c, err := New(size, func(_ context.Context, id string) (*place.Place, error) {
		if id == "" {
			return nil, errors.New("empty place ID")
		}
		return place.New(sdk, id), nil
	})
	if err != nil {
		return nil, err
	}
	return &Places{c: c}, nil
}

func (p *Places) Get(ctx context.Context, id string) (*place.Place, error) {
	return p.c.Get(ctx, id)
}

// Store puts pl in the cache under its own ID, replacing any other object for that ID.
func (p *Places) Store(pl *place.Place) {
	p.c.Put(pl.ID(), pl)
}

func (p *Places) Len() int {
	return p.c.Len()
}
