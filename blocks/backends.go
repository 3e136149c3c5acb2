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

package blocks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mapblocks/service/blocks/config"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/quota"
	"github.com/mapblocks/service/blocks/route"
	"github.com/mapblocks/service/blocks/util/gmaps"
	"github.com/mapblocks/service/blocks/util/gplaces"
	"github.com/mapblocks/service/blocks/util/routes"
)

var errNotInitialized = errors.New("backends used before initialization finished")

// Backends are the vendor clients places and routes are built on.
type Backends struct {
	SDK      place.SDK
	Computer route.Computer
}

// Loader builds the backends once. Construct it, call Initialize, and wait for the returned
// channel before calling Backends.
type Loader struct {
	load func(ctx context.Context) (Backends, error)

	once sync.Once
	done chan struct{}

	mu       sync.Mutex
	finished bool
	backends Backends
	err      error
}

func NewLoader(load func(ctx context.Context) (Backends, error)) *Loader {
	return &Loader{load: load, done: make(chan struct{})}
}

// Initialize starts loading. Calling it again returns the same channel without loading twice.
func (l *Loader) Initialize(ctx context.Context) <-chan struct{} {
	l.once.Do(func() {
		go func() {
			defer close(l.done)
			b, err := l.load(ctx)
			l.mu.Lock()
			l.backends, l.err, l.finished = b, err, true
			l.mu.Unlock()
		}()
	})
	return l.done
}

// Backends returns what Initialize loaded.
func (l *Loader) Backends() (Backends, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.finished {
		return Backends{}, errNotInitialized
	}
	return l.backends, l.err
}

// ConfiguredBackends loads the clients c asks for, charging every call to charger.
func ConfiguredBackends(c *config.Config, charger quota.Charger) func(ctx context.Context) (Backends, error) {
	return func(ctx context.Context) (Backends, error) {
		var b Backends
		if c.GoogleMapsKey == "" {
			return b, errors.New("GOOGLE_MAPS_KEY is not set")
		}
		legacy, err := gmaps.NewClient(c.GoogleMapsKey, charger)
		if err != nil {
			return b, err
		}
		b.SDK.Legacy = legacy
		if c.PlacesAPI == config.PlacesAPINew {
			live, err := gplaces.NewClient(ctx, c.GoogleMapsKey, charger)
			if err != nil {
				return b, fmt.Errorf("failed to load the places API: %w", err)
			}
			b.SDK.Live = live
		} else {
			log.Printf("places API (new) disabled, using legacy details only\n")
		}
		switch c.RoutesBackend {
		case config.RoutesBackendDirections:
			b.Computer = legacy
		default:
			rc, err := routes.NewClient(ctx, c.GoogleMapsKey, charger)
			if err != nil {
				return b, err
			}
			b.Computer = rc
		}
		return b, nil
	}
}
