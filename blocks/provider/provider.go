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

// Package provider resolves a place from an ID, a live object or a legacy result, publishes it to
// the consumers registered on its feed, and fetches the fields they need in a single request.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/cache"
	"github.com/mapblocks/service/blocks/feed"
	"github.com/mapblocks/service/blocks/place"
)

type State int

const (
	Empty State = iota
	Loading
	Loaded
	Error
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RequestError is what the provider reports when resolving or fetching a place fails.
type RequestError struct {
	PlaceID string
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request for place %q failed: %v", e.PlaceID, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Places is shared by every provider of the application.
	Places *cache.Places
	SDK    place.SDK
	// Fields, if not empty, is fetched instead of what the consumers require.
	Fields []place.Field
	// DisableAutoFetch stops SetPlace, SetLive and SetLegacyResult from fetching. Places set by ID
	// are always fetched.
	DisableAutoFetch bool
	// Settle runs between publishing a newly resolved place and collecting the consumers' field
	// requirements, so consumers connecting in response to that publish are counted. It defaults to
	// yielding the processor once.
	Settle func(ctx context.Context)
	// OnRequestError is called whenever a cycle ends in the Error state.
	OnRequestError func(err *RequestError)
	// OnStateChange is called on every state transition.
	OnStateChange func(s State)
}

// Provider owns a feed of *place.Place. Each Set call starts a new cycle; only the most recent
// cycle may publish or change state.
type Provider struct {
	opts Options
	feed *feed.Feed[*place.Place]

	// transitions serializes state changes and publishes.
	transitions sync.Mutex

	mu    sync.Mutex
	gen   uint64
	src   source
	state State
	place *place.Place
	err   error
}

// source is what a cycle resolves the place from. Exactly one of id, place and legacy is set,
// unless the source is empty.
type source struct {
	id     string
	place  *place.Place
	legacy *place.LegacyResult
	fetch  bool
}

func (s source) empty() bool {
	return s.id == "" && s.place == nil && s.legacy == nil
}

func New(opts Options) (*Provider, error) {
	if opts.Places == nil {
		return nil, errors.New("provider needs a place cache")
	}
	if opts.Settle == nil {
		opts.Settle = func(context.Context) { runtime.Gosched() }
	}
	return &Provider{opts: opts, feed: feed.New[*place.Place]()}, nil
}

// Feed is what consumers connect to.
func (p *Provider) Feed() *feed.Feed[*place.Place] {
	return p.feed
}

func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Place returns the place published by the current cycle, or nil.
func (p *Provider) Place() *place.Place {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.place
}

// Err returns the error that put the provider in the Error state.
func (p *Provider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// SetID shows the place with the given ID, fetching it through the cache. The returned channel is
// closed once the cycle has settled or been superseded. An empty ID empties the provider.
func (p *Provider) SetID(ctx context.Context, id string) <-chan struct{} {
	return p.start(ctx, source{id: id, fetch: true})
}

// SetPlace shows pl, storing it in the cache.
func (p *Provider) SetPlace(ctx context.Context, pl *place.Place) <-chan struct{} {
	return p.start(ctx, source{place: pl, fetch: !p.opts.DisableAutoFetch})
}

// SetLive shows a live vendor place object.
func (p *Provider) SetLive(ctx context.Context, live place.Live) <-chan struct{} {
	if live == nil {
		return p.start(ctx, source{})
	}
	return p.SetPlace(ctx, place.Wrap(p.opts.SDK, live))
}

// SetLegacyResult shows the place described by r, storing its proxy in the cache.
func (p *Provider) SetLegacyResult(ctx context.Context, r *place.LegacyResult) <-chan struct{} {
	return p.start(ctx, source{legacy: r, fetch: !p.opts.DisableAutoFetch})
}

// Refresh runs a new cycle on the current place, fetching whatever the consumers now require.
func (p *Provider) Refresh(ctx context.Context) <-chan struct{} {
	p.mu.Lock()
	src := p.src
	current := p.place
	p.mu.Unlock()
	if src.id == "" && current != nil {
		src = source{place: current}
	}
	src.fetch = true
	return p.start(ctx, src)
}

func (p *Provider) start(ctx context.Context, src source) <-chan struct{} {
	done := make(chan struct{})
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.src = src
	p.mu.Unlock()

	if src.empty() {
		p.transition(gen, Empty, nil, nil, true)
		close(done)
		return done
	}
	p.transition(gen, Loading, nil, nil, false)
	go func() {
		defer close(done)
		p.run(ctx, gen, src)
	}()
	return done
}

func (p *Provider) run(ctx context.Context, gen uint64, src source) {
	ctx, span := beeline.StartSpan(ctx, "provider.cycle")
	defer span.Send()

	pl, err := p.resolve(ctx, src)
	if err != nil {
		span.AddField("error", err)
		p.fail(gen, placeID(src), err, true)
		return
	}
	span.AddField("place_id", pl.ID())
	if !p.transition(gen, Loading, pl, nil, true) {
		return
	}
	if !src.fetch {
		p.transition(gen, Loaded, pl, nil, false)
		return
	}

	p.opts.Settle(ctx)
	if !p.current(gen) {
		span.AddField("superseded", true)
		return
	}
	fields := p.fieldsToFetch()
	span.AddField("fields", len(fields))
	if len(fields) > 0 {
		if err := pl.FetchFields(ctx, fields); err != nil {
			span.AddField("error", err)
			p.fail(gen, pl.ID(), err, false)
			return
		}
	}
	p.transition(gen, Loaded, pl, nil, true)
}

func (p *Provider) resolve(ctx context.Context, src source) (*place.Place, error) {
	switch {
	case src.id != "":
		return p.opts.Places.Get(ctx, src.id)
	case src.legacy != nil:
		pl, err := place.FromLegacy(p.opts.SDK, src.legacy)
		if err != nil {
			return nil, err
		}
		p.opts.Places.Store(pl)
		return pl, nil
	default:
		p.opts.Places.Store(src.place)
		return src.place, nil
	}
}

// fieldsToFetch is the override list if there is one, otherwise the union of what every connected
// consumer requires.
func (p *Provider) fieldsToFetch() []place.Field {
	if len(p.opts.Fields) > 0 {
		return p.opts.Fields
	}
	var fields []place.Field
	for _, f := range p.feed.RequiredFields() {
		fields = append(fields, place.Field(f))
	}
	return fields
}

func (p *Provider) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

// fail moves the cycle to Error. If nothing could be resolved, the previous place is withdrawn.
func (p *Provider) fail(gen uint64, id string, err error, unresolved bool) {
	reqErr := &RequestError{PlaceID: id, Err: err}
	if !p.transition(gen, Error, nil, reqErr, unresolved) {
		return
	}
	log.Printf("place provider: %v\n", reqErr)
	if p.opts.OnRequestError != nil {
		p.opts.OnRequestError(reqErr)
	}
}

// transition moves a still current cycle to state s. With publish set, pl becomes the provider's
// place and is published. It reports whether the cycle was still current.
func (p *Provider) transition(gen uint64, s State, pl *place.Place, err error, publish bool) bool {
	p.transitions.Lock()
	defer p.transitions.Unlock()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return false
	}
	changed := p.state != s
	p.state = s
	p.err = err
	if publish {
		p.place = pl
	}
	p.mu.Unlock()

	if publish {
		p.feed.Publish(pl)
	}
	if changed && p.opts.OnStateChange != nil {
		p.opts.OnStateChange(s)
	}
	return true
}

func placeID(src source) string {
	switch {
	case src.id != "":
		return src.id
	case src.place != nil:
		return src.place.ID()
	case src.legacy != nil && src.legacy.PlaceID != nil:
		return *src.legacy.PlaceID
	}
	return ""
}
