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

package route

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
	"github.com/mapblocks/service/blocks/provider"
)

// RequestError is reported when computing a route fails.
type RequestError struct {
	Request Request
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("route request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

var errNoRoutes = errors.New("no routes found")

type Options struct {
	Computer Computer
	// Routes is shared by every route provider. It must not be the place cache.
	Routes *cache.Cache[*Route]
	// Settle runs before the request is read and sent. It defaults to yielding the processor once.
	Settle         func(ctx context.Context)
	OnRequestError func(err *RequestError)
	OnStateChange  func(s provider.State)
}

// Provider publishes the route for its current request, or the route set with SetRoute, which
// always wins.
type Provider struct {
	opts Options
	feed *feed.Feed[*Route]

	transitions sync.Mutex

	mu       sync.Mutex
	gen      uint64
	req      Request
	hasReq   bool
	override *Route
	state    provider.State
	route    *Route
	err      error
}

func NewProvider(opts Options) (*Provider, error) {
	if opts.Computer == nil {
		return nil, errors.New("route provider needs a directions backend")
	}
	if opts.Routes == nil {
		return nil, errors.New("route provider needs a route cache")
	}
	if opts.Settle == nil {
		opts.Settle = func(context.Context) { runtime.Gosched() }
	}
	return &Provider{opts: opts, feed: feed.New[*Route]()}, nil
}

func (p *Provider) Feed() *feed.Feed[*Route] {
	return p.feed
}

func (p *Provider) State() provider.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Route returns the published route, or nil.
func (p *Provider) Route() *Route {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.route
}

func (p *Provider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// SetRequest replaces the request. An invalid request is logged and not sent; the provider then
// shows only the route set with SetRoute, if any. The returned channel is closed once the request
// has been settled or superseded.
func (p *Provider) SetRequest(ctx context.Context, req Request) <-chan struct{} {
	p.mu.Lock()
	p.req, p.hasReq = req, true
	p.mu.Unlock()
	return p.start(ctx)
}

// SetRoute makes r the published route regardless of the request. Setting nil goes back to the
// computed route.
func (p *Provider) SetRoute(ctx context.Context, r *Route) <-chan struct{} {
	p.mu.Lock()
	p.override = r
	p.mu.Unlock()
	return p.start(ctx)
}

func (p *Provider) start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	p.mu.Lock()
	p.gen++
	gen := p.gen
	req, hasReq, override := p.req, p.hasReq, p.override
	p.mu.Unlock()

	if override != nil {
		p.transition(gen, provider.Loaded, override, nil, true)
		close(done)
		return done
	}
	if !hasReq {
		p.transition(gen, provider.Empty, nil, nil, true)
		close(done)
		return done
	}
	if err := req.Validate(); err != nil {
		log.Printf("route provider: %v\n", err)
		p.transition(gen, provider.Empty, nil, nil, true)
		close(done)
		return done
	}
	p.transition(gen, provider.Loading, nil, nil, false)
	go func() {
		defer close(done)
		p.run(ctx, gen, req)
	}()
	return done
}

func (p *Provider) run(ctx context.Context, gen uint64, req Request) {
	ctx, span := beeline.StartSpan(ctx, "route_provider.cycle")
	defer span.Send()

	p.opts.Settle(ctx)
	if !p.current(gen) {
		span.AddField("superseded", true)
		return
	}
	key := req.Key()
	r, err := p.opts.Routes.Load(ctx, key, func(ctx context.Context, _ string) (*Route, error) {
		routes, err := p.opts.Computer.ComputeRoutes(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(routes) == 0 || routes[0] == nil {
			return nil, errNoRoutes
		}
		return routes[0], nil
	})
	if err != nil {
		span.AddField("error", err)
		reqErr := &RequestError{Request: req, Err: err}
		if p.transition(gen, provider.Error, nil, reqErr, true) {
			log.Printf("route provider: %v\n", reqErr)
			if p.opts.OnRequestError != nil {
				p.opts.OnRequestError(reqErr)
			}
		}
		return
	}
	p.transition(gen, provider.Loaded, r, nil, true)
}

func (p *Provider) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

func (p *Provider) transition(gen uint64, s provider.State, r *Route, err error, publish bool) bool {
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
		p.route = r
	}
	p.mu.Unlock()

	if publish {
		p.feed.Publish(r)
	}
	if changed && p.opts.OnStateChange != nil {
		p.opts.OnStateChange(s)
	}
	return true
}

// NewConsumer returns a consumer of a route provider's feed.
func NewConsumer() *feed.Consumer[*Route] {
	return feed.NewConsumer(feed.ConsumerOptions[*Route]{})
}
