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

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mapblocks/service/blocks/cache"
	"github.com/mapblocks/service/blocks/place"
)

type fetch struct {
	id     string
	fields []string
}

// backend hands out live places that fill themselves from data and records every fetch.
type backend struct {
	mu      sync.Mutex
	data    place.Fields
	err     error
	fetches []fetch
}

func newBackend() *backend {
	name, rating := "Corner Cafe", 4.5
	address := "1 Main St"
	return &backend{data: place.Fields{DisplayName: &name, Rating: &rating, FormattedAddress: &address}}
}

func (b *backend) NewLive(id string) place.Live {
	return &fakeLive{id: id, b: b}
}

func (b *backend) calls() []fetch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]fetch(nil), b.fetches...)
}

type fakeLive struct {
	id   string
	b    *backend
	mu   sync.Mutex
	have place.Fields
}

func (l *fakeLive) ID() string { return l.id }

func (l *fakeLive) Fields() place.Fields {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.have
}

func (l *fakeLive) FetchFields(_ context.Context, fields []place.Field) error {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	sort.Strings(names)
	l.b.mu.Lock()
	l.b.fetches = append(l.b.fetches, fetch{id: l.id, fields: names})
	err, data := l.b.err, l.b.data
	l.b.mu.Unlock()
	if err != nil {
		return err
	}

	raw, _ := json.Marshal(data)
	var all map[string]json.RawMessage
	_ = json.Unmarshal(raw, &all)
	picked := make(map[string]json.RawMessage)
	for _, f := range names {
		if v, ok := all[f]; ok {
			picked[f] = v
		}
	}
	raw, _ = json.Marshal(picked)
	var got place.Fields
	_ = json.Unmarshal(raw, &got)

	l.mu.Lock()
	l.have.Overlay(got, true)
	l.mu.Unlock()
	return nil
}

func (l *fakeLive) IsOpen(context.Context, time.Time) (*bool, error) {
	return nil, place.ErrNotAvailable
}

// gate holds every cycle at the settle point until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 10), release: make(chan struct{})}
}

func (g *gate) settle(context.Context) {
	g.entered <- struct{}{}
	<-g.release
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not settle")
	}
}

func newProvider(t *testing.T, b *backend, opts Options) (*Provider, *cache.Places) {
	t.Helper()
	sdk := place.SDK{Live: b}
	places, err := cache.NewPlaces(10, sdk)
	if err != nil {
		t.Fatal(err)
	}
	opts.Places = places
	opts.SDK = sdk
	p, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return p, places
}

type changeLog struct {
	mu      sync.Mutex
	changes [][2]*place.Place
}

func watch(c *Consumer) *changeLog {
	l := &changeLog{}
	c.OnChange(func(newValue, oldValue *place.Place) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.changes = append(l.changes, [2]*place.Place{newValue, oldValue})
	})
	return l
}

func (l *changeLog) get() [][2]*place.Place {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][2]*place.Place(nil), l.changes...)
}

func TestConsumersShareOneFetch(t *testing.T) {
	b := newBackend()
	g := newGate()
	p, _ := newProvider(t, b, Options{Settle: g.settle})
	ctx := context.Background()

	done := p.SetID(ctx, "id1")
	<-g.entered

	name := NewConsumer(place.FieldDisplayName)
	rating := NewConsumer(place.FieldRating, place.FieldDisplayName)
	passing := NewConsumer(place.FieldPhotos)
	nameChanges, ratingChanges := watch(name), watch(rating)
	name.Connect(p.Feed())
	rating.Connect(p.Feed())
	passing.Connect(p.Feed())
	passing.Disconnect()
	close(g.release)
	wait(t, done)

	want := []fetch{{id: "id1", fields: []string{"displayName", "rating"}}}
	if got := b.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetches = %+v, want %+v", got, want)
	}
	if p.State() != Loaded {
		t.Fatalf("state = %v, want loaded", p.State())
	}
	loaded := p.Place()
	for _, l := range []*changeLog{nameChanges, ratingChanges} {
		changes := l.get()
		if len(changes) != 1 {
			t.Fatalf("consumer saw %d changes, want 1", len(changes))
		}
		if changes[0][0] != loaded || changes[0][1] != loaded {
			t.Errorf("change = %v, want the loaded place twice", changes[0])
		}
	}
	if !name.HasSufficientData() || !rating.HasSufficientData() {
		t.Error("consumers lack data after loading")
	}
	f := loaded.Fields()
	if *f.DisplayName != "Corner Cafe" || *f.Rating != 4.5 {
		t.Errorf("fields = %+v", f)
	}
}

func TestPublishesBeforeFetching(t *testing.T) {
	b := newBackend()
	g := newGate()
	p, _ := newProvider(t, b, Options{Settle: g.settle})
	c := NewConsumer(place.FieldRating)
	c.Connect(p.Feed())
	changes := watch(c)

	done := p.SetID(context.Background(), "id1")
	<-g.entered
	if got := c.Value(); got == nil || got.ID() != "id1" {
		t.Fatalf("value before fetching = %v", got)
	}
	if c.HasSufficientData() {
		t.Fatal("sufficient before fetching")
	}
	if p.State() != Loading {
		t.Fatalf("state = %v, want loading", p.State())
	}
	close(g.release)
	wait(t, done)

	got := changes.get()
	if len(got) != 2 || got[0][1] != nil || got[1][0] != got[0][0] {
		t.Fatalf("changes = %v, want nil->place then place->place", got)
	}
	if !c.HasSufficientData() {
		t.Fatal("not sufficient after fetching")
	}
}

func TestLastSetWins(t *testing.T) {
	b := newBackend()
	g := newGate()
	p, _ := newProvider(t, b, Options{Settle: g.settle, Fields: []place.Field{place.FieldDisplayName}})
	ctx := context.Background()

	first := p.SetID(ctx, "a")
	<-g.entered
	second := p.SetID(ctx, "b")
	<-g.entered
	close(g.release)
	wait(t, first)
	wait(t, second)

	want := []fetch{{id: "b", fields: []string{"displayName"}}}
	if got := b.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetches = %+v, want %+v", got, want)
	}
	if p.Place().ID() != "b" || p.Feed().Value().ID() != "b" {
		t.Fatalf("provider settled on %q", p.Place().ID())
	}
	if p.State() != Loaded {
		t.Fatalf("state = %v", p.State())
	}
}

func TestNoConsumersNoFetch(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{})
	wait(t, p.SetID(context.Background(), "id1"))
	if len(b.calls()) != 0 {
		t.Fatalf("fetched with no consumers: %+v", b.calls())
	}
	if p.State() != Loaded {
		t.Fatalf("state = %v", p.State())
	}
}

func TestFieldsOverride(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{Fields: []place.Field{place.FieldFormattedAddress}})
	c := NewConsumer(place.FieldRating)
	c.Connect(p.Feed())
	wait(t, p.SetID(context.Background(), "id1"))
	want := []fetch{{id: "id1", fields: []string{"formattedAddress"}}}
	if got := b.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetches = %+v, want %+v", got, want)
	}
}

func TestFetchError(t *testing.T) {
	b := newBackend()
	boom := errors.New("boom")
	b.err = boom
	var mu sync.Mutex
	var reported []*RequestError
	var states []State
	p, _ := newProvider(t, b, Options{
		OnRequestError: func(err *RequestError) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		},
		OnStateChange: func(s State) {
			mu.Lock()
			defer mu.Unlock()
			states = append(states, s)
		},
	})
	c := NewConsumer(place.FieldRating)
	c.Connect(p.Feed())

	wait(t, p.SetID(context.Background(), "id1"))
	if p.State() != Error {
		t.Fatalf("state = %v, want error", p.State())
	}
	if !errors.Is(p.Err(), boom) {
		t.Fatalf("Err = %v", p.Err())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0].PlaceID != "id1" || !errors.Is(reported[0], boom) {
		t.Fatalf("reported = %v", reported)
	}
	if want := []State{Loading, Error}; !reflect.DeepEqual(states, want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	if len(b.calls()) != 1 {
		t.Fatalf("fetch retried: %+v", b.calls())
	}
}

func TestSetLegacyResult(t *testing.T) {
	b := newBackend()
	p, places := newProvider(t, b, Options{DisableAutoFetch: true})
	c := NewConsumer(place.FieldDisplayName)
	c.Connect(p.Feed())

	id, name := "legacy1", "From legacy"
	wait(t, p.SetLegacyResult(context.Background(), &place.LegacyResult{PlaceID: &id, Name: &name}))
	if len(b.calls()) != 0 {
		t.Fatalf("fetched with auto fetch disabled: %+v", b.calls())
	}
	if p.State() != Loaded {
		t.Fatalf("state = %v", p.State())
	}
	if !c.HasSufficientData() || *c.Value().Fields().DisplayName != name {
		t.Fatal("consumer did not get the normalized legacy fields")
	}
	cached, _ := places.Get(context.Background(), id)
	if cached != p.Place() {
		t.Fatal("legacy place was not stored in the cache")
	}
}

func TestSetLegacyResultWithoutID(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{})
	wait(t, p.SetLegacyResult(context.Background(), &place.LegacyResult{}))
	if p.State() != Error || p.Place() != nil {
		t.Fatalf("state = %v, place = %v", p.State(), p.Place())
	}
}

func TestIDAlwaysFetches(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{DisableAutoFetch: true})
	c := NewConsumer(place.FieldRating)
	c.Connect(p.Feed())
	wait(t, p.SetID(context.Background(), "id1"))
	if len(b.calls()) != 1 {
		t.Fatalf("fetches = %+v, want one", b.calls())
	}
}

func TestSetPlaceStoresInCache(t *testing.T) {
	b := newBackend()
	p, places := newProvider(t, b, Options{})
	pl := place.New(place.SDK{Live: b}, "id1")
	wait(t, p.SetPlace(context.Background(), pl))
	if got, _ := places.Get(context.Background(), "id1"); got != pl {
		t.Fatal("cache does not hold the place that was set")
	}
	if p.Place() != pl {
		t.Fatal("provider does not publish the place that was set")
	}
}

func TestProvidersShareCachedPlace(t *testing.T) {
	b := newBackend()
	sdk := place.SDK{Live: b}
	places, _ := cache.NewPlaces(10, sdk)
	one, _ := New(Options{Places: places, SDK: sdk})
	two, _ := New(Options{Places: places, SDK: sdk})
	c := NewConsumer(place.FieldRating)
	c.Connect(one.Feed())

	wait(t, one.SetID(context.Background(), "id1"))
	wait(t, two.SetID(context.Background(), "id1"))
	if one.Place() != two.Place() {
		t.Fatal("providers got different objects for one ID")
	}
	if len(b.calls()) != 1 {
		t.Fatalf("fetches = %+v, want one", b.calls())
	}
}

func TestRefreshFetchesNewRequirements(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{})
	c := NewConsumer(place.FieldDisplayName)
	c.Connect(p.Feed())
	ctx := context.Background()
	wait(t, p.SetID(ctx, "id1"))

	RequireFields(c, place.FieldDisplayName, place.FieldRating)
	if c.HasSufficientData() {
		t.Fatal("sufficient before the new field was fetched")
	}
	wait(t, p.Refresh(ctx))
	want := []fetch{
		{id: "id1", fields: []string{"displayName"}},
		{id: "id1", fields: []string{"rating"}},
	}
	if got := b.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetches = %+v, want %+v", got, want)
	}
	if !c.HasSufficientData() {
		t.Fatal("not sufficient after refresh")
	}
}

func TestFieldWithoutValueIsFetchedOnce(t *testing.T) {
	b := newBackend()
	b.data.Rating = nil
	p, _ := newProvider(t, b, Options{})
	c := NewConsumer(place.FieldRating)
	c.Connect(p.Feed())
	ctx := context.Background()
	wait(t, p.SetID(ctx, "id1"))
	wait(t, p.Refresh(ctx))
	wait(t, p.Refresh(ctx))

	want := []fetch{{id: "id1", fields: []string{"rating"}}}
	if got := b.calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetches = %+v, want %+v", got, want)
	}
	if !c.HasSufficientData() {
		t.Fatal("a fetched field without a value should count as sufficient")
	}
	if got := c.Value().State(place.FieldRating); got != place.NoValue {
		t.Errorf("rating state = %v", got)
	}
	if p.State() != Loaded {
		t.Errorf("state = %v", p.State())
	}
}

func TestSetEmpty(t *testing.T) {
	b := newBackend()
	p, _ := newProvider(t, b, Options{})
	c := NewConsumer()
	c.Connect(p.Feed())
	ctx := context.Background()
	wait(t, p.SetID(ctx, "id1"))
	wait(t, p.SetID(ctx, ""))
	if p.State() != Empty || p.Place() != nil || c.Value() != nil {
		t.Fatalf("state = %v, place = %v", p.State(), p.Place())
	}
}

func TestNewRequiresCache(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected an error without a cache")
	}
}
