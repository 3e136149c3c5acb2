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

// Package place models a point of interest and hides the differences between the Places API
// (new), which fetches fields lazily on a live object, and the legacy details API.
package place

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/hours"
	"golang.org/x/exp/slices"
)

// ErrNotAvailable is returned by a Live method that the backing API version doesn't support.
var ErrNotAvailable = errors.New("method is not available")

// IsNotAvailable reports whether err means "unsupported here, use the fallback". Errors that only
// carry the vendor's message are recognised too.
func IsNotAvailable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotAvailable) || strings.Contains(err.Error(), "is not available")
}

// Live is a place object from the Places API (new). Fields fetched through it accumulate on it.
type Live interface {
	ID() string
	Fields() Fields
	FetchFields(ctx context.Context, fields []Field) error
	// IsOpen reports whether the place is open at t, or nil if that isn't known.
	IsOpen(ctx context.Context, t time.Time) (*bool, error)
}

type LiveFactory interface {
	NewLive(id string) Live
}

// LegacyLookup is the legacy place details call. fields are legacy field names.
type LegacyLookup interface {
	LegacyDetails(ctx context.Context, id string, fields []string) (*LegacyResult, error)
}

// SDK bundles the vendor primitives places are built on. A nil Live makes every place fall back to
// the legacy lookup; a nil Legacy leaves no fallback.
type SDK struct {
	Live   LiveFactory
	Legacy LegacyLookup
}

// Place is the one place type the rest of the system deals with. Reads see fields translated from
// a legacy result first, then whatever the live object has fetched.
type Place struct {
	id     string
	live   Live
	legacy LegacyLookup

	mu         sync.Mutex
	normalized Fields
	// fetched holds every field a fetch has answered for, with or without a value.
	fetched  map[Field]bool
	revision uint64
}

// FieldState tells a field that was never fetched from one the place has no value for.
type FieldState int

const (
	Unfetched FieldState = iota
	NoValue
	HasValue
)

// New returns a place with nothing fetched yet. No network calls are made.
func New(sdk SDK, id string) *Place {
	var live Live
	if sdk.Live != nil {
		live = sdk.Live.NewLive(id)
	} else {
		live = unsupportedLive{id: id}
	}
	return &Place{id: id, live: live, legacy: sdk.Legacy}
}

// Wrap adopts an existing live object.
func Wrap(sdk SDK, live Live) *Place {
	return &Place{id: live.ID(), live: live, legacy: sdk.Legacy}
}

// FromLegacy builds a place whose fields start out as the translation of r. r must carry a place
// ID, and isn't retained.
func FromLegacy(sdk SDK, r *LegacyResult) (*Place, error) {
	if r == nil || r.PlaceID == nil || *r.PlaceID == "" {
		return nil, fmt.Errorf("legacy result has no place ID")
	}
	p := New(sdk, *r.PlaceID)
	p.normalized = Normalize(r)
	p.markLocked(p.normalized.Present())
	return p, nil
}

func (p *Place) ID() string {
	return p.id
}

// Fields returns a snapshot of everything known about the place.
func (p *Place) Fields() Fields {
	f := p.live.Fields()
	p.mu.Lock()
	defer p.mu.Unlock()
	f.Overlay(p.normalized, true)
	return f
}

// Has reports whether field is known, including known to have no value.
func (p *Place) Has(field Field) bool {
	return p.State(field) != Unfetched
}

// State reports whether field has a value, was fetched without one, or hasn't been fetched.
func (p *Place) State(field Field) FieldState {
	f := p.Fields()
	if f.Has(field) {
		return HasValue
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetched[field] {
		return NoValue
	}
	return Unfetched
}

// Empty lists the fields that were fetched and came back without a value.
func (p *Place) Empty() []Field {
	f := p.Fields()
	p.mu.Lock()
	defer p.mu.Unlock()
	var empty []Field
	for field := range p.fetched {
		if !f.Has(field) {
			empty = append(empty, field)
		}
	}
	slices.Sort(empty)
	return empty
}

// Missing returns the members of want that no fetch has answered for yet.
func (p *Place) Missing(want []Field) []Field {
	f := p.Fields()
	p.mu.Lock()
	defer p.mu.Unlock()
	var missing []Field
	for _, field := range f.Missing(want) {
		if !p.fetched[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// Revision changes every time fetching makes new fields visible.
func (p *Place) Revision() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revision
}

// FetchFields makes sure every field in fields has been fetched, fetching only the ones that
// haven't. A field the place has no value for counts as fetched once a fetch has asked for it. If
// the live object can't fetch in this API version, the legacy lookup is used instead and its
// result merged without replacing anything already known.
func (p *Place) FetchFields(ctx context.Context, fields []Field) error {
	ctx, span := beeline.StartSpan(ctx, "place.fetch_fields")
	defer span.Send()
	span.AddField("place_id", p.id)
	missing := p.Missing(fields)
	span.AddField("missing", len(missing))
	if len(missing) == 0 {
		return nil
	}
	err := p.live.FetchFields(ctx, missing)
	if err == nil {
		p.mu.Lock()
		p.markLocked(missing)
		p.revision++
		p.mu.Unlock()
		return nil
	}
	if !IsNotAvailable(err) {
		span.AddField("error", err)
		return err
	}
	log.Printf("fetchFields unavailable for place %s, using legacy details", p.id)
	if err := p.fetchLegacy(ctx, missing); err != nil {
		span.AddField("error", err)
		return err
	}
	// The legacy API has no equivalent for these, so asking again can't help.
	if left := p.Missing(fields); len(left) > 0 {
		log.Printf("place %s: no legacy equivalent for %v", p.id, left)
		span.AddField("unavailable", len(left))
		p.mu.Lock()
		p.markLocked(left)
		p.mu.Unlock()
	}
	return nil
}

func (p *Place) fetchLegacy(ctx context.Context, missing []Field) error {
	if p.legacy == nil {
		return fmt.Errorf("place %s: no legacy lookup to fall back on: %w", p.id, ErrNotAvailable)
	}
	var asked []Field
	for _, f := range missing {
		if _, ok := legacyNames[f]; ok {
			asked = append(asked, f)
		}
	}
	names := LegacyFieldNames(asked)
	if len(names) == 0 {
		return nil
	}
	r, err := p.legacy.LegacyDetails(ctx, p.id, names)
	if err != nil {
		return err
	}
	fetched := Normalize(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markLocked(fetched.Present())
	p.markLocked(asked)
	p.normalized.Overlay(fetched, false)
	p.revision++
	return nil
}

func (p *Place) markLocked(fields []Field) {
	if p.fetched == nil {
		p.fetched = make(map[Field]bool)
	}
	for _, f := range fields {
		if f != FieldID {
			p.fetched[f] = true
		}
	}
}

// IsOpen reports whether the place is open at t, nil meaning unknown. It asks the live object
// first and otherwise works it out from the opening hours, fetching them if needed.
func (p *Place) IsOpen(ctx context.Context, t time.Time) (*bool, error) {
	open, err := p.live.IsOpen(ctx, t)
	if err == nil {
		return open, nil
	}
	if !IsNotAvailable(err) {
		return nil, err
	}
	if err := p.FetchFields(ctx, []Field{FieldRegularOpeningHours, FieldUTCOffsetMinutes}); err != nil {
		return nil, err
	}
	fields := p.Fields()
	isOpen, known := hours.IsOpen(fields.Schedule(), t)
	if !known {
		return nil, nil
	}
	return &isOpen, nil
}

// unsupportedLive stands in when the loaded API has no live place object at all.
type unsupportedLive struct {
	id string
}

func (u unsupportedLive) ID() string {
	return u.id
}

func (u unsupportedLive) Fields() Fields {
	return Fields{}
}

func (u unsupportedLive) FetchFields(context.Context, []Field) error {
	return fmt.Errorf("Place.fetchFields: %w", ErrNotAvailable)
}

func (u unsupportedLive) IsOpen(context.Context, time.Time) (*bool, error) {
	return nil, fmt.Errorf("Place.isOpen: %w", ErrNotAvailable)
}
