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

// Package gplaces provides live places backed by the Places API (new).
package gplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/query"
	"github.com/mapblocks/service/blocks/quota"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/places/v1"
)

// getFunc fetches place id with the given field mask, returning the Places API JSON.
type getFunc func(ctx context.Context, id, mask string) ([]byte, error)

type Client struct {
	get     getFunc
	charger quota.Charger
}

// NewClient creates a Places API client. Every details call is charged to charger.
func NewClient(ctx context.Context, apiKey string, charger quota.Charger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := places.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create places service: %w", err)
	}
	get := func(ctx context.Context, id, mask string) ([]byte, error) {
		call := svc.Places.Get("places/" + id).Fields(googleapi.Field(mask)).Context(ctx)
		if lang := query.LanguageFromContext(ctx); lang != "" {
			call = call.LanguageCode(lang)
		}
		result, err := call.Do()
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}
	return newClient(get, charger), nil
}

func newClient(get getFunc, charger quota.Charger) *Client {
	if charger == nil {
		charger = quota.Nop{}
	}
	return &Client{get: get, charger: charger}
}

func (c *Client) NewLive(id string) place.Live {
	return &livePlace{client: c, id: id}
}

// apiNames holds the Places API names that differ from the Field names.
var apiNames = map[place.Field]string{
	place.FieldWebsiteURI:                   "websiteUri",
	place.FieldGoogleMapsURI:                "googleMapsUri",
	place.FieldHasDelivery:                  "delivery",
	place.FieldHasDineIn:                    "dineIn",
	place.FieldHasTakeout:                   "takeout",
	place.FieldHasCurbsidePickup:            "curbsidePickup",
	place.FieldIsReservable:                 "reservable",
	place.FieldHasWheelchairAccessibleEntry: "accessibilityOptions",
}

// FieldMask builds the field mask requesting fields. Unknown fields are dropped.
func FieldMask(fields []place.Field) string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if !place.Known(f) {
			continue
		}
		name, ok := apiNames[f]
		if !ok {
			name = string(f)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

// livePlace accumulates the fields fetched for one place.
type livePlace struct {
	client *Client
	id     string

	mu     sync.Mutex
	fields place.Fields
}

func (l *livePlace) ID() string {
	return l.id
}

func (l *livePlace) Fields() place.Fields {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fields
}

func (l *livePlace) FetchFields(ctx context.Context, fields []place.Field) error {
	ctx, span := beeline.StartSpan(ctx, "gplaces.fetch_fields")
	defer span.Send()
	mask := FieldMask(fields)
	span.AddField("mask", mask)
	if mask == "" {
		return nil
	}
	if err := l.client.charger.ChargeCredits(ctx, quota.PlaceDetailsCredits); err != nil {
		span.AddField("error", err)
		return err
	}
	raw, err := l.client.get(ctx, l.id, mask)
	if err != nil {
		span.AddField("error", err)
		return fmt.Errorf("failed to get place %s: %w", l.id, err)
	}
	fetched, err := decode(raw)
	if err != nil {
		span.AddField("error", err)
		return err
	}
	for _, f := range fields {
		// A zero offset doesn't survive the client's JSON encoding.
		if f == place.FieldUTCOffsetMinutes && fetched.UTCOffsetMinutes == nil {
			zero := 0
			fetched.UTCOffsetMinutes = &zero
		}
	}
	l.mu.Lock()
	l.fields.Overlay(fetched, true)
	l.mu.Unlock()
	return nil
}

// IsOpen asks the API about the current moment only; other instants are left to the caller.
func (l *livePlace) IsOpen(ctx context.Context, t time.Time) (*bool, error) {
	if d := time.Since(t); d > time.Minute || d < -time.Minute {
		return nil, fmt.Errorf("Place.isOpen at %v: %w", t, place.ErrNotAvailable)
	}
	ctx, span := beeline.StartSpan(ctx, "gplaces.is_open")
	defer span.Send()
	if err := l.client.charger.ChargeCredits(ctx, quota.PlaceDetailsCredits); err != nil {
		span.AddField("error", err)
		return nil, err
	}
	raw, err := l.client.get(ctx, l.id, "currentOpeningHours.openNow")
	if err != nil {
		span.AddField("error", err)
		return nil, fmt.Errorf("failed to get opening status of %s: %w", l.id, err)
	}
	var w struct {
		CurrentOpeningHours *struct {
			OpenNow bool `json:"openNow"`
		} `json:"currentOpeningHours"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode opening status: %w", err)
	}
	if w.CurrentOpeningHours == nil {
		return nil, nil
	}
	open := w.CurrentOpeningHours.OpenNow
	return &open, nil
}
