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

// Package locator ranks a set of stores by distance from a point.
package locator

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/cache"
	"github.com/mapblocks/service/blocks/hours"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/route"
	"github.com/umahmood/haversine"
	"golang.org/x/exp/slices"
)

// Fields are the place fields a locator needs for each store.
var Fields = []place.Field{
	place.FieldDisplayName,
	place.FieldFormattedAddress,
	place.FieldLocation,
	place.FieldRegularOpeningHours,
	place.FieldUTCOffsetMinutes,
}

// Store is one ranked candidate. Distance is formatted in the units the query asked for.
type Store struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name,omitempty"`
	Address            string       `json:"address,omitempty"`
	Location           place.LatLng `json:"location"`
	DistanceKilometers float64      `json:"distanceKilometers"`
	DistanceMiles      float64      `json:"distanceMiles"`
	Distance           string       `json:"distance"`
	Open               *bool        `json:"open,omitempty"`
	NextClose          *time.Time   `json:"nextClose,omitempty"`
}

type Result struct {
	Stores     []Store      `json:"stores"`
	Route      *route.Route `json:"route,omitempty"`
	RouteError string       `json:"routeError,omitempty"`
}

type Query struct {
	IDs    []string
	Origin place.LatLng
	Now    time.Time
	// Units is "imperial" or "metric", as query.UnitsFromContext returns.
	Units string
	// Limit caps the number of stores returned. Zero means no limit.
	Limit int
	// RouteMode, if set, asks for a route from the origin to the nearest store.
	RouteMode route.TravelMode
}

type Locator struct {
	places   *cache.Places
	computer route.Computer
	routes   *cache.Cache[*route.Route]
}

// New creates a locator. computer and routes may be nil if routes are never requested.
func New(places *cache.Places, computer route.Computer, routes *cache.Cache[*route.Route]) *Locator {
	return &Locator{places: places, computer: computer, routes: routes}
}

// Locate fetches every candidate store and ranks them nearest first. Stores that can't be
// fetched, or that have no location, are left out.
func (l *Locator) Locate(ctx context.Context, q Query) (*Result, error) {
	ctx, span := beeline.StartSpan(ctx, "locator.locate")
	defer span.Send()
	span.AddField("candidates", len(q.IDs))
	if q.Now.IsZero() {
		q.Now = time.Now()
	}

	stores := make([]*Store, len(q.IDs))
	var wg sync.WaitGroup
	for i, id := range q.IDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			s, err := l.store(ctx, id, q)
			if err != nil {
				log.Printf("locator: skipping %s: %v\n", id, err)
				return
			}
			stores[i] = s
		}(i, id)
	}
	wg.Wait()

	result := &Result{Stores: []Store{}}
	for _, s := range stores {
		if s != nil {
			result.Stores = append(result.Stores, *s)
		}
	}
	slices.SortStableFunc(result.Stores, func(a, b Store) int {
		return cmp.Compare(a.DistanceKilometers, b.DistanceKilometers)
	})
	if q.Limit > 0 && len(result.Stores) > q.Limit {
		result.Stores = result.Stores[:q.Limit]
	}
	span.AddField("stores", len(result.Stores))

	if q.RouteMode != "" && len(result.Stores) > 0 && l.computer != nil {
		r, err := l.routeTo(ctx, q, result.Stores[0])
		if err != nil {
			result.RouteError = err.Error()
		}
		result.Route = r
	}
	return result, nil
}

func (l *Locator) store(ctx context.Context, id string, q Query) (*Store, error) {
	pl, err := l.places.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := pl.FetchFields(ctx, Fields); err != nil {
		return nil, err
	}
	f := pl.Fields()
	if f.Location == nil {
		return nil, nil
	}
	s := &Store{ID: id, Location: *f.Location}
	if f.DisplayName != nil {
		s.Name = *f.DisplayName
	}
	if f.FormattedAddress != nil {
		s.Address = *f.FormattedAddress
	}
	s.DistanceMiles, s.DistanceKilometers = haversine.Distance(
		haversine.Coord{Lat: q.Origin.Lat, Lon: q.Origin.Lng},
		haversine.Coord{Lat: s.Location.Lat, Lon: s.Location.Lng},
	)
	s.Distance = distanceLabel(s.DistanceKilometers, s.DistanceMiles, q.Units)
	if open, err := pl.IsOpen(ctx, q.Now); err == nil {
		s.Open = open
	}
	if tr := hours.NextClose(f.Schedule(), q.Now); tr.Status == hours.WillClose {
		s.NextClose = &tr.At
	}
	return s, nil
}

func distanceLabel(km, mi float64, units string) string {
	if units == "imperial" {
		return fmt.Sprintf("%.1f mi", mi)
	}
	return fmt.Sprintf("%.1f km", km)
}

func (l *Locator) routeTo(ctx context.Context, q Query, s Store) (*route.Route, error) {
	routes := l.routes
	if routes == nil {
		var err error
		if routes, err = cache.New[*route.Route](1, nil); err != nil {
			return nil, err
		}
	}
	p, err := route.NewProvider(route.Options{
		Computer: l.computer,
		Routes:   routes,
		Settle:   func(context.Context) {},
	})
	if err != nil {
		return nil, err
	}
	origin := q.Origin
	<-p.SetRequest(ctx, route.Request{
		Origin:      route.Endpoint{Location: &origin},
		Destination: route.Endpoint{PlaceID: s.ID},
		Mode:        q.RouteMode,
	})
	return p.Route(), p.Err()
}
