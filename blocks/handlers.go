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
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/hours"
	"github.com/mapblocks/service/blocks/locator"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/query"
	"github.com/mapblocks/service/blocks/route"
)

type hoursResponse struct {
	Open      *bool      `json:"open"`
	Status    string     `json:"status"`
	NextOpen  *time.Time `json:"nextOpen,omitempty"`
	NextClose *time.Time `json:"nextClose,omitempty"`
	Label     string     `json:"label,omitempty"`
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Printf("writing response failed: %v\n", err)
	}
}

// begin attaches the query context and checks the quota. It reports whether the request should go on.
func (s *Service) begin(rw http.ResponseWriter, r *http.Request) (context.Context, bool) {
	ctx := query.ContextWith(r.Context(), r.URL.Query())
	if err := checkQuota(ctx, s.opts.Quota); err != nil {
		beeline.AddField(ctx, "error", err)
		if errors.Is(err, errQuotaExceeded) {
			http.Error(rw, err.Error(), http.StatusTooManyRequests)
		} else {
			log.Printf("get quota failed: %v\n", err)
			http.Error(rw, "quota lookup failed", http.StatusInternalServerError)
		}
		return nil, false
	}
	return ctx, true
}

func (s *Service) handleHours(rw http.ResponseWriter, r *http.Request) {
	ctx, ok := s.begin(rw, r)
	if !ok {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(rw, "missing id", http.StatusBadRequest)
		return
	}
	pl, err := s.opts.Places.Get(ctx, id)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	now := query.NowFromContext(ctx)
	open, err := pl.IsOpen(ctx, now)
	if err != nil {
		log.Printf("is open failed for %s: %v\n", id, err)
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}
	// IsOpen may have answered without the weekly hours, which the transitions need.
	if err := pl.FetchFields(ctx, []place.Field{place.FieldRegularOpeningHours, place.FieldUTCOffsetMinutes}); err != nil {
		log.Printf("fetching hours failed for %s: %v\n", id, err)
	}
	fields := pl.Fields()
	writeJSON(rw, describeHours(fields.Schedule(), open, now, query.LanguageFromContext(ctx)))
}

func describeHours(s hours.Schedule, open *bool, now time.Time, lang string) hoursResponse {
	resp := hoursResponse{Open: open}
	next := hours.NextOpen(s, now)
	if next.Status == hours.OpenNow {
		next = hours.NextClose(s, now)
	}
	switch next.Status {
	case hours.WillOpen:
		resp.NextOpen = &next.At
	case hours.WillClose:
		resp.NextClose = &next.At
	}
	resp.Status = next.Status.String()
	if s.UTCOffsetMinutes != nil {
		resp.Label = hours.Label(hours.Printer(lang), next, now, *s.UTCOffsetMinutes)
	}
	return resp
}

// parseEndpoint reads the endpoint called name from q. name itself may hold coordinates,
// "place_id:<id>" or a free text query; name_location, name_place_id and name_query set one of
// them explicitly.
func parseEndpoint(q url.Values, name string) (route.Endpoint, error) {
	var e route.Endpoint
	if v := q.Get(name); v != "" {
		if ll, ok := parseLatLng(v); ok {
			e.Location = ll
		} else if id, ok := strings.CutPrefix(v, "place_id:"); ok {
			e.PlaceID = id
		} else {
			e.Query = v
		}
	}
	if v := q.Get(name + "_location"); v != "" {
		ll, ok := parseLatLng(v)
		if !ok {
			return e, &route.ConfigError{Endpoint: name, Reason: "location must be lat,lng"}
		}
		if e.Location != nil {
			return e, &route.ConfigError{Endpoint: name, Reason: "location given twice"}
		}
		e.Location = ll
	}
	if v := q.Get(name + "_place_id"); v != "" {
		if e.PlaceID != "" {
			return e, &route.ConfigError{Endpoint: name, Reason: "place ID given twice"}
		}
		e.PlaceID = v
	}
	if v := q.Get(name + "_query"); v != "" {
		if e.Query != "" {
			return e, &route.ConfigError{Endpoint: name, Reason: "query given twice"}
		}
		e.Query = v
	}
	return e, nil
}

func parseLatLng(s string) (*place.LatLng, bool) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return nil, false
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, false
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return nil, false
	}
	return &place.LatLng{Lat: la, Lng: ln}, true
}

func parseRouteRequest(ctx context.Context, q url.Values) (route.Request, error) {
	var req route.Request
	var err error
	if req.Origin, err = parseEndpoint(q, "origin"); err != nil {
		return req, err
	}
	if req.Destination, err = parseEndpoint(q, "destination"); err != nil {
		return req, err
	}
	// Without an origin, start where the client is.
	if req.Origin.IsZero() {
		if loc := query.LocationFromContext(ctx); loc != nil {
			req.Origin.Location = &place.LatLng{Lat: loc.Lat, Lng: loc.Lon}
		}
	}
	if req.Mode, err = route.ParseTravelMode(q.Get("mode")); err != nil {
		return req, &route.ConfigError{Endpoint: "mode", Reason: err.Error()}
	}
	if at := q.Get("at"); at != "" {
		t := query.NowFromContext(ctx)
		req.DepartureTime = &t
	}
	req.Language = query.LanguageFromContext(ctx)
	return req, req.Validate()
}

func (s *Service) handleRoute(rw http.ResponseWriter, r *http.Request) {
	ctx, ok := s.begin(rw, r)
	if !ok {
		return
	}
	if s.opts.Computer == nil {
		http.Error(rw, "routing is not configured", http.StatusServiceUnavailable)
		return
	}
	req, err := parseRouteRequest(ctx, r.URL.Query())
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := route.NewProvider(route.Options{
		Computer: s.opts.Computer,
		Routes:   s.opts.Routes,
		Settle:   func(context.Context) {},
	})
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	<-p.SetRequest(ctx, req)
	if err := p.Err(); err != nil {
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(rw, p.Route())
}

func (s *Service) handleLocator(rw http.ResponseWriter, r *http.Request) {
	ctx, ok := s.begin(rw, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	origin := query.LocationFromContext(ctx)
	if origin == nil {
		http.Error(rw, "lat and lon are required", http.StatusBadRequest)
		return
	}
	lq := locator.Query{
		Origin: place.LatLng{Lat: origin.Lat, Lng: origin.Lon},
		Now:    query.NowFromContext(ctx),
		Units:  query.UnitsFromContext(ctx),
	}
	for _, id := range strings.Split(q.Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			lq.IDs = append(lq.IDs, id)
		}
	}
	if len(lq.IDs) == 0 {
		http.Error(rw, "no candidate ids", http.StatusBadRequest)
		return
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(rw, "invalid limit", http.StatusBadRequest)
			return
		}
		lq.Limit = n
	}
	if m := q.Get("route"); m != "" {
		mode, err := route.ParseTravelMode(m)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		lq.RouteMode = mode
	}
	result, err := s.locator.Locate(ctx, lq)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(rw, result)
}
