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

package query

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

type Location struct {
	Lat float64
	Lon float64
}

type queryContext struct {
	location          *Location
	preferredLanguage string
	preferredUnits    string
	at                *time.Time
	fields            []string
}

type qckt int

var queryContextKey qckt

// ContextWith attaches the request parameters a client sent to ctx.
// Malformed values are ignored.
func ContextWith(ctx context.Context, q url.Values) context.Context {
	var location *Location
	if q.Get("lat") != "" && q.Get("lon") != "" {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr == nil && lonErr == nil {
			location = &Location{
				Lat: lat,
				Lon: lon,
			}
		}
	}
	var at *time.Time
	if t, err := time.Parse(time.RFC3339, q.Get("at")); err == nil {
		at = &t
	}
	var fields []string
	for _, f := range strings.Split(q.Get("fields"), ",") {
		if f = strings.TrimSpace(f); f != "" && !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	qc := queryContext{
		location:          location,
		preferredLanguage: q.Get("lang"),
		preferredUnits:    q.Get("units"),
		at:                at,
		fields:            fields,
	}
	return context.WithValue(ctx, queryContextKey, qc)
}

func fromContext(ctx context.Context) queryContext {
	qc, _ := ctx.Value(queryContextKey).(queryContext)
	return qc
}

func LocationFromContext(ctx context.Context) *Location {
	return fromContext(ctx).location
}

// LanguageFromContext returns the preferred language, or "" if the client didn't send one.
func LanguageFromContext(ctx context.Context) string {
	return fromContext(ctx).preferredLanguage
}

// UnitsFromContext returns "imperial" or "metric". Anything but imperial is metric.
func UnitsFromContext(ctx context.Context) string {
	if fromContext(ctx).preferredUnits == "imperial" {
		return "imperial"
	}
	return "metric"
}

// NowFromContext returns the instant the client asked about, defaulting to the current time.
func NowFromContext(ctx context.Context) time.Time {
	if at := fromContext(ctx).at; at != nil {
		return *at
	}
	return time.Now()
}

func FieldsFromContext(ctx context.Context) []string {
	return fromContext(ctx).fields
}
