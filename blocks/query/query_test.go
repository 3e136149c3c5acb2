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
	"reflect"
	"testing"
	"time"
)

func TestContextWith(t *testing.T) {
	q, _ := url.ParseQuery("lat=37.5&lon=-122.25&lang=fr&units=imperial&at=2024-01-08T10:00:00Z&fields=rating,displayName,,rating")
	ctx := ContextWith(context.Background(), q)

	if got := LocationFromContext(ctx); got == nil || *got != (Location{Lat: 37.5, Lon: -122.25}) {
		t.Errorf("location = %v", got)
	}
	if got := LanguageFromContext(ctx); got != "fr" {
		t.Errorf("language = %q", got)
	}
	if got := UnitsFromContext(ctx); got != "imperial" {
		t.Errorf("units = %q", got)
	}
	if got := NowFromContext(ctx); !got.Equal(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("now = %v", got)
	}
	if got := FieldsFromContext(ctx); !reflect.DeepEqual(got, []string{"rating", "displayName"}) {
		t.Errorf("fields = %v", got)
	}
}

func TestMalformedValuesAreIgnored(t *testing.T) {
	q, _ := url.ParseQuery("lat=north&lon=1&at=yesterday")
	ctx := ContextWith(context.Background(), q)
	if got := LocationFromContext(ctx); got != nil {
		t.Errorf("location = %v, want nil", got)
	}
	if got := NowFromContext(ctx); time.Since(got) > time.Minute {
		t.Errorf("now = %v, want the current time", got)
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	if LocationFromContext(ctx) != nil || LanguageFromContext(ctx) != "" || FieldsFromContext(ctx) != nil {
		t.Error("expected zero values from a context without a query")
	}
	if got := UnitsFromContext(ctx); got != "metric" {
		t.Errorf("units = %q", got)
	}
}
