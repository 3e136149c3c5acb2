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

package gplaces

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mapblocks/service/blocks/hours"
	"github.com/mapblocks/service/blocks/place"
)

const placeJSON = `{
  "id": "ChIJ123",
  "displayName": {"text": "Corner Cafe", "languageCode": "en"},
  "location": {"latitude": 37.5, "longitude": -122.25},
  "regularOpeningHours": {
    "periods": [
      {"open": {"hour": 9}, "close": {"hour": 17}},
      {"open": {"day": 5, "hour": 22, "minute": 30}, "close": {"day": 6, "hour": 2}}
    ]
  },
  "rating": 4.5,
  "priceLevel": "PRICE_LEVEL_MODERATE",
  "websiteUri": "https://cafe.example",
  "photos": [{"name": "places/ChIJ123/photos/p1", "widthPx": 400, "heightPx": 300,
              "authorAttributions": [{"displayName": "Jane", "uri": "https://example.com/jane"}]}],
  "reviews": [{"rating": 5, "text": {"text": "Great", "languageCode": "en"}, "publishTime": "2024-01-02T03:04:05Z"}],
  "accessibilityOptions": {"wheelchairAccessibleEntrance": true}
}`

type charges struct {
	credits []int
	err     error
}

func (c *charges) ChargeCredits(_ context.Context, credits int) error {
	c.credits = append(c.credits, credits)
	return c.err
}

func TestFieldMask(t *testing.T) {
	got := FieldMask([]place.Field{place.FieldDisplayName, place.FieldWebsiteURI, place.FieldHasDelivery, "bogus", place.FieldDisplayName, place.FieldHasWheelchairAccessibleEntry})
	want := "displayName,websiteUri,delivery,accessibilityOptions"
	if got != want {
		t.Fatalf("FieldMask = %q, want %q", got, want)
	}
}

func TestDecode(t *testing.T) {
	f, err := decode([]byte(placeJSON))
	if err != nil {
		t.Fatal(err)
	}
	if *f.DisplayName != "Corner Cafe" || *f.Location != (place.LatLng{Lat: 37.5, Lng: -122.25}) {
		t.Errorf("name/location = %v %v", f.DisplayName, f.Location)
	}
	wantPeriods := []hours.Period{
		{Open: hours.Point{Hour: 9}, Close: &hours.Point{Hour: 17}},
		{Open: hours.Point{Day: 5, Hour: 22, Minute: 30}, Close: &hours.Point{Day: 6, Hour: 2}},
	}
	if !reflect.DeepEqual(f.RegularOpeningHours.Periods, wantPeriods) {
		t.Errorf("periods = %+v", f.RegularOpeningHours.Periods)
	}
	if *f.PriceLevel != place.PriceLevelModerate {
		t.Errorf("price level = %v", *f.PriceLevel)
	}
	if *f.WebsiteURI != "https://cafe.example" {
		t.Errorf("website = %v", *f.WebsiteURI)
	}
	if len(f.Photos) != 1 || f.Photos[0].AuthorAttributions[0].DisplayName != "Jane" {
		t.Errorf("photos = %+v", f.Photos)
	}
	if len(f.Reviews) != 1 || f.Reviews[0].Text != "Great" || !f.Reviews[0].PublishTime.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("reviews = %+v", f.Reviews)
	}
	if f.HasWheelchairAccessibleEntrance == nil || !*f.HasWheelchairAccessibleEntrance {
		t.Errorf("wheelchair = %v", f.HasWheelchairAccessibleEntrance)
	}
	for _, absent := range []place.Field{place.FieldFormattedAddress, place.FieldUTCOffsetMinutes, place.FieldUserRatingCount, place.FieldHasDelivery} {
		if f.Has(absent) {
			t.Errorf("%s should be absent", absent)
		}
	}
}

func TestFetchFields(t *testing.T) {
	var masks []string
	c := &charges{}
	client := newClient(func(_ context.Context, id, mask string) ([]byte, error) {
		if id != "ChIJ123" {
			t.Errorf("id = %q", id)
		}
		masks = append(masks, mask)
		return []byte(placeJSON), nil
	}, c)
	live := client.NewLive("ChIJ123")

	err := live.FetchFields(context.Background(), []place.Field{place.FieldDisplayName, place.FieldUTCOffsetMinutes})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(masks, []string{"displayName,utcOffsetMinutes"}) {
		t.Errorf("masks = %v", masks)
	}
	f := live.Fields()
	if *f.DisplayName != "Corner Cafe" {
		t.Errorf("name = %v", f.DisplayName)
	}
	if f.UTCOffsetMinutes == nil || *f.UTCOffsetMinutes != 0 {
		t.Errorf("requested offset missing from the response should be zero, got %v", f.UTCOffsetMinutes)
	}
	if len(c.credits) != 1 {
		t.Errorf("charged %v", c.credits)
	}
}

func TestFetchFieldsChargeFailure(t *testing.T) {
	called := false
	quotaErr := errors.New("over quota")
	client := newClient(func(context.Context, string, string) ([]byte, error) {
		called = true
		return nil, nil
	}, &charges{err: quotaErr})
	err := client.NewLive("x").FetchFields(context.Background(), []place.Field{place.FieldRating})
	if !errors.Is(err, quotaErr) || called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}

func TestIsOpen(t *testing.T) {
	client := newClient(func(_ context.Context, _, mask string) ([]byte, error) {
		if mask != "currentOpeningHours.openNow" {
			t.Errorf("mask = %q", mask)
		}
		return []byte(`{"currentOpeningHours": {"openNow": true}}`), nil
	}, nil)
	live := client.NewLive("x")
	open, err := live.IsOpen(context.Background(), time.Now())
	if err != nil || open == nil || !*open {
		t.Fatalf("IsOpen(now) = %v, %v", open, err)
	}

	_, err = live.IsOpen(context.Background(), time.Now().Add(3*time.Hour))
	if !place.IsNotAvailable(err) {
		t.Fatalf("IsOpen(later) err = %v, want not available", err)
	}
}

func TestIsOpenUnknown(t *testing.T) {
	client := newClient(func(context.Context, string, string) ([]byte, error) {
		return []byte(`{}`), nil
	}, nil)
	open, err := client.NewLive("x").IsOpen(context.Background(), time.Now())
	if err != nil || open != nil {
		t.Fatalf("IsOpen = %v, %v, want unknown", open, err)
	}
}
