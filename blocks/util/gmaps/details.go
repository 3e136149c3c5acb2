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

// Package gmaps wraps the legacy Maps web services: place details and directions.
package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/query"
	"github.com/mapblocks/service/blocks/quota"
	maps "googlemaps.github.io/maps"
)

type Client struct {
	maps    *maps.Client
	charger quota.Charger
}

func NewClient(apiKey string, charger quota.Charger) (*Client, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if charger == nil {
		charger = quota.Nop{}
	}
	return &Client{maps: c, charger: charger}, nil
}

// LegacyDetails looks up place id, returning only the legacy fields asked for.
func (c *Client) LegacyDetails(ctx context.Context, id string, fields []string) (*place.LegacyResult, error) {
	ctx, span := beeline.StartSpan(ctx, "gmaps.place_details")
	defer span.Send()
	span.AddField("fields", fields)
	var masks []maps.PlaceDetailsFieldMask
	for _, f := range fields {
		m, err := maps.ParsePlaceDetailsFieldMask(f)
		if err != nil {
			log.Printf("skipping legacy field %q: %v\n", f, err)
			continue
		}
		masks = append(masks, m)
	}
	if err := c.charger.ChargeCredits(ctx, quota.LegacyDetailsCredits); err != nil {
		span.AddField("error", err)
		return nil, err
	}
	result, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  id,
		Fields:   masks,
		Language: query.LanguageFromContext(ctx),
	})
	if err != nil {
		span.AddField("error", err)
		return nil, fmt.Errorf("failed to get legacy details for %s: %w", id, err)
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	r, err := fromDetails(raw, fields)
	if err != nil {
		span.AddField("error", err)
		return nil, err
	}
	if r.PlaceID == nil {
		r.PlaceID = &id
	}
	return r, nil
}

// wireDetails is the client's JSON encoding of a details result. URLs are decoded by hand because
// the client may encode them as url.URL objects.
type wireDetails struct {
	PlaceID           string                         `json:"place_id"`
	Name              string                         `json:"name"`
	FormattedAddress  string                         `json:"formatted_address"`
	AddressComponents []place.LegacyAddressComponent `json:"address_components"`
	Geometry          struct {
		Location place.LatLng       `json:"location"`
		Viewport place.LegacyBounds `json:"viewport"`
	} `json:"geometry"`
	PlusCode       *place.LegacyPlusCode `json:"plus_code"`
	Types          []string              `json:"types"`
	BusinessStatus string                `json:"business_status"`
	OpeningHours   *struct {
		Periods []struct {
			Open  place.LegacyPoint `json:"open"`
			Close place.LegacyPoint `json:"close"`
		} `json:"periods"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	UTCOffset        *int    `json:"utc_offset"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	PriceLevel       int     `json:"price_level"`
	Reviews          []struct {
		AuthorName              string          `json:"author_name"`
		AuthorURL               json.RawMessage `json:"author_url"`
		ProfilePhoto            string          `json:"profile_photo_url"`
		Language                string          `json:"language"`
		Rating                  float64         `json:"rating"`
		RelativeTimeDescription string          `json:"relative_time_description"`
		Text                    string          `json:"text"`
		Time                    int64           `json:"time"`
	} `json:"reviews"`
	Photos                   []place.LegacyPhoto `json:"photos"`
	FormattedPhoneNumber     string              `json:"formatted_phone_number"`
	InternationalPhoneNumber string              `json:"international_phone_number"`
	Website                  string              `json:"website"`
	URL                      json.RawMessage     `json:"url"`
	EditorialSummary         *struct {
		Overview string `json:"overview"`
		Language string `json:"language"`
	} `json:"editorial_summary"`
	HTMLAttributions []string `json:"html_attributions"`
}

// decodeURL accepts either a JSON string or an encoded url.URL.
func decodeURL(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var u url.URL
	if err := json.Unmarshal(raw, &u); err == nil {
		return u.String()
	}
	return ""
}

// fromDetails converts an encoded details result to a LegacyResult holding only the requested
// legacy fields. The client encodes unrequested and missing fields alike as zero values, so a zero
// scalar is treated as absent.
func fromDetails(raw []byte, fields []string) (*place.LegacyResult, error) {
	var w wireDetails
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode legacy details: %w", err)
	}
	r := &place.LegacyResult{}
	if w.PlaceID != "" {
		r.PlaceID = &w.PlaceID
	}
	for _, f := range fields {
		switch f {
		case "name":
			r.Name = present(w.Name)
		case "formatted_address":
			r.FormattedAddress = present(w.FormattedAddress)
		case "address_components":
			r.AddressComponents = nonNil(w.AddressComponents)
		case "geometry", "geometry/location":
			if loc := present(w.Geometry.Location); loc != nil {
				geometry(r).Location = loc
			}
			if vp := present(w.Geometry.Viewport); vp != nil && f == "geometry" {
				geometry(r).Viewport = vp
			}
		case "geometry/viewport":
			if vp := present(w.Geometry.Viewport); vp != nil {
				geometry(r).Viewport = vp
			}
		case "plus_code":
			r.PlusCode = w.PlusCode
		case "types":
			r.Types = nonNil(w.Types)
		case "business_status":
			r.BusinessStatus = present(w.BusinessStatus)
		case "opening_hours":
			if w.OpeningHours == nil {
				continue
			}
			oh := &place.LegacyOpeningHours{Periods: []place.LegacyPeriod{}, WeekdayText: w.OpeningHours.WeekdayText}
			for _, p := range w.OpeningHours.Periods {
				period := place.LegacyPeriod{Open: p.Open}
				// A period that never closes is encoded with an empty close time.
				if p.Close.Time != "" {
					c := p.Close
					period.Close = &c
				}
				oh.Periods = append(oh.Periods, period)
			}
			r.OpeningHours = oh
		case "utc_offset":
			r.UTCOffsetMinutes = w.UTCOffset
		case "rating":
			r.Rating = present(w.Rating)
		case "user_ratings_total":
			r.UserRatingsTotal = present(w.UserRatingsTotal)
		case "price_level":
			// The client can't tell FREE from no price level, so zero is left out.
			r.PriceLevel = present(w.PriceLevel)
		case "reviews":
			r.Reviews = []place.LegacyReview{}
			for _, rv := range w.Reviews {
				r.Reviews = append(r.Reviews, place.LegacyReview{
					AuthorName:              rv.AuthorName,
					AuthorURL:               decodeURL(rv.AuthorURL),
					ProfilePhotoURL:         rv.ProfilePhoto,
					Language:                rv.Language,
					Rating:                  rv.Rating,
					RelativeTimeDescription: rv.RelativeTimeDescription,
					Text:                    rv.Text,
					Time:                    rv.Time,
				})
			}
		case "photos":
			r.Photos = nonNil(w.Photos)
		case "formatted_phone_number":
			r.FormattedPhoneNumber = present(w.FormattedPhoneNumber)
		case "international_phone_number":
			r.InternationalPhoneNumber = present(w.InternationalPhoneNumber)
		case "website":
			r.Website = present(w.Website)
		case "url":
			r.URL = present(decodeURL(w.URL))
		case "editorial_summary":
			if w.EditorialSummary != nil {
				r.EditorialSummary = &place.LegacyEditorialSummary{Overview: w.EditorialSummary.Overview, Language: w.EditorialSummary.Language}
			}
		}
	}
	if len(w.HTMLAttributions) > 0 {
		r.HTMLAttributions = w.HTMLAttributions
	}
	return r, nil
}

// present returns a pointer to v, or nil if v is the zero value.
func present[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func geometry(r *place.LegacyResult) *place.LegacyGeometry {
	if r.Geometry == nil {
		r.Geometry = &place.LegacyGeometry{}
	}
	return r.Geometry
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
