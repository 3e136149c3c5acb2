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
	"encoding/json"
	"fmt"
	"time"

	"github.com/mapblocks/service/blocks/hours"
	"github.com/mapblocks/service/blocks/place"
)

type localizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l latLng) place() place.LatLng {
	return place.LatLng{Lat: l.Latitude, Lng: l.Longitude}
}

type point struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (p point) hours() hours.Point {
	return hours.Point{Day: p.Day, Hour: p.Hour, Minute: p.Minute}
}

type authorAttribution struct {
	DisplayName string `json:"displayName"`
	URI         string `json:"uri"`
	PhotoURI    string `json:"photoUri"`
}

func (a authorAttribution) place() place.Attribution {
	return place.Attribution{DisplayName: a.DisplayName, URI: a.URI, PhotoURI: a.PhotoURI}
}

// wirePlace is the Places API (new) JSON for a place.
type wirePlace struct {
	DisplayName       *localizedText `json:"displayName"`
	FormattedAddress  *string        `json:"formattedAddress"`
	AddressComponents []struct {
		LongText  string   `json:"longText"`
		ShortText string   `json:"shortText"`
		Types     []string `json:"types"`
	} `json:"addressComponents"`
	Location *latLng `json:"location"`
	Viewport *struct {
		Low  latLng `json:"low"`
		High latLng `json:"high"`
	} `json:"viewport"`
	PlusCode            *place.PlusCode `json:"plusCode"`
	Types               []string        `json:"types"`
	BusinessStatus      *string         `json:"businessStatus"`
	RegularOpeningHours *struct {
		Periods []struct {
			Open  point  `json:"open"`
			Close *point `json:"close"`
		} `json:"periods"`
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
	UTCOffsetMinutes *int     `json:"utcOffsetMinutes"`
	Rating           *float64 `json:"rating"`
	UserRatingCount  *int     `json:"userRatingCount"`
	PriceLevel       *string  `json:"priceLevel"`
	Reviews          []struct {
		Rating                         float64            `json:"rating"`
		Text                           *localizedText     `json:"text"`
		AuthorAttribution              *authorAttribution `json:"authorAttribution"`
		PublishTime                    string             `json:"publishTime"`
		RelativePublishTimeDescription string             `json:"relativePublishTimeDescription"`
	} `json:"reviews"`
	Photos []struct {
		Name               string              `json:"name"`
		WidthPx            int                 `json:"widthPx"`
		HeightPx           int                 `json:"heightPx"`
		AuthorAttributions []authorAttribution `json:"authorAttributions"`
	} `json:"photos"`
	NationalPhoneNumber      *string        `json:"nationalPhoneNumber"`
	InternationalPhoneNumber *string        `json:"internationalPhoneNumber"`
	WebsiteURI               *string        `json:"websiteUri"`
	GoogleMapsURI            *string        `json:"googleMapsUri"`
	EditorialSummary         *localizedText `json:"editorialSummary"`
	Attributions             []struct {
		Provider    string `json:"provider"`
		ProviderURI string `json:"providerUri"`
	} `json:"attributions"`
	Delivery             *bool `json:"delivery"`
	DineIn               *bool `json:"dineIn"`
	Takeout              *bool `json:"takeout"`
	CurbsidePickup       *bool `json:"curbsidePickup"`
	Reservable           *bool `json:"reservable"`
	ServesBreakfast      *bool `json:"servesBreakfast"`
	ServesLunch          *bool `json:"servesLunch"`
	ServesDinner         *bool `json:"servesDinner"`
	ServesBeer           *bool `json:"servesBeer"`
	ServesWine           *bool `json:"servesWine"`
	ServesVegetarianFood *bool `json:"servesVegetarianFood"`
	AccessibilityOptions *struct {
		WheelchairAccessibleEntrance *bool `json:"wheelchairAccessibleEntrance"`
	} `json:"accessibilityOptions"`
}

// decode converts Places API JSON to place fields. Anything the response leaves out stays absent.
func decode(raw []byte) (place.Fields, error) {
	var w wirePlace
	var f place.Fields
	if err := json.Unmarshal(raw, &w); err != nil {
		return f, fmt.Errorf("failed to decode place: %w", err)
	}
	if w.DisplayName != nil {
		f.DisplayName = &w.DisplayName.Text
	}
	f.FormattedAddress = w.FormattedAddress
	if w.AddressComponents != nil {
		f.AddressComponents = make([]place.AddressComponent, 0, len(w.AddressComponents))
		for _, c := range w.AddressComponents {
			f.AddressComponents = append(f.AddressComponents, place.AddressComponent{LongText: c.LongText, ShortText: c.ShortText, Types: c.Types})
		}
	}
	if w.Location != nil {
		l := w.Location.place()
		f.Location = &l
	}
	if w.Viewport != nil {
		f.Viewport = &place.Viewport{Northeast: w.Viewport.High.place(), Southwest: w.Viewport.Low.place()}
	}
	f.PlusCode = w.PlusCode
	f.Types = w.Types
	if w.BusinessStatus != nil {
		s := place.BusinessStatus(*w.BusinessStatus)
		f.BusinessStatus = &s
	}
	if h := w.RegularOpeningHours; h != nil {
		oh := &place.OpeningHours{Periods: make([]hours.Period, 0, len(h.Periods)), WeekdayDescriptions: h.WeekdayDescriptions}
		for _, p := range h.Periods {
			period := hours.Period{Open: p.Open.hours()}
			if p.Close != nil {
				c := p.Close.hours()
				period.Close = &c
			}
			oh.Periods = append(oh.Periods, period)
		}
		f.RegularOpeningHours = oh
	}
	f.UTCOffsetMinutes = w.UTCOffsetMinutes
	f.Rating = w.Rating
	f.UserRatingCount = w.UserRatingCount
	if w.PriceLevel != nil {
		l := place.ParsePriceLevel(*w.PriceLevel)
		f.PriceLevel = &l
	}
	if w.Reviews != nil {
		f.Reviews = make([]place.Review, 0, len(w.Reviews))
		for _, r := range w.Reviews {
			review := place.Review{Rating: r.Rating, RelativePublishTimeDescription: r.RelativePublishTimeDescription}
			if r.Text != nil {
				review.Text = r.Text.Text
				review.TextLanguageCode = r.Text.LanguageCode
			}
			if r.AuthorAttribution != nil {
				a := r.AuthorAttribution.place()
				review.AuthorAttribution = &a
			}
			if t, err := time.Parse(time.RFC3339, r.PublishTime); err == nil {
				review.PublishTime = &t
			}
			f.Reviews = append(f.Reviews, review)
		}
	}
	if w.Photos != nil {
		f.Photos = make([]place.Photo, 0, len(w.Photos))
		for _, p := range w.Photos {
			photo := place.Photo{Name: p.Name, WidthPx: p.WidthPx, HeightPx: p.HeightPx, AuthorAttributions: []place.Attribution{}}
			for _, a := range p.AuthorAttributions {
				photo.AuthorAttributions = append(photo.AuthorAttributions, a.place())
			}
			f.Photos = append(f.Photos, photo)
		}
	}
	f.NationalPhoneNumber = w.NationalPhoneNumber
	f.InternationalPhoneNumber = w.InternationalPhoneNumber
	f.WebsiteURI = w.WebsiteURI
	f.GoogleMapsURI = w.GoogleMapsURI
	if w.EditorialSummary != nil {
		f.EditorialSummary = &w.EditorialSummary.Text
	}
	if w.Attributions != nil {
		f.Attributions = make([]place.Attribution, 0, len(w.Attributions))
		for _, a := range w.Attributions {
			f.Attributions = append(f.Attributions, place.Attribution{DisplayName: a.Provider, URI: a.ProviderURI})
		}
	}
	f.HasDelivery = w.Delivery
	f.HasDineIn = w.DineIn
	f.HasTakeout = w.Takeout
	f.HasCurbsidePickup = w.CurbsidePickup
	f.IsReservable = w.Reservable
	f.ServesBreakfast = w.ServesBreakfast
	f.ServesLunch = w.ServesLunch
	f.ServesDinner = w.ServesDinner
	f.ServesBeer = w.ServesBeer
	f.ServesWine = w.ServesWine
	f.ServesVegetarianFood = w.ServesVegetarianFood
	if w.AccessibilityOptions != nil {
		f.HasWheelchairAccessibleEntrance = w.AccessibilityOptions.WheelchairAccessibleEntrance
	}
	return f, nil
}
