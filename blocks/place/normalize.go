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

package place

import (
	"strconv"
	"time"

	"github.com/mapblocks/service/blocks/hours"
)

// Normalize translates a legacy result into Place fields. Only fields present on r are set; nothing
// is defaulted, and malformed nested values are dropped rather than reported. r is not modified.
func Normalize(r *LegacyResult) Fields {
	var f Fields
	if r == nil {
		return f
	}
	f.DisplayName = copyPtr(r.Name)
	f.FormattedAddress = copyPtr(r.FormattedAddress)
	if r.AddressComponents != nil {
		f.AddressComponents = make([]AddressComponent, 0, len(r.AddressComponents))
		for _, c := range r.AddressComponents {
			f.AddressComponents = append(f.AddressComponents, AddressComponent{
				LongText:  c.LongName,
				ShortText: c.ShortName,
				Types:     append([]string(nil), c.Types...),
			})
		}
	}
	if r.Geometry != nil {
		f.Location = copyPtr(r.Geometry.Location)
		if r.Geometry.Viewport != nil {
			f.Viewport = &Viewport{Northeast: r.Geometry.Viewport.Northeast, Southwest: r.Geometry.Viewport.Southwest}
		}
	}
	if r.PlusCode != nil {
		f.PlusCode = &PlusCode{GlobalCode: r.PlusCode.GlobalCode, CompoundCode: r.PlusCode.CompoundCode}
	}
	if r.Types != nil {
		f.Types = append([]string{}, r.Types...)
	}
	if r.BusinessStatus != nil {
		s := BusinessStatus(*r.BusinessStatus)
		f.BusinessStatus = &s
	}
	if r.OpeningHours != nil {
		f.RegularOpeningHours = normalizeHours(r.OpeningHours)
	}
	f.UTCOffsetMinutes = copyPtr(r.UTCOffsetMinutes)
	f.Rating = copyPtr(r.Rating)
	f.UserRatingCount = copyPtr(r.UserRatingsTotal)
	if r.PriceLevel != nil {
		l := PriceLevelFromInt(*r.PriceLevel)
		f.PriceLevel = &l
	}
	if r.Reviews != nil {
		f.Reviews = make([]Review, 0, len(r.Reviews))
		for _, rv := range r.Reviews {
			f.Reviews = append(f.Reviews, normalizeReview(rv))
		}
	}
	if r.Photos != nil {
		f.Photos = make([]Photo, 0, len(r.Photos))
		for _, p := range r.Photos {
			f.Photos = append(f.Photos, Photo{
				Name:               p.PhotoReference,
				WidthPx:            p.Width,
				HeightPx:           p.Height,
				AuthorAttributions: parseAttributions(p.HTMLAttributions),
			})
		}
	}
	f.NationalPhoneNumber = copyPtr(r.FormattedPhoneNumber)
	f.InternationalPhoneNumber = copyPtr(r.InternationalPhoneNumber)
	f.WebsiteURI = copyPtr(r.Website)
	f.GoogleMapsURI = copyPtr(r.URL)
	if r.EditorialSummary != nil {
		s := r.EditorialSummary.Overview
		f.EditorialSummary = &s
	}
	if r.HTMLAttributions != nil {
		f.Attributions = parseAttributions(r.HTMLAttributions)
	}
	f.HasDelivery = copyPtr(r.Delivery)
	f.HasDineIn = copyPtr(r.DineIn)
	f.HasTakeout = copyPtr(r.Takeout)
	f.HasCurbsidePickup = copyPtr(r.CurbsidePickup)
	f.IsReservable = copyPtr(r.Reservable)
	f.ServesBreakfast = copyPtr(r.ServesBreakfast)
	f.ServesLunch = copyPtr(r.ServesLunch)
	f.ServesDinner = copyPtr(r.ServesDinner)
	f.ServesBeer = copyPtr(r.ServesBeer)
	f.ServesWine = copyPtr(r.ServesWine)
	f.ServesVegetarianFood = copyPtr(r.ServesVegetarianFood)
	f.HasWheelchairAccessibleEntrance = copyPtr(r.WheelchairAccessibleEntrance)
	return f
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func normalizeHours(oh *LegacyOpeningHours) *OpeningHours {
	out := &OpeningHours{Periods: make([]hours.Period, 0, len(oh.Periods))}
	if oh.WeekdayText != nil {
		out.WeekdayDescriptions = append([]string{}, oh.WeekdayText...)
	}
	for _, p := range oh.Periods {
		open, ok := normalizePoint(p.Open)
		if !ok {
			continue
		}
		period := hours.Period{Open: open}
		if p.Close != nil {
			close, ok := normalizePoint(*p.Close)
			if !ok {
				continue
			}
			period.Close = &close
		}
		out.Periods = append(out.Periods, period)
	}
	return out
}

// normalizePoint splits the "HHMM" time of a legacy point.
func normalizePoint(p LegacyPoint) (hours.Point, bool) {
	if len(p.Time) != 4 || p.Day < 0 || p.Day > 6 {
		return hours.Point{}, false
	}
	hour, err := strconv.Atoi(p.Time[:2])
	if err != nil || hour < 0 || hour > 23 {
		return hours.Point{}, false
	}
	minute, err := strconv.Atoi(p.Time[2:])
	if err != nil || minute < 0 || minute > 59 {
		return hours.Point{}, false
	}
	return hours.Point{Day: p.Day, Hour: hour, Minute: minute}, true
}

func normalizeReview(rv LegacyReview) Review {
	out := Review{
		Rating:                         rv.Rating,
		Text:                           rv.Text,
		TextLanguageCode:               rv.Language,
		RelativePublishTimeDescription: rv.RelativeTimeDescription,
		AuthorAttribution: &Attribution{
			DisplayName: rv.AuthorName,
			URI:         rv.AuthorURL,
			PhotoURI:    rv.ProfilePhotoURL,
		},
	}
	if rv.Time > 0 {
		t := time.Unix(rv.Time, 0).UTC()
		out.PublishTime = &t
	}
	return out
}

func parseAttributions(htmls []string) []Attribution {
	out := make([]Attribution, 0, len(htmls))
	for _, h := range htmls {
		out = append(out, ParseAttribution(h))
	}
	return out
}
