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

// LegacyResult is a place in the Places API (legacy) details shape. Pointer and slice members are
// nil when the result didn't include them.
type LegacyResult struct {
	PlaceID                      *string                  `json:"place_id,omitempty"`
	Name                         *string                  `json:"name,omitempty"`
	FormattedAddress             *string                  `json:"formatted_address,omitempty"`
	AddressComponents            []LegacyAddressComponent `json:"address_components,omitempty"`
	Geometry                     *LegacyGeometry          `json:"geometry,omitempty"`
	PlusCode                     *LegacyPlusCode          `json:"plus_code,omitempty"`
	Types                        []string                 `json:"types,omitempty"`
	BusinessStatus               *string                  `json:"business_status,omitempty"`
	OpeningHours                 *LegacyOpeningHours      `json:"opening_hours,omitempty"`
	UTCOffsetMinutes             *int                     `json:"utc_offset_minutes,omitempty"`
	Rating                       *float64                 `json:"rating,omitempty"`
	UserRatingsTotal             *int                     `json:"user_ratings_total,omitempty"`
	PriceLevel                   *int                     `json:"price_level,omitempty"`
	Reviews                      []LegacyReview           `json:"reviews,omitempty"`
	Photos                       []LegacyPhoto            `json:"photos,omitempty"`
	FormattedPhoneNumber         *string                  `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber     *string                  `json:"international_phone_number,omitempty"`
	Website                      *string                  `json:"website,omitempty"`
	URL                          *string                  `json:"url,omitempty"`
	EditorialSummary             *LegacyEditorialSummary  `json:"editorial_summary,omitempty"`
	HTMLAttributions             []string                 `json:"html_attributions,omitempty"`
	Delivery                     *bool                    `json:"delivery,omitempty"`
	DineIn                       *bool                    `json:"dine_in,omitempty"`
	Takeout                      *bool                    `json:"takeout,omitempty"`
	CurbsidePickup               *bool                    `json:"curbside_pickup,omitempty"`
	Reservable                   *bool                    `json:"reservable,omitempty"`
	ServesBreakfast              *bool                    `json:"serves_breakfast,omitempty"`
	ServesLunch                  *bool                    `json:"serves_lunch,omitempty"`
	ServesDinner                 *bool                    `json:"serves_dinner,omitempty"`
	ServesBeer                   *bool                    `json:"serves_beer,omitempty"`
	ServesWine                   *bool                    `json:"serves_wine,omitempty"`
	ServesVegetarianFood         *bool                    `json:"serves_vegetarian_food,omitempty"`
	WheelchairAccessibleEntrance *bool                    `json:"wheelchair_accessible_entrance,omitempty"`
}

type LegacyAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type LegacyGeometry struct {
	Location *LatLng       `json:"location,omitempty"`
	Viewport *LegacyBounds `json:"viewport,omitempty"`
}

type LegacyBounds struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}

type LegacyPlusCode struct {
	GlobalCode   string `json:"global_code"`
	CompoundCode string `json:"compound_code"`
}

type LegacyOpeningHours struct {
	Periods     []LegacyPeriod `json:"periods"`
	WeekdayText []string       `json:"weekday_text,omitempty"`
}

type LegacyPeriod struct {
	Open  LegacyPoint  `json:"open"`
	Close *LegacyPoint `json:"close,omitempty"`
}

// LegacyPoint is a day of the week and a 24 hour "HHMM" time.
type LegacyPoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type LegacyReview struct {
	AuthorName              string  `json:"author_name"`
	AuthorURL               string  `json:"author_url,omitempty"`
	ProfilePhotoURL         string  `json:"profile_photo_url,omitempty"`
	Language                string  `json:"language,omitempty"`
	Rating                  float64 `json:"rating"`
	RelativeTimeDescription string  `json:"relative_time_description,omitempty"`
	Text                    string  `json:"text"`
	// Time is seconds since the epoch; zero if unknown.
	Time int64 `json:"time,omitempty"`
}

type LegacyPhoto struct {
	PhotoReference   string   `json:"photo_reference"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions"`
}

type LegacyEditorialSummary struct {
	Overview string `json:"overview"`
	Language string `json:"language,omitempty"`
}

// legacyNames translates Place fields to the legacy details API's field names. Fields with no
// legacy equivalent are absent.
var legacyNames = map[Field]string{
	FieldID:                           "place_id",
	FieldDisplayName:                  "name",
	FieldFormattedAddress:             "formatted_address",
	FieldAddressComponents:            "address_components",
	FieldLocation:                     "geometry/location",
	FieldViewport:                     "geometry/viewport",
	FieldPlusCode:                     "plus_code",
	FieldTypes:                        "types",
	FieldBusinessStatus:               "business_status",
	FieldRegularOpeningHours:          "opening_hours",
	FieldUTCOffsetMinutes:             "utc_offset",
	FieldRating:                       "rating",
	FieldUserRatingCount:              "user_ratings_total",
	FieldPriceLevel:                   "price_level",
	FieldReviews:                      "reviews",
	FieldPhotos:                       "photos",
	FieldNationalPhoneNumber:          "formatted_phone_number",
	FieldInternationalPhoneNumber:     "international_phone_number",
	FieldWebsiteURI:                   "website",
	FieldGoogleMapsURI:                "url",
	FieldEditorialSummary:             "editorial_summary",
	FieldHasDelivery:                  "delivery",
	FieldHasDineIn:                    "dine_in",
	FieldHasTakeout:                   "takeout",
	FieldHasCurbsidePickup:            "curbside_pickup",
	FieldIsReservable:                 "reservable",
	FieldServesBreakfast:              "serves_breakfast",
	FieldServesLunch:                  "serves_lunch",
	FieldServesDinner:                 "serves_dinner",
	FieldServesBeer:                   "serves_beer",
	FieldServesWine:                   "serves_wine",
	FieldServesVegetarianFood:         "serves_vegetarian_food",
	FieldHasWheelchairAccessibleEntry: "wheelchair_accessible_entrance",
}

// LegacyFieldNames translates fields to legacy details field names, preserving order and dropping
// duplicates and fields the legacy API can't return.
func LegacyFieldNames(fields []Field) []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range fields {
		name, ok := legacyNames[f]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
