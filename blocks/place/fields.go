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
	"reflect"
	"strings"

	"github.com/mapblocks/service/blocks/hours"
)

// Field names a fetchable attribute of a Place, using the Places API (new) spelling.
type Field string

const (
	FieldID                           Field = "id"
	FieldDisplayName                  Field = "displayName"
	FieldFormattedAddress             Field = "formattedAddress"
	FieldAddressComponents            Field = "addressComponents"
	FieldLocation                     Field = "location"
	FieldViewport                     Field = "viewport"
	FieldPlusCode                     Field = "plusCode"
	FieldTypes                        Field = "types"
	FieldBusinessStatus               Field = "businessStatus"
	FieldRegularOpeningHours          Field = "regularOpeningHours"
	FieldUTCOffsetMinutes             Field = "utcOffsetMinutes"
	FieldRating                       Field = "rating"
	FieldUserRatingCount              Field = "userRatingCount"
	FieldPriceLevel                   Field = "priceLevel"
	FieldReviews                      Field = "reviews"
	FieldPhotos                       Field = "photos"
	FieldNationalPhoneNumber          Field = "nationalPhoneNumber"
	FieldInternationalPhoneNumber     Field = "internationalPhoneNumber"
	FieldWebsiteURI                   Field = "websiteURI"
	FieldGoogleMapsURI                Field = "googleMapsURI"
	FieldEditorialSummary             Field = "editorialSummary"
	FieldAttributions                 Field = "attributions"
	FieldHasDelivery                  Field = "hasDelivery"
	FieldHasDineIn                    Field = "hasDineIn"
	FieldHasTakeout                   Field = "hasTakeout"
	FieldHasCurbsidePickup            Field = "hasCurbsidePickup"
	FieldIsReservable                 Field = "isReservable"
	FieldServesBreakfast              Field = "servesBreakfast"
	FieldServesLunch                  Field = "servesLunch"
	FieldServesDinner                 Field = "servesDinner"
	FieldServesBeer                   Field = "servesBeer"
	FieldServesWine                   Field = "servesWine"
	FieldServesVegetarianFood         Field = "servesVegetarianFood"
	FieldHasWheelchairAccessibleEntry Field = "hasWheelchairAccessibleEntrance"
)

// Fields holds the fetched attributes of a place. A nil member has no known value; Place tracks
// which of those were fetched. Every member is either nil or complete.
type Fields struct {
	DisplayName                     *string            `json:"displayName,omitempty"`
	FormattedAddress                *string            `json:"formattedAddress,omitempty"`
	AddressComponents               []AddressComponent `json:"addressComponents,omitempty"`
	Location                        *LatLng            `json:"location,omitempty"`
	Viewport                        *Viewport          `json:"viewport,omitempty"`
	PlusCode                        *PlusCode          `json:"plusCode,omitempty"`
	Types                           []string           `json:"types,omitempty"`
	BusinessStatus                  *BusinessStatus    `json:"businessStatus,omitempty"`
	RegularOpeningHours             *OpeningHours      `json:"regularOpeningHours,omitempty"`
	UTCOffsetMinutes                *int               `json:"utcOffsetMinutes,omitempty"`
	Rating                          *float64           `json:"rating,omitempty"`
	UserRatingCount                 *int               `json:"userRatingCount,omitempty"`
	PriceLevel                      *PriceLevel        `json:"priceLevel,omitempty"`
	Reviews                         []Review           `json:"reviews,omitempty"`
	Photos                          []Photo            `json:"photos,omitempty"`
	NationalPhoneNumber             *string            `json:"nationalPhoneNumber,omitempty"`
	InternationalPhoneNumber        *string            `json:"internationalPhoneNumber,omitempty"`
	WebsiteURI                      *string            `json:"websiteURI,omitempty"`
	GoogleMapsURI                   *string            `json:"googleMapsURI,omitempty"`
	EditorialSummary                *string            `json:"editorialSummary,omitempty"`
	Attributions                    []Attribution      `json:"attributions,omitempty"`
	HasDelivery                     *bool              `json:"hasDelivery,omitempty"`
	HasDineIn                       *bool              `json:"hasDineIn,omitempty"`
	HasTakeout                      *bool              `json:"hasTakeout,omitempty"`
	HasCurbsidePickup               *bool              `json:"hasCurbsidePickup,omitempty"`
	IsReservable                    *bool              `json:"isReservable,omitempty"`
	ServesBreakfast                 *bool              `json:"servesBreakfast,omitempty"`
	ServesLunch                     *bool              `json:"servesLunch,omitempty"`
	ServesDinner                    *bool              `json:"servesDinner,omitempty"`
	ServesBeer                      *bool              `json:"servesBeer,omitempty"`
	ServesWine                      *bool              `json:"servesWine,omitempty"`
	ServesVegetarianFood            *bool              `json:"servesVegetarianFood,omitempty"`
	HasWheelchairAccessibleEntrance *bool              `json:"hasWheelchairAccessibleEntrance,omitempty"`
}

// fieldIndex maps a Field to its position in Fields, derived from the JSON tags.
var fieldIndex = func() map[Field]int {
	m := make(map[Field]int)
	t := reflect.TypeOf(Fields{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		m[Field(name)] = i
	}
	return m
}()

// Known reports whether f names a fetchable field.
func Known(f Field) bool {
	if f == FieldID {
		return true
	}
	_, ok := fieldIndex[f]
	return ok
}

// Has reports whether f has a value. The ID always does.
func (fs *Fields) Has(f Field) bool {
	if f == FieldID {
		return true
	}
	i, ok := fieldIndex[f]
	if !ok {
		return false
	}
	return !reflect.ValueOf(fs).Elem().Field(i).IsNil()
}

// Missing returns the members of want that have no value, in order, without duplicates.
func (fs *Fields) Missing(want []Field) []Field {
	var missing []Field
	seen := make(map[Field]bool)
	for _, f := range want {
		if seen[f] || fs.Has(f) {
			continue
		}
		seen[f] = true
		missing = append(missing, f)
	}
	return missing
}

// Present lists every field with a value.
func (fs *Fields) Present() []Field {
	var present []Field
	v := reflect.ValueOf(fs).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if !v.Field(i).IsNil() {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			present = append(present, Field(name))
		}
	}
	return present
}

// Overlay copies every present field of src into fs. Fields already present in fs are only
// replaced if overwrite is set. It reports whether anything changed.
func (fs *Fields) Overlay(src Fields, overwrite bool) bool {
	changed := false
	dst := reflect.ValueOf(fs).Elem()
	from := reflect.ValueOf(src)
	for i := 0; i < dst.NumField(); i++ {
		if from.Field(i).IsNil() {
			continue
		}
		if !dst.Field(i).IsNil() && !overwrite {
			continue
		}
		dst.Field(i).Set(from.Field(i))
		changed = true
	}
	return changed
}

// Schedule extracts what the opening hours calculator needs.
func (fs *Fields) Schedule() hours.Schedule {
	s := hours.Schedule{UTCOffsetMinutes: fs.UTCOffsetMinutes}
	if fs.RegularOpeningHours != nil {
		s.Known = true
		s.Periods = fs.RegularOpeningHours.Periods
	}
	return s
}
