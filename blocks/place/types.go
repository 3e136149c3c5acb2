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
	"time"

	"github.com/mapblocks/service/blocks/hours"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Viewport struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}

type AddressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

type PlusCode struct {
	GlobalCode   string `json:"globalCode,omitempty"`
	CompoundCode string `json:"compoundCode,omitempty"`
}

type BusinessStatus string

const (
	Operational       BusinessStatus = "OPERATIONAL"
	ClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	ClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
)

type OpeningHours struct {
	Periods             []hours.Period `json:"periods"`
	WeekdayDescriptions []string       `json:"weekdayDescriptions,omitempty"`
}

// Attribution credits a data provider or author. URI is empty when the source gave a name without
// a link.
type Attribution struct {
	DisplayName string `json:"displayName"`
	URI         string `json:"uri"`
	PhotoURI    string `json:"photoURI,omitempty"`
}

type Photo struct {
	// Name identifies the photo to the photo media endpoint. For photos that came from a legacy
	// result this is the photo reference.
	Name               string        `json:"name"`
	WidthPx            int           `json:"widthPx"`
	HeightPx           int           `json:"heightPx"`
	AuthorAttributions []Attribution `json:"authorAttributions"`
}

type Review struct {
	Rating                         float64      `json:"rating"`
	Text                           string       `json:"text,omitempty"`
	TextLanguageCode               string       `json:"textLanguageCode,omitempty"`
	AuthorAttribution              *Attribution `json:"authorAttribution,omitempty"`
	PublishTime                    *time.Time   `json:"publishTime,omitempty"`
	RelativePublishTimeDescription string       `json:"relativePublishTimeDescription,omitempty"`
}
