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

import "strings"

type PriceLevel string

const (
	PriceLevelUnspecified   PriceLevel = "PRICE_LEVEL_UNSPECIFIED"
	PriceLevelFree          PriceLevel = "FREE"
	PriceLevelInexpensive   PriceLevel = "INEXPENSIVE"
	PriceLevelModerate      PriceLevel = "MODERATE"
	PriceLevelExpensive     PriceLevel = "EXPENSIVE"
	PriceLevelVeryExpensive PriceLevel = "VERY_EXPENSIVE"
)

// priceLevels is indexed by the legacy 0-4 integer.
var priceLevels = []PriceLevel{
	PriceLevelFree,
	PriceLevelInexpensive,
	PriceLevelModerate,
	PriceLevelExpensive,
	PriceLevelVeryExpensive,
}

// PriceLevelFromInt converts a legacy numeric price level. Out of range values are unspecified.
func PriceLevelFromInt(n int) PriceLevel {
	if n < 0 || n >= len(priceLevels) {
		return PriceLevelUnspecified
	}
	return priceLevels[n]
}

// Int returns the legacy numeric price level, or -1 if there isn't one.
func (p PriceLevel) Int() int {
	for i, l := range priceLevels {
		if l == p {
			return i
		}
	}
	return -1
}

// ParsePriceLevel accepts both "MODERATE" and the Places API's "PRICE_LEVEL_MODERATE".
func ParsePriceLevel(s string) PriceLevel {
	l := PriceLevel(strings.TrimPrefix(strings.ToUpper(s), "PRICE_LEVEL_"))
	if l.Int() < 0 {
		return PriceLevelUnspecified
	}
	return l
}
