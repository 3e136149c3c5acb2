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
	"testing"
)

func TestEveryFieldHasAConstant(t *testing.T) {
	typ := reflect.TypeOf(Fields{})
	if len(fieldIndex) != typ.NumField() {
		t.Fatalf("fieldIndex has %d entries for %d struct fields; duplicate JSON tag?", len(fieldIndex), typ.NumField())
	}
	for f := range fieldIndex {
		if _, ok := legacyNames[f]; !ok && f != FieldAttributions {
			t.Errorf("no legacy name for %s", f)
		}
	}
}

func TestHas(t *testing.T) {
	f := Fields{Rating: ptr(4.0)}
	if !f.Has(FieldRating) {
		t.Error("rating should be present")
	}
	if f.Has(FieldDisplayName) {
		t.Error("displayName should be absent")
	}
	if !f.Has(FieldID) {
		t.Error("the ID is always present")
	}
	if f.Has("bogus") {
		t.Error("unknown fields are never present")
	}
}

func TestMissing(t *testing.T) {
	f := Fields{Rating: ptr(4.0)}
	got := f.Missing([]Field{FieldRating, FieldDisplayName, FieldID, FieldDisplayName, FieldPhotos})
	want := []Field{FieldDisplayName, FieldPhotos}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing = %v, want %v", got, want)
	}
}

func TestOverlay(t *testing.T) {
	dst := Fields{DisplayName: ptr("old"), Rating: ptr(3.0)}
	src := Fields{DisplayName: ptr("new"), UserRatingCount: ptr(10)}

	kept := dst
	if !kept.Overlay(src, false) {
		t.Fatal("expected a change")
	}
	if *kept.DisplayName != "old" || *kept.UserRatingCount != 10 || *kept.Rating != 3.0 {
		t.Fatalf("overlay without overwrite = %+v", kept)
	}

	replaced := dst
	replaced.Overlay(src, true)
	if *replaced.DisplayName != "new" {
		t.Fatalf("overlay with overwrite kept %q", *replaced.DisplayName)
	}

	if kept.Overlay(Fields{Rating: ptr(1.0)}, false) {
		t.Fatal("overlaying only known fields should report no change")
	}
}

func TestSchedule(t *testing.T) {
	var f Fields
	if f.Schedule().Known {
		t.Fatal("schedule without hours should be unknown")
	}
	f.RegularOpeningHours = &OpeningHours{}
	f.UTCOffsetMinutes = ptr(60)
	s := f.Schedule()
	if !s.Known || *s.UTCOffsetMinutes != 60 {
		t.Fatalf("schedule = %+v", s)
	}
}

func TestPriceLevel(t *testing.T) {
	for i := 0; i <= 4; i++ {
		l := PriceLevelFromInt(i)
		if l == PriceLevelUnspecified || l.Int() != i {
			t.Errorf("round trip of %d gave %q / %d", i, l, l.Int())
		}
	}
	if PriceLevelFromInt(5) != PriceLevelUnspecified || PriceLevelFromInt(-1) != PriceLevelUnspecified {
		t.Error("out of range levels should be unspecified")
	}
	if PriceLevelUnspecified.Int() != -1 || PriceLevel("CHEAP").Int() != -1 {
		t.Error("unknown levels should be -1")
	}
	if ParsePriceLevel("PRICE_LEVEL_VERY_EXPENSIVE") != PriceLevelVeryExpensive {
		t.Error("prefixed level not parsed")
	}
	if ParsePriceLevel("free") != PriceLevelFree {
		t.Error("lower case level not parsed")
	}
	if ParsePriceLevel("nonsense") != PriceLevelUnspecified {
		t.Error("nonsense should be unspecified")
	}
}

func TestParseAttribution(t *testing.T) {
	cases := []struct {
		in   string
		want Attribution
	}{
		{`<a href="https://example.com/u/1">Jane</a>`, Attribution{DisplayName: "Jane", URI: "https://example.com/u/1"}},
		{`<a>No Link</a>`, Attribution{DisplayName: "No Link", URI: ""}},
		{`Plain text`, Attribution{DisplayName: "Plain text"}},
		{`Data by <a href="https://a.example">A</a> and <a href="https://b.example">B</a>`, Attribution{DisplayName: "A", URI: "https://a.example"}},
		{`<a href="https://example.com">Caf&eacute;</a>`, Attribution{DisplayName: "Café", URI: "https://example.com"}},
		{``, Attribution{}},
	}
	for _, c := range cases {
		if got := ParseAttribution(c.in); got != c.want {
			t.Errorf("ParseAttribution(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
