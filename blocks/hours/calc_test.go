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

package hours

import (
	"testing"
	"time"
)

// 2024-01-07 is a Sunday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, 7+day, hour, minute, 0, 0, time.UTC)
}

func period(openDay, openHour, closeDay, closeHour int) Period {
	return Period{
		Open:  Point{Day: openDay, Hour: openHour},
		Close: &Point{Day: closeDay, Hour: closeHour},
	}
}

func utc(periods ...Period) Schedule {
	offset := 0
	return Schedule{Periods: periods, UTCOffsetMinutes: &offset, Known: true}
}

func TestSundayAnchor(t *testing.T) {
	cases := []struct {
		name   string
		offset int
		now    time.Time
		want   time.Time
	}{
		{"utc monday", 0, at(1, 8, 0), at(0, 0, 0)},
		{"utc sunday midnight", 0, at(0, 0, 0), at(0, 0, 0)},
		{"utc saturday night", 0, at(6, 23, 59), at(0, 0, 0)},
		{"ahead of utc, already monday locally", 60, time.Date(2024, 1, 7, 23, 30, 0, 0, time.UTC), time.Date(2024, 1, 6, 23, 0, 0, 0, time.UTC)},
		{"behind utc, still saturday locally", -480, time.Date(2024, 1, 7, 3, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SundayAnchor(c.offset, c.now)
			if !got.Equal(c.want) {
				t.Fatalf("SundayAnchor(%d, %v) = %v, want %v", c.offset, c.now, got, c.want)
			}
			if got.After(c.now) || c.now.Sub(got) >= week {
				t.Fatalf("anchor %v is not within a week before %v", got, c.now)
			}
		})
	}
}

func TestAlwaysOpen(t *testing.T) {
	s := utc(Period{Open: Point{}})
	if !IsAlwaysOpen(s.Periods) {
		t.Fatal("expected schedule to be always open")
	}
	for _, now := range []time.Time{at(0, 0, 0), at(3, 12, 30), at(6, 23, 59)} {
		if open, known := IsOpen(s, now); !open || !known {
			t.Fatalf("IsOpen(%v) = %v, %v; want true, true", now, open, known)
		}
		if tr := NextClose(s, now); tr.Status != AlwaysOpen {
			t.Fatalf("NextClose(%v) = %v, want always open", now, tr.Status)
		}
		if tr := NextOpen(s, now); tr.Status != AlwaysOpen {
			t.Fatalf("NextOpen(%v) = %v, want always open", now, tr.Status)
		}
	}
}

func TestNotAlwaysOpen(t *testing.T) {
	cases := map[string][]Period{
		"two periods":    {{Open: Point{}}, {Open: Point{Day: 1}}},
		"has close":      {period(0, 0, 1, 0)},
		"opens mid week": {{Open: Point{Day: 3}}},
		"empty":          {},
	}
	for name, periods := range cases {
		if IsAlwaysOpen(periods) {
			t.Errorf("%s: IsAlwaysOpen = true", name)
		}
	}
}

func TestUnknownWithoutOffsetOrSchedule(t *testing.T) {
	noOffset := Schedule{Periods: []Period{period(1, 9, 1, 17)}, Known: true}
	noHours := Schedule{UTCOffsetMinutes: new(int)}
	for name, s := range map[string]Schedule{"no offset": noOffset, "no hours": noHours} {
		if tr := NextClose(s, at(1, 10, 0)); tr.Status != Unknown {
			t.Errorf("%s: NextClose = %v, want unknown", name, tr.Status)
		}
		if tr := NextOpen(s, at(1, 10, 0)); tr.Status != Unknown {
			t.Errorf("%s: NextOpen = %v, want unknown", name, tr.Status)
		}
		if _, known := IsOpen(s, at(1, 10, 0)); known {
			t.Errorf("%s: IsOpen known = true", name)
		}
	}
}

func TestNoPeriodsIsNeverOpen(t *testing.T) {
	s := utc()
	if tr := NextOpen(s, at(2, 12, 0)); tr.Status != NeverOpen {
		t.Fatalf("NextOpen = %v, want never open", tr.Status)
	}
	if tr := NextClose(s, at(2, 12, 0)); tr.Status != NotOpenNow {
		t.Fatalf("NextClose = %v, want not open now", tr.Status)
	}
	if open, known := IsOpen(s, at(2, 12, 0)); open || !known {
		t.Fatalf("IsOpen = %v, %v; want false, true", open, known)
	}
}

func TestNextCloseWrapsIntoNewWeek(t *testing.T) {
	s := utc(period(3, 9, 3, 17), period(4, 9, 4, 17), period(5, 9, 1, 9))
	tr := NextClose(s, at(1, 8, 0))
	if tr.Status != WillClose {
		t.Fatalf("status = %v, want will close", tr.Status)
	}
	if !tr.At.Equal(at(1, 9, 0)) {
		t.Fatalf("closes at %v, want %v", tr.At, at(1, 9, 0))
	}
	if *tr.Point != (Point{Day: 1, Hour: 9}) {
		t.Fatalf("close point = %+v", *tr.Point)
	}
}

func TestNextCloseWrapsPastSaturday(t *testing.T) {
	s := utc(period(3, 9, 3, 17), period(4, 9, 4, 17), period(6, 20, 0, 9))
	tr := NextClose(s, at(6, 23, 0))
	if tr.Status != WillClose {
		t.Fatalf("status = %v, want will close", tr.Status)
	}
	if want := at(7, 9, 0); !tr.At.Equal(want) {
		t.Fatalf("closes at %v, want %v", tr.At, want)
	}
}

func TestNextCloseAcrossMidnightWithinWeek(t *testing.T) {
	s := utc(period(3, 9, 3, 17), period(4, 9, 4, 17), period(5, 9, 6, 2))
	tr := NextClose(s, at(6, 1, 0))
	if tr.Status != WillClose || !tr.At.Equal(at(6, 2, 0)) {
		t.Fatalf("NextClose = %v at %v, want will close at %v", tr.Status, tr.At, at(6, 2, 0))
	}
	if tr := NextClose(s, at(6, 3, 0)); tr.Status != NotOpenNow {
		t.Fatalf("NextClose after closing = %v, want not open now", tr.Status)
	}
}

func TestOpenEqualsCloseIsFullWeek(t *testing.T) {
	s := utc(period(1, 9, 1, 9))
	tr := NextClose(s, at(3, 12, 0))
	if tr.Status != WillClose {
		t.Fatalf("status = %v, want will close", tr.Status)
	}
	if want := at(8, 9, 0); !tr.At.Equal(want) {
		t.Fatalf("closes at %v, want %v", tr.At, want)
	}
}

func TestSplitHours(t *testing.T) {
	s := utc(period(1, 11, 1, 14), period(1, 17, 1, 22))

	if tr := NextClose(s, at(1, 12, 0)); tr.Status != WillClose || !tr.At.Equal(at(1, 14, 0)) {
		t.Errorf("lunch: NextClose = %v at %v", tr.Status, tr.At)
	}
	if tr := NextClose(s, at(1, 18, 0)); tr.Status != WillClose || !tr.At.Equal(at(1, 22, 0)) {
		t.Errorf("dinner: NextClose = %v at %v", tr.Status, tr.At)
	}
	if tr := NextOpen(s, at(1, 15, 0)); tr.Status != WillOpen || !tr.At.Equal(at(1, 17, 0)) {
		t.Errorf("between: NextOpen = %v at %v", tr.Status, tr.At)
	}
	if tr := NextOpen(s, at(1, 23, 0)); tr.Status != WillOpen || !tr.At.Equal(at(8, 11, 0)) {
		t.Errorf("after dinner: NextOpen = %v at %v, want %v", tr.Status, tr.At, at(8, 11, 0))
	}
	if tr := NextOpen(s, at(1, 12, 0)); tr.Status != OpenNow {
		t.Errorf("lunch: NextOpen = %v, want open now", tr.Status)
	}
}

func TestNextOpenPicksEarliestAcrossPeriods(t *testing.T) {
	// Declared out of order; the soonest opening must still win.
	s := utc(period(5, 9, 5, 17), period(2, 9, 2, 17), period(4, 9, 4, 17))
	tr := NextOpen(s, at(3, 10, 0))
	if tr.Status != WillOpen {
		t.Fatalf("status = %v, want will open", tr.Status)
	}
	if !tr.At.Equal(at(4, 9, 0)) {
		t.Fatalf("opens at %v, want %v", tr.At, at(4, 9, 0))
	}
	if tr.Point.Day != 4 {
		t.Fatalf("open point = %+v", *tr.Point)
	}
}

func TestHalfOpenInterval(t *testing.T) {
	s := utc(period(1, 9, 1, 17))
	if open, _ := IsOpen(s, at(1, 9, 0)); !open {
		t.Error("should be open exactly at opening time")
	}
	if open, _ := IsOpen(s, at(1, 17, 0)); open {
		t.Error("should be closed exactly at closing time")
	}
}

func TestPlaceLocalOffset(t *testing.T) {
	// UTC-8, open Monday 09:00-17:00 local, i.e. 17:00-01:00 UTC.
	offset := -480
	s := Schedule{Periods: []Period{period(1, 9, 1, 17)}, UTCOffsetMinutes: &offset, Known: true}
	now := time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)
	tr := NextClose(s, now)
	if tr.Status != WillClose {
		t.Fatalf("status = %v, want will close", tr.Status)
	}
	if want := time.Date(2024, 1, 9, 1, 0, 0, 0, time.UTC); !tr.At.Equal(want) {
		t.Fatalf("closes at %v, want %v", tr.At, want)
	}
}

func TestIsSoon(t *testing.T) {
	now := at(1, 8, 0)
	if !IsSoon(now.Add(23*time.Hour), now, 0) {
		t.Error("23 hours away should be soon")
	}
	if IsSoon(now.Add(25*time.Hour), now, 0) {
		t.Error("25 hours away should not be soon")
	}
	if IsSoon(now, now, 0) {
		t.Error("now should not be soon")
	}
	if IsSoon(now.Add(-time.Minute), now, 0) {
		t.Error("the past should not be soon")
	}
	if IsSoon(now.Add(2*time.Hour), now, time.Hour) {
		t.Error("custom threshold ignored")
	}
}
