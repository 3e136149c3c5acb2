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

import "time"

// DefaultSoonThreshold is how far ahead an instant can be and still count as "soon".
const DefaultSoonThreshold = 24 * time.Hour

// IsAlwaysOpen reports whether the schedule is the single "opens Sunday midnight, never closes"
// period the Places API uses for 24/7 places.
func IsAlwaysOpen(periods []Period) bool {
	if len(periods) != 1 {
		return false
	}
	p := periods[0]
	return p.Close == nil && p.Open == Point{}
}

// SundayAnchor returns the most recent Sunday 00:00 in place-local time, as an absolute instant no
// later than now and less than a week before it.
func SundayAnchor(utcOffsetMinutes int, now time.Time) time.Time {
	offset := time.Duration(utcOffsetMinutes) * time.Minute
	shifted := now.UTC().Add(offset)
	midnight := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
	sunday := midnight.AddDate(0, 0, -int(midnight.Weekday()))
	anchor := sunday.Add(-offset)
	if anchor.After(now) {
		anchor = anchor.Add(-week)
	} else if now.Sub(anchor) >= week {
		anchor = anchor.Add(week)
	}
	return anchor
}

// interval returns the absolute open and close instants of period around now. Periods whose close
// is not after their open wrap across the end of the week, so one side is moved by a week to make
// a forward interval. ok is false for a period with no close.
func interval(period Period, anchor, now time.Time) (open, close time.Time, ok bool) {
	open = period.Open.Instant(anchor)
	if period.Close == nil {
		return open, time.Time{}, false
	}
	close = period.Close.Instant(anchor)
	if !close.After(open) {
		if now.Before(open) {
			open = open.Add(-week)
		} else {
			close = close.Add(week)
		}
	}
	return open, close, true
}

func contains(open, close, now time.Time) bool {
	return !now.Before(open) && now.Before(close)
}

// CurrentPeriod returns the first period that contains now, along with its absolute close instant.
// A period without a close point is returned as-is with a zero close time.
func CurrentPeriod(periods []Period, utcOffsetMinutes int, now time.Time) (*Period, time.Time) {
	anchor := SundayAnchor(utcOffsetMinutes, now)
	for i := range periods {
		open, close, ok := interval(periods[i], anchor, now)
		if !ok {
			// Only valid for the always-open schedule, which callers check first; take it anyway
			// rather than guess.
			return &periods[i], time.Time{}
		}
		if contains(open, close, now) {
			return &periods[i], close
		}
	}
	return nil, time.Time{}
}

func (s Schedule) usable() bool {
	return s.Known && s.UTCOffsetMinutes != nil
}

// IsOpen reports whether the place is open at now. known is false if the schedule or the UTC
// offset is missing.
func IsOpen(s Schedule, now time.Time) (open, known bool) {
	if !s.usable() {
		return false, false
	}
	if IsAlwaysOpen(s.Periods) {
		return true, true
	}
	p, _ := CurrentPeriod(s.Periods, *s.UTCOffsetMinutes, now)
	return p != nil, true
}

// NextClose returns when the place next closes, if it is open now.
func NextClose(s Schedule, now time.Time) Transition {
	if !s.usable() {
		return Transition{Status: Unknown}
	}
	if IsAlwaysOpen(s.Periods) {
		return Transition{Status: AlwaysOpen}
	}
	p, at := CurrentPeriod(s.Periods, *s.UTCOffsetMinutes, now)
	if p == nil || p.Close == nil {
		return Transition{Status: NotOpenNow}
	}
	close := *p.Close
	return Transition{Status: WillClose, Point: &close, At: at}
}

// NextOpen returns when the place next opens. Every period is considered; the soonest future
// opening wins.
func NextOpen(s Schedule, now time.Time) Transition {
	if !s.usable() {
		return Transition{Status: Unknown}
	}
	if IsAlwaysOpen(s.Periods) {
		return Transition{Status: AlwaysOpen}
	}
	if len(s.Periods) == 0 {
		return Transition{Status: NeverOpen}
	}
	anchor := SundayAnchor(*s.UTCOffsetMinutes, now)
	var best *Period
	var bestAt time.Time
	for i := range s.Periods {
		open, close, ok := interval(s.Periods[i], anchor, now)
		if ok && contains(open, close, now) {
			return Transition{Status: OpenNow}
		}
		if open.Before(now) {
			open = open.Add(week)
		}
		if best == nil || open.Before(bestAt) {
			best = &s.Periods[i]
			bestAt = open
		}
	}
	point := best.Open
	return Transition{Status: WillOpen, Point: &point, At: bestAt}
}

// IsSoon reports whether t is after now and no more than threshold away. A zero threshold uses
// DefaultSoonThreshold.
func IsSoon(t, now time.Time, threshold time.Duration) bool {
	if threshold == 0 {
		threshold = DefaultSoonThreshold
	}
	return t.After(now) && t.Sub(now) <= threshold
}
