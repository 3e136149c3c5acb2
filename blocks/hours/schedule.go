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

// Package hours answers "is it open" questions about a weekly opening schedule expressed in a
// place's own local time.
package hours

import "time"

const week = 7 * 24 * time.Hour

// Point is a moment in the week, relative to the place's local time. Day 0 is Sunday.
type Point struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Period is one opening interval. A nil Close means the place opens at Open and never closes,
// which is only meaningful as the single period of a schedule.
type Period struct {
	Open  Point  `json:"open"`
	Close *Point `json:"close,omitempty"`
}

// Schedule is everything the calculator needs to know about a place. Either field may be missing,
// in which case most answers are Unknown.
type Schedule struct {
	Periods          []Period
	UTCOffsetMinutes *int
	// Known is false when the place's weekly hours have never been fetched, as opposed to fetched
	// and empty.
	Known bool
}

// Status describes the outcome of a query.
type Status int

const (
	Unknown Status = iota
	AlwaysOpen
	NeverOpen
	NotOpenNow
	OpenNow
	WillClose
	WillOpen
)

func (s Status) String() string {
	switch s {
	case AlwaysOpen:
		return "always_open"
	case NeverOpen:
		return "never_open"
	case NotOpenNow:
		return "not_open_now"
	case OpenNow:
		return "open_now"
	case WillClose:
		return "will_close"
	case WillOpen:
		return "will_open"
	default:
		return "unknown"
	}
}

// Transition is the answer to a next-open or next-close query. Point and At are only set for
// WillOpen and WillClose.
type Transition struct {
	Status Status
	Point  *Point
	At     time.Time
}

func (p Point) offset() time.Duration {
	return time.Duration(p.Day)*24*time.Hour + time.Duration(p.Hour)*time.Hour + time.Duration(p.Minute)*time.Minute
}

// Instant converts p to an absolute time, given the anchor returned by SundayAnchor.
func (p Point) Instant(anchor time.Time) time.Time {
	return anchor.Add(p.offset())
}
