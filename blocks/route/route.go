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

// Package route computes and publishes directions between two endpoints.
package route

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mapblocks/service/blocks/place"
)

type TravelMode string

const (
	Driving   TravelMode = "driving"
	Bicycling TravelMode = "bicycle"
	Walking   TravelMode = "walking"
	Transit   TravelMode = "transit"
)

// ParseTravelMode accepts the travel modes by name. An empty string means driving.
func ParseTravelMode(s string) (TravelMode, error) {
	switch strings.ToLower(s) {
	case "", "driving", "drive":
		return Driving, nil
	case "bicycle", "bicycling":
		return Bicycling, nil
	case "walking", "walk":
		return Walking, nil
	case "transit":
		return Transit, nil
	}
	return "", fmt.Errorf("unknown travel mode: %s", s)
}

// Endpoint is one end of a route. Exactly one of its members may be set.
type Endpoint struct {
	Location *place.LatLng `json:"location,omitempty"`
	PlaceID  string        `json:"placeId,omitempty"`
	Query    string        `json:"query,omitempty"`
}

func (e Endpoint) specifiers() int {
	n := 0
	if e.Location != nil {
		n++
	}
	if e.PlaceID != "" {
		n++
	}
	if e.Query != "" {
		n++
	}
	return n
}

func (e Endpoint) IsZero() bool {
	return e.specifiers() == 0
}

func (e Endpoint) key() string {
	switch {
	case e.Location != nil:
		return "@" + strconv.FormatFloat(e.Location.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(e.Location.Lng, 'f', 6, 64)
	case e.PlaceID != "":
		return "place:" + e.PlaceID
	}
	return "q:" + strings.ToLower(strings.TrimSpace(e.Query))
}

// Request asks for directions from Origin to Destination.
type Request struct {
	Origin        Endpoint
	Destination   Endpoint
	Mode          TravelMode
	DepartureTime *time.Time
	Language      string
}

// ConfigError is a request that can't be sent as it stands.
type ConfigError struct {
	Endpoint string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid route %s: %s", e.Endpoint, e.Reason)
}

// Validate checks that each endpoint is set in exactly one way.
func (r Request) Validate() error {
	for _, ep := range []struct {
		name string
		e    Endpoint
	}{{"origin", r.Origin}, {"destination", r.Destination}} {
		switch n := ep.e.specifiers(); {
		case n == 0:
			return &ConfigError{Endpoint: ep.name, Reason: "no location, place ID or query set"}
		case n > 1:
			return &ConfigError{Endpoint: ep.name, Reason: "only one of location, place ID and query may be set"}
		}
	}
	return nil
}

// Key identifies equivalent requests.
func (r Request) Key() string {
	mode := r.Mode
	if mode == "" {
		mode = Driving
	}
	k := r.Origin.key() + "|" + r.Destination.key() + "|" + string(mode) + "|" + r.Language
	if r.DepartureTime != nil {
		k += "|" + r.DepartureTime.UTC().Format(time.RFC3339)
	}
	return k
}

type Route struct {
	Summary        string        `json:"summary,omitempty"`
	DistanceMeters int           `json:"distanceMeters"`
	Duration       time.Duration `json:"duration"`
	Polyline       string        `json:"polyline,omitempty"`
	Legs           []Leg         `json:"legs,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
}

type Leg struct {
	StartAddress   string        `json:"startAddress,omitempty"`
	EndAddress     string        `json:"endAddress,omitempty"`
	DistanceMeters int           `json:"distanceMeters"`
	Duration       time.Duration `json:"duration"`
	Steps          []Step        `json:"steps,omitempty"`
}

type Step struct {
	Instruction    string        `json:"instruction,omitempty"`
	DistanceMeters int           `json:"distanceMeters"`
	Duration       time.Duration `json:"duration"`
	TravelMode     TravelMode    `json:"travelMode,omitempty"`
}

// Computer is a directions backend. A successful call returns at least one route.
type Computer interface {
	ComputeRoutes(ctx context.Context, req Request) ([]*Route, error)
}
