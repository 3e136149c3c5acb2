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

package gmaps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/quota"
	"github.com/mapblocks/service/blocks/route"
	maps "googlemaps.github.io/maps"
)

// ComputeRoutes asks the legacy directions service for routes.
func (c *Client) ComputeRoutes(ctx context.Context, req route.Request) ([]*route.Route, error) {
	ctx, span := beeline.StartSpan(ctx, "gmaps.directions")
	defer span.Send()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.charger.ChargeCredits(ctx, quota.DirectionsCredits); err != nil {
		span.AddField("error", err)
		return nil, err
	}
	routes, _, err := c.maps.Directions(ctx, directionsRequest(req))
	if err != nil {
		span.AddField("error", err)
		return nil, fmt.Errorf("failed to get directions: %w", err)
	}
	span.AddField("routes", len(routes))
	result := make([]*route.Route, 0, len(routes))
	for _, r := range routes {
		result = append(result, fromDirections(r))
	}
	return result, nil
}

func directionsRequest(req route.Request) *maps.DirectionsRequest {
	r := &maps.DirectionsRequest{
		Origin:      endpoint(req.Origin),
		Destination: endpoint(req.Destination),
		Mode:        travelMode(req.Mode),
		Language:    req.Language,
	}
	if req.DepartureTime != nil {
		r.DepartureTime = strconv.FormatInt(req.DepartureTime.Unix(), 10)
	}
	return r
}

func endpoint(e route.Endpoint) string {
	switch {
	case e.Location != nil:
		return strconv.FormatFloat(e.Location.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(e.Location.Lng, 'f', -1, 64)
	case e.PlaceID != "":
		return "place_id:" + e.PlaceID
	}
	return e.Query
}

func travelMode(m route.TravelMode) maps.Mode {
	switch m {
	case route.Walking:
		return maps.TravelModeWalking
	case route.Bicycling:
		return maps.TravelModeBicycling
	case route.Transit:
		return maps.TravelModeTransit
	}
	return maps.TravelModeDriving
}

func fromDirections(r maps.Route) *route.Route {
	result := &route.Route{
		Summary:  r.Summary,
		Polyline: r.OverviewPolyline.Points,
		Warnings: r.Warnings,
	}
	for _, l := range r.Legs {
		leg := route.Leg{
			StartAddress:   l.StartAddress,
			EndAddress:     l.EndAddress,
			DistanceMeters: l.Distance.Meters,
			Duration:       l.Duration,
		}
		for _, s := range l.Steps {
			leg.Steps = append(leg.Steps, route.Step{
				Instruction:    s.HTMLInstructions,
				DistanceMeters: s.Distance.Meters,
				Duration:       s.Duration,
				TravelMode:     stepMode(s.TravelMode),
			})
		}
		result.DistanceMeters += leg.DistanceMeters
		result.Duration += leg.Duration
		result.Legs = append(result.Legs, leg)
	}
	return result
}

func stepMode(m string) route.TravelMode {
	switch m {
	case "WALKING":
		return route.Walking
	case "BICYCLING":
		return route.Bicycling
	case "TRANSIT":
		return route.Transit
	}
	return route.Driving
}
