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

// Package routes computes routes with the Routes API.
package routes

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/maps/routing/apiv2"
	"cloud.google.com/go/maps/routing/apiv2/routingpb"
	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/quota"
	"github.com/mapblocks/service/blocks/route"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const fieldMask = "routes.distanceMeters,routes.duration,routes.polyline,routes.description,routes.warnings," +
	"routes.legs.distanceMeters,routes.legs.duration,routes.legs.steps.distanceMeters," +
	"routes.legs.steps.staticDuration,routes.legs.steps.navigationInstruction,routes.legs.steps.travelMode"

type computeFunc func(ctx context.Context, req *routingpb.ComputeRoutesRequest) (*routingpb.ComputeRoutesResponse, error)

type Client struct {
	compute computeFunc
	charger quota.Charger
}

func NewClient(ctx context.Context, apiKey string, charger quota.Charger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	rc, err := routing.NewRoutesClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create routes client: %w", err)
	}
	return newClient(func(ctx context.Context, req *routingpb.ComputeRoutesRequest) (*routingpb.ComputeRoutesResponse, error) {
		return rc.ComputeRoutes(ctx, req)
	}, charger), nil
}

func newClient(compute computeFunc, charger quota.Charger) *Client {
	if charger == nil {
		charger = quota.Nop{}
	}
	return &Client{compute: compute, charger: charger}
}

func (c *Client) ComputeRoutes(ctx context.Context, req route.Request) ([]*route.Route, error) {
	ctx, span := beeline.StartSpan(ctx, "routes.compute_routes")
	defer span.Send()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.charger.ChargeCredits(ctx, quota.RouteCredits); err != nil {
		span.AddField("error", err)
		return nil, err
	}
	ctx = metadata.AppendToOutgoingContext(ctx, "x-goog-fieldmask", fieldMask)
	response, err := c.compute(ctx, computeRequest(req))
	if err != nil {
		log.Printf("error finding route: %v", err)
		span.AddField("error", err)
		return nil, fmt.Errorf("failed to compute routes: %w", err)
	}
	span.AddField("routes", len(response.GetRoutes()))
	result := make([]*route.Route, 0, len(response.GetRoutes()))
	for _, r := range response.GetRoutes() {
		result = append(result, fromRoute(r))
	}
	return result, nil
}

func computeRequest(req route.Request) *routingpb.ComputeRoutesRequest {
	crr := &routingpb.ComputeRoutesRequest{
		Origin:           waypoint(req.Origin),
		Destination:      waypoint(req.Destination),
		TravelMode:       travelMode(req.Mode),
		PolylineQuality:  routingpb.PolylineQuality_OVERVIEW,
		PolylineEncoding: routingpb.PolylineEncoding_ENCODED_POLYLINE,
		LanguageCode:     req.Language,
	}
	if req.DepartureTime != nil {
		crr.DepartureTime = timestamppb.New(*req.DepartureTime)
	}
	if crr.TravelMode == routingpb.RouteTravelMode_DRIVE {
		crr.RoutingPreference = routingpb.RoutingPreference_TRAFFIC_AWARE_OPTIMAL
		crr.TrafficModel = routingpb.TrafficModel_BEST_GUESS
	}
	return crr
}

func waypoint(e route.Endpoint) *routingpb.Waypoint {
	switch {
	case e.Location != nil:
		return &routingpb.Waypoint{
			LocationType: &routingpb.Waypoint_Location{
				Location: &routingpb.Location{
					LatLng: &latlng.LatLng{
						Latitude:  e.Location.Lat,
						Longitude: e.Location.Lng,
					},
				},
			},
		}
	case e.PlaceID != "":
		return &routingpb.Waypoint{LocationType: &routingpb.Waypoint_PlaceId{PlaceId: e.PlaceID}}
	}
	return &routingpb.Waypoint{LocationType: &routingpb.Waypoint_Address{Address: e.Query}}
}

func travelMode(m route.TravelMode) routingpb.RouteTravelMode {
	switch m {
	case route.Bicycling:
		return routingpb.RouteTravelMode_BICYCLE
	case route.Walking:
		return routingpb.RouteTravelMode_WALK
	case route.Transit:
		return routingpb.RouteTravelMode_TRANSIT
	}
	return routingpb.RouteTravelMode_DRIVE
}

func stepMode(m routingpb.RouteTravelMode) route.TravelMode {
	switch m {
	case routingpb.RouteTravelMode_BICYCLE:
		return route.Bicycling
	case routingpb.RouteTravelMode_WALK:
		return route.Walking
	case routingpb.RouteTravelMode_TRANSIT:
		return route.Transit
	}
	return route.Driving
}

func fromRoute(r *routingpb.Route) *route.Route {
	result := &route.Route{
		Summary:        r.GetDescription(),
		DistanceMeters: int(r.GetDistanceMeters()),
		Duration:       r.GetDuration().AsDuration(),
		Polyline:       r.GetPolyline().GetEncodedPolyline(),
		Warnings:       r.GetWarnings(),
	}
	for _, l := range r.GetLegs() {
		leg := route.Leg{
			DistanceMeters: int(l.GetDistanceMeters()),
			Duration:       l.GetDuration().AsDuration(),
		}
		for _, s := range l.GetSteps() {
			leg.Steps = append(leg.Steps, route.Step{
				Instruction:    s.GetNavigationInstruction().GetInstructions(),
				DistanceMeters: int(s.GetDistanceMeters()),
				Duration:       s.GetStaticDuration().AsDuration(),
				TravelMode:     stepMode(s.GetTravelMode()),
			})
		}
		result.Legs = append(result.Legs, leg)
	}
	return result
}
