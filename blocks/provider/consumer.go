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

package provider

import (
	"github.com/mapblocks/service/blocks/feed"
	"github.com/mapblocks/service/blocks/place"
)

// Consumer reads the place published by a Provider.
type Consumer = feed.Consumer[*place.Place]

// NewConsumer returns a consumer that requires fields. It has sufficient data once every one of
// them has been fetched, with or without a value, and treats a place gaining fields as a change.
func NewConsumer(fields ...place.Field) *Consumer {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return feed.NewConsumer(feed.ConsumerOptions[*place.Place]{
		Stamp:      revision,
		Sufficient: hasAll,
	}, names...)
}

// RequireFields is Require with typed field names.
func RequireFields(c *Consumer, fields ...place.Field) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	c.Require(names...)
}

func revision(p *place.Place) uint64 {
	if p == nil {
		return 0
	}
	return p.Revision()
}

func hasAll(p *place.Place, required []string) bool {
	if p == nil {
		return false
	}
	for _, f := range required {
		if !p.Has(place.Field(f)) {
			return false
		}
	}
	return true
}
