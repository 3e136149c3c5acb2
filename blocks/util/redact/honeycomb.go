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

package redact

import (
	"golang.org/x/exp/slices"
	"net/url"
	"regexp"
)

var sensitiveQueryParams = []string{
	"key",          // our Maps API key, on legacy web service calls
	"lon", "lat",   // the client's location as sent to us
	"origin",       // route endpoints, either as sent to us or to the directions API
	"destination",  // ditto
	"location",     // the search centre for a locator lookup
	"latlng",       // reverse geocoding input
	"signature",    // URL signing for the static maps API
	"sessiontoken", // ties autocomplete and details calls together
	"place_id",     // legacy details lookups
}

// Legacy place IDs in paths are as good as a location.
var placePathRegex = regexp.MustCompile(`^/v1/places/[^/:]+`)

func redactQuery(query string) string {
	values, err := url.ParseQuery(query)
	if err != nil {
		return "[parse error redacted for safety]"
	}
	newValues := url.Values{}
	for k, v := range values {
		if slices.Contains(sensitiveQueryParams, k) {
			newValues[k] = []string{"redacted"}
		} else {
			newValues[k] = v
		}
	}
	return newValues.Encode()
}

func cleanPath(path string) string {
	return placePathRegex.ReplaceAllString(path, "/v1/places/[place]")
}

func cleanUrl(u string) string {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "[parse error redacted for safety]"
	}
	parsedUrl.Path = cleanPath(parsedUrl.Path)
	parsedUrl.RawQuery = redactQuery(parsedUrl.RawQuery)
	return parsedUrl.String()
}

func CleanHoneycomb(data map[string]interface{}) {
	// HTTP requests carry locations and keys. We don't want to send those to Honeycomb.
	if query, ok := data["request.query"]; ok {
		if queryStr, ok := query.(string); ok {
			data["request.query"] = redactQuery(queryStr)
		}
	}
	if path, ok := data["request.path"]; ok {
		if pathStr, ok := path.(string); ok {
			data["request.path"] = cleanPath(pathStr)
		}
	}
	if u, ok := data["request.url"]; ok {
		if urlStr, ok := u.(string); ok {
			data["request.url"] = cleanUrl(urlStr)
		}
	}
}
