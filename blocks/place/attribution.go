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
	"strings"

	"golang.org/x/net/html"
)

// ParseAttribution turns a legacy HTML attribution such as `<a href="https://x">Jane</a>` into a
// name and link. Text outside of the first anchor is ignored once an anchor is found; a string with
// no anchor at all becomes a name with an empty URI.
func ParseAttribution(s string) Attribution {
	z := html.NewTokenizer(strings.NewReader(s))
	var all, anchor strings.Builder
	inAnchor, sawAnchor := false, false
	var uri string
	for {
		switch z.Next() {
		case html.ErrorToken:
			name := anchor.String()
			if !sawAnchor {
				name = all.String()
			}
			return Attribution{DisplayName: strings.TrimSpace(name), URI: uri}
		case html.StartTagToken:
			t := z.Token()
			if t.Data != "a" || sawAnchor {
				continue
			}
			inAnchor, sawAnchor = true, true
			for _, attr := range t.Attr {
				if attr.Key == "href" {
					uri = attr.Val
				}
			}
		case html.EndTagToken:
			if t := z.Token(); t.Data == "a" {
				inAnchor = false
			}
		case html.TextToken:
			text := string(z.Text())
			all.WriteString(text)
			if inAnchor {
				anchor.WriteString(text)
			}
		}
	}
}
