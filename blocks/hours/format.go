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
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// clockKey looks up the time.Format layout for a time of day.
const clockKey = "clock"

var translations = map[language.Tag]map[string]string{
	language.German: {
		"Open 24 hours": "24 Stunden geöffnet",
		"Closed":        "Geschlossen",
		"Closes %s":     "Schließt %s",
		"Opens %s":      "Öffnet %s",
		clockKey:        "15:04 Uhr",
		"Sun":           "So",
		"Mon":           "Mo",
		"Tue":           "Di",
		"Wed":           "Mi",
		"Thu":           "Do",
		"Fri":           "Fr",
		"Sat":           "Sa",
	},
	language.French: {
		"Open 24 hours": "Ouvert 24h/24",
		"Closed":        "Fermé",
		"Closes %s":     "Ferme à %s",
		"Opens %s":      "Ouvre à %s",
		clockKey:        "15:04",
		"Sun":           "dim.",
		"Mon":           "lun.",
		"Tue":           "mar.",
		"Wed":           "mer.",
		"Thu":           "jeu.",
		"Fri":           "ven.",
		"Sat":           "sam.",
	},
	language.Spanish: {
		"Open 24 hours": "Abierto 24 horas",
		"Closed":        "Cerrado",
		"Closes %s":     "Cierra a las %s",
		"Opens %s":      "Abre a las %s",
		clockKey:        "15:04",
		"Sun":           "dom",
		"Mon":           "lun",
		"Tue":           "mar",
		"Wed":           "mié",
		"Thu":           "jue",
		"Fri":           "vie",
		"Sat":           "sáb",
	},
}

var matcher language.Matcher

func init() {
	tags := []language.Tag{language.English}
	for tag, strs := range translations {
		tags = append(tags, tag)
		for key, msg := range strs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("hours: bad %v translation for %q: %v", tag, key, err))
			}
		}
	}
	matcher = language.NewMatcher(tags)
}

// Printer returns a message printer for the closest supported language to lang, which may be empty.
func Printer(lang string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for supported := range translations {
		if b, _ := supported.Base(); b == base {
			return message.NewPrinter(supported)
		}
	}
	return message.NewPrinter(language.English)
}

// Label renders tr for display in place-local time, e.g. "Closes 5:00 PM", using the printer's
// language for the clock as well as the words. The weekday is
// included only when the transition is more than a day away; otherwise it's implied to be today
// or tonight. Statuses without a transition render as an empty string.
func Label(p *message.Printer, tr Transition, now time.Time, utcOffsetMinutes int) string {
	switch tr.Status {
	case AlwaysOpen:
		return p.Sprintf("Open 24 hours")
	case NeverOpen:
		return p.Sprintf("Closed")
	case WillClose:
		return p.Sprintf("Closes %s", when(p, tr, now, utcOffsetMinutes))
	case WillOpen:
		return p.Sprintf("Opens %s", when(p, tr, now, utcOffsetMinutes))
	}
	return ""
}

func when(p *message.Printer, tr Transition, now time.Time, utcOffsetMinutes int) string {
	local := tr.At.In(time.FixedZone("", utcOffsetMinutes*60))
	clock := local.Format(p.Sprintf(message.Key(clockKey, "3:04 PM")))
	if IsSoon(tr.At, now, DefaultSoonThreshold) {
		return clock
	}
	day := weekdays[local.Weekday()]
	return p.Sprintf(message.Key(day, day)) + " " + clock
}
