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

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	PlacesAPINew    = "new"
	PlacesAPILegacy = "legacy"

	RoutesBackendRoutes     = "routes"
	RoutesBackendDirections = "directions"
)

type Config struct {
	GoogleMapsKey  string
	PlacesAPI      string
	RoutesBackend  string
	RedisURL       string
	QuotaAccount   string
	HoneycombKey   string
	PlaceCacheSize int
	RouteCacheSize int
	ListenAddr     string
}

var c Config

func GetConfig() *Config {
	return &c
}

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only log if the file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}
	}
	c = fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) Config {
	return Config{
		GoogleMapsKey:  getenv("GOOGLE_MAPS_KEY"),
		PlacesAPI:      choice("PLACES_API", getenv("PLACES_API"), PlacesAPINew, PlacesAPILegacy),
		RoutesBackend:  choice("ROUTES_BACKEND", getenv("ROUTES_BACKEND"), RoutesBackendRoutes, RoutesBackendDirections),
		RedisURL:       getenv("REDIS_URL"),
		QuotaAccount:   withDefault(getenv("QUOTA_ACCOUNT"), "default"),
		HoneycombKey:   getenv("HONEYCOMB_KEY"),
		PlaceCacheSize: positiveInt("PLACE_CACHE_SIZE", getenv("PLACE_CACHE_SIZE"), 100),
		RouteCacheSize: positiveInt("ROUTE_CACHE_SIZE", getenv("ROUTE_CACHE_SIZE"), 100),
		ListenAddr:     withDefault(getenv("LISTEN_ADDR"), "0.0.0.0:8080"),
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// choice returns v if it is one of options, or else the first option.
func choice(name, v string, options ...string) string {
	if v == "" {
		return options[0]
	}
	for _, o := range options {
		if v == o {
			return v
		}
	}
	log.Printf("unknown %s %q, using %q", name, v, options[0])
	return options[0]
}

func positiveInt(name, v string, def int) int {
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.Printf("invalid %s %q, using %d", name, v, def)
		return def
	}
	return i
}
