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

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/honeycombio/beeline-go"
	"github.com/honeycombio/beeline-go/wrappers/hnynethttp"
	"github.com/mapblocks/service/blocks"
	"github.com/mapblocks/service/blocks/cache"
	"github.com/mapblocks/service/blocks/config"
	"github.com/mapblocks/service/blocks/quota"
	"github.com/mapblocks/service/blocks/route"
	"github.com/mapblocks/service/blocks/util/redact"
	"github.com/mapblocks/service/blocks/util/storage"
)

func main() {
	c := config.GetConfig()
	beeline.Init(beeline.Config{
		WriteKey:    c.HoneycombKey,
		Dataset:     "rws",
		ServiceName: "place-blocks",
		PresendHook: redact.CleanHoneycomb,
	})
	defer beeline.Close()
	http.DefaultTransport = hnynethttp.WrapRoundTripper(http.DefaultTransport)

	redisClient, err := storage.NewRedis(c.RedisURL)
	if err != nil {
		log.Fatal(err)
	}
	var charger quota.Charger = quota.Nop{}
	var checker blocks.QuotaChecker
	if redisClient != nil {
		tracker := quota.NewTracker(redisClient, c.QuotaAccount)
		charger, checker = tracker, tracker
	} else {
		log.Printf("REDIS_URL not set, quota is not tracked.")
	}

	loader := blocks.NewLoader(blocks.ConfiguredBackends(c, charger))
	<-loader.Initialize(context.Background())
	backends, err := loader.Backends()
	if err != nil {
		log.Fatalf("loading maps backends failed: %v", err)
	}

	places, err := cache.NewPlaces(c.PlaceCacheSize, backends.SDK)
	if err != nil {
		log.Fatal(err)
	}
	routes, err := cache.New[*route.Route](c.RouteCacheSize, nil)
	if err != nil {
		log.Fatal(err)
	}
	service := blocks.NewService(blocks.Options{
		SDK:      backends.SDK,
		Places:   places,
		Computer: backends.Computer,
		Routes:   routes,
		Quota:    checker,
	})
	log.Printf("Listening on %s.", c.ListenAddr)
	log.Fatal(service.ListenAndServe(c.ListenAddr))
}
