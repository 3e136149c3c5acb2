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

package blocks

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mapblocks/service/blocks/cache"
	"github.com/mapblocks/service/blocks/locator"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/route"
)

var errQuotaExceeded = errors.New("quota exceeded for this month")

// QuotaChecker reports how many credits have been used and how many remain.
type QuotaChecker interface {
	GetQuota(ctx context.Context) (used, remaining int, err error)
}

type Options struct {
	SDK      place.SDK
	Places   *cache.Places
	Computer route.Computer
	Routes   *cache.Cache[*route.Route]
	// Quota may be nil, in which case nothing is ever refused.
	Quota QuotaChecker
}

type Service struct {
	mux     *http.ServeMux
	opts    Options
	locator *locator.Locator
}

func NewService(opts Options) *Service {
	s := &Service{
		mux:     http.NewServeMux(),
		opts:    opts,
		locator: locator.New(opts.Places, opts.Computer, opts.Routes),
	}
	s.mux.HandleFunc("/heartbeat", s.handleHeartbeat)
	s.mux.HandleFunc("/place", s.handlePlace)
	s.mux.HandleFunc("/hours", s.handleHours)
	s.mux.HandleFunc("/route", s.handleRoute)
	s.mux.HandleFunc("/locator", s.handleLocator)
	return s
}

func (s *Service) handleHeartbeat(rw http.ResponseWriter, r *http.Request) {
	_, _ = rw.Write([]byte("place-blocks"))
}

func (s *Service) handlePlace(rw http.ResponseWriter, r *http.Request) {
	session, err := NewPlaceSession(s.opts, rw, r)
	if err != nil {
		log.Printf("Creating session failed: %v", err)
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	session.Run(r.Context())
}

// checkQuota refuses work once the month's credits are spent.
func checkQuota(ctx context.Context, q QuotaChecker) error {
	if q == nil {
		return nil
	}
	used, remaining, err := q.GetQuota(ctx)
	if err != nil {
		return err
	}
	if remaining < 1 {
		log.Printf("quota exceeded: %d credits used\n", used)
		return errQuotaExceeded
	}
	return nil
}

func (s *Service) Handler() http.Handler {
	return s.mux
}

func (s *Service) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
