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

package quota

import (
	"context"
	"fmt"
	"github.com/honeycombio/beeline-go"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// one credit is worth $0.000001.
const PlaceDetailsCredits = 17_000
const LegacyDetailsCredits = 17_000
const RouteCredits = 5_000
const DirectionsCredits = 5_000
const MonthlyQuotaCredits = 200_000_000

// Charger is charged for every billable call to a Maps API.
type Charger interface {
	ChargeCredits(ctx context.Context, credits int) error
}

// Nop charges nothing. It is used when no Redis is configured.
type Nop struct{}

func (Nop) ChargeCredits(context.Context, int) error {
	return nil
}

type Tracker struct {
	redis   *redis.Client
	account string
}

func NewTracker(redisClient *redis.Client, account string) *Tracker {
	return &Tracker{
		redis:   redisClient,
		account: account,
	}
}

func (q *Tracker) GetQuota(ctx context.Context) (used, remaining int, err error) {
	ctx, span := beeline.StartSpan(ctx, "get_quota")
	defer span.Send()
	result := q.redis.Get(ctx, keyForAccountQuota(q.account, time.Now()))
	if result.Err() == redis.Nil {
		return 0, MonthlyQuotaCredits, nil
	}
	if result.Err() != nil {
		return 0, 0, result.Err()
	}
	used, err = result.Int()
	if err != nil {
		return 0, 0, err
	}
	return used, MonthlyQuotaCredits - used, nil
}

func keyForAccountQuota(account string, now time.Time) string {
	return fmt.Sprintf("quota:%02d%02d:%s", now.Year()%100, now.Month(), account)
}

func (q *Tracker) chargeCredits(ctx context.Context, credits int) (int, error) {
	ctx, span := beeline.StartSpan(ctx, "charge_credits")
	defer span.Send()
	key := keyForAccountQuota(q.account, time.Now())
	result := q.redis.IncrBy(ctx, key, int64(credits))
	if result.Err() != nil {
		span.AddField("error", result.Err())
		return 0, result.Err()
	}
	i, err := result.Uint64()
	if err != nil {
		span.AddField("error", err)
		return 0, err
	}
	if int(i) == credits {
		_, err = q.redis.Expire(ctx, key, 45*24*time.Hour).Result()
		if err != nil {
			span.AddField("error", err)
			return 0, err
		}
	}
	return int(i), nil
}

func (q *Tracker) ChargeCredits(ctx context.Context, credits int) error {
	used, err := q.chargeCredits(ctx, credits)
	log.Printf("charging %d credits to %s. Total used: %d\n", credits, q.account, used)
	return err
}
