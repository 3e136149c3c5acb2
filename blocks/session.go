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
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/honeycombio/beeline-go"
	"github.com/mapblocks/service/blocks/place"
	"github.com/mapblocks/service/blocks/provider"
	"github.com/mapblocks/service/blocks/query"
	"nhooyr.io/websocket"
)

// PlaceSession streams one place to a websocket client. The client may switch places and change
// the fields it wants; every change to what it can see is sent as it happens.
//
// Messages sent: s<state>, p<place JSON>, e<error>, and d once a load has settled.
// Messages received: i<place id>, f<comma separated fields>.
type PlaceSession struct {
	conn      *websocket.Conn
	opts      Options
	query     url.Values
	sessionId uuid.UUID
	out       chan string
}

// placeMessage is the payload of a p message.
type placeMessage struct {
	ID string `json:"id"`
	// Empty lists fields that were fetched but have no value.
	Empty []place.Field `json:"empty,omitempty"`
	place.Fields
}

func NewPlaceSession(opts Options, rw http.ResponseWriter, r *http.Request) (*PlaceSession, error) {
	c, err := websocket.Accept(rw, r, &websocket.AcceptOptions{
		OriginPatterns:     []string{"null"},
		InsecureSkipVerify: true,
	})
	if err != nil {
		return nil, err
	}
	return &PlaceSession{
		conn:      c,
		opts:      opts,
		query:     r.URL.Query(),
		sessionId: uuid.New(),
		out:       make(chan string, 16),
	}, nil
}

func (ps *PlaceSession) Run(ctx context.Context) {
	ctx = query.ContextWith(ctx, ps.query)
	ctx, span := beeline.StartSpan(ctx, "place_session")
	defer span.Send()
	span.AddField("session_id", ps.sessionId.String())

	if err := checkQuota(ctx, ps.opts.Quota); err != nil {
		span.AddField("error", err)
		if errors.Is(err, errQuotaExceeded) {
			_ = ps.conn.Close(websocket.StatusPolicyViolation, "The quota for this month has been used up.")
		} else {
			log.Printf("get quota failed: %v\n", err)
			_ = ps.conn.Close(websocket.StatusInternalError, "Quota lookup failed.")
		}
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ps.writeLoop(ctx)

	p, err := provider.New(provider.Options{
		Places: ps.opts.Places,
		SDK:    ps.opts.SDK,
		OnRequestError: func(err *provider.RequestError) {
			ps.send(ctx, "e"+err.Error())
		},
		OnStateChange: func(s provider.State) {
			ps.send(ctx, "s"+s.String())
		},
	})
	if err != nil {
		log.Printf("creating provider failed: %v\n", err)
		_ = ps.conn.Close(websocket.StatusInternalError, "Creating provider failed.")
		return
	}
	consumer := provider.NewConsumer(parseFields(query.FieldsFromContext(ctx))...)
	consumer.OnChange(func(pl, _ *place.Place) {
		ps.send(ctx, "p"+encodePlace(pl))
	})
	consumer.Connect(p.Feed())
	defer consumer.Disconnect()
	span.AddField("consumer_id", consumer.ID())

	if id := ps.query.Get("id"); id != "" {
		ps.settle(ctx, p.SetID(ctx, id))
	}
	for {
		_, msg, err := ps.conn.Read(ctx)
		if err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) && ctx.Err() == nil {
				log.Printf("read from websocket failed: %v\n", err)
			}
			break
		}
		if len(msg) == 0 {
			continue
		}
		switch body := string(msg[1:]); msg[0] {
		case 'i':
			ps.settle(ctx, p.SetID(ctx, body))
		case 'f':
			provider.RequireFields(consumer, parseFields(strings.Split(body, ","))...)
			ps.settle(ctx, p.Refresh(ctx))
		default:
			log.Printf("session %s: unknown message %q\n", ps.sessionId, msg[0])
		}
	}
	_ = ps.conn.Close(websocket.StatusNormalClosure, "")
}

// settle sends d once done is closed, without holding up the read loop.
func (ps *PlaceSession) settle(ctx context.Context, done <-chan struct{}) {
	go func() {
		select {
		case <-done:
			ps.send(ctx, "d")
		case <-ctx.Done():
		}
	}()
}

func (ps *PlaceSession) send(ctx context.Context, msg string) {
	select {
	case ps.out <- msg:
	case <-ctx.Done():
	}
}

func (ps *PlaceSession) writeLoop(ctx context.Context) {
	for {
		select {
		case msg := <-ps.out:
			if err := ps.conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
				log.Printf("write to websocket failed: %v\n", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func encodePlace(pl *place.Place) string {
	if pl == nil {
		return "null"
	}
	j, err := json.Marshal(placeMessage{ID: pl.ID(), Empty: pl.Empty(), Fields: pl.Fields()})
	if err != nil {
		log.Printf("encoding place %s failed: %v\n", pl.ID(), err)
		return "null"
	}
	return string(j)
}

// parseFields keeps the known field names, in order, and logs the rest.
func parseFields(names []string) []place.Field {
	var fields []place.Field
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if !place.Known(place.Field(n)) {
			log.Printf("ignoring unknown field %q\n", n)
			continue
		}
		fields = append(fields, place.Field(n))
	}
	return fields
}
