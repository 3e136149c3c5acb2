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

package feed

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// ConsumerOptions customise how a consumer judges its value.
type ConsumerOptions[T comparable] struct {
	// Stamp returns a number that changes whenever v is filled in without being replaced. With it,
	// republishing the same object counts as a change once the stamp has moved.
	Stamp func(v T) uint64
	// Sufficient reports whether v has everything required. The default is "v is not the zero
	// value".
	Sufficient func(v T, required []string) bool
}

// Consumer reads the value of at most one feed at a time. A locally set override wins over
// whatever the feed publishes.
type Consumer[T comparable] struct {
	id   string
	opts ConsumerOptions[T]

	// notifying serializes change callbacks.
	notifying sync.Mutex

	mu          sync.Mutex
	feed        *Feed[T]
	connected   bool
	required    []string
	published   T
	override    T
	hasOverride bool
	current     T
	stamp       uint64
	sufficient  bool
	onChange    func(newValue, oldValue T)
}

// NewConsumer returns a disconnected consumer requiring fields.
func NewConsumer[T comparable](opts ConsumerOptions[T], fields ...string) *Consumer[T] {
	return &Consumer[T]{
		id:       uuid.NewString(),
		opts:     opts,
		required: append([]string(nil), fields...),
	}
}

// ID identifies the consumer in logs.
func (c *Consumer[T]) ID() string {
	return c.id
}

// Require replaces the fields this consumer needs. The provider reads them when it next fetches.
func (c *Consumer[T]) Require(fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.required = append([]string(nil), fields...)
	c.sufficient = c.judge(c.current)
}

func (c *Consumer[T]) RequiredFields() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.required...)
}

// OnChange sets the callback fired with the new and old effective value whenever it changes. The
// callback runs on the publishing goroutine and must not call SetOverride or ClearOverride.
func (c *Consumer[T]) OnChange(fn func(newValue, oldValue T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Value returns the effective value: the override if set, otherwise the last published value.
func (c *Consumer[T]) Value() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// HasSufficientData reports whether the effective value has every required field.
func (c *Consumer[T]) HasSufficientData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sufficient
}

func (c *Consumer[T]) SetOverride(v T) {
	c.update(func() {
		c.override, c.hasOverride = v, true
	})
}

func (c *Consumer[T]) ClearOverride() {
	c.update(func() {
		var zero T
		c.override, c.hasOverride = zero, false
	})
}

// Connect registers with f, leaving any other feed first. On its first connect the consumer
// silently adopts f's current value; after that, adopting a different value fires OnChange.
func (c *Consumer[T]) Connect(f *Feed[T]) {
	c.notifying.Lock()
	defer c.notifying.Unlock()

	c.mu.Lock()
	if c.feed == f {
		c.mu.Unlock()
		return
	}
	if c.feed != nil {
		c.feed.unregister(c)
		log.Printf("consumer %s left its feed\n", c.id)
	}
	c.feed = f
	if f == nil {
		c.mu.Unlock()
		return
	}
	first := !c.connected
	c.connected = true
	c.published = f.register(c)
	old, oldStamp := c.current, c.stamp
	c.current = c.effective()
	c.stamp = c.stampOf(c.current)
	c.sufficient = c.judge(c.current)
	changed := c.current != old || c.stamp != oldStamp
	newValue, fn := c.current, c.onChange
	c.mu.Unlock()
	log.Printf("consumer %s connected, requiring %v\n", c.id, c.RequiredFields())

	if !first && changed && fn != nil {
		fn(newValue, old)
	}
}

// Disconnect unregisters from the current feed, if any. The last value is kept.
func (c *Consumer[T]) Disconnect() {
	c.mu.Lock()
	f := c.feed
	c.feed = nil
	c.mu.Unlock()
	if f != nil {
		f.unregister(c)
		log.Printf("consumer %s disconnected\n", c.id)
	}
}

// Feed returns the feed the consumer is connected to, or nil.
func (c *Consumer[T]) Feed() *Feed[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed
}

func (c *Consumer[T]) deliver(from *Feed[T], v T) {
	c.update(func() {
		if c.feed == from {
			c.published = v
		}
	})
}

// update applies change and fires OnChange if the effective value or its stamp moved.
func (c *Consumer[T]) update(change func()) {
	c.notifying.Lock()
	defer c.notifying.Unlock()

	c.mu.Lock()
	change()
	old, oldStamp := c.current, c.stamp
	c.current = c.effective()
	c.stamp = c.stampOf(c.current)
	c.sufficient = c.judge(c.current)
	changed := c.current != old || c.stamp != oldStamp
	newValue, fn := c.current, c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(newValue, old)
	}
}

func (c *Consumer[T]) effective() T {
	if c.hasOverride {
		return c.override
	}
	return c.published
}

func (c *Consumer[T]) stampOf(v T) uint64 {
	if c.opts.Stamp == nil {
		return 0
	}
	return c.opts.Stamp(v)
}

func (c *Consumer[T]) judge(v T) bool {
	if c.opts.Sufficient != nil {
		return c.opts.Sufficient(v, c.required)
	}
	var zero T
	return v != zero
}
