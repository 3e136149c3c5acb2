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

// Package feed connects a provider of one shared value with the consumers that read it. The
// provider owns a Feed; consumers register with it, declare the fields they need and are told
// whenever the published value changes.
package feed

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Feed holds the last published value and the registered consumers, in registration order.
type Feed[T comparable] struct {
	// publishing serializes Publish so every consumer sees values in the order they were sent.
	publishing sync.Mutex

	mu        sync.Mutex
	value     T
	consumers []*Consumer[T]
}

func New[T comparable]() *Feed[T] {
	return &Feed[T]{}
}

// Value returns the last published value.
func (f *Feed[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Publish records v and delivers it to every registered consumer before returning. Publishing the
// same value again is how a provider announces that the value was filled in place.
func (f *Feed[T]) Publish(v T) {
	f.publishing.Lock()
	defer f.publishing.Unlock()
	f.mu.Lock()
	f.value = v
	consumers := slices.Clone(f.consumers)
	f.mu.Unlock()
	for _, c := range consumers {
		c.deliver(f, v)
	}
}

// RequiredFields returns the union of every registered consumer's required fields, in first-seen
// order.
func (f *Feed[T]) RequiredFields() []string {
	f.mu.Lock()
	consumers := slices.Clone(f.consumers)
	f.mu.Unlock()
	var fields []string
	for _, c := range consumers {
		for _, field := range c.RequiredFields() {
			if !slices.Contains(fields, field) {
				fields = append(fields, field)
			}
		}
	}
	return fields
}

// Len returns the number of registered consumers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.consumers)
}

// register adds c and returns the current value for it to adopt.
func (f *Feed[T]) register(c *Consumer[T]) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.consumers, c) {
		f.consumers = append(f.consumers, c)
	}
	return f.value
}

func (f *Feed[T]) unregister(c *Consumer[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := slices.Index(f.consumers, c); i >= 0 {
		f.consumers = slices.Delete(f.consumers, i, i+1)
	}
}
