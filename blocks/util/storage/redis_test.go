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

package storage

import "testing"

func TestNewRedis(t *testing.T) {
	if r, err := NewRedis(""); r != nil || err != nil {
		t.Errorf("NewRedis(\"\") = %v, %v", r, err)
	}
	r, err := NewRedis("redis://localhost:6379/2")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if got := r.Options().DB; got != 2 {
		t.Errorf("db = %d", got)
	}
	if _, err := NewRedis("http://nope"); err == nil {
		t.Error("expected an error for a non-redis URL")
	}
}
