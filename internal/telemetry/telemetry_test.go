/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("telemetry must be opt-in")
	}
	// Must be a no-op, not a panic or a block.
	c.Event("design_export", map[string]any{"format": "png"})
}

func TestOptInWithoutURLStillDisabled(t *testing.T) {
	c := New(Config{OptIn: true})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("no endpoint means disabled")
	}
}

func TestEventDelivery(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("content_import", map[string]any{"objects": 4})
	c.Flush(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("event never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if got[0]["name"] != "content_import" {
		t.Fatalf("event = %+v", got[0])
	}
	if got[0]["version"] == "" || got[0]["os"] == "" {
		t.Fatalf("ambient fields missing: %+v", got[0])
	}
}

func TestUploadCrash(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- b
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.UploadCrash([]byte("report body"))

	select {
	case b := <-received:
		if string(b) != "report body" {
			t.Fatalf("crash body = %q", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("crash upload never arrived")
	}
}

func TestNewDefaultSurvivesLazyInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	NewDefault(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer defaultClient.Close()

	// Enabled lazily initializes from env; the explicitly installed client
	// must survive that.
	if !Enabled() {
		t.Fatalf("explicitly installed default client was replaced by lazy env init")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CLE_TELEMETRY_OPT_IN", "yes")
	t.Setenv("CLE_TELEMETRY_URL", " https://x/events ")
	t.Setenv("CLE_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn {
		t.Fatalf("opt-in not parsed")
	}
	if cfg.EventsURL != "https://x/events" {
		t.Fatalf("url = %q", cfg.EventsURL)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}
