/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tok, _ := signToken("one", "bob", time.Now().Add(time.Hour))
	if _, err := verifyToken("two", tok); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestTokenExpiredRejected(t *testing.T) {
	tok, _ := signToken("s", "bob", time.Now().Add(-time.Minute))
	if _, err := verifyToken("s", tok); err == nil {
		t.Fatalf("expected expiry failure")
	}
}

func TestWithAuth(t *testing.T) {
	var gotSub string
	h := withAuth("s", func(w http.ResponseWriter, r *http.Request, sub string) {
		gotSub = sub
		w.WriteHeader(http.StatusOK)
	})

	// No token
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/generations", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}

	// Valid token
	tok, _ := signToken("s", "carol", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/api/generations", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK || gotSub != "carol" {
		t.Fatalf("valid token: status=%d sub=%q", rec.Code, gotSub)
	}
}
