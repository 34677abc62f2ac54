/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"testing"
)

// fakeStore keeps the keyring out of unit tests.
type fakeStore struct{ vals map[string]string }

func (f *fakeStore) Get(service, key string) (string, error) {
	v, ok := f.vals[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeStore) Set(service, key, value string) error {
	if f.vals == nil {
		f.vals = map[string]string{}
	}
	f.vals[service+"/"+key] = value
	return nil
}
func (f *fakeStore) Delete(service, key string) error {
	delete(f.vals, service+"/"+key)
	return nil
}

func withFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	old := tokenStore
	fs := &fakeStore{}
	tokenStore = fs
	t.Cleanup(func() { tokenStore = old })
	return fs
}

func TestEnvOverridesGenerationURL(t *testing.T) {
	withFakeStore(t)
	old := os.Getenv(EnvGenerationURL)
	_ = os.Setenv(EnvGenerationURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvGenerationURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Generation.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Generation.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	withFakeStore(t)
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesEnableServer(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.EnableServer = true
	mergeInto(&dst, &src)
	if !dst.General.EnableServer {
		t.Fatalf("EnableServer was not merged from file config")
	}
}

func TestMergeIncludesEditorDefaults(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Editor.PaperSize = "Letter"
	src.Editor.Orientation = "LANDSCAPE"
	src.Editor.AccentColor = "#112233"
	mergeInto(&dst, &src)
	if dst.Editor.PaperSize != "letter" || dst.Editor.Orientation != "landscape" || dst.Editor.AccentColor != "#112233" {
		t.Fatalf("editor fields not merged correctly: %#v", dst.Editor)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/cle.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/cle.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	withFakeStore(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/cle.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/cle.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestLoadReturnsKeyringToken(t *testing.T) {
	fs := withFakeStore(t)
	_ = fs.Set(keyringService, keyringToken, "tok-123")
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token = %q, want tok-123", tok)
	}
}
