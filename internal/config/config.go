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
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the
// user scope. Environment variables are treated as read-only overrides at
// runtime. The generation-service API token is never written to this file;
// it lives in the OS keychain.

// GenerationConfig configures the external generation service.
type GenerationConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
	EnableServer   bool   `yaml:"enable_server"`
}

// EditorConfig holds defaults applied when a new design document is created.
type EditorConfig struct {
	PaperSize   string `yaml:"paper_size"`  // one of the fixed paper-size keys
	Orientation string `yaml:"orientation"` // portrait | landscape
	AccentColor string `yaml:"accent_color"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	Generation    GenerationConfig `yaml:"generation"`
	Editor        EditorConfig     `yaml:"editor"`
	Logging       LoggingConfig    `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", EnableServer: false},
		Generation:    GenerationConfig{BaseURL: "http://localhost:8000", TimeoutMs: 30000, TLSInsecure: false},
		Editor:        EditorConfig{PaperSize: "a4", Orientation: "portrait", AccentColor: "#d9512c"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvGenerationURL       = "CLE_GENERATION_URL"
	EnvGenerationTimeoutMs = "CLE_GENERATION_TIMEOUT_MS"
	EnvGenerationTLSInsec  = "CLE_TLS_INSECURE"
	EnvTelemetryOptIn      = "CLE_TELEMETRY_OPT_IN"
	EnvEnableServer        = "CLE_ENABLE_SERVER"
	EnvLogLevel            = "CLE_LOG_LEVEL"
	EnvLogFormat           = "CLE_LOG_FORMAT"
	EnvLogSource           = "CLE_LOG_SOURCE"
	EnvLogFile             = "CLE_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "CollateralEditor"
	keyringToken   = "generation_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "CollateralEditor")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "CollateralEditor")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "collatedit")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The generation token is read from the keyring and
// returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring
// (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableServer = src.General.EnableServer
	if src.Generation.BaseURL != "" {
		dst.Generation.BaseURL = src.Generation.BaseURL
	}
	if src.Generation.TimeoutMs != 0 {
		dst.Generation.TimeoutMs = src.Generation.TimeoutMs
	}
	dst.Generation.TLSInsecure = src.Generation.TLSInsecure
	if strings.TrimSpace(src.Editor.PaperSize) != "" {
		dst.Editor.PaperSize = strings.ToLower(strings.TrimSpace(src.Editor.PaperSize))
	}
	if strings.TrimSpace(src.Editor.Orientation) != "" {
		dst.Editor.Orientation = strings.ToLower(strings.TrimSpace(src.Editor.Orientation))
	}
	if strings.TrimSpace(src.Editor.AccentColor) != "" {
		dst.Editor.AccentColor = strings.TrimSpace(src.Editor.AccentColor)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGenerationURL)); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGenerationTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generation.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGenerationTLSInsec)); v != "" {
		cfg.Generation.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableServer)); v != "" {
		cfg.General.EnableServer = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
