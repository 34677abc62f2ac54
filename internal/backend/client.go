/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend talks to the external generation service (prompt refinement
// and image generation) and optionally runs a thin proxy server that archives
// generation activity in PostgreSQL.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"collatedit/internal/config"
)

// Client is a minimal HTTP client for the generation service.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a generation client with the default timeout. baseURL may
// include a trailing slash; it will be normalized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientFromConfig builds a client from the generation section of the app
// config plus the keychain token.
func NewClientFromConfig(gc config.GenerationConfig, token string) *Client {
	c := NewClient(gc.BaseURL, token)
	if gc.TimeoutMs > 0 {
		c.client.Timeout = time.Duration(gc.TimeoutMs) * time.Millisecond
	}
	if gc.TLSInsecure {
		c.client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in for dev setups
		}
	}
	return c
}

// Brief is the campaign description the wizard collects.
type Brief struct {
	CampaignType      string `json:"campaign_type"`
	CampaignTheme     string `json:"campaign_theme"`
	Audience          string `json:"audience"`
	Goal              string `json:"goal"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// GenerationResult is the generation response: the prompt that was used and
// the produced image as base64.
type GenerationResult struct {
	Prompt   string `json:"prompt"`
	ImageB64 string `json:"image_b64"`
}

// RefinePrompt turns a campaign brief into a refined generation prompt.
func (c *Client) RefinePrompt(ctx context.Context, brief Brief) (string, error) {
	var resp struct {
		RefinedPrompt string `json:"refined_prompt"`
	}
	if err := c.postJSON(ctx, "/prompt", brief, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.RefinedPrompt) == "" {
		return "", fmt.Errorf("generation service returned an empty prompt")
	}
	return resp.RefinedPrompt, nil
}

// Generate produces an image for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerationResult, error) {
	req := struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt}
	var res GenerationResult
	if err := c.postJSON(ctx, "/generate", req, &res); err != nil {
		return nil, err
	}
	if res.ImageB64 == "" {
		return nil, fmt.Errorf("generation service returned no image")
	}
	return &res, nil
}

// Health probes the service liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generation service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generation service POST %s: %s", path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}
