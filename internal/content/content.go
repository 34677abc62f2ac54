/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package content models the externally supplied generation payload:
// captions, an optional percentage-based layout description, and base64
// encoded raster images. Only images[0] is used as the page background.
package content

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	// register decoders for the formats the generation service emits
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Hint positions one caption as a percentage (0-100) of page width/height.
type Hint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Captions are the three generated text fields.
type Captions struct {
	Headline string `json:"headline"`
	Tagline  string `json:"tagline"`
	CTA      string `json:"cta"`
}

// Payload is the content object handed over by the wizard/backend.
type Payload struct {
	LayoutJSON map[string]Hint `json:"layout_json,omitempty"`
	Captions   Captions        `json:"captions"`
	ImagesB64  []string        `json:"images_b64,omitempty"`
}

// Caption field names used as layout_json keys.
const (
	FieldHeadline = "headline"
	FieldTagline  = "tagline"
	FieldCTA      = "cta"
)

// Parse validates raw JSON against the payload schema and decodes it.
func Parse(raw []byte) (Payload, error) {
	if err := Validate(raw); err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode content payload: %w", err)
	}
	return p, nil
}

// DecodeImage decodes one base64 entry of images_b64 into an image.
// Data-URL prefixes ("data:image/png;base64,") are tolerated.
func DecodeImage(b64 string) (image.Image, error) {
	if i := strings.IndexByte(b64, ','); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image bytes: %w", err)
	}
	return img, nil
}

// Background returns the first supplied image, if any.
func (p Payload) Background() (string, bool) {
	if len(p.ImagesB64) == 0 || strings.TrimSpace(p.ImagesB64[0]) == "" {
		return "", false
	}
	return p.ImagesB64[0], true
}
