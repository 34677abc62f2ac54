/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package content

import (
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// payloadSchema constrains the wire shape before unmarshalling. Hints are
// percentages; out-of-range values are a caller bug we reject early.
const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["captions"],
  "properties": {
    "captions": {
      "type": "object",
      "required": ["headline", "tagline", "cta"],
      "properties": {
        "headline": {"type": "string"},
        "tagline": {"type": "string"},
        "cta": {"type": "string"}
      }
    },
    "layout_json": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["x", "y"],
        "properties": {
          "x": {"type": "number", "minimum": 0, "maximum": 100},
          "y": {"type": "number", "minimum": 0, "maximum": 100}
        }
      }
    },
    "images_b64": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

// Validate checks raw JSON against the payload schema.
func Validate(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(payloadSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate content payload: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.String())
		}
		return fmt.Errorf("content payload invalid: %s", b.String())
	}
	return nil
}
