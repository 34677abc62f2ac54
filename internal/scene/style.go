/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque Color.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("parse color %q: want #rgb or #rrggbb", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
}

// Hex renders the color as "#rrggbb" (alpha is carried separately where needed).
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Alignment of text within its box.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// FontWeight and FontStyle mirror the two-valued CSS-like enumerations the
// style form exposes.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

type FontStyle string

const (
	StyleNormal FontStyle = "normal"
	StyleItalic FontStyle = "italic"
)

// Shadow is an optional drop shadow. Nil on a TextBox means no shadow.
type Shadow struct {
	Color Color
	Blur  int // px, 0..20
}

// TextStyle carries every editable attribute of a TextBox.
type TextStyle struct {
	FontFamily        string
	FontSize          float32 // 8..80
	Weight            FontWeight
	Style             FontStyle
	Underline         bool
	Align             Alignment
	Fill              Color
	Stroke            Color
	StrokeWidth       float32 // 0..5
	Background        Color
	BackgroundOpacity float32 // 0..1, independent of Background's channels
	Shadow            *Shadow
}

const (
	defaultFontSize   = 24
	defaultFontFamily = "sans"
)

// DefaultTextStyle is the style applied to a text box when no form state or
// caption-specific default overrides it.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily:        defaultFontFamily,
		FontSize:          defaultFontSize,
		Weight:            WeightNormal,
		Style:             StyleNormal,
		Align:             AlignCenter,
		Fill:              Black,
		Stroke:            Transparent,
		StrokeWidth:       0,
		Background:        White,
		BackgroundOpacity: 0,
	}
}

// StyleField names one editable attribute for SetStyle.
type StyleField string

const (
	FieldFontFamily        StyleField = "fontFamily"
	FieldFontSize          StyleField = "fontSize"
	FieldWeight            StyleField = "fontWeight"
	FieldStyle             StyleField = "fontStyle"
	FieldUnderline         StyleField = "underline"
	FieldAlign             StyleField = "textAlign"
	FieldFill              StyleField = "fill"
	FieldStroke            StyleField = "stroke"
	FieldStrokeWidth       StyleField = "strokeWidth"
	FieldBackground        StyleField = "backgroundColor"
	FieldBackgroundOpacity StyleField = "backgroundOpacity"
	FieldShadow            StyleField = "shadow"
	FieldText              StyleField = "text"
)

// apply mutates exactly the named field. Unknown fields and mismatched value
// types are reported, never partially applied.
func (t *TextBox) apply(field StyleField, value any) error {
	switch field {
	case FieldText:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("style %s: want string, got %T", field, value)
		}
		t.Text = s
	case FieldFontFamily:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("style %s: want string, got %T", field, value)
		}
		t.Style.FontFamily = s
	case FieldFontSize:
		f, ok := toFloat32(value)
		if !ok {
			return fmt.Errorf("style %s: want number, got %T", field, value)
		}
		t.Style.FontSize = f
	case FieldWeight:
		w, ok := value.(FontWeight)
		if !ok {
			return fmt.Errorf("style %s: want FontWeight, got %T", field, value)
		}
		t.Style.Weight = w
	case FieldStyle:
		st, ok := value.(FontStyle)
		if !ok {
			return fmt.Errorf("style %s: want FontStyle, got %T", field, value)
		}
		t.Style.Style = st
	case FieldUnderline:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("style %s: want bool, got %T", field, value)
		}
		t.Style.Underline = b
	case FieldAlign:
		a, ok := value.(Alignment)
		if !ok {
			return fmt.Errorf("style %s: want Alignment, got %T", field, value)
		}
		t.Style.Align = a
	case FieldFill:
		c, ok := value.(Color)
		if !ok {
			return fmt.Errorf("style %s: want Color, got %T", field, value)
		}
		t.Style.Fill = c
	case FieldStroke:
		c, ok := value.(Color)
		if !ok {
			return fmt.Errorf("style %s: want Color, got %T", field, value)
		}
		t.Style.Stroke = c
	case FieldStrokeWidth:
		f, ok := toFloat32(value)
		if !ok {
			return fmt.Errorf("style %s: want number, got %T", field, value)
		}
		t.Style.StrokeWidth = f
	case FieldBackground:
		c, ok := value.(Color)
		if !ok {
			return fmt.Errorf("style %s: want Color, got %T", field, value)
		}
		t.Style.Background = c
	case FieldBackgroundOpacity:
		f, ok := toFloat32(value)
		if !ok {
			return fmt.Errorf("style %s: want number, got %T", field, value)
		}
		t.Style.BackgroundOpacity = f
	case FieldShadow:
		switch v := value.(type) {
		case nil:
			t.Style.Shadow = nil
		case *Shadow:
			t.Style.Shadow = v
		case Shadow:
			t.Style.Shadow = &v
		default:
			return fmt.Errorf("style %s: want *Shadow, got %T", field, value)
		}
	default:
		return fmt.Errorf("unknown style field %q", field)
	}
	return nil
}

func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	}
	return 0, false
}
