/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the editable design scene: an ordered list of drawable
// objects (one optional background image, styled text boxes) plus the
// selection state machine and the content importer. Object coordinates are
// logical page pixels; slice order encodes z-order (index 0 = back-most).
package scene

import (
	"image"
	"strings"

	"collatedit/internal/geometry"
)

// Kind discriminates the closed set of drawable variants.
type Kind uint8

const (
	KindImage Kind = iota
	KindText
)

// Origin selects the reference point Left/Top describes.
type Origin uint8

const (
	OriginTopLeft Origin = iota
	OriginCenter
)

// Object is the common drawable capability shared by the two variants.
// Implementations are *ImageObject and *TextBox only.
type Object interface {
	Kind() Kind
	Position() geometry.Pt
	SetPosition(geometry.Pt)
	Origin() Origin
	FlipX() bool
	FlipY() bool
	Bounds() geometry.Rect
	Hit(geometry.Pt) bool

	toggleFlipX()
	toggleFlipY()
}

// base carries placement and flip state shared by both variants.
type base struct {
	left, top float32
	origin    Origin
	flipX     bool
	flipY     bool
}

func (b *base) Position() geometry.Pt     { return geometry.Pt{X: b.left, Y: b.top} }
func (b *base) SetPosition(p geometry.Pt) { b.left, b.top = p.X, p.Y }
func (b *base) Origin() Origin            { return b.origin }
func (b *base) FlipX() bool               { return b.flipX }
func (b *base) FlipY() bool               { return b.flipY }
func (b *base) toggleFlipX()              { b.flipX = !b.flipX }
func (b *base) toggleFlipY()              { b.flipY = !b.flipY }

// rect places a w×h box around the position honoring the origin.
func (b *base) rect(w, h float32) geometry.Rect {
	if b.origin == OriginCenter {
		return geometry.R(b.left-w/2, b.top-h/2, w, h)
	}
	return geometry.R(b.left, b.top, w, h)
}

// ImageObject is a raster image placed on the page with a uniform scale.
type ImageObject struct {
	base
	Bitmap image.Image
	Scale  float32
}

// NewImage creates an image object at the given position.
func NewImage(bitmap image.Image, pos geometry.Pt, origin Origin, scale float32) *ImageObject {
	if scale <= 0 {
		scale = 1
	}
	return &ImageObject{base: base{left: pos.X, top: pos.Y, origin: origin}, Bitmap: bitmap, Scale: scale}
}

func (o *ImageObject) Kind() Kind { return KindImage }

func (o *ImageObject) Bounds() geometry.Rect {
	if o.Bitmap == nil {
		return o.rect(0, 0)
	}
	b := o.Bitmap.Bounds()
	return o.rect(float32(b.Dx())*o.Scale, float32(b.Dy())*o.Scale)
}

func (o *ImageObject) Hit(p geometry.Pt) bool { return o.Bounds().Contains(p) }

// TextBox is a styled text element.
type TextBox struct {
	base
	Text  string
	Style TextStyle
}

// NewTextBox creates a text box at the given position with the given style.
func NewTextBox(text string, pos geometry.Pt, origin Origin, style TextStyle) *TextBox {
	return &TextBox{base: base{left: pos.X, top: pos.Y, origin: origin}, Text: text, Style: style}
}

func (t *TextBox) Kind() Kind { return KindText }

// Bounds approximates the rendered extent from the font metrics. The raster
// exporter measures glyphs precisely; hit-testing only needs the envelope.
func (t *TextBox) Bounds() geometry.Rect {
	size := t.Style.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	lines := strings.Split(t.Text, "\n")
	var longest int
	for _, ln := range lines {
		if len(ln) > longest {
			longest = len(ln)
		}
	}
	w := 0.6 * size * float32(longest)
	h := 1.3 * size * float32(len(lines))
	return t.rect(w, h)
}

func (t *TextBox) Hit(p geometry.Pt) bool { return t.Bounds().Contains(p) }
