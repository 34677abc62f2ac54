/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"image"
	"log/slog"

	"collatedit/internal/content"
	"collatedit/internal/geometry"
)

// Dispatch marshals a completion closure onto the single mutation thread
// (fyne.Do in the desktop UI). A nil Dispatch runs the import fully inline,
// which the CLI and tests use.
type Dispatch func(func())

// Default placement triple, percent of page width/height, applied per field
// when layout hints are absent or incomplete.
var defaultHints = map[string]content.Hint{
	content.FieldHeadline: {X: 50, Y: 20},
	content.FieldTagline:  {X: 50, Y: 50},
	content.FieldCTA:      {X: 50, Y: 80},
}

// Accent is the fill color applied to the call-to-action caption. The UI
// overrides it from the editor config at startup.
var Accent = Color{R: 0xd9, G: 0x51, B: 0x2c, A: 255}

// ImportContent rebuilds the scene from an externally supplied payload.
// This is a full rebuild, never a merge: any unsaved in-canvas edits are
// discarded, and the selection is cleared. Text boxes land synchronously;
// the background image arrives through an asynchronous decode whose
// completion is rejected if the scene has been rebuilt in the meantime.
// The payload is retained so a later page change re-runs the import against
// the new dimensions.
func (e *Session) ImportContent(pl content.Payload, dispatch Dispatch) {
	e.content = &pl
	e.dispatch = dispatch
	e.rebuildFromContent()
}

// rebuildFromContent re-runs the retained import. Positions and the
// background cover scale are derived from the current page dimensions.
func (e *Session) rebuildFromContent() {
	pl := *e.content
	dispatch := e.dispatch
	dims := e.Page.Dimensions()
	e.scene.Clear()
	e.selected = nil
	gen := e.scene.Generation()

	if b64, ok := pl.Background(); ok {
		e.importBackground(b64, dims, gen, dispatch)
	}

	for _, f := range []struct {
		name string
		text string
	}{
		{content.FieldHeadline, pl.Captions.Headline},
		{content.FieldTagline, pl.Captions.Tagline},
		{content.FieldCTA, pl.Captions.CTA},
	} {
		hint, ok := pl.LayoutJSON[f.name]
		if !ok {
			hint = defaultHints[f.name]
		}
		pos := geometry.Pt{
			X: float32(hint.X/100) * dims.W,
			Y: float32(hint.Y/100) * dims.H,
		}
		e.scene.Append(NewTextBox(f.text, pos, OriginCenter, captionStyle(f.name)))
	}
	e.log.Info("content imported",
		slog.Int("objects", e.scene.Len()),
		slog.Bool("background", len(pl.ImagesB64) > 0))
}

// importBackground decodes images[0] and inserts it at the back of the
// z-order, centered at cover scale. The captured generation token guards
// against a stale completion landing in a rebuilt scene.
func (e *Session) importBackground(b64 string, dims geometry.Size, gen uint64, dispatch Dispatch) {
	insert := func(img image.Image) {
		if e.scene.Generation() != gen {
			e.log.Debug("stale background decode discarded", slog.Uint64("gen", gen))
			return
		}
		scale := CoverScale(img, dims)
		obj := NewImage(img, geometry.Pt{X: dims.W / 2, Y: dims.H / 2}, OriginCenter, scale)
		e.scene.InsertBack(obj)
	}

	if dispatch == nil {
		img, err := content.DecodeImage(b64)
		if err != nil {
			e.log.Warn("background decode failed", slog.Any("err", err))
			return
		}
		insert(img)
		return
	}

	go func() {
		img, err := content.DecodeImage(b64)
		if err != nil {
			e.log.Warn("background decode failed", slog.Any("err", err))
			return
		}
		dispatch(func() { insert(img) })
	}()
}

// CoverScale returns the uniform scale that makes img fully cover the page
// without distortion, cropping overflow. A relatively wider image is
// height-constrained; a taller one is width-constrained.
func CoverScale(img image.Image, page geometry.Size) float32 {
	b := img.Bounds()
	iw, ih := float32(b.Dx()), float32(b.Dy())
	if iw <= 0 || ih <= 0 {
		return 1
	}
	if iw/ih > page.W/page.H {
		return page.H / ih
	}
	return page.W / iw
}

// captionStyle returns the field-specific default styling.
func captionStyle(field string) TextStyle {
	st := DefaultTextStyle()
	switch field {
	case content.FieldHeadline:
		st.FontSize = 40
		st.Weight = WeightBold
	case content.FieldTagline:
		st.Style = StyleItalic
	case content.FieldCTA:
		st.Fill = Accent
	}
	return st
}
