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
	applog "collatedit/internal/log"
)

// Session owns one editable scene together with its selection state machine
// and the style form mirror. The selection is a weak reference: it identifies
// membership in the scene and never survives the object's removal.
//
// States: NoSelection (selected == nil) and Selected. Entering Selected on a
// text box copies its style into the form; every form edit is pushed back
// through SetStyle immediately so form and object never diverge.
type Session struct {
	Page geometry.PageSpec

	scene    *Scene
	selected Object
	form     TextStyle
	formText string

	// last imported payload and its dispatcher; a page change replays them
	content  *content.Payload
	dispatch Dispatch

	log *slog.Logger
}

// NewSession creates an empty editor session for the given page spec.
func NewSession(page geometry.PageSpec) *Session {
	return &Session{
		Page:  page,
		scene: New(),
		form:  DefaultTextStyle(),
		log:   applog.WithComponent("scene"),
	}
}

func (e *Session) Scene() *Scene { return e.scene }

// Selected returns the current selection, nil in the NoSelection state.
func (e *Session) Selected() Object { return e.selected }

// StyleForm returns the editable style mirror. Its value is stale while no
// text box is selected.
func (e *Session) StyleForm() TextStyle { return e.form }

// Select enters Selected(o), or NoSelection when o is nil (empty-canvas
// click). Selecting a text box synchronizes the style form from the object;
// selecting an image leaves the form untouched (style editing is disabled
// for images at the UI level).
func (e *Session) Select(o Object) {
	if o == nil {
		e.selected = nil
		return
	}
	if !e.scene.Contains(o) {
		return
	}
	e.selected = o
	if tb, ok := o.(*TextBox); ok {
		e.form = tb.Style
		e.formText = tb.Text
	}
}

// SelectAt hit-tests the scene and selects the top-most object under p,
// clearing the selection when the point hits empty canvas.
func (e *Session) SelectAt(p geometry.Pt) Object {
	o := e.scene.HitTest(p)
	e.Select(o)
	return o
}

// SetStyleField pushes one style-form edit onto the selected text box and
// mirrors it into the form. No-op in NoSelection; rejected for images.
func (e *Session) SetStyleField(field StyleField, value any) error {
	if e.selected == nil {
		return nil
	}
	if err := e.scene.SetStyle(e.selected, field, value); err != nil {
		return err
	}
	if tb, ok := e.selected.(*TextBox); ok {
		e.form = tb.Style
		e.formText = tb.Text
	}
	return nil
}

// AddText inserts a new text box at the page-relative default position,
// styled from the current form state, appends it at the front of the z-order
// and selects it.
func (e *Session) AddText(text string) *TextBox {
	dims := e.Page.Dimensions()
	pos := geometry.Pt{X: dims.W / 2, Y: dims.H * 0.4}
	tb := NewTextBox(text, pos, OriginCenter, e.form)
	e.scene.Append(tb)
	e.selected = tb
	e.formText = tb.Text
	e.log.Debug("text added", slog.Int("objects", e.scene.Len()))
	return tb
}

// AddImage inserts a bitmap at the page center with a fixed default scale,
// appends it at the front of the z-order and selects it.
func (e *Session) AddImage(bitmap image.Image) *ImageObject {
	dims := e.Page.Dimensions()
	obj := NewImage(bitmap, geometry.Pt{X: dims.W / 2, Y: dims.H / 2}, OriginCenter, 0.5)
	e.scene.Append(obj)
	e.selected = obj
	e.log.Debug("image added", slog.Int("objects", e.scene.Len()))
	return obj
}

// Delete removes the target if and only if it is the current selection and
// still present; anything else is a silent no-op. On removal the session
// transitions to NoSelection.
func (e *Session) Delete(o Object) {
	if o == nil || o != e.selected {
		return
	}
	if e.scene.Remove(o) {
		e.selected = nil
	}
}

// BringToFront and the other reorder/flip operations delegate to the scene;
// they accept any target so toolbar shortcuts can act on the selection.
func (e *Session) BringToFront(o Object)   { e.scene.BringToFront(o) }
func (e *Session) SendToBack(o Object)     { e.scene.SendToBack(o) }
func (e *Session) FlipHorizontal(o Object) { e.scene.FlipHorizontal(o) }
func (e *Session) FlipVertical(o Object)   { e.scene.FlipVertical(o) }

// SetPage replaces the page spec. When a content payload has been imported,
// the import re-runs against the new dimensions: the scene is rebuilt, not
// rescaled, because caption positions and the background cover scale are
// content-derived. Without an imported payload only the spec changes.
func (e *Session) SetPage(page geometry.PageSpec) {
	e.Page = page
	if e.content != nil {
		e.rebuildFromContent()
	}
}
