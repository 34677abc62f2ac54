/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"image"
	"testing"

	"collatedit/internal/geometry"
)

func newTestSession() *Session {
	return NewSession(geometry.PageSpec{Paper: geometry.A4, Orientation: geometry.Portrait})
}

func testBitmap(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestAddTextSelectsAndAppendsFront(t *testing.T) {
	e := newTestSession()
	first := e.AddText("one")
	second := e.AddText("two")
	if e.Selected() != second {
		t.Fatalf("newest text box should be selected")
	}
	objs := e.Scene().Objects()
	if len(objs) != 2 || objs[0] != first || objs[1] != second {
		t.Fatalf("z-order wrong: %#v", objs)
	}
}

func TestAddTextThenDeleteRestoresLengthAndClearsSelection(t *testing.T) {
	e := newTestSession()
	e.AddText("keep")
	before := e.Scene().Len()
	tb := e.AddText("gone")
	e.Delete(tb)
	if e.Scene().Len() != before {
		t.Fatalf("scene length = %d, want %d", e.Scene().Len(), before)
	}
	if e.Selected() != nil {
		t.Fatalf("selection should be cleared after delete")
	}
}

func TestDeleteIsNoOpUnlessSelected(t *testing.T) {
	e := newTestSession()
	a := e.AddText("a")
	b := e.AddText("b") // selected
	e.Delete(a)         // not the selection: no-op
	if e.Scene().Len() != 2 {
		t.Fatalf("delete of unselected target must be a no-op")
	}
	if e.Selected() != b {
		t.Fatalf("selection must be untouched")
	}
	// absent target
	ghost := NewTextBox("ghost", geometry.Pt{}, OriginTopLeft, DefaultTextStyle())
	e.Delete(ghost)
	if e.Scene().Len() != 2 {
		t.Fatalf("delete of absent target must be a no-op")
	}
}

func TestZOrderOperations(t *testing.T) {
	e := newTestSession()
	a := e.AddText("a")
	b := e.AddText("b")
	c := e.AddText("c")

	e.SendToBack(c)
	objs := e.Scene().Objects()
	if objs[0] != c || objs[1] != a || objs[2] != b {
		t.Fatalf("send-to-back order wrong")
	}
	e.BringToFront(c)
	objs = e.Scene().Objects()
	if objs[2] != c {
		t.Fatalf("bring-to-front order wrong")
	}
	// absent target is a no-op
	ghost := NewTextBox("x", geometry.Pt{}, OriginTopLeft, DefaultTextStyle())
	e.BringToFront(ghost)
	if e.Scene().Len() != 3 {
		t.Fatalf("reorder of absent target must not grow the scene")
	}
}

func TestFlipIdempotentUnderDoubleApplication(t *testing.T) {
	e := newTestSession()
	tb := e.AddText("flip me")
	if tb.FlipX() {
		t.Fatalf("fresh object must not be flipped")
	}
	e.FlipHorizontal(tb)
	if !tb.FlipX() {
		t.Fatalf("flip did not toggle")
	}
	e.FlipHorizontal(tb)
	if tb.FlipX() {
		t.Fatalf("double flip must restore the original flag")
	}
	e.FlipVertical(tb)
	e.FlipVertical(tb)
	if tb.FlipY() {
		t.Fatalf("double vertical flip must restore the original flag")
	}
}

func TestSetStyleUpdatesObjectAndForm(t *testing.T) {
	e := newTestSession()
	tb := e.AddText("styled")
	if err := e.SetStyleField(FieldFontSize, 40); err != nil {
		t.Fatalf("SetStyleField: %v", err)
	}
	if tb.Style.FontSize != 40 {
		t.Fatalf("object fontSize = %v, want 40", tb.Style.FontSize)
	}
	if e.StyleForm().FontSize != 40 {
		t.Fatalf("form fontSize = %v, want 40", e.StyleForm().FontSize)
	}
}

func TestSetStyleOnImageRejected(t *testing.T) {
	e := newTestSession()
	img := e.AddImage(testBitmap(10, 10))
	err := e.Scene().SetStyle(img, FieldFontSize, 12)
	if !errors.Is(err, ErrNotTextBox) {
		t.Fatalf("expected ErrNotTextBox, got %v", err)
	}
}

func TestSetStyleAbsentTargetIgnored(t *testing.T) {
	e := newTestSession()
	ghost := NewTextBox("x", geometry.Pt{}, OriginTopLeft, DefaultTextStyle())
	if err := e.Scene().SetStyle(ghost, FieldFontSize, 12); err != nil {
		t.Fatalf("absent target must be silently ignored, got %v", err)
	}
}

func TestSetStyleMutatesExactlyOneField(t *testing.T) {
	e := newTestSession()
	tb := e.AddText("one field")
	before := tb.Style
	if err := e.SetStyleField(FieldUnderline, true); err != nil {
		t.Fatalf("SetStyleField: %v", err)
	}
	before.Underline = true
	if tb.Style != before {
		t.Fatalf("other fields changed: %#v vs %#v", tb.Style, before)
	}
}

func TestSelectDeselectLeavesSceneUnchanged(t *testing.T) {
	e := newTestSession()
	tb := e.AddText("sel")
	n := e.Scene().Len()

	e.Select(tb)
	if e.Selected() != tb {
		t.Fatalf("select failed")
	}
	e.Select(nil) // empty canvas click
	if e.Selected() != nil {
		t.Fatalf("deselect failed")
	}
	if e.Scene().Len() != n {
		t.Fatalf("selection churn must not mutate the scene")
	}
}

func TestSelectSyncsFormFromTextBox(t *testing.T) {
	e := newTestSession()
	a := e.AddText("a")
	a.Style.FontSize = 66
	e.Select(nil)
	e.Select(a)
	if e.StyleForm().FontSize != 66 {
		t.Fatalf("form not synced from selected text box: %v", e.StyleForm().FontSize)
	}
}

func TestSelectAtHitsTopMost(t *testing.T) {
	e := newTestSession()
	bottom := e.AddText("bottom")
	top := e.AddText("top")
	top.SetPosition(bottom.Position())

	got := e.SelectAt(bottom.Position())
	if got != top {
		t.Fatalf("hit test must prefer the front-most object")
	}
	if e.SelectAt(geometry.Pt{X: -500, Y: -500}) != nil {
		t.Fatalf("empty canvas must clear the selection")
	}
	if e.Selected() != nil {
		t.Fatalf("selection state must be NoSelection")
	}
}

func TestImageBoundsHonorScaleAndOrigin(t *testing.T) {
	img := NewImage(testBitmap(100, 50), geometry.Pt{X: 200, Y: 100}, OriginCenter, 2)
	b := img.Bounds()
	if b.W != 200 || b.H != 100 {
		t.Fatalf("scaled bounds wrong: %+v", b)
	}
	if b.X != 100 || b.Y != 50 {
		t.Fatalf("center origin wrong: %+v", b)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#d9512c")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (Color{R: 0xd9, G: 0x51, B: 0x2c, A: 255}) {
		t.Fatalf("color = %+v", c)
	}
	if c.Hex() != "#d9512c" {
		t.Fatalf("hex round-trip = %q", c.Hex())
	}
	if _, err := ParseHexColor("zzz"); err == nil {
		t.Fatalf("expected error for junk input")
	}
}
