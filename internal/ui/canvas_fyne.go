//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"strings"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"collatedit/internal/geometry"
	"collatedit/internal/scene"
)

const (
	canvasMargin = 24
	minZoom      = 0.1
	maxZoom      = 4.0
)

type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragMove
)

// DesignCanvas renders the editable scene with pan/zoom and forwards taps and
// drags to the session. Page coordinates are logical pixels; the widget only
// ever changes the view transform, never the scene's coordinate space.
type DesignCanvas struct {
	widget.BaseWidget

	sess *scene.Session

	zoom             float32 // multiplier on the fit-to-window scale
	offsetX, offsetY float32

	mode      dragMode
	dragStart geometry.Pt
	objStart  geometry.Pt

	// OnSelectionChanged fires after a tap or drag changes the selection.
	OnSelectionChanged func()
}

func NewDesignCanvas(sess *scene.Session) *DesignCanvas {
	c := &DesignCanvas{sess: sess, zoom: 1}
	c.ExtendBaseWidget(c)
	return c
}

// SetSession swaps the edited session (open document, restore).
func (c *DesignCanvas) SetSession(sess *scene.Session) {
	c.sess = sess
	c.ResetView()
}

// ResetView restores the fit-to-window zoom and clears the pan offset.
func (c *DesignCanvas) ResetView() {
	c.zoom = 1
	c.offsetX, c.offsetY = 0, 0
	c.Refresh()
}

// pageOriginAndScale computes the top-left screen position of the page and
// the logical-to-screen scale. ok is false while the widget has no measurable
// size yet; callers skip drawing and retry on the next layout pass.
func (c *DesignCanvas) pageOriginAndScale() (origin fyne.Position, scale float32, ok bool) {
	dims := c.sess.Page.Dimensions()
	size := c.Size()
	fit, ok := geometry.FitScale(dims, geometry.Size{W: size.Width - 2*canvasMargin, H: size.Height - 2*canvasMargin})
	if !ok {
		return fyne.Position{}, 0, false
	}
	scale = fit * c.zoom
	w := dims.W * scale
	h := dims.H * scale
	origin = fyne.NewPos((size.Width-w)/2+c.offsetX, (size.Height-h)/2+c.offsetY)
	return origin, scale, true
}

func (c *DesignCanvas) toPage(pos fyne.Position) (geometry.Pt, bool) {
	origin, scale, ok := c.pageOriginAndScale()
	if !ok || scale == 0 {
		return geometry.Pt{}, false
	}
	return geometry.Pt{X: (pos.X - origin.X) / scale, Y: (pos.Y - origin.Y) / scale}, true
}

func (c *DesignCanvas) screenRect(b geometry.Rect) (fyne.Position, fyne.Size, bool) {
	origin, scale, ok := c.pageOriginAndScale()
	if !ok {
		return fyne.Position{}, fyne.Size{}, false
	}
	return fyne.NewPos(origin.X+b.X*scale, origin.Y+b.Y*scale),
		fyne.NewSize(b.W*scale, b.H*scale), true
}

func (c *DesignCanvas) notifySelection() {
	if c.OnSelectionChanged != nil {
		c.OnSelectionChanged()
	}
}

// Tapped selects the top-most object under the pointer; empty canvas clears
// the selection.
func (c *DesignCanvas) Tapped(ev *fyne.PointEvent) {
	p, ok := c.toPage(ev.Position)
	if !ok {
		return
	}
	c.sess.SelectAt(p)
	c.notifySelection()
	c.Refresh()
}

// Dragged moves the object under the pointer, or pans the view when the drag
// starts on empty canvas.
func (c *DesignCanvas) Dragged(ev *fyne.DragEvent) {
	if c.mode == dragNone {
		start := fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)
		if p, ok := c.toPage(start); ok {
			if o := c.sess.Scene().HitTest(p); o != nil {
				if o != c.sess.Selected() {
					c.sess.Select(o)
					c.notifySelection()
				}
				c.mode = dragMove
				c.dragStart = p
				c.objStart = o.Position()
			} else {
				c.mode = dragPan
			}
		} else {
			c.mode = dragPan
		}
	}

	switch c.mode {
	case dragPan:
		c.offsetX += ev.Dragged.DX
		c.offsetY += ev.Dragged.DY
	case dragMove:
		o := c.sess.Selected()
		if o == nil {
			break
		}
		if p, ok := c.toPage(ev.Position); ok {
			o.SetPosition(geometry.Pt{
				X: c.objStart.X + (p.X - c.dragStart.X),
				Y: c.objStart.Y + (p.Y - c.dragStart.Y),
			})
		}
	}
	c.Refresh()
}

func (c *DesignCanvas) DragEnd() { c.mode = dragNone }

// Scrolled zooms around the view center.
func (c *DesignCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.zoom *= 1.1
	} else if ev.Scrolled.DY < 0 {
		c.zoom /= 1.1
	}
	if c.zoom < minZoom {
		c.zoom = minZoom
	}
	if c.zoom > maxZoom {
		c.zoom = maxZoom
	}
	c.Refresh()
}

func (c *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 0x2e, G: 0x2e, B: 0x32, A: 0xff})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.NRGBA{A: 0xff}
	page.StrokeWidth = 1
	sel := canvas.NewRectangle(color.Transparent)
	sel.StrokeColor = color.NRGBA{R: 0x2b, G: 0x8a, B: 0xf7, A: 0xff}
	sel.StrokeWidth = 2
	r := &designCanvasRenderer{dc: c, bg: bg, page: page, sel: sel}
	r.Layout(c.Size())
	return r
}

type designCanvasRenderer struct {
	dc      *DesignCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	sel     *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *designCanvasRenderer) Destroy() {}

func (r *designCanvasRenderer) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (r *designCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *designCanvasRenderer) Refresh() {
	r.Layout(r.dc.Size())
	canvas.Refresh(r.dc)
}

// Layout rebuilds the draw list back to front: backdrop, page, scene objects,
// selection outline. The list is regenerated on every pass so z-order changes
// and scene rebuilds need no bookkeeping here.
func (r *designCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Move(fyne.NewPos(0, 0))
	r.bg.Resize(size)

	origin, scale, ok := r.dc.pageOriginAndScale()
	if !ok {
		r.objects = []fyne.CanvasObject{r.bg}
		return
	}
	dims := r.dc.sess.Page.Dimensions()
	r.page.Move(origin)
	r.page.Resize(fyne.NewSize(dims.W*scale, dims.H*scale))

	objs := []fyne.CanvasObject{r.bg, r.page}
	for _, o := range r.dc.sess.Scene().Objects() {
		switch v := o.(type) {
		case *scene.ImageObject:
			objs = append(objs, r.imageVisual(v)...)
		case *scene.TextBox:
			objs = append(objs, r.textVisual(v)...)
		}
	}

	if o := r.dc.sess.Selected(); o != nil {
		if pos, sz, ok := r.dc.screenRect(o.Bounds()); ok {
			r.sel.Move(pos)
			r.sel.Resize(sz)
			r.sel.Show()
			objs = append(objs, r.sel)
		}
	} else {
		r.sel.Hide()
	}
	r.objects = objs
}

func (r *designCanvasRenderer) imageVisual(v *scene.ImageObject) []fyne.CanvasObject {
	if v.Bitmap == nil {
		return nil
	}
	pos, sz, ok := r.dc.screenRect(v.Bounds())
	if !ok {
		return nil
	}
	// Mirroring is not previewed on-canvas; the exporters honor the flags.
	img := canvas.NewImageFromImage(v.Bitmap)
	img.FillMode = canvas.ImageFillStretch
	img.Move(pos)
	img.Resize(sz)
	return []fyne.CanvasObject{img}
}

func (r *designCanvasRenderer) textVisual(v *scene.TextBox) []fyne.CanvasObject {
	pos, sz, ok := r.dc.screenRect(v.Bounds())
	if !ok {
		return nil
	}
	_, scale, _ := r.dc.pageOriginAndScale()
	st := v.Style

	var objs []fyne.CanvasObject
	if st.BackgroundOpacity > 0 {
		bg := canvas.NewRectangle(nrgbaWithOpacity(st.Background, st.BackgroundOpacity))
		bg.Move(pos)
		bg.Resize(sz)
		objs = append(objs, bg)
	}

	lines := strings.Split(v.Text, "\n")
	lineH := st.FontSize * 1.3 * scale
	for i, line := range lines {
		t := canvas.NewText(line, nrgba(st.Fill))
		t.TextSize = st.FontSize * scale
		t.TextStyle = fyne.TextStyle{
			Bold:      st.Weight == scene.WeightBold,
			Italic:    st.Style == scene.StyleItalic,
			Underline: st.Underline,
			Monospace: st.FontFamily == "mono",
		}
		t.Alignment = fyneAlign(st.Align)
		t.Move(fyne.NewPos(pos.X, pos.Y+float32(i)*lineH))
		t.Resize(fyne.NewSize(sz.Width, lineH))
		objs = append(objs, t)
	}
	return objs
}

func nrgba(c scene.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func nrgbaWithOpacity(c scene.Color, opacity float32) color.NRGBA {
	a := float32(c.A) * opacity
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}

func fyneAlign(a scene.Alignment) fyne.TextAlign {
	switch a {
	case scene.AlignLeft:
		return fyne.TextAlignLeading
	case scene.AlignRight:
		return fyne.TextAlignTrailing
	}
	return fyne.TextAlignCenter
}
