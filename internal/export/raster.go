/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a design scene to raster (PNG) and print (PDF)
// output at full logical resolution, independent of any on-screen zoom.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"collatedit/internal/geometry"
	"collatedit/internal/scene"
)

// RasterOptions controls PNG export behavior.
// - Scale: output pixels per logical page pixel; <= 0 means 1:1.
// - Background: page fill; a zero value means opaque white.
type RasterOptions struct {
	Scale      float32
	Background scene.Color
}

// RenderScene rasterizes the scene back-to-front onto a fresh RGBA image
// sized page*scale. The on-screen viewport scale never leaks in here.
func RenderScene(sc *scene.Scene, page geometry.Size, opt RasterOptions) (*image.RGBA, error) {
	k := opt.Scale
	if k <= 0 {
		k = 1
	}
	bg := opt.Background
	if bg == (scene.Color{}) {
		bg = scene.White
	}

	w := int(math.Round(float64(page.W * k)))
	h := int(math.Round(float64(page.H * k)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render scene: page %gx%g is empty", page.W, page.H)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(toNRGBA(bg)), image.Point{}, draw.Src)

	for _, o := range sc.Objects() {
		switch v := o.(type) {
		case *scene.ImageObject:
			drawImageObject(dst, v, k)
		case *scene.TextBox:
			if err := drawTextBox(dst, v, k); err != nil {
				return nil, err
			}
		}
	}
	return dst, nil
}

// ExportPNG renders the scene and writes it to outPath, creating parent
// directories as needed.
func ExportPNG(sc *scene.Scene, page geometry.Size, outPath string, opt RasterOptions) error {
	img, err := RenderScene(sc, page, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawImageObject maps the bitmap into its logical bounds with a single
// affine transform so scale and flips compose without intermediate copies.
func drawImageObject(dst *image.RGBA, obj *scene.ImageObject, k float32) {
	src := obj.Bitmap
	if src == nil {
		return
	}
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return
	}
	b := obj.Bounds()
	x0 := float64(b.X * k)
	y0 := float64(b.Y * k)
	sx := float64(b.W*k) / float64(sb.Dx())
	sy := float64(b.H*k) / float64(sb.Dy())

	m := f64.Aff3{sx, 0, x0, 0, sy, y0}
	if obj.FlipX() {
		m[0] = -sx
		m[2] = x0 + float64(b.W*k)
	}
	if obj.FlipY() {
		m[4] = -sy
		m[5] = y0 + float64(b.H*k)
	}
	draw.CatmullRom.Transform(dst, m, src, sb, draw.Over, nil)
}

func drawTextBox(dst *image.RGBA, tb *scene.TextBox, k float32) error {
	face, err := faceFor(tb.Style, k)
	if err != nil {
		return err
	}
	defer func() { _ = face.Close() }()

	b := tb.Bounds()
	bx := int(math.Round(float64(b.X * k)))
	by := int(math.Round(float64(b.Y * k)))
	bw := int(math.Round(float64(b.W * k)))
	bh := int(math.Round(float64(b.H * k)))

	st := tb.Style
	if st.Background.A > 0 && st.BackgroundOpacity > 0 {
		c := toNRGBA(st.Background)
		c.A = uint8(math.Round(float64(c.A) * math.Min(float64(st.BackgroundOpacity), 1)))
		draw.Draw(dst, image.Rect(bx, by, bx+bw, by+bh), image.NewUniform(c), image.Point{}, draw.Over)
	}

	lines := strings.Split(tb.Text, "\n")
	met := face.Metrics()
	lineH := met.Height.Ceil()
	measure := &font.Drawer{Face: face}

	// Per-line start x depends on the alignment within the box.
	startX := func(lineW int) int {
		switch st.Align {
		case scene.AlignCenter:
			return bx + (bw-lineW)/2
		case scene.AlignRight:
			return bx + bw - lineW
		default:
			return bx
		}
	}

	type placed struct {
		x, y, w int // baseline position and advance width
	}
	spots := make([]placed, len(lines))
	y := by + met.Ascent.Ceil()
	for i, ln := range lines {
		lw := measure.MeasureString(ln).Ceil()
		spots[i] = placed{x: startX(lw), y: y, w: lw}
		y += lineH
	}

	pass := func(col scene.Color, dx, dy int) {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(toNRGBA(col)), Face: face}
		for i, ln := range lines {
			d.Dot = fixed.P(spots[i].x+dx, spots[i].y+dy)
			d.DrawString(ln)
		}
	}

	if st.Shadow != nil && st.Shadow.Color.A > 0 {
		off := int(math.Round(float64(st.Shadow.Blur) / 2 * float64(k)))
		if off < 1 {
			off = 1
		}
		pass(st.Shadow.Color, off, off)
	}
	if st.StrokeWidth > 0 && st.Stroke.A > 0 {
		r := int(math.Ceil(float64(st.StrokeWidth * k)))
		for _, d := range [][2]int{{-r, 0}, {r, 0}, {0, -r}, {0, r}, {-r, -r}, {r, -r}, {-r, r}, {r, r}} {
			pass(st.Stroke, d[0], d[1])
		}
	}
	pass(st.Fill, 0, 0)

	if st.Underline {
		th := int(math.Round(float64(st.FontSize*k) / 16))
		if th < 1 {
			th = 1
		}
		uc := toNRGBA(st.Fill)
		for _, s := range spots {
			fillRect(dst, s.x, s.y+2, s.x+s.w-1, s.y+1+th, uc)
		}
	}
	return nil
}

func toNRGBA(c scene.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// fillRect fills an axis-aligned rectangle inclusive of endpoints.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.Set(x, y, col)
		}
	}
}
