/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"collatedit/internal/geometry"
	"collatedit/internal/scene"
)

// Logical page pixels are CSS pixels (96 per inch); PDF wants points.
const ptPerPx = 72.0 / 96.0

// PDFOptions controls PDF export behavior.
// Vector text uses built-in Helvetica for portability; font embedding can be
// added later using TTFs.
type PDFOptions struct {
	Title  string
	Author string
}

// ExportPDF writes the scene as a single-page PDF at outPath. The page size
// maps 1:1 from the logical page via the px-to-pt conversion.
func ExportPDF(sc *scene.Scene, page geometry.PageSpec, outPath string, opt PDFOptions) error {
	dims := page.Dimensions()
	wPt := float64(dims.W) * ptPerPx
	hPt := float64(dims.H) * ptPerPx

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wPt, Ht: hPt},
		OrientationStr: "",
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: wPt, Ht: hPt})
	pdf.SetFont("Helvetica", "", 12)

	for i, o := range sc.Objects() {
		switch v := o.(type) {
		case *scene.ImageObject:
			if err := placeImage(pdf, v, i); err != nil {
				return err
			}
		case *scene.TextBox:
			placeText(pdf, v)
		}
		if pdf.Err() {
			return fmt.Errorf("write pdf object %d: %w", i, pdf.Error())
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// placeImage embeds the bitmap as PNG and draws it into its logical bounds,
// mirroring around the bounds center when flipped.
func placeImage(pdf *gofpdf.Fpdf, obj *scene.ImageObject, idx int) error {
	if obj.Bitmap == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, obj.Bitmap); err != nil {
		return fmt.Errorf("encode background: %w", err)
	}
	name := fmt.Sprintf("scene-image-%d", idx)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)

	b := obj.Bounds()
	x := float64(b.X) * ptPerPx
	y := float64(b.Y) * ptPerPx
	w := float64(b.W) * ptPerPx
	h := float64(b.H) * ptPerPx

	flip := obj.FlipX() || obj.FlipY()
	if flip {
		pdf.TransformBegin()
		if obj.FlipX() {
			pdf.TransformMirrorHorizontal(x + w/2)
		}
		if obj.FlipY() {
			pdf.TransformMirrorVertical(y + h/2)
		}
	}
	pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if flip {
		pdf.TransformEnd()
	}
	return nil
}

func placeText(pdf *gofpdf.Fpdf, tb *scene.TextBox) {
	st := tb.Style
	size := float64(st.FontSize) * ptPerPx
	if size <= 0 {
		size = 12
	}
	pdf.SetFont("Helvetica", pdfFontStyle(st), size)
	pdf.SetTextColor(int(st.Fill.R), int(st.Fill.G), int(st.Fill.B))

	b := tb.Bounds()
	bx := float64(b.X) * ptPerPx
	by := float64(b.Y) * ptPerPx
	bw := float64(b.W) * ptPerPx
	bh := float64(b.H) * ptPerPx

	if st.Background.A > 0 && st.BackgroundOpacity > 0 {
		pdf.SetFillColor(int(st.Background.R), int(st.Background.G), int(st.Background.B))
		pdf.SetAlpha(float64(st.BackgroundOpacity), "Normal")
		pdf.Rect(bx, by, bw, bh, "F")
		pdf.SetAlpha(1, "Normal")
	}

	lines := strings.Split(tb.Text, "\n")
	lineH := size * 1.3
	y := by + size // first baseline
	for _, ln := range lines {
		lw := pdf.GetStringWidth(ln)
		x := bx
		switch st.Align {
		case scene.AlignCenter:
			x = bx + (bw-lw)/2
		case scene.AlignRight:
			x = bx + bw - lw
		}
		if st.Shadow != nil && st.Shadow.Color.A > 0 {
			off := float64(st.Shadow.Blur) / 2 * ptPerPx
			if off < 0.5 {
				off = 0.5
			}
			sc := st.Shadow.Color
			pdf.SetTextColor(int(sc.R), int(sc.G), int(sc.B))
			pdf.Text(x+off, y+off, ln)
			pdf.SetTextColor(int(st.Fill.R), int(st.Fill.G), int(st.Fill.B))
		}
		pdf.Text(x, y, ln)
		y += lineH
	}
}

func pdfFontStyle(st scene.TextStyle) string {
	var s string
	if st.Weight == scene.WeightBold {
		s += "B"
	}
	if st.Style == scene.StyleItalic {
		s += "I"
	}
	if st.Underline {
		s += "U"
	}
	return s
}
