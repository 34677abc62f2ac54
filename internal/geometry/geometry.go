/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry resolves page dimensions and viewport scale.
// All page coordinates are logical pixels; the on-screen zoom never leaks
// into scene coordinates, only into the rendering transform.
package geometry

import "fmt"

// PaperSize identifies an entry of the fixed paper-size table.
type PaperSize string

const (
	Letter   PaperSize = "letter"
	A4       PaperSize = "a4"
	A5       PaperSize = "a5"
	A6       PaperSize = "a6"
	Postcard PaperSize = "postcard"
)

// Orientation selects portrait or landscape page layout.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Size is a width/height pair in logical pixels.
type Size struct{ W, H float32 }

// PageSpec pairs a paper size with an orientation. Page dimensions are a pure
// function of the spec; they are re-resolved on change, never mutated.
type PageSpec struct {
	Paper       PaperSize
	Orientation Orientation
}

// Base dimensions in logical pixels, portrait.
var paperSizes = map[PaperSize]Size{
	Letter:   {W: 816, H: 1056},
	A4:       {W: 794, H: 1123},
	A5:       {W: 559, H: 794},
	A6:       {W: 397, H: 559},
	Postcard: {W: 400, H: 600},
}

// PaperSizes lists the supported keys in stable order.
func PaperSizes() []PaperSize { return []PaperSize{Letter, A4, A5, A6, Postcard} }

// Resolve maps a paper size and orientation to logical page dimensions.
// Landscape swaps width and height. The key set is closed and UI-selectable
// only from that set, so an unknown key is a programming error.
func Resolve(paper PaperSize, o Orientation) Size {
	base, ok := paperSizes[paper]
	if !ok {
		panic(fmt.Sprintf("geometry: unknown paper size %q", paper))
	}
	if o == Landscape {
		return Size{W: base.H, H: base.W}
	}
	return base
}

// Dimensions resolves the spec's page size.
func (s PageSpec) Dimensions() Size { return Resolve(s.Paper, s.Orientation) }

// FitScale computes the logical-to-screen scale factor that fits page into
// container: min(cw/pw, ch/ph). ok is false while the container is not yet
// measurable (zero or negative size); callers defer and recompute on the next
// resize event instead of dividing by zero.
func FitScale(page, container Size) (scale float32, ok bool) {
	if container.W <= 0 || container.H <= 0 || page.W <= 0 || page.H <= 0 {
		return 0, false
	}
	sx := container.W / page.W
	sy := container.H / page.H
	if sy < sx {
		sx = sy
	}
	return sx, true
}
