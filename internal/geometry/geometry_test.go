/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "testing"

func TestResolvePortraitAndLandscape(t *testing.T) {
	for _, key := range PaperSizes() {
		p := Resolve(key, Portrait)
		l := Resolve(key, Landscape)
		if l.W != p.H || l.H != p.W {
			t.Fatalf("%s: landscape should swap dimensions, portrait=%+v landscape=%+v", key, p, l)
		}
	}
	if got := Resolve(A4, Portrait); got.W != 794 || got.H != 1123 {
		t.Fatalf("a4 portrait = %+v", got)
	}
	if got := Resolve(Postcard, Landscape); got.W != 600 || got.H != 400 {
		t.Fatalf("postcard landscape = %+v", got)
	}
}

func TestResolveUnknownKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown paper size")
		}
	}()
	Resolve("tabloid", Portrait)
}

func TestFitScaleNeverExceedsContainer(t *testing.T) {
	page := Resolve(A4, Portrait)
	containers := []Size{
		{W: 400, H: 300},
		{W: 1000, H: 2000},
		{W: 794, H: 1123},
		{W: 1, H: 1},
	}
	for _, c := range containers {
		s, ok := FitScale(page, c)
		if !ok {
			t.Fatalf("container %+v should be measurable", c)
		}
		if s <= 0 {
			t.Fatalf("scale must be positive, got %v", s)
		}
		if page.W*s > c.W+1e-3 || page.H*s > c.H+1e-3 {
			t.Fatalf("page at scale %v exceeds container %+v", s, c)
		}
	}
}

func TestFitScaleMinRatio(t *testing.T) {
	s, ok := FitScale(Size{W: 100, H: 200}, Size{W: 50, H: 200})
	if !ok || s != 0.5 {
		t.Fatalf("expected width-bound scale 0.5, got %v ok=%v", s, ok)
	}
	s, ok = FitScale(Size{W: 100, H: 200}, Size{W: 200, H: 100})
	if !ok || s != 0.5 {
		t.Fatalf("expected height-bound scale 0.5, got %v ok=%v", s, ok)
	}
}

func TestFitScaleDefersOnZeroContainer(t *testing.T) {
	if _, ok := FitScale(Resolve(A6, Portrait), Size{W: 0, H: 600}); ok {
		t.Fatalf("zero-width container must defer")
	}
	if _, ok := FitScale(Resolve(A6, Portrait), Size{W: 600, H: 0}); ok {
		t.Fatalf("zero-height container must defer")
	}
}

func TestPageSpecDimensionsIsPure(t *testing.T) {
	spec := PageSpec{Paper: A5, Orientation: Landscape}
	a := spec.Dimensions()
	b := spec.Dimensions()
	if a != b {
		t.Fatalf("dimensions must be deterministic: %+v vs %+v", a, b)
	}
}
