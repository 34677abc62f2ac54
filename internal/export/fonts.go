/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"collatedit/internal/scene"
)

// Raster export renders every family with the embedded Go fonts; the four
// weight/italic variants cover the style model. Parsed once, faces per size.

type fontVariant struct {
	bold   bool
	italic bool
}

var (
	fontOnce  sync.Once
	fontErr   error
	fontTable map[fontVariant]*opentype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		fontTable = make(map[fontVariant]*opentype.Font, 4)
		for _, v := range []struct {
			key  fontVariant
			data []byte
		}{
			{fontVariant{}, goregular.TTF},
			{fontVariant{bold: true}, gobold.TTF},
			{fontVariant{italic: true}, goitalic.TTF},
			{fontVariant{bold: true, italic: true}, gobolditalic.TTF},
		} {
			f, err := opentype.Parse(v.data)
			if err != nil {
				fontErr = fmt.Errorf("parse embedded font: %w", err)
				return
			}
			fontTable[v.key] = f
		}
	})
	return fontErr
}

// faceFor returns an opentype face for the style at the given raster scale.
// Callers must Close the face when done.
func faceFor(st scene.TextStyle, scale float32) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	size := float64(st.FontSize)
	if size <= 0 {
		size = 24
	}
	f := fontTable[fontVariant{
		bold:   st.Weight == scene.WeightBold,
		italic: st.Style == scene.StyleItalic,
	}]
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size * float64(scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
