/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"collatedit/internal/content"
	"collatedit/internal/geometry"
	"collatedit/internal/scene"
)

// ManifestSchemaVersion tracks the design.json layout.
const ManifestSchemaVersion = 1

// DesignDocument is the persisted form of one editing session: page setup
// plus the full scene in z-order.
type DesignDocument struct {
	SchemaVersion int           `json:"schema_version"`
	Name          string        `json:"name"`
	Paper         string        `json:"paper"`
	Orientation   string        `json:"orientation"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Objects       []SceneObject `json:"objects"`
}

// SceneObject is one persisted drawable. Kind selects which optional fields
// are meaningful.
type SceneObject struct {
	Kind   string  `json:"kind"` // "image" | "text"
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Origin string  `json:"origin"` // "top_left" | "center"
	FlipX  bool    `json:"flip_x,omitempty"`
	FlipY  bool    `json:"flip_y,omitempty"`

	// image fields
	Scale    float32 `json:"scale,omitempty"`
	ImagePNG string  `json:"image_png,omitempty"` // base64-encoded PNG

	// text fields
	Text  string       `json:"text,omitempty"`
	Style *StyleRecord `json:"style,omitempty"`
}

// ColorRecord keeps the full RGBA so transparency survives a round trip.
type ColorRecord struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type ShadowRecord struct {
	Color ColorRecord `json:"color"`
	Blur  int         `json:"blur"`
}

// StyleRecord mirrors the editable text attributes.
type StyleRecord struct {
	FontFamily        string        `json:"font_family"`
	FontSize          float32       `json:"font_size"`
	Weight            string        `json:"weight"`
	Style             string        `json:"style"`
	Underline         bool          `json:"underline,omitempty"`
	Align             string        `json:"align"`
	Fill              ColorRecord   `json:"fill"`
	Stroke            ColorRecord   `json:"stroke"`
	StrokeWidth       float32       `json:"stroke_width,omitempty"`
	Background        ColorRecord   `json:"background"`
	BackgroundOpacity float32       `json:"background_opacity,omitempty"`
	Shadow            *ShadowRecord `json:"shadow,omitempty"`
}

// PageSpec validates and resolves the persisted page setup.
func (d DesignDocument) PageSpec() (geometry.PageSpec, error) {
	paper := geometry.PaperSize(d.Paper)
	known := false
	for _, p := range geometry.PaperSizes() {
		if p == paper {
			known = true
			break
		}
	}
	if !known {
		return geometry.PageSpec{}, fmt.Errorf("unknown paper size %q", d.Paper)
	}
	o := geometry.Orientation(d.Orientation)
	if o != geometry.Portrait && o != geometry.Landscape {
		return geometry.PageSpec{}, fmt.Errorf("unknown orientation %q", d.Orientation)
	}
	return geometry.PageSpec{Paper: paper, Orientation: o}, nil
}

// Snapshot captures a session into a persistable document. Bitmaps are
// re-encoded as PNG so the manifest is self-contained.
func Snapshot(name string, sess *scene.Session) (DesignDocument, error) {
	now := time.Now().UTC()
	doc := DesignDocument{
		SchemaVersion: ManifestSchemaVersion,
		Name:          name,
		Paper:         string(sess.Page.Paper),
		Orientation:   string(sess.Page.Orientation),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, o := range sess.Scene().Objects() {
		rec := SceneObject{
			X:      o.Position().X,
			Y:      o.Position().Y,
			Origin: originName(o.Origin()),
			FlipX:  o.FlipX(),
			FlipY:  o.FlipY(),
		}
		switch v := o.(type) {
		case *scene.ImageObject:
			rec.Kind = "image"
			rec.Scale = v.Scale
			if v.Bitmap != nil {
				var buf bytes.Buffer
				if err := png.Encode(&buf, v.Bitmap); err != nil {
					return DesignDocument{}, fmt.Errorf("encode scene image: %w", err)
				}
				rec.ImagePNG = base64.StdEncoding.EncodeToString(buf.Bytes())
			}
		case *scene.TextBox:
			rec.Kind = "text"
			rec.Text = v.Text
			st := styleRecord(v.Style)
			rec.Style = &st
		default:
			return DesignDocument{}, fmt.Errorf("unknown scene object %T", o)
		}
		doc.Objects = append(doc.Objects, rec)
	}
	return doc, nil
}

// Restore rebuilds an editing session from a document. Image decoding runs
// inline; documents are local files, not network payloads.
func Restore(doc DesignDocument) (*scene.Session, error) {
	page, err := doc.PageSpec()
	if err != nil {
		return nil, err
	}
	sess := scene.NewSession(page)
	for i, rec := range doc.Objects {
		pos := geometry.Pt{X: rec.X, Y: rec.Y}
		origin, err := parseOrigin(rec.Origin)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		var obj scene.Object
		switch rec.Kind {
		case "image":
			if rec.ImagePNG == "" {
				continue // image payload was lost; skip rather than fail the open
			}
			img, err := content.DecodeImage(rec.ImagePNG)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", i, err)
			}
			obj = scene.NewImage(img, pos, origin, rec.Scale)
		case "text":
			st := scene.DefaultTextStyle()
			if rec.Style != nil {
				st = sceneStyle(*rec.Style)
			}
			obj = scene.NewTextBox(rec.Text, pos, origin, st)
		default:
			return nil, fmt.Errorf("object %d: unknown kind %q", i, rec.Kind)
		}
		sess.Scene().Append(obj)
		if rec.FlipX {
			sess.FlipHorizontal(obj)
		}
		if rec.FlipY {
			sess.FlipVertical(obj)
		}
	}
	return sess, nil
}

func originName(o scene.Origin) string {
	if o == scene.OriginCenter {
		return "center"
	}
	return "top_left"
}

func parseOrigin(s string) (scene.Origin, error) {
	switch s {
	case "center":
		return scene.OriginCenter, nil
	case "top_left", "":
		return scene.OriginTopLeft, nil
	}
	return 0, fmt.Errorf("unknown origin %q", s)
}

func colorRecord(c scene.Color) ColorRecord { return ColorRecord{R: c.R, G: c.G, B: c.B, A: c.A} }
func sceneColor(c ColorRecord) scene.Color  { return scene.Color{R: c.R, G: c.G, B: c.B, A: c.A} }

func styleRecord(st scene.TextStyle) StyleRecord {
	rec := StyleRecord{
		FontFamily:        st.FontFamily,
		FontSize:          st.FontSize,
		Weight:            string(st.Weight),
		Style:             string(st.Style),
		Underline:         st.Underline,
		Align:             string(st.Align),
		Fill:              colorRecord(st.Fill),
		Stroke:            colorRecord(st.Stroke),
		StrokeWidth:       st.StrokeWidth,
		Background:        colorRecord(st.Background),
		BackgroundOpacity: st.BackgroundOpacity,
	}
	if st.Shadow != nil {
		rec.Shadow = &ShadowRecord{Color: colorRecord(st.Shadow.Color), Blur: st.Shadow.Blur}
	}
	return rec
}

func sceneStyle(rec StyleRecord) scene.TextStyle {
	st := scene.TextStyle{
		FontFamily:        rec.FontFamily,
		FontSize:          rec.FontSize,
		Weight:            scene.FontWeight(rec.Weight),
		Style:             scene.FontStyle(rec.Style),
		Underline:         rec.Underline,
		Align:             scene.Alignment(rec.Align),
		Fill:              sceneColor(rec.Fill),
		Stroke:            sceneColor(rec.Stroke),
		StrokeWidth:       rec.StrokeWidth,
		Background:        sceneColor(rec.Background),
		BackgroundOpacity: rec.BackgroundOpacity,
	}
	if rec.Shadow != nil {
		st.Shadow = &scene.Shadow{Color: sceneColor(rec.Shadow.Color), Blur: rec.Shadow.Blur}
	}
	return st
}
