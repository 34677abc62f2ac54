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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"collatedit/internal/backend"
	"collatedit/internal/config"
	"collatedit/internal/content"
	"collatedit/internal/crash"
	"collatedit/internal/export"
	"collatedit/internal/geometry"
	applog "collatedit/internal/log"
	"collatedit/internal/scene"
	"collatedit/internal/storage"
	"collatedit/internal/telemetry"
)

const (
	prefWindowWidth     = "window_width"
	prefWindowHeight    = "window_height"
	prefRecentDocuments = "recent_documents"

	previewWidth = 256
	maxRecent    = 8
)

// Run starts the desktop editor. docDir optionally names a design document
// directory to open on startup.
func Run(docDir string) error {
	applog.Init(applog.FromEnv())
	log := applog.WithComponent("ui")

	cfg, token, err := config.Load()
	if err != nil {
		log.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	telemetry.NewDefault(telemetry.FromEnv())

	if c, err := scene.ParseHexColor(cfg.Editor.AccentColor); err == nil {
		scene.Accent = c
	}

	ed := &editor{cfg: cfg, token: token, log: log}
	defer func() { crash.Recover(ed.dh) }()

	ed.sess = scene.NewSession(pageFromConfig(cfg.Editor))
	if docDir != "" {
		dh, err := storage.Open(docDir)
		if err != nil {
			return fmt.Errorf("open document %s: %w", docDir, err)
		}
		sess, err := storage.Restore(dh.Document)
		if err != nil {
			return fmt.Errorf("restore document %s: %w", docDir, err)
		}
		ed.dh = dh
		ed.sess = sess
	}

	a := app.NewWithID("collatedit")
	ed.app = a
	ed.win = a.NewWindow("Collateral Editor")
	if ed.dh != nil {
		rememberDocument(a.Preferences(), ed.dh.Root)
	}

	w := float32(a.Preferences().FloatWithFallback(prefWindowWidth, 1200))
	h := float32(a.Preferences().FloatWithFallback(prefWindowHeight, 800))
	if w < 800 {
		w = 800
	}
	if h < 600 {
		h = 600
	}
	ed.win.Resize(fyne.NewSize(w, h))

	ed.buildUI()
	ed.win.SetCloseIntercept(func() {
		sz := ed.win.Canvas().Size()
		a.Preferences().SetFloat(prefWindowWidth, float64(sz.Width))
		a.Preferences().SetFloat(prefWindowHeight, float64(sz.Height))
		ed.win.Close()
	})

	telemetry.Event("app_start", map[string]any{"has_document": ed.dh != nil})
	ed.win.ShowAndRun()
	return nil
}

func pageFromConfig(ec config.EditorConfig) geometry.PageSpec {
	spec := geometry.PageSpec{Paper: geometry.A4, Orientation: geometry.Portrait}
	paper := geometry.PaperSize(strings.ToLower(ec.PaperSize))
	for _, p := range geometry.PaperSizes() {
		if p == paper {
			spec.Paper = p
		}
	}
	if strings.ToLower(ec.Orientation) == string(geometry.Landscape) {
		spec.Orientation = geometry.Landscape
	}
	return spec
}

// editor wires the canvas widget, the style form and the toolbar around one
// scene session.
type editor struct {
	app    fyne.App
	win    fyne.Window
	log    *slog.Logger
	cfg    config.AppConfig
	token  string
	sess   *scene.Session
	dh     *storage.DocumentHandle
	canvas *DesignCanvas
	status *widget.Label

	// true while syncForm pushes values into the widgets, so their change
	// callbacks do not echo back into the session
	updating bool

	textEntry                              *widget.Entry
	familySelect                           *widget.Select
	sizeSlider                             *widget.Slider
	boldCheck, italicCheck, underlineCheck *widget.Check
	alignSelect                            *widget.Select
	fillEntry, strokeEntry, bgEntry        *widget.Entry
	strokeSlider, bgOpacitySlider          *widget.Slider
	shadowCheck                            *widget.Check
	blurSlider                             *widget.Slider
	styleControls                          []fyne.Disableable
}

func (ed *editor) buildUI() {
	ed.canvas = NewDesignCanvas(ed.sess)
	ed.canvas.OnSelectionChanged = ed.syncForm
	ed.status = widget.NewLabel("ready")

	top := ed.buildToolbar()
	right := container.NewVScroll(ed.buildStyleForm())
	bottom := container.NewHBox(ed.status)

	ed.win.SetContent(container.NewBorder(top, bottom, nil, right, ed.canvas))
	ed.syncForm()
}

func (ed *editor) setStatus(format string, args ...any) {
	ed.status.SetText(fmt.Sprintf(format, args...))
}

func (ed *editor) buildToolbar() fyne.CanvasObject {
	paperNames := make([]string, 0, len(geometry.PaperSizes()))
	for _, p := range geometry.PaperSizes() {
		paperNames = append(paperNames, string(p))
	}
	paperSelect := widget.NewSelect(paperNames, func(sel string) {
		if ed.updating {
			return
		}
		spec := ed.sess.Page
		spec.Paper = geometry.PaperSize(sel)
		ed.sess.SetPage(spec)
		ed.canvas.ResetView()
	})
	paperSelect.SetSelected(string(ed.sess.Page.Paper))

	orientSelect := widget.NewSelect([]string{string(geometry.Portrait), string(geometry.Landscape)}, func(sel string) {
		if ed.updating {
			return
		}
		spec := ed.sess.Page
		spec.Orientation = geometry.Orientation(sel)
		ed.sess.SetPage(spec)
		ed.canvas.ResetView()
	})
	orientSelect.SetSelected(string(ed.sess.Page.Orientation))

	recent := widget.NewSelect(recentDocuments(ed.app.Preferences()), nil)
	recent.PlaceHolder = "Recent…"
	recent.OnChanged = func(path string) {
		if path == "" {
			return
		}
		ed.openDocument(path)
	}

	return container.NewHBox(
		widget.NewButton("Text", ed.addText),
		widget.NewButton("Image…", ed.addImage),
		widget.NewButton("Delete", ed.deleteSelected),
		widget.NewSeparator(),
		widget.NewButton("Front", func() { ed.sess.BringToFront(ed.sess.Selected()); ed.canvas.Refresh() }),
		widget.NewButton("Back", func() { ed.sess.SendToBack(ed.sess.Selected()); ed.canvas.Refresh() }),
		widget.NewButton("Flip H", func() { ed.sess.FlipHorizontal(ed.sess.Selected()); ed.canvas.Refresh() }),
		widget.NewButton("Flip V", func() { ed.sess.FlipVertical(ed.sess.Selected()); ed.canvas.Refresh() }),
		widget.NewSeparator(),
		widget.NewButton("Import…", ed.importContent),
		widget.NewButton("Generate…", ed.generateBackground),
		widget.NewSeparator(),
		widget.NewButton("PNG…", ed.exportPNG),
		widget.NewButton("PDF…", ed.exportPDF),
		widget.NewButton("Save", ed.save),
		widget.NewButton("Open…", ed.openDialog),
		recent,
		widget.NewSeparator(),
		paperSelect,
		orientSelect,
		widget.NewButton("Fit", ed.canvas.ResetView),
	)
}

func (ed *editor) buildStyleForm() fyne.CanvasObject {
	ed.textEntry = widget.NewMultiLineEntry()
	ed.textEntry.OnChanged = func(s string) { ed.setField(scene.FieldText, s) }

	ed.familySelect = widget.NewSelect([]string{"sans", "serif", "mono"}, func(s string) {
		ed.setField(scene.FieldFontFamily, s)
	})

	ed.sizeSlider = widget.NewSlider(8, 80)
	ed.sizeSlider.Step = 1
	ed.sizeSlider.OnChanged = func(v float64) { ed.setField(scene.FieldFontSize, v) }

	ed.boldCheck = widget.NewCheck("Bold", func(on bool) {
		w := scene.WeightNormal
		if on {
			w = scene.WeightBold
		}
		ed.setField(scene.FieldWeight, w)
	})
	ed.italicCheck = widget.NewCheck("Italic", func(on bool) {
		st := scene.StyleNormal
		if on {
			st = scene.StyleItalic
		}
		ed.setField(scene.FieldStyle, st)
	})
	ed.underlineCheck = widget.NewCheck("Underline", func(on bool) {
		ed.setField(scene.FieldUnderline, on)
	})

	ed.alignSelect = widget.NewSelect([]string{
		string(scene.AlignLeft), string(scene.AlignCenter), string(scene.AlignRight),
	}, func(s string) {
		ed.setField(scene.FieldAlign, scene.Alignment(s))
	})

	ed.fillEntry = ed.colorEntry(scene.FieldFill)
	ed.strokeEntry = ed.colorEntry(scene.FieldStroke)
	ed.bgEntry = ed.colorEntry(scene.FieldBackground)

	ed.strokeSlider = widget.NewSlider(0, 5)
	ed.strokeSlider.Step = 0.1
	ed.strokeSlider.OnChanged = func(v float64) { ed.setField(scene.FieldStrokeWidth, v) }

	ed.bgOpacitySlider = widget.NewSlider(0, 1)
	ed.bgOpacitySlider.Step = 0.01
	ed.bgOpacitySlider.OnChanged = func(v float64) { ed.setField(scene.FieldBackgroundOpacity, v) }

	ed.blurSlider = widget.NewSlider(0, 20)
	ed.blurSlider.Step = 1
	ed.shadowCheck = widget.NewCheck("Shadow", func(on bool) { ed.pushShadow() })
	ed.blurSlider.OnChanged = func(float64) { ed.pushShadow() }

	ed.styleControls = []fyne.Disableable{
		ed.textEntry, ed.familySelect, ed.sizeSlider,
		ed.boldCheck, ed.italicCheck, ed.underlineCheck, ed.alignSelect,
		ed.fillEntry, ed.strokeEntry, ed.bgEntry,
		ed.strokeSlider, ed.bgOpacitySlider, ed.shadowCheck, ed.blurSlider,
	}

	return container.NewVBox(
		widget.NewLabel("Text"),
		ed.textEntry,
		widget.NewForm(
			widget.NewFormItem("Font", ed.familySelect),
			widget.NewFormItem("Size", ed.sizeSlider),
			widget.NewFormItem("Align", ed.alignSelect),
		),
		container.NewHBox(ed.boldCheck, ed.italicCheck, ed.underlineCheck),
		widget.NewForm(
			widget.NewFormItem("Fill", ed.fillEntry),
			widget.NewFormItem("Stroke", ed.strokeEntry),
			widget.NewFormItem("Stroke w", ed.strokeSlider),
			widget.NewFormItem("Box color", ed.bgEntry),
			widget.NewFormItem("Box alpha", ed.bgOpacitySlider),
		),
		container.NewHBox(ed.shadowCheck),
		widget.NewForm(widget.NewFormItem("Blur", ed.blurSlider)),
	)
}

func (ed *editor) colorEntry(field scene.StyleField) *widget.Entry {
	e := widget.NewEntry()
	e.PlaceHolder = "#rrggbb"
	e.OnSubmitted = func(s string) {
		c, err := scene.ParseHexColor(s)
		if err != nil {
			ed.setStatus("%v", err)
			return
		}
		ed.setField(field, c)
	}
	return e
}

func (ed *editor) setField(field scene.StyleField, v any) {
	if ed.updating {
		return
	}
	if err := ed.sess.SetStyleField(field, v); err != nil {
		ed.setStatus("%v", err)
		return
	}
	ed.canvas.Refresh()
}

func (ed *editor) pushShadow() {
	if ed.updating {
		return
	}
	if !ed.shadowCheck.Checked {
		ed.setField(scene.FieldShadow, nil)
		return
	}
	ed.setField(scene.FieldShadow, &scene.Shadow{Color: scene.Black, Blur: int(ed.blurSlider.Value)})
}

// syncForm mirrors the selected text box into the style widgets. For images
// and empty selection the controls are disabled; their values go stale, which
// is fine because setField is gated on the selection anyway.
func (ed *editor) syncForm() {
	sel := ed.sess.Selected()
	tb, isText := sel.(*scene.TextBox)
	for _, c := range ed.styleControls {
		if isText {
			c.Enable()
		} else {
			c.Disable()
		}
	}
	switch {
	case sel == nil:
		ed.setStatus("no selection")
	case !isText:
		ed.setStatus("image selected")
	default:
		ed.setStatus("text selected")
	}
	if !isText {
		return
	}

	ed.updating = true
	defer func() { ed.updating = false }()
	st := tb.Style
	ed.textEntry.SetText(tb.Text)
	ed.familySelect.SetSelected(st.FontFamily)
	ed.sizeSlider.SetValue(float64(st.FontSize))
	ed.boldCheck.SetChecked(st.Weight == scene.WeightBold)
	ed.italicCheck.SetChecked(st.Style == scene.StyleItalic)
	ed.underlineCheck.SetChecked(st.Underline)
	ed.alignSelect.SetSelected(string(st.Align))
	ed.fillEntry.SetText(st.Fill.Hex())
	ed.strokeEntry.SetText(st.Stroke.Hex())
	ed.bgEntry.SetText(st.Background.Hex())
	ed.strokeSlider.SetValue(float64(st.StrokeWidth))
	ed.bgOpacitySlider.SetValue(float64(st.BackgroundOpacity))
	ed.shadowCheck.SetChecked(st.Shadow != nil)
	if st.Shadow != nil {
		ed.blurSlider.SetValue(float64(st.Shadow.Blur))
	}
}

func (ed *editor) addText() {
	ed.sess.AddText("New text")
	ed.syncForm()
	ed.canvas.Refresh()
}

func (ed *editor) deleteSelected() {
	ed.sess.Delete(ed.sess.Selected())
	ed.syncForm()
	ed.canvas.Refresh()
}

func (ed *editor) addImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		img, _, err := image.Decode(rc)
		if err != nil {
			dialog.ShowError(fmt.Errorf("decode image: %w", err), ed.win)
			return
		}
		ed.sess.AddImage(img)
		ed.syncForm()
		ed.canvas.Refresh()
	}, ed.win)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	d.Show()
}

func (ed *editor) importContent() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
		pl, err := content.Parse(raw)
		if err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
		ed.sess.ImportContent(pl, func(fn func()) {
			fyne.Do(func() {
				fn()
				ed.canvas.Refresh()
			})
		})
		ed.syncForm()
		ed.canvas.ResetView()
		telemetry.Event("content_import", map[string]any{"objects": ed.sess.Scene().Len()})
	}, ed.win)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

// generateBackground asks the generation service for a refined prompt and an
// image, then drops the result at the back of the scene at cover scale.
func (ed *editor) generateBackground() {
	campaignType := widget.NewEntry()
	theme := widget.NewEntry()
	audience := widget.NewEntry()
	goal := widget.NewEntry()
	extra := widget.NewEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Campaign type", campaignType),
		widget.NewFormItem("Theme", theme),
		widget.NewFormItem("Audience", audience),
		widget.NewFormItem("Goal", goal),
		widget.NewFormItem("Context", extra),
	}
	dialog.ShowForm("Generate background", "Generate", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		brief := backend.Brief{
			CampaignType:      campaignType.Text,
			CampaignTheme:     theme.Text,
			Audience:          audience.Text,
			Goal:              goal.Text,
			AdditionalContext: extra.Text,
		}
		ed.setStatus("generating…")
		client := backend.NewClientFromConfig(ed.cfg.Generation, ed.token)
		go func() {
			ctx := context.Background()
			prompt, err := client.RefinePrompt(ctx, brief)
			if err != nil {
				fyne.Do(func() { dialog.ShowError(err, ed.win) })
				return
			}
			res, err := client.Generate(ctx, prompt)
			if err != nil {
				fyne.Do(func() { dialog.ShowError(err, ed.win) })
				return
			}
			fyne.Do(func() { ed.placeGenerated(res.ImageB64) })
		}()
	}, ed.win)
}

func (ed *editor) placeGenerated(b64 string) {
	img, err := content.DecodeImage(b64)
	if err != nil {
		dialog.ShowError(fmt.Errorf("decode generated image: %w", err), ed.win)
		return
	}
	dims := ed.sess.Page.Dimensions()
	obj := scene.NewImage(img,
		geometry.Pt{X: dims.W / 2, Y: dims.H / 2},
		scene.OriginCenter,
		scene.CoverScale(img, dims))
	ed.sess.Scene().InsertBack(obj)
	ed.canvas.Refresh()
	ed.setStatus("background generated")
	telemetry.Event("background_generated", nil)
}

func (ed *editor) exportPNG() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if err := export.ExportPNG(ed.sess.Scene(), ed.sess.Page.Dimensions(), path, export.RasterOptions{}); err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
		ed.setStatus("exported %s", filepath.Base(path))
		telemetry.Event("design_export", map[string]any{"format": "png"})
	}, ed.win)
	d.SetFileName("design.png")
	d.Show()
}

func (ed *editor) exportPDF() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		opt := export.PDFOptions{Title: ed.documentName()}
		if err := export.ExportPDF(ed.sess.Scene(), ed.sess.Page, path, opt); err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
		ed.setStatus("exported %s", filepath.Base(path))
		telemetry.Event("design_export", map[string]any{"format": "pdf"})
	}, ed.win)
	d.SetFileName("design.pdf")
	d.Show()
}

func (ed *editor) documentName() string {
	if ed.dh != nil {
		return ed.dh.Document.Name
	}
	return "untitled"
}

func (ed *editor) save() {
	if ed.dh == nil {
		d := dialog.NewFolderOpen(func(lu fyne.ListableURI, err error) {
			if err != nil || lu == nil {
				return
			}
			ed.saveInto(lu.Path())
		}, ed.win)
		d.Show()
		return
	}
	ed.saveInto(ed.dh.Root)
}

func (ed *editor) saveInto(root string) {
	doc, err := storage.Snapshot(filepath.Base(root), ed.sess)
	if err != nil {
		dialog.ShowError(err, ed.win)
		return
	}
	if ed.dh == nil {
		dh, err := storage.InitDocument(root, doc)
		if err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
		ed.dh = dh
	} else {
		doc.Name = ed.dh.Document.Name
		doc.CreatedAt = ed.dh.Document.CreatedAt
		ed.dh.Document = doc
		if err := storage.Save(ed.dh); err != nil {
			dialog.ShowError(err, ed.win)
			return
		}
	}
	ed.recordSave()
	rememberDocument(ed.app.Preferences(), ed.dh.Root)
	ed.setStatus("saved %s", ed.dh.Root)
	telemetry.Event("document_saved", map[string]any{"objects": ed.sess.Scene().Len()})
}

// recordSave appends to the save history and refreshes the preview thumbnail
// in the document's sqlite index. Index failures are logged, never fatal; the
// manifest on disk is already safe at this point.
func (ed *editor) recordSave() {
	db, err := storage.InitOrOpenIndex(ed.dh.Root)
	if err != nil {
		ed.log.Warn("open index failed", slog.Any("err", err))
		return
	}
	defer db.Close()
	ctx := context.Background()
	if err := storage.RecordSave(ctx, db, ed.dh.Document.Name, ed.sess.Scene().Len()); err != nil {
		ed.log.Warn("record save failed", slog.Any("err", err))
	}

	dims := ed.sess.Page.Dimensions()
	img, err := export.RenderScene(ed.sess.Scene(), dims, export.RasterOptions{Scale: previewWidth / dims.W})
	if err != nil {
		ed.log.Warn("render preview failed", slog.Any("err", err))
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	if err := storage.UpsertPreview(ctx, db, buf.Bytes()); err != nil {
		ed.log.Warn("store preview failed", slog.Any("err", err))
	}
}

func (ed *editor) openDialog() {
	d := dialog.NewFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil || lu == nil {
			return
		}
		ed.openDocument(lu.Path())
	}, ed.win)
	d.Show()
}

func (ed *editor) openDocument(root string) {
	dh, err := storage.Open(root)
	if err != nil {
		dialog.ShowError(err, ed.win)
		return
	}
	sess, err := storage.Restore(dh.Document)
	if err != nil {
		dialog.ShowError(err, ed.win)
		return
	}
	ed.dh = dh
	ed.sess = sess
	ed.canvas.SetSession(sess)
	ed.syncForm()
	rememberDocument(ed.app.Preferences(), root)
	ed.setStatus("opened %s", root)
}

// recentDocuments reads the MRU list persisted as JSON in the preferences.
func recentDocuments(p fyne.Preferences) []string {
	raw := p.String(prefRecentDocuments)
	if raw == "" {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil
	}
	var out []string
	for _, q := range paths {
		if _, err := os.Stat(q); err == nil {
			out = append(out, q)
		}
	}
	return out
}

func rememberDocument(p fyne.Preferences, path string) {
	out := []string{path}
	for _, q := range recentDocuments(p) {
		if q != path && len(out) < maxRecent {
			out = append(out, q)
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	p.SetString(prefRecentDocuments, string(b))
}
