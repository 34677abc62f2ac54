/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"collatedit/internal/geometry"
	"collatedit/internal/scene"
)

func testDocument(name string) DesignDocument {
	return DesignDocument{
		SchemaVersion: ManifestSchemaVersion,
		Name:          name,
		Paper:         "a4",
		Orientation:   "portrait",
	}
}

func TestInitDocumentScaffoldsTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "doc")
	dh, err := InitDocument(root, testDocument("flyer"))
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	for _, d := range []string{"assets", "exports", "backups"} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("missing subdir %s: %v", d, err)
		}
	}
	if _, err := os.Stat(dh.ManifestPath); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
}

func TestSaveCreatesBackupAndOpenReadsLatest(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDocument(root, testDocument("v1"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	dh.Document.Name = "v2"
	if err := Save(dh); err != nil {
		t.Fatalf("save: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil || len(ents) == 0 {
		t.Fatalf("no backup created: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got.Document.Name != "v2" {
		t.Fatalf("opened name = %q", got.Document.Name)
	}
}

func TestOpenFallsBackToBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	dh, err := InitDocument(root, testDocument("good"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	// Second save so a backup of the good manifest exists.
	if err := Save(dh); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(dh.ManifestPath, []byte("{ not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("open after corruption: %v", err)
	}
	if got.Document.Name != "good" {
		t.Fatalf("recovered name = %q", got.Document.Name)
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	rootA := t.TempDir()
	rootB := filepath.Join(t.TempDir(), "copy")
	dh, err := InitDocument(rootA, testDocument("orig"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := SaveAs(dh, rootB); err != nil {
		t.Fatalf("save as: %v", err)
	}
	if dh.Root != rootB {
		t.Fatalf("handle root = %q", dh.Root)
	}
	if _, err := Open(rootB); err != nil {
		t.Fatalf("open new root: %v", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	sess := scene.NewSession(geometry.PageSpec{Paper: geometry.A5, Orientation: geometry.Landscape})
	img := sess.AddImage(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	sess.FlipHorizontal(img)
	tb := sess.AddText("hello")
	tb.Style.FontSize = 32
	tb.Style.Underline = true
	tb.Style.Shadow = &scene.Shadow{Color: scene.Black, Blur: 6}

	doc, err := Snapshot("card", sess)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if doc.Paper != "a5" || doc.Orientation != "landscape" {
		t.Fatalf("page setup = %s/%s", doc.Paper, doc.Orientation)
	}
	if len(doc.Objects) != 2 {
		t.Fatalf("objects = %d", len(doc.Objects))
	}

	back, err := Restore(doc)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	objs := back.Scene().Objects()
	if len(objs) != 2 {
		t.Fatalf("restored objects = %d", len(objs))
	}
	ri, ok := objs[0].(*scene.ImageObject)
	if !ok || !ri.FlipX() {
		t.Fatalf("image flip lost: %#v", objs[0])
	}
	if ri.Bitmap.Bounds().Dx() != 8 {
		t.Fatalf("bitmap size lost: %v", ri.Bitmap.Bounds())
	}
	rt, ok := objs[1].(*scene.TextBox)
	if !ok || rt.Text != "hello" {
		t.Fatalf("text lost: %#v", objs[1])
	}
	if rt.Style.FontSize != 32 || !rt.Style.Underline {
		t.Fatalf("style lost: %+v", rt.Style)
	}
	if rt.Style.Shadow == nil || rt.Style.Shadow.Blur != 6 {
		t.Fatalf("shadow lost: %+v", rt.Style.Shadow)
	}
	if rt.Position() != tb.Position() {
		t.Fatalf("position drifted: %+v vs %+v", rt.Position(), tb.Position())
	}
}

func TestRestoreRejectsUnknownPaper(t *testing.T) {
	doc := testDocument("x")
	doc.Paper = "tabloid"
	if _, err := Restore(doc); err == nil {
		t.Fatalf("unknown paper must fail")
	}
}
