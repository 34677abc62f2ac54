/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command collatedit is the Collateral Editor: a desktop design editor for
// marketing collateral with headless document, import and export commands.
package main

import (
	"context"
	"fmt"
	"os"

	"collatedit/internal/assetpack"
	"collatedit/internal/backend"
	"collatedit/internal/content"
	"collatedit/internal/crash"
	"collatedit/internal/export"
	applog "collatedit/internal/log"
	"collatedit/internal/storage"
	"collatedit/internal/ui"
	"collatedit/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Collateral Editor %s

Usage:
  collatedit version                      print the version
  collatedit new <dir> <name>             create a new design document
  collatedit open <dir>                   print document info and save history
  collatedit import <dir> <content.json>  rebuild the scene from a content payload and save
  collatedit export <dir> <png|pdf> [out] render the document
  collatedit pack <dir> <out.zip>         export the document's assets as a pack
  collatedit unpack <dir> <pack.zip>      install an asset pack into the document
  collatedit ui [<dir>]                   start the desktop editor
  collatedit serve                        start the collaboration server
`, version.String())
}

func main() {
	applog.Init(applog.FromEnv())

	var dh *storage.DocumentHandle
	defer func() { crash.Recover(dh) }()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Println(version.String())

	case "new":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		dir, name := os.Args[2], os.Args[3]
		doc := storage.DesignDocument{
			SchemaVersion: storage.ManifestSchemaVersion,
			Name:          name,
			Paper:         "a4",
			Orientation:   "portrait",
		}
		h, err := storage.InitDocument(dir, doc)
		if err != nil {
			fail("create document: %v", err)
		}
		dh = h
		fmt.Printf("created %s\n", h.ManifestPath)

	case "open":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		h, err := storage.Open(os.Args[2])
		if err != nil {
			fail("open document: %v", err)
		}
		dh = h
		d := h.Document
		fmt.Printf("%s: %s %s, %d objects, updated %s\n",
			d.Name, d.Paper, d.Orientation, len(d.Objects), d.UpdatedAt.Format("2006-01-02 15:04"))
		printSaveHistory(h.Root)

	case "import":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		h, err := storage.Open(os.Args[2])
		if err != nil {
			fail("open document: %v", err)
		}
		dh = h
		if err := importInto(h, os.Args[3]); err != nil {
			fail("import content: %v", err)
		}
		fmt.Printf("imported %s into %s\n", os.Args[3], h.Root)

	case "export":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		h, err := storage.Open(os.Args[2])
		if err != nil {
			fail("open document: %v", err)
		}
		dh = h
		out, err := exportDocument(h, os.Args[3], optArg(4))
		if err != nil {
			fail("export: %v", err)
		}
		fmt.Printf("wrote %s\n", out)

	case "pack":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		if err := assetpack.ExportAssets(os.Args[2], os.Args[3]); err != nil {
			fail("pack assets: %v", err)
		}
		fmt.Printf("wrote %s\n", os.Args[3])

	case "unpack":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		n, err := assetpack.InstallPack(os.Args[2], os.Args[3])
		if err != nil {
			fail("install pack: %v", err)
		}
		fmt.Printf("installed %d files\n", n)

	case "ui":
		if err := ui.Run(optArg(2)); err != nil {
			fail("%v", err)
		}

	case "serve":
		if err := backend.Start(); err != nil {
			fail("server: %v", err)
		}

	default:
		usage()
		os.Exit(1)
	}
}

func optArg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "collatedit: "+format+"\n", args...)
	os.Exit(1)
}

func printSaveHistory(root string) {
	db, err := storage.InitOrOpenIndex(root)
	if err != nil {
		return
	}
	defer db.Close()
	saves, err := storage.ListSaves(context.Background(), db, 5)
	if err != nil || len(saves) == 0 {
		return
	}
	fmt.Println("recent saves:")
	for _, s := range saves {
		fmt.Printf("  %s  %d objects\n", s.SavedAt.Format("2006-01-02 15:04:05"), s.Objects)
	}
}

// importInto rebuilds the document's scene from a content payload file and
// saves the result. The import runs fully inline; there is no UI thread to
// marshal the background decode onto.
func importInto(h *storage.DocumentHandle, payloadPath string) error {
	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		return err
	}
	pl, err := content.Parse(raw)
	if err != nil {
		return err
	}
	sess, err := storage.Restore(h.Document)
	if err != nil {
		return err
	}
	sess.ImportContent(pl, nil)
	doc, err := storage.Snapshot(h.Document.Name, sess)
	if err != nil {
		return err
	}
	doc.CreatedAt = h.Document.CreatedAt
	h.Document = doc
	return storage.Save(h)
}

func exportDocument(h *storage.DocumentHandle, format, out string) (string, error) {
	sess, err := storage.Restore(h.Document)
	if err != nil {
		return "", err
	}
	switch format {
	case "png":
		if out == "" {
			out = h.Document.Name + ".png"
		}
		return out, export.ExportPNG(sess.Scene(), sess.Page.Dimensions(), out, export.RasterOptions{})
	case "pdf":
		if out == "" {
			out = h.Document.Name + ".pdf"
		}
		opt := export.PDFOptions{Title: h.Document.Name}
		return out, export.ExportPDF(sess.Scene(), sess.Page, out, opt)
	default:
		return "", fmt.Errorf("unknown export format %q (want png or pdf)", format)
	}
}
