/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assetpack bundles a design document's assets folder (brand images,
// logos, backgrounds) into a portable zip and installs such packs into other
// documents.
package assetpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "collatedit/internal/log"
	"collatedit/internal/storage"
)

const manifestName = "assetpack.manifest.txt"

// ExportAssets zips the document's assets directory into destZipPath. The
// archive preserves the directory structure and carries a small manifest at
// the root for quick human inspection. An empty assets folder still produces
// an archive with only the manifest.
func ExportAssets(docRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "export").With(slog.String("document", docRoot))
	if strings.TrimSpace(docRoot) == "" {
		return errors.New("docRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	assetsDir := filepath.Join(docRoot, storage.AssetsDirName)
	if _, err := os.Stat(assetsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(assetsDir, 0o755); err != nil {
			return fmt.Errorf("ensure assets dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Collateral Editor Asset Pack\nCreated: %s\nDocument: %s\n\nContents mirror the document's /%s directory.\n",
		time.Now().Format(time.RFC3339), docRoot, storage.AssetsDirName)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(assetsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(docRoot, path)
		if err != nil {
			return err
		}
		// Forward slashes inside the archive, regardless of host OS.
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("asset pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts a .zip pack into the document's assets directory.
// Existing files are never overwritten; they are skipped and not counted in
// the returned install count.
func InstallPack(docRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "install").With(slog.String("document", docRoot))
	if strings.TrimSpace(docRoot) == "" {
		return 0, errors.New("docRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	assetsDir := filepath.Join(docRoot, storage.AssetsDirName)
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure assets dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	prefix := storage.AssetsDirName + "/"
	for _, f := range r.File {
		name := f.Name
		if name == manifestName {
			continue
		}
		// Entries from foreign archives may not carry the assets/ prefix;
		// everything lands under the assets directory either way.
		targetRel := name
		if !strings.HasPrefix(targetRel, prefix) {
			targetRel = filepath.ToSlash(filepath.Join(storage.AssetsDirName, targetRel))
		}
		targetPath := filepath.Join(docRoot, filepath.FromSlash(targetRel))
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("asset pack installed", slog.Int("files", installed))
	return installed, nil
}
