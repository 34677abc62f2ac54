/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"collatedit/internal/storage"
)

func TestRecoverWritesReportAndAutosave(t *testing.T) {
	root := t.TempDir()
	dh, err := storage.InitDocument(root, storage.DesignDocument{
		SchemaVersion: storage.ManifestSchemaVersion,
		Name:          "panicky",
		Paper:         "a4",
		Orientation:   "portrait",
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(dh)
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
	ents, err := os.ReadDir(filepath.Join(root, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var haveReport, haveAutosave bool
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log") {
			haveReport = true
			b, _ := os.ReadFile(filepath.Join(root, storage.BackupsDirName, name))
			if !strings.Contains(string(b), "boom") {
				t.Fatalf("report does not mention the panic: %s", b)
			}
		}
		if strings.Contains(name, ".autosave-") {
			haveAutosave = true
		}
	}
	if !haveReport {
		t.Fatalf("no crash report written: %v", ents)
	}
	if !haveAutosave {
		t.Fatalf("no autosave snapshot written: %v", ents)
	}
}

func TestRecoverWithoutDocument(t *testing.T) {
	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(nil)
		panic("headless boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
}

func TestRecoverIsNoOpWithoutPanic(t *testing.T) {
	exitCalled := false
	exitFn = func(int) { exitCalled = true }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(nil)
	}()

	if exitCalled {
		t.Fatalf("Recover must not exit on a clean return")
	}
}
