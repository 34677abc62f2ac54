/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"testing"
)

func TestInitOrOpenIndexCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != indexSchemaVersion {
		t.Fatalf("schema = %d, want %d", schema, indexSchemaVersion)
	}
}

func TestInitOrOpenIndexIsIdempotent(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = db.Close()
	db, err = InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = db.Close()
}

func TestSaveHistory(t *testing.T) {
	db, err := InitOrOpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := RecordSave(ctx, db, "flyer", 4); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := RecordSave(ctx, db, "flyer", 5); err != nil {
		t.Fatalf("record: %v", err)
	}
	list, err := ListSaves(ctx, db, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("history length = %d", len(list))
	}
	if list[0].Objects != 5 {
		t.Fatalf("newest entry first expected, got %+v", list[0])
	}
}

func TestPreviewUpsertAndLoad(t *testing.T) {
	db, err := InitOrOpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, ok, err := LoadPreview(ctx, db); err != nil || ok {
		t.Fatalf("empty preview: ok=%v err=%v", ok, err)
	}
	if err := UpsertPreview(ctx, db, []byte{1, 2, 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := UpsertPreview(ctx, db, []byte{9, 9}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	data, ok, err := LoadPreview(ctx, db)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(data) != 2 || data[0] != 9 {
		t.Fatalf("preview = %v, want latest", data)
	}
}
