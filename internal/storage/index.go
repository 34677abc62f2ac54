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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "collatedit/internal/log"
	"collatedit/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-document ephemeral/index data under the
	// document root.
	IndexDirName  = ".cle"
	IndexFileName = "index.sqlite"

	// indexSchemaVersion tracks the local SQLite schema for the embedded
	// index. Bump this on breaking schema changes and add migrations.
	indexSchemaVersion = 2
)

// IndexPath returns the full path to the document's embedded index database.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-document SQLite index exists at
// .cle/index.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version tables exist. The returned *sql.DB is ready for use.
func InitOrOpenIndex(root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", root),
	)
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("document root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		l.Error("create .cle dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .cle dir: %w", err)
	}

	path := IndexPath(root)
	// URI with shared cache and busy timeout. Forward slashes for SQLite.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runIndexMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, indexSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			objects     INTEGER NOT NULL,
			saved_at    TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			png         BLOB NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create index schema: %w", err)
		}
	}
	return nil
}

// runIndexMigrations applies incremental schema migrations up to
// indexSchemaVersion.
func runIndexMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > indexSchemaVersion {
		// Do not downgrade; a newer app wrote this index.
		return nil
	}
	for cur < indexSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);`); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d bump failed: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("commit migration %d: %w", next, err)
			}
		default:
			return fmt.Errorf("no migration defined for schema %d", next)
		}
		cur = next
	}
	return nil
}

// SaveRecord is one entry of the save history.
type SaveRecord struct {
	ID      int64
	Name    string
	Objects int
	SavedAt time.Time
}

// RecordSave appends a save-history entry.
func RecordSave(ctx context.Context, db *sql.DB, name string, objects int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO saves (name, objects, saved_at) VALUES (?, ?, ?)`,
		name, objects, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record save: %w", err)
	}
	return nil
}

// ListSaves returns the most recent save-history entries, newest first.
func ListSaves(ctx context.Context, db *sql.DB, limit int) ([]SaveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, objects, saved_at FROM saves ORDER BY saved_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()
	var list []SaveRecord
	for rows.Next() {
		var rec SaveRecord
		var at string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Objects, &at); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339, at); perr == nil {
			rec.SavedAt = ts
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpsertPreview stores the latest page preview PNG.
func UpsertPreview(ctx context.Context, db *sql.DB, pngData []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO previews (id, png, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET png=excluded.png, updated_at=excluded.updated_at`,
		pngData, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	return nil
}

// LoadPreview returns the stored page preview, or ok=false when none exists.
func LoadPreview(ctx context.Context, db *sql.DB) (data []byte, ok bool, err error) {
	row := db.QueryRowContext(ctx, `SELECT png FROM previews WHERE id=1`)
	switch err := row.Scan(&data); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("load preview: %w", err)
	}
	return data, true, nil
}
