/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package drafts persists unsubmitted edit sessions in a local SQLite database
// so a crash or accidental close loses no typing. One draft per entity; saving
// overwrites, submitting deletes.
package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "gositeadmin/internal/log"
	"gositeadmin/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	DBFileName = "drafts.sqlite"

	// schemaVersion tracks the local schema; bump with migrations on breaking
	// changes.
	schemaVersion = 1
)

// Entity kinds a draft can belong to. Unsaved creations use entity ID 0.
const (
	KindProject = "project"
	KindSlide   = "slide"
	KindAbout   = "about"
)

// ErrNoDraft is returned when no draft exists for the requested entity.
var ErrNoDraft = errors.New("no draft stored")

// Draft is one stored edit session payload.
type Draft struct {
	Kind      string
	EntityID  int64
	Payload   []byte // JSON-encoded session state, owned by the caller
	UpdatedAt time.Time
}

// Store is a handle to the local draft database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the draft database at path, enables WAL mode
// and ensures the schema. Callers close the store when done.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("drafts"), "open").With(slog.String("path", path))
	if path == "" {
		return nil, errors.New("draft database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create draft dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create draft dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("draft store ready")
	return &Store{db: db, log: applog.WithComponent("drafts")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS drafts (
			kind       TEXT NOT NULL,
			entity_id  INTEGER NOT NULL,
			payload    BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (kind, entity_id)
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('schema', ?), ('app', ?), ('updated_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprint(schemaVersion), version.String(), now); err != nil {
		return fmt.Errorf("seed meta: %w", err)
	}
	return nil
}

// Save stores (or overwrites) the draft for one entity.
func (s *Store) Save(ctx context.Context, kind string, entityID int64, payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (kind, entity_id, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind, entity_id) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		kind, entityID, payload, now)
	if err != nil {
		return fmt.Errorf("save draft %s/%d: %w", kind, entityID, err)
	}
	s.log.Debug("draft saved", slog.String("kind", kind), slog.Int64("entity_id", entityID))
	return nil
}

// Load returns the draft for one entity, or ErrNoDraft.
func (s *Store) Load(ctx context.Context, kind string, entityID int64) (Draft, error) {
	var d Draft
	var ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, updated_at FROM drafts WHERE kind=? AND entity_id=?`,
		kind, entityID).Scan(&d.Payload, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNoDraft
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft %s/%d: %w", kind, entityID, err)
	}
	d.Kind, d.EntityID = kind, entityID
	d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	return d, nil
}

// Delete removes the draft for one entity. Missing drafts are not an error;
// submit paths call this unconditionally.
func (s *Store) Delete(ctx context.Context, kind string, entityID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE kind=? AND entity_id=?`, kind, entityID); err != nil {
		return fmt.Errorf("delete draft %s/%d: %w", kind, entityID, err)
	}
	return nil
}

// List returns all stored drafts, newest first, payloads included.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, entity_id, payload, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()
	var out []Draft
	for rows.Next() {
		var d Draft
		var ts string
		if err := rows.Scan(&d.Kind, &d.EntityID, &d.Payload, &ts); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Prune drops drafts not touched within keep. Returns the number removed.
func (s *Store) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-keep).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune drafts: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.Info("drafts pruned", slog.Int64("removed", n))
	}
	return n, nil
}
