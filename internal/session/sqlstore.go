// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNoOrigin is returned when a SQLStore is opened without an origin.
var ErrNoOrigin = errors.New("session: origin is required")

// sqlOpenFunc allows tests to replace sql.Open.
var sqlOpenFunc = sql.Open

type credentialModel struct {
	bun.BaseModel `bun:"table:credentials"`
	Origin        string    `bun:"origin,pk"`
	Token         string    `bun:"token,notnull"`
	SavedAt       time.Time `bun:"saved_at,notnull"`
}

// SQLStore persists the credential in a SQLite file, one row per origin.
type SQLStore struct {
	db     *bun.DB
	origin string
}

// OpenSQLStore opens (or creates) the credential database at path and scopes
// all operations to origin. Use ":memory:" for a throwaway database.
func OpenSQLStore(ctx context.Context, path, origin string) (*SQLStore, error) {
	if origin == "" {
		return nil, ErrNoOrigin
	}
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("could not create session directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sqlOpenFunc("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers.
	sqlDB.SetMaxOpenConns(1)

	bdb := bun.NewDB(sqlDB, sqlitedialect.New())
	if _, err := bdb.NewCreateTable().Model((*credentialModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}
	if path != ":memory:" {
		_ = os.Chmod(path, 0o600)
	}
	return &SQLStore{db: bdb, origin: origin}, nil
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, token string) error {
	m := &credentialModel{Origin: s.origin, Token: token, SavedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().Model(m).
		On("CONFLICT (origin) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("saved_at = EXCLUDED.saved_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context) (string, error) {
	var m credentialModel
	err := s.db.NewSelect().Model(&m).Where("origin = ?", s.origin).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return m.Token, nil
}

// Clear implements Store.
func (s *SQLStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().Model((*credentialModel)(nil)).Where("origin = ?", s.origin).Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Origin reports the origin this store is scoped to.
func (s *SQLStore) Origin() string { return s.origin }

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }
