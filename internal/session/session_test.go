// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	tok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "first"))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", tok)

	require.NoError(t, s.Save(ctx, "second"))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", tok)

	require.NoError(t, s.Clear(ctx))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	// Clearing an empty store is not an error.
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLStore_InMemory(t *testing.T) {
	s, err := OpenSQLStore(context.Background(), ":memory:", "https://portal.example")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := OpenSQLStore(ctx, path, "https://portal.example")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "tok-1"))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err = OpenSQLStore(ctx, path, "https://portal.example")
	require.NoError(t, err)
	defer s.Close()
	tok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestSQLStore_ScopedByOrigin(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	a, err := OpenSQLStore(ctx, path, "https://a.example")
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, "token-a"))
	require.NoError(t, a.Close())

	b, err := OpenSQLStore(ctx, path, "https://b.example")
	require.NoError(t, err)
	defer b.Close()
	tok, err := b.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "a token saved for one origin must not leak to another")

	require.NoError(t, b.Save(ctx, "token-b"))
	require.NoError(t, b.Clear(ctx))

	a, err = OpenSQLStore(ctx, path, "https://a.example")
	require.NoError(t, err)
	defer a.Close()
	tok, err = a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-a", tok, "clearing one origin must not touch another")
}

func TestOpenSQLStore_Errors(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), ":memory:", "")
	assert.ErrorIs(t, err, ErrNoOrigin)

	orig := sqlOpenFunc
	defer func() { sqlOpenFunc = orig }()
	sqlOpenFunc = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	_, err = OpenSQLStore(context.Background(), ":memory:", "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestOrigin(t *testing.T) {
	cases := map[string]string{
		"https://Portal.VasteLijn.eu/api": "https://portal.vastelijn.eu",
		"http://localhost:8000/api/":      "http://localhost:8000",
		"/api":                            "local",
		"":                                "local",
		"  https://x.example  ":           "https://x.example",
	}
	for in, want := range cases {
		assert.Equal(t, want, Origin(in), "Origin(%q)", in)
	}
}
