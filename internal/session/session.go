// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session holds the bearer credential between runs. It is the only
// code that touches the credential storage; the API client and views receive
// a Store and never reach the storage directly.
package session

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Store keeps a single bearer token. Get returns "" when nothing is stored.
// Expiry is never tracked locally; the backend rejecting a request is the only
// signal that a token is no longer valid.
type Store interface {
	Save(ctx context.Context, token string) error
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// Origin returns the scheme://host[:port] of an API base. Credentials are
// scoped to it so tokens for one portal are never sent to another. Relative
// bases (same origin as whatever serves the client) map to "local".
func Origin(base string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "local"
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
