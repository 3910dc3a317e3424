// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// scope is the lifetime of one mounted view. Requests started by the view use
// ctx and are cancelled when the view is replaced; every message the view
// schedules carries id so the root can drop it once the scope is gone.
type scope struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

func newScope(parent context.Context) *scope {
	ctx, cancel := context.WithCancel(parent)
	return &scope{id: uuid.New(), ctx: ctx, cancel: cancel}
}

func (s *scope) close() { s.cancel() }

func (s *scope) tag() scoped { return scoped{id: s.id} }

// navigate returns a command that asks the root to mount v.
func (s *scope) navigate(v viewState) tea.Cmd {
	tag := s.tag()
	return func() tea.Msg { return navigateMsg{scoped: tag, to: v} }
}

// navigateAfter schedules a navigation. It is dropped if the scope has been
// replaced by the time it fires.
func (s *scope) navigateAfter(d time.Duration, v viewState) tea.Cmd {
	tag := s.tag()
	return tea.Tick(d, func(time.Time) tea.Msg { return navigateMsg{scoped: tag, to: v} })
}

// scoped is embedded in every message that belongs to a mount.
type scoped struct{ id uuid.UUID }

func (s scoped) scopeID() uuid.UUID { return s.id }

type scopedMsg interface {
	scopeID() uuid.UUID
}

// navigateMsg replaces the mounted view. Navigating to the current view
// remounts it, which re-fetches everything it shows.
type navigateMsg struct {
	scoped
	to viewState
}
