// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the terminal user interface of the portal client.
// This file, tui.go, holds the top-level model. It mounts exactly one of the
// public, login and admin views at a time and routes messages to it.
package tui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/qr"
	"github.com/vastelijn/portal/internal/session"
)

// viewState represents which view is mounted.
type viewState int

const (
	noView viewState = iota
	publicView
	loginView
	adminView
)

func (v viewState) String() string {
	switch v {
	case publicView:
		return "public"
	case loginView:
		return "login"
	case adminView:
		return "admin"
	default:
		return "none"
	}
}

// Options wires the TUI to its collaborators. Zero values fall back to the
// built-in defaults.
type Options struct {
	Client  client.Client
	Session session.Store
	Route   Route

	QREndpoint string
	QRSize     int

	UploadReload time.Duration
	SaveReload   time.Duration

	Defaults portal.Defaults

	// Clipboard copies text for the public view's copy actions.
	Clipboard func(string) error
	// OpenFile opens the package chosen for upload.
	OpenFile func(path string) (io.ReadCloser, error)
	// StartDir is where the file picker starts browsing.
	StartDir string
}

// deps is the read-only state shared by every view.
type deps struct {
	client       client.Client
	store        session.Store
	qrEndpoint   string
	qrSize       int
	uploadReload time.Duration
	saveReload   time.Duration
	defaults     portal.Defaults
	clipboard    func(string) error
	openFile     func(string) (io.ReadCloser, error)
	startDir     string
}

func newDeps(o Options) *deps {
	d := &deps{
		client:       o.Client,
		store:        o.Session,
		qrEndpoint:   o.QREndpoint,
		qrSize:       o.QRSize,
		uploadReload: o.UploadReload,
		saveReload:   o.SaveReload,
		defaults:     o.Defaults,
		clipboard:    o.Clipboard,
		openFile:     o.OpenFile,
		startDir:     o.StartDir,
	}
	if d.store == nil {
		d.store = session.NewMemoryStore()
	}
	if d.qrEndpoint == "" {
		d.qrEndpoint = qr.DefaultEndpoint
	}
	if d.qrSize <= 0 {
		d.qrSize = qr.DefaultSize
	}
	if d.uploadReload <= 0 {
		d.uploadReload = 2 * time.Second
	}
	if d.saveReload <= 0 {
		d.saveReload = 1500 * time.Millisecond
	}
	if d.defaults == (portal.Defaults{}) {
		d.defaults = portal.DefaultValues
	}
	if d.clipboard == nil {
		d.clipboard = clipboard.WriteAll
	}
	if d.openFile == nil {
		d.openFile = func(p string) (io.ReadCloser, error) { return os.Open(p) }
	}
	return d
}

// screen is a mounted view.
type screen interface {
	Init() tea.Cmd
	Update(tea.Msg) (screen, tea.Cmd)
	View() string
	KeyMap() help.KeyMap
}

// mainModel is the top-level model. It acts as the view renderer: mounting a
// view discards the previous one together with its scope.
type mainModel struct {
	ctx     context.Context
	deps    *deps
	route   Route
	booting bool
	state   viewState
	current screen
	scope   *scope
	help    help.Model
	width   int
	height  int
}

// NewModel returns the root model. The view is chosen by the boot sequence
// once the program starts.
func NewModel(ctx context.Context, o Options) tea.Model {
	return newMainModel(ctx, o)
}

func newMainModel(ctx context.Context, o Options) *mainModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &mainModel{
		ctx:     ctx,
		deps:    newDeps(o),
		route:   o.Route,
		booting: true,
		help:    help.New(),
	}
}

// Init starts the boot sequence.
func (m *mainModel) Init() tea.Cmd {
	return bootCmd(m.ctx, m.deps.client, m.route)
}

// mount replaces the current view with a fresh instance of v.
func (m *mainModel) mount(v viewState) tea.Cmd {
	if m.scope != nil {
		m.scope.close()
	}
	m.scope = newScope(m.ctx)
	m.state = v
	switch v {
	case loginView:
		m.current = newLoginModel(m.deps, m.scope)
	case adminView:
		m.current = newAdminModel(m.deps, m.scope)
	default:
		m.state = publicView
		m.current = newPublicModel(m.deps, m.scope)
	}
	logging.Debugf("tui: mounted %s view (scope %s)", m.state, m.scope.id)
	cmd := m.current.Init()
	if m.width > 0 {
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		m.current, _ = m.current.Update(size)
	}
	return cmd
}

// Update routes messages. Messages from a scope that is no longer mounted are
// dropped before they reach any view.
func (m *mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.scope != nil {
				m.scope.close()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case bootDecidedMsg:
		if !m.booting {
			return m, nil
		}
		m.booting = false
		return m, m.mount(msg.to)
	case scopedMsg:
		if m.scope == nil || msg.scopeID() != m.scope.id {
			logging.Debugf("tui: dropped %T from a replaced view", msg)
			return m, nil
		}
		if nav, ok := msg.(navigateMsg); ok {
			return m, m.mount(nav.to)
		}
	}

	if m.current == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

func (m *mainModel) View() string {
	if m.current == nil {
		return docStyle.Render(i18n.T("common.loading"))
	}
	width := m.width - 4
	if width <= 0 {
		width = 80
	}
	footer := footerStyle.Render(AlignFooter(m.help.View(m.current.KeyMap()), "", width))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.current.View(), "", footer))
}

// Run starts the interactive program on the terminal.
func Run(ctx context.Context, o Options) error {
	p := tea.NewProgram(newMainModel(ctx, o), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		return err
	}
	return nil
}

// header renders the title card shared by all views.
func header(title, subtitle, action string) string {
	left := lipgloss.JoinVertical(lipgloss.Left, mainTitleStyle.Render(title), smallStyle.Render(subtitle))
	if action == "" {
		return cardStyle.Render(left)
	}
	inner := cardStyle.GetWidth() - 4
	gap := inner - lipgloss.Width(left) - lipgloss.Width(action)
	if gap < 1 {
		gap = 1
	}
	return cardStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), action))
}
