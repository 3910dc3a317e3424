// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
)

// loginResultMsg is the outcome of a login attempt. The token has already
// been stored when err is nil.
type loginResultMsg struct {
	scoped
	err error
}

const (
	emailField = iota
	passwordField
	loginButton
)

// loginModel exchanges credentials for a bearer token.
type loginModel struct {
	deps       *deps
	scope      *scope
	keys       loginKeyMap
	focusIndex int
	inputs     []textinput.Model // 0: email, 1: password
	submitting bool
	err        string
}

func newLoginModel(d *deps, s *scope) *loginModel {
	m := &loginModel{deps: d, scope: s, keys: newLoginKeyMap(), inputs: make([]textinput.Model, 2)}
	for i := range m.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.Cursor.SetMode(cursor.CursorStatic)
		t.CharLimit = 128
		t.Width = 40
		switch i {
		case emailField:
			t.Prompt = padLabel(i18n.T("login.email"), 14)
			t.Placeholder = "admin@vastelijn.nl"
		case passwordField:
			t.Prompt = padLabel(i18n.T("login.password"), 14)
			t.Placeholder = "••••••••"
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}
	m.inputs[emailField].Focus()
	m.inputs[emailField].TextStyle = focusedStyle
	return m
}

func (m *loginModel) Init() tea.Cmd { return nil }

func (m *loginModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			// Backend text is shown as is; the fields keep their values.
			m.err = msg.err.Error()
			return m, nil
		}
		return m, m.scope.navigate(adminView)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, m.scope.navigate(publicView)
		case key.Matches(msg, m.keys.Submit):
			if m.focusIndex == emailField {
				return m, m.setFocus(passwordField)
			}
			return m, m.submit()
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focusIndex + 1) % (len(m.inputs) + 1))
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focusIndex + len(m.inputs)) % (len(m.inputs) + 1))
		}
	}

	// Handle character input
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *loginModel) setFocus(i int) tea.Cmd {
	m.focusIndex = i
	cmds := make([]tea.Cmd, len(m.inputs))
	for j := range m.inputs {
		if j == i {
			cmds[j] = m.inputs[j].Focus()
			m.inputs[j].TextStyle = focusedStyle
			continue
		}
		m.inputs[j].Blur()
		m.inputs[j].TextStyle = lipgloss.NewStyle()
	}
	return tea.Batch(cmds...)
}

// submit posts the credentials. A second submit while one is in flight is
// ignored.
func (m *loginModel) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.err = ""
	email := m.inputs[emailField].Value()
	password := m.inputs[passwordField].Value()
	c, store, ctx, tag := m.deps.client, m.deps.store, m.scope.ctx, m.scope.tag()
	return func() tea.Msg {
		res, err := c.Login(ctx, email, password)
		if err == nil {
			err = store.Save(ctx, res.AccessToken)
		}
		if err != nil {
			logging.Infof("login failed for %s: %v", email, err)
		} else {
			logging.Infof("logged in as %s", email)
		}
		return loginResultMsg{scoped: tag, err: err}
	}
}

func (m *loginModel) KeyMap() help.KeyMap { return m.keys }

func (m *loginModel) View() string {
	button := buttonStyle.Render(i18n.T("login.button"))
	if m.focusIndex == loginButton {
		button = activeButtonStyle.Render(i18n.T("login.button"))
	}

	body := []string{
		titleStyle.Render(i18n.T("login.heading")),
		m.inputs[emailField].View(),
		m.inputs[passwordField].View(),
		"",
		button,
	}
	if m.submitting {
		body = append(body, "", infoStyle.Render(i18n.T("login.submitting")))
	}
	if m.err != "" {
		body = append(body, "", errorStyle.Render(m.err))
	}
	body = append(body, "", smallStyle.Render(i18n.T("login.register_hint")))

	return lipgloss.JoinVertical(lipgloss.Left,
		header(i18n.T("login.title"), i18n.T("login.subtitle"), buttonStyle.Render("[esc] "+i18n.T("login.key.back"))),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body...)),
	)
}

// padLabel renders a form label padded to a fixed width, ending in ": ".
func padLabel(label string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(label+":") + " "
}
