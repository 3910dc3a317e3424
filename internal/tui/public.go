// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/qr"
)

// provisioningMsg carries the result of the public provisioning fetch.
type provisioningMsg struct {
	scoped
	prov portal.Provisioning
	err  error
}

// copiedMsg reports a clipboard copy.
type copiedMsg struct {
	scoped
	what string
	err  error
}

// publicModel shows the provisioning QR link and instructions to anyone.
type publicModel struct {
	deps    *deps
	scope   *scope
	keys    publicKeyMap
	spinner spinner.Model
	loading bool
	prov    portal.Provisioning
	err     error
	notice  string
	tone    statusTone
}

func newPublicModel(d *deps, s *scope) *publicModel {
	return &publicModel{
		deps:    d,
		scope:   s,
		keys:    newPublicKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
}

// Init fetches the provisioning state exactly once for this mount.
func (m *publicModel) Init() tea.Cmd {
	c, ctx, tag := m.deps.client, m.scope.ctx, m.scope.tag()
	fetch := func() tea.Msg {
		p, err := c.PublicProvisioning(ctx)
		return provisioningMsg{scoped: tag, prov: p, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *publicModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case provisioningMsg:
		m.loading = false
		m.prov, m.err = msg.prov, msg.err
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.notice, m.tone = i18n.T("public.copy_failed", msg.err.Error()), toneError
		} else {
			m.notice, m.tone = i18n.T("public.copied", msg.what), toneOK
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Login):
			return m, m.scope.navigate(loginView)
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.CopyQR):
			if link := m.qrImageURL(); link != "" {
				return m, m.copy(i18n.T("public.qr_image"), link)
			}
		case key.Matches(msg, m.keys.CopyJSON):
			if m.showsQR() {
				return m, m.copy("QR JSON", m.prov.QRJSON)
			}
		case key.Matches(msg, m.keys.CopyDownload):
			if m.showsQR() {
				return m, m.copy(i18n.T("public.download_title"), m.deps.client.APKURL())
			}
		}
	}
	return m, nil
}

func (m *publicModel) copy(what, text string) tea.Cmd {
	write, tag := m.deps.clipboard, m.scope.tag()
	return func() tea.Msg {
		return copiedMsg{scoped: tag, what: what, err: write(text)}
	}
}

// showsQR reports whether the configured content (QR, download) is shown.
func (m *publicModel) showsQR() bool {
	return !m.loading && m.err == nil && m.prov.Configured
}

// qrImageURL is the external renderer link for the QR payload, or "" when
// no QR may be shown.
func (m *publicModel) qrImageURL() string {
	if !m.showsQR() {
		return ""
	}
	return qr.ImageURL(m.deps.qrEndpoint, m.prov.QRJSON, m.deps.qrSize)
}

func (m *publicModel) KeyMap() help.KeyMap { return m.keys }

func (m *publicModel) View() string {
	parts := []string{header(i18n.T("app.name"), i18n.T("app.subtitle"), buttonStyle.Render("[a] "+i18n.T("public.admin_login")))}

	switch {
	case m.loading:
		parts = append(parts, cardStyle.Render(m.spinner.View()+" "+i18n.T("common.loading")))

	case m.err != nil:
		parts = append(parts, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(i18n.T("public.load_failed")),
			errorStyle.Render(m.err.Error()),
		)))

	case !m.prov.Configured:
		parts = append(parts, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(i18n.T("public.not_configured_title")),
			smallStyle.Render(m.prov.Message),
			smallStyle.Render(i18n.T("public.not_configured_hint")),
		)))

	default:
		parts = append(parts,
			cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(i18n.T("public.scan_title")),
				smallStyle.Render(i18n.T("public.scan_hint")),
			)),
			// Links stay outside the cards so they are never wrapped.
			labelStyle.Render(i18n.T("public.qr_image")+": ")+linkStyle.Render(m.qrImageURL()),
			cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(i18n.T("public.instructions_title")),
				strings.Join(m.prov.Instructions, "\n"),
				"",
				warningStyle.Render(i18n.T("public.backup_warning")),
			)),
			cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(i18n.T("public.troubleshoot_title")),
				smallStyle.Render(troubleshooting()),
			)),
			cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(i18n.T("public.download_title")),
				smallStyle.Render(i18n.T("public.download_hint")),
			)),
			labelStyle.Render(i18n.T("common.download")+": ")+linkStyle.Render(m.deps.client.APKURL()),
		)
	}

	if m.notice != "" {
		parts = append(parts, m.tone.render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func troubleshooting() string {
	items := []string{
		i18n.T("public.troubleshoot.scanner"),
		i18n.T("public.troubleshoot.wifi"),
		i18n.T("public.troubleshoot.install"),
		i18n.T("public.troubleshoot.device_owner"),
	}
	for i, it := range items {
		items[i] = "• " + it
	}
	return strings.Join(items, "\n")
}
