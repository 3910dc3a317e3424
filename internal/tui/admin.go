// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/internal/portal"
)

type adminConfigMsg struct {
	scoped
	cfg portal.AdminConfig
	err error
}

type uploadResultMsg struct {
	scoped
	res portal.UploadResult
	err error
}

type saveResultMsg struct {
	scoped
	err error
}

// Text inputs of the admin view.
const (
	fileInput = iota
	urlInput
	checksumInput
	packageInput
	receiverInput
	inputCount
)

// Focus slots in tab order. Buttons sit between the inputs they act on.
const (
	slotFile = iota
	slotUpload
	slotURL
	slotChecksum
	slotPackage
	slotReceiver
	slotSave
	slotCount
)

// slotInput maps a focus slot to its text input, or -1 for buttons.
var slotInput = [slotCount]int{fileInput, -1, urlInput, checksumInput, packageInput, receiverInput, -1}

// adminModel manages the package upload and the provisioning parameters.
type adminModel struct {
	deps    *deps
	scope   *scope
	keys    adminKeyMap
	spinner spinner.Model
	loading bool

	// status is derived from the configuration as fetched, not from the
	// form fields.
	status portal.Status
	inputs []textinput.Model
	focus  int

	picker *apkPicker
	width  int
	height int

	uploading    bool
	uploadStatus string
	uploadTone   statusTone
	detected     string

	saving     bool
	saveStatus string
	saveTone   statusTone
}

func newAdminModel(d *deps, s *scope) *adminModel {
	m := &adminModel{
		deps:    d,
		scope:   s,
		keys:    newAdminKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
		inputs:  make([]textinput.Model, inputCount),
	}
	for i := range m.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.Cursor.SetMode(cursor.CursorStatic)
		t.CharLimit = 512
		t.Width = 56
		switch i {
		case fileInput:
			t.Placeholder = "/pad/naar/vastelijn.apk"
		case urlInput:
			t.Placeholder = "https://jouw-domein.nl/api/public/apk"
		case checksumInput:
			t.Placeholder = "ABC123...="
		}
		t.Prompt = "> "
		m.inputs[i] = t
	}
	return m
}

// Init fetches the configuration. Everything the view shows comes from this
// fetch; nothing survives from a previous mount.
func (m *adminModel) Init() tea.Cmd {
	c, ctx, tag := m.deps.client, m.scope.ctx, m.scope.tag()
	fetch := func() tea.Msg {
		cfg, err := c.AdminConfig(ctx)
		return adminConfigMsg{scoped: tag, cfg: cfg, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *adminModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case adminConfigMsg:
		if msg.err != nil && client.IsAuthFailure(msg.err) {
			return m, m.dropCredential(loginView)
		}
		if msg.err != nil {
			// Render as "not configured yet" rather than failing the view.
			logging.Warnf("admin: loading configuration failed: %v", msg.err)
			msg.cfg = portal.AdminConfig{}
		}
		m.loading = false
		m.status = portal.StatusOf(msg.cfg)
		filled := m.deps.defaults.Apply(msg.cfg)
		m.inputs[urlInput].SetValue(filled.APKURL)
		m.inputs[checksumInput].SetValue(filled.Checksum)
		m.inputs[packageInput].SetValue(filled.PackageName)
		m.inputs[receiverInput].SetValue(filled.AdminReceiver)
		return m, m.setFocus(slotFile)

	case uploadResultMsg:
		m.uploading = false
		if msg.err != nil {
			m.uploadStatus, m.uploadTone = i18n.T("common.error", msg.err.Error()), toneError
			return m, nil
		}
		m.uploadStatus, m.uploadTone = msg.res.Message, toneOK
		if m.uploadStatus == "" {
			m.uploadStatus = i18n.T("admin.uploaded")
		}
		if msg.res.CertChecksum != "" {
			m.inputs[checksumInput].SetValue(msg.res.CertChecksum)
		}
		m.detected = msg.res.PackageName
		return m, m.scope.navigateAfter(m.deps.uploadReload, adminView)

	case saveResultMsg:
		m.saving = false
		if msg.err != nil {
			m.saveStatus, m.saveTone = i18n.T("common.error", msg.err.Error()), toneError
			return m, nil
		}
		m.saveStatus, m.saveTone = i18n.T("admin.saved"), toneOK
		return m, m.scope.navigateAfter(m.deps.saveReload, adminView)

	case pickedMsg:
		m.picker = nil
		m.inputs[fileInput].SetValue(msg.path)
		return m, m.setFocus(slotUpload)

	case pickerClosedMsg:
		m.picker = nil
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.picker != nil {
			m.picker.setSize(msg.Width, msg.Height)
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
		if m.loading {
			return m, nil
		}
		if m.picker != nil {
			return m, m.picker.Update(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Public):
			return m, m.scope.navigate(publicView)
		case key.Matches(msg, m.keys.Logout):
			return m, m.dropCredential(publicView)
		case key.Matches(msg, m.keys.Picker):
			m.picker = newAPKPicker(m.pickerDir())
			m.picker.setSize(m.width, m.height)
			return m, nil
		case key.Matches(msg, m.keys.Upload):
			return m, m.upload()
		case key.Matches(msg, m.keys.Save):
			return m, m.save()
		case key.Matches(msg, m.keys.Enter):
			switch m.focus {
			case slotUpload:
				return m, m.upload()
			case slotSave:
				return m, m.save()
			}
			return m, m.setFocus((m.focus + 1) % slotCount)
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % slotCount)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + slotCount - 1) % slotCount)
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// dropCredential clears the stored token and then mounts v.
func (m *adminModel) dropCredential(v viewState) tea.Cmd {
	store, ctx, tag := m.deps.store, m.scope.ctx, m.scope.tag()
	return func() tea.Msg {
		if err := store.Clear(ctx); err != nil {
			logging.Warnf("admin: clearing credential failed: %v", err)
		}
		return navigateMsg{scoped: tag, to: v}
	}
}

func (m *adminModel) pickerDir() string {
	if p := strings.TrimSpace(m.inputs[fileInput].Value()); p != "" {
		return filepath.Dir(p)
	}
	return m.deps.startDir
}

func (m *adminModel) setFocus(slot int) tea.Cmd {
	m.focus = slot
	var cmd tea.Cmd
	for i := range m.inputs {
		if slotInput[slot] == i {
			cmd = m.inputs[i].Focus()
			m.inputs[i].TextStyle = focusedStyle
			continue
		}
		m.inputs[i].Blur()
		m.inputs[i].TextStyle = lipgloss.NewStyle()
	}
	return cmd
}

// upload sends the selected package. Without a selection nothing is sent.
func (m *adminModel) upload() tea.Cmd {
	if m.uploading {
		return nil
	}
	path := strings.TrimSpace(m.inputs[fileInput].Value())
	if path == "" {
		m.uploadStatus, m.uploadTone = i18n.T("admin.no_file"), toneError
		return nil
	}
	m.uploading = true
	m.uploadStatus, m.uploadTone = i18n.T("admin.uploading"), toneInfo
	m.detected = ""

	c, open, ctx, tag := m.deps.client, m.deps.openFile, m.scope.ctx, m.scope.tag()
	return func() tea.Msg {
		f, err := open(path)
		if err != nil {
			return uploadResultMsg{scoped: tag, err: err}
		}
		defer f.Close()
		res, err := c.UploadAPK(ctx, filepath.Base(path), f)
		if err != nil {
			logging.Warnf("admin: upload of %s failed: %v", path, err)
		} else {
			logging.Infof("admin: uploaded %s", res.Filename)
		}
		return uploadResultMsg{scoped: tag, res: res, err: err}
	}
}

// save persists the four fields. Blank fields are sent as null.
func (m *adminModel) save() tea.Cmd {
	if m.saving {
		return nil
	}
	update := portal.NewConfigUpdate(
		m.inputs[urlInput].Value(),
		m.inputs[checksumInput].Value(),
		m.inputs[packageInput].Value(),
		m.inputs[receiverInput].Value(),
	)
	m.saving = true
	m.saveStatus, m.saveTone = i18n.T("admin.saving"), toneInfo

	c, ctx, tag := m.deps.client, m.scope.ctx, m.scope.tag()
	return func() tea.Msg {
		_, err := c.SaveConfig(ctx, update)
		return saveResultMsg{scoped: tag, err: err}
	}
}

func (m *adminModel) KeyMap() help.KeyMap {
	if m.picker != nil {
		return m.picker.keys
	}
	return m.keys
}

func (m *adminModel) View() string {
	head := header(i18n.T("admin.title"), i18n.T("admin.subtitle"),
		buttonStyle.Render("ctrl+p "+i18n.T("admin.key.public"))+" "+buttonStyle.Render("ctrl+l "+i18n.T("admin.key.logout")))

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, head, cardStyle.Render(m.spinner.View()+" "+i18n.T("common.loading")))
	}
	if m.picker != nil {
		return lipgloss.JoinVertical(lipgloss.Left, head, m.picker.View())
	}

	upload := []string{
		titleStyle.Render(i18n.T("admin.upload_title")),
		smallStyle.Render(i18n.T("admin.upload_hint")),
		"",
		m.field(fileInput, i18n.T("admin.file")+" (ctrl+o)", ""),
		m.button(slotUpload, i18n.T("admin.upload_button")),
	}
	if m.uploadStatus != "" {
		upload = append(upload, "", m.uploadTone.render(m.uploadStatus))
	}
	if m.detected != "" {
		upload = append(upload, smallStyle.Render(i18n.T("admin.package_detected", m.detected)))
	}

	form := []string{
		titleStyle.Render(i18n.T("admin.config_title")),
		m.field(urlInput, i18n.T("admin.apk_url"), i18n.T("admin.apk_url_hint")),
		m.field(checksumInput, i18n.T("admin.checksum"), i18n.T("admin.checksum_hint")),
		m.field(packageInput, i18n.T("admin.package_name"), ""),
		m.field(receiverInput, i18n.T("admin.admin_receiver"), ""),
		m.button(slotSave, i18n.T("admin.save_button")),
	}
	if m.saveStatus != "" {
		form = append(form, "", m.saveTone.render(m.saveStatus))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		head,
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, upload...)),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, form...)),
		cardStyle.Render(m.statusPanel()),
	)
}

func (m *adminModel) field(i int, label, hint string) string {
	lines := []string{labelStyle.Render(label), m.inputs[i].View()}
	if hint != "" {
		lines = append(lines, smallStyle.Render(hint))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m *adminModel) button(slot int, label string) string {
	if m.focus == slot {
		return activeButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

// statusPanel renders the four read-only indicators.
func (m *adminModel) statusPanel() string {
	st := m.status
	file := i18n.T("admin.status.not_uploaded")
	if st.APKUploaded {
		file = st.APKFilename
	}
	rows := []string{
		titleStyle.Render(i18n.T("admin.status_title")),
		statusRow(i18n.T("admin.status.file"), file, st.APKUploaded),
		statusRow(i18n.T("admin.status.url"), setLabel(st.URLSet), st.URLSet),
		statusRow(i18n.T("admin.status.checksum"), setLabel(st.ChecksumSet), st.ChecksumSet),
		statusRow(i18n.T("admin.status.qr_ready"), yesNo(st.QRReady), st.QRReady),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func statusRow(label, value string, ok bool) string {
	style := statusMissingStyle
	if ok {
		style = statusOKStyle
	}
	return fmt.Sprintf("%s %s", lipgloss.NewStyle().Width(14).Render(label+":"), style.Render(value))
}

func setLabel(ok bool) string {
	if ok {
		return i18n.T("common.set")
	}
	return i18n.T("common.not_set")
}

func yesNo(ok bool) string {
	if ok {
		return i18n.T("common.answer_yes")
	}
	return i18n.T("common.answer_no")
}
