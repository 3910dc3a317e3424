// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vastelijn/portal/internal/i18n"
)

// apkPicker browses the local filesystem for a package to upload. Only
// directories and files with the wanted extension are listed.
type apkPicker struct {
	dir      string
	ext      string
	entries  []os.DirEntry
	selected int
	err      error
	vp       viewport.Model
	keys     pickerKeyMap
}

// pickedMsg is emitted when a file was chosen.
type pickedMsg struct{ path string }

// pickerClosedMsg is emitted when the picker was dismissed without a choice.
type pickerClosedMsg struct{}

func newAPKPicker(dir string) *apkPicker {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	p := &apkPicker{dir: dir, ext: ".apk", vp: viewport.New(60, 10), keys: newPickerKeyMap()}
	p.load()
	return p
}

// load reads the current directory. Directories sort before files.
func (p *apkPicker) load() {
	entries, err := os.ReadDir(p.dir)
	p.err = err
	p.entries = p.entries[:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.IsDir() && !strings.EqualFold(filepath.Ext(e.Name()), p.ext) {
			continue
		}
		p.entries = append(p.entries, e)
	}
	sort.Slice(p.entries, func(i, j int) bool {
		if p.entries[i].IsDir() != p.entries[j].IsDir() {
			return p.entries[i].IsDir()
		}
		return p.entries[i].Name() < p.entries[j].Name()
	})
	p.selected = 0
	p.vp.GotoTop()
}

func (p *apkPicker) setSize(width, height int) {
	if width > 10 {
		p.vp.Width = min(width-6, 70)
	}
	if height > 12 {
		p.vp.Height = min(height-12, 20)
	}
}

func (p *apkPicker) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(k, p.keys.Close):
		return func() tea.Msg { return pickerClosedMsg{} }
	case key.Matches(k, p.keys.Up):
		if p.selected > 0 {
			p.selected--
			if p.selected < p.vp.YOffset {
				p.vp.LineUp(1)
			}
		}
	case key.Matches(k, p.keys.Down):
		if p.selected < len(p.entries)-1 {
			p.selected++
			if p.selected >= p.vp.YOffset+p.vp.Height {
				p.vp.LineDown(1)
			}
		}
	case key.Matches(k, p.keys.Parent):
		if parent := filepath.Dir(p.dir); parent != p.dir {
			p.dir = parent
			p.load()
		}
	case key.Matches(k, p.keys.Open):
		if p.selected >= len(p.entries) {
			return nil
		}
		e := p.entries[p.selected]
		full := filepath.Join(p.dir, e.Name())
		if e.IsDir() {
			p.dir = full
			p.load()
			return nil
		}
		return func() tea.Msg { return pickedMsg{path: full} }
	}
	return nil
}

func (p *apkPicker) View() string {
	header := titleStyle.Render(i18n.T("admin.picker_title")) + "\n" + labelStyle.Render(p.dir)

	var lines []string
	if p.err != nil {
		lines = append(lines, errorStyle.Render(p.err.Error()))
	}
	for i, e := range p.entries {
		name := e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		if i == p.selected {
			lines = append(lines, focusedStyle.Render("> "+name))
			continue
		}
		lines = append(lines, "  "+name)
	}
	if len(lines) == 0 {
		lines = append(lines, helpStyle.Render("(*"+p.ext+")"))
	}
	p.vp.SetContent(strings.Join(lines, "\n"))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", p.vp.View()))
}
