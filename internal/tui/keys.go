// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/vastelijn/portal/internal/i18n"
)

// Key bindings are built on demand so help text follows the active language.

type publicKeyMap struct {
	Login        key.Binding
	CopyQR       key.Binding
	CopyJSON     key.Binding
	CopyDownload key.Binding
	Quit         key.Binding
}

func newPublicKeyMap() publicKeyMap {
	return publicKeyMap{
		Login:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", i18n.T("public.key.login"))),
		CopyQR:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", i18n.T("public.key.copy_qr"))),
		CopyJSON:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", i18n.T("public.key.copy_json"))),
		CopyDownload: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", i18n.T("public.key.copy_download"))),
		Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", i18n.T("help.quit"))),
	}
}

func (k publicKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Login, k.CopyQR, k.CopyJSON, k.CopyDownload, k.Quit}
}

func (k publicKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type loginKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Back   key.Binding
}

func newLoginKeyMap() loginKeyMap {
	return loginKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", i18n.T("login.key.next"))),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", i18n.T("login.key.submit"))),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", i18n.T("login.key.back"))),
	}
}

func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Back}
}

func (k loginKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type adminKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Enter  key.Binding
	Picker key.Binding
	Upload key.Binding
	Save   key.Binding
	Public key.Binding
	Logout key.Binding
}

func newAdminKeyMap() adminKeyMap {
	return adminKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", i18n.T("login.key.next"))),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
		Enter:  key.NewBinding(key.WithKeys("enter")),
		Picker: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", i18n.T("admin.key.picker"))),
		Upload: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", i18n.T("admin.key.upload"))),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", i18n.T("admin.key.save"))),
		Public: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", i18n.T("admin.key.public"))),
		Logout: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", i18n.T("admin.key.logout"))),
	}
}

func (k adminKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Picker, k.Upload, k.Save, k.Public, k.Logout}
}

func (k adminKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Parent key.Binding
	Close  key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Open:   key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "ok")),
		Parent: key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("←", "..")),
		Close:  key.NewBinding(key.WithKeys("esc", "ctrl+o"), key.WithHelp("esc", i18n.T("help.close"))),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Open, k.Parent, k.Close} }

func (k pickerKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
