// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import "github.com/charmbracelet/lipgloss"

// colorPalette defines the core colors used in the TUI.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal, the portal accent
	colorSpecial   = lipgloss.Color("208") // Orange for warnings
	colorError     = lipgloss.Color("203") // Soft red
	colorSuccess   = lipgloss.Color("71")  // Green
	colorInfo      = lipgloss.Color("147") // Pale blue for in-progress text
	colorWhite     = lipgloss.Color("231")
)

var (
	// General
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	// Help text and secondary lines
	helpStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	smallStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	warningStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	// Header card with the portal name
	mainTitleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	// Card headings
	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2).
			Width(76)

	linkStyle = lipgloss.NewStyle().Foreground(colorHighlight).Underline(true)

	// Form elements
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	labelStyle   = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.Color("237")). // Dark gray
			Padding(0, 3)

	activeButtonStyle = buttonStyle.
				Background(colorHighlight).
				Underline(true)

	// Status panel values
	statusOKStyle      = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	statusMissingStyle = lipgloss.NewStyle().Foreground(colorError)

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// statusTone selects the style for inline status lines.
type statusTone int

const (
	toneNone statusTone = iota
	toneInfo
	toneOK
	toneError
)

func (t statusTone) render(s string) string {
	switch t {
	case toneInfo:
		return infoStyle.Render(s)
	case toneOK:
		return successStyle.Render(s)
	case toneError:
		return errorStyle.Render(s)
	default:
		return s
	}
}
