package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the dashboard.
var (
	colorPrimary = lipgloss.Color("35")  // Green
	colorMuted   = lipgloss.Color("240") // Gray
	colorAccent  = lipgloss.Color("214") // Amber
	colorError   = lipgloss.Color("196") // Red
	colorText    = lipgloss.Color("255")
)

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	Padding(0, 1)

var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorPrimary).
	Padding(0, 1)

var InactiveTab = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

var LabelStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

var ValueStyle = lipgloss.NewStyle().
	Foreground(colorText).
	Bold(true)

// DemoBadge marks results synthesized while offline.
var DemoBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorAccent).
	Padding(0, 1)

var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true)

// InfoStyle is for non-fatal notices from the server.
var InfoStyle = lipgloss.NewStyle().
	Foreground(colorAccent)

var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	MarginTop(1)

var SelectedItem = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Bold(true)
