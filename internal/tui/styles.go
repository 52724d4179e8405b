package tui

import "github.com/charmbracelet/lipgloss"

// ─── Colors ──────────────────────────────────────────────────────────────────

var (
	colorOverlay = lipgloss.Color("#6c7086") // Borders and hidden stickers
	colorText    = lipgloss.Color("#eceff4")
	colorSubtext = lipgloss.Color("#a6adc8")
	colorAccent  = lipgloss.Color("#f5a97f") // Sunrise orange
	colorGreen   = lipgloss.Color("#a6da95")
	colorPink    = lipgloss.Color("#f5bde6")
	colorRed     = lipgloss.Color("#ed8796")
	colorSky     = lipgloss.Color("#7dc4e4")
	colorGold    = lipgloss.Color("#eed49f")
	colorTeal    = lipgloss.Color("#8bd5ca")
)

// ─── Frame ───────────────────────────────────────────────────────────────────

var (
	appStyle  = lipgloss.NewStyle().Foreground(colorText).Padding(1, 2)
	helpStyle = lipgloss.NewStyle().Foreground(colorSubtext).MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorOverlay).
			PaddingBottom(1).
			MarginBottom(1)

	errorStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(colorTeal).PaddingLeft(2)
)

// ─── Dashboard ───────────────────────────────────────────────────────────────

var (
	statNumberStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Width(8).Align(lipgloss.Right)
	statLabelStyle  = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	statCardStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorOverlay).
			Padding(1, 2).
			MarginBottom(1)

	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorGold).MarginBottom(1)
	menuItemStyle     = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).PaddingLeft(1)
)

// ─── Sticker Lists ───────────────────────────────────────────────────────────

var (
	listItemStyle     = menuItemStyle
	listSelectedStyle = menuSelectedStyle

	idStyle        = lipgloss.NewStyle().Foreground(colorSky)
	tagStyle       = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	counterStyle   = lipgloss.NewStyle().Foreground(colorGold)
	blurredStyle   = lipgloss.NewStyle().Foreground(colorOverlay).Italic(true)
	timestampStyle = lipgloss.NewStyle().Foreground(colorSubtext).Italic(true)

	// Tags line under a list entry
	contentPreviewStyle = lipgloss.NewStyle().Foreground(colorSubtext).PaddingLeft(4)
	noResultsStyle      = lipgloss.NewStyle().Foreground(colorSubtext).Italic(true).PaddingLeft(2).MarginTop(1)
)

// ─── Detail and Search ───────────────────────────────────────────────────────

var (
	sectionHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGold).MarginTop(1).MarginBottom(1)
	detailLabelStyle    = lipgloss.NewStyle().Foreground(colorSubtext).Width(14).Align(lipgloss.Right).PaddingRight(1)
	detailValueStyle    = lipgloss.NewStyle().Foreground(colorText)

	searchInputStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorAccent).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)
