package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette — calm, readable, desk-lamp warm
var (
	Primary   = lipgloss.Color("#7C9E6F") // Sage Green
	Secondary = lipgloss.Color("#5B8DB8") // Steel Blue
	Accent    = lipgloss.Color("#D9A441") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#E25D5D") // Soft Red
	Text      = lipgloss.Color("#ECEAE4") // Paper White
	TextDim   = lipgloss.Color("#8D8B85") // Warm Gray
	BgDark    = lipgloss.Color("#1C1B18") // Ink
	BgCard    = lipgloss.Color("#272520") // Card
	Border    = lipgloss.Color("#3C3A33") // Hairline
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Dialog roles
var (
	AssistantLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	UserLabel = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	NoticeText = lipgloss.NewStyle().
			Foreground(Error).
			Italic(true)

	CodeBlock = lipgloss.NewStyle().
			Background(BgCard).
			Foreground(Text).
			Padding(0, 1)
)
