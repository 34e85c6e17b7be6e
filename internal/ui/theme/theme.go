// Package theme holds the colors and styles shared by the browse views.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/threadprep/internal/label"
)

var (
	Accent = lipgloss.Color("#FF6600")

	// DepthColors cycles through these for nested comment bars.
	DepthColors = []lipgloss.Color{
		"#FF6600", // orange
		"#828282", // gray
		"#00BFFF", // deep sky blue
		"#32CD32", // lime green
		"#FFD700", // gold
		"#FF69B4", // hot pink
		"#9370DB", // medium purple
		"#20B2AA", // light sea green
	}

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	MetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	SelectedLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#333333"))

	ContextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Italic(true)

	ImageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00BFFF"))

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	informativeBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#000000")).
				Background(lipgloss.Color("#32CD32")).
				Bold(true).
				Padding(0, 1)

	notInformativeBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#555555")).
				Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	StatusBarActiveTab = lipgloss.NewStyle().
				Background(Accent).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true).
				Padding(0, 1)

	StatusBarTab = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 1)

	StatusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// DepthColor returns the bar color for a nesting depth.
func DepthColor(depth int) lipgloss.Color {
	return DepthColors[depth%len(DepthColors)]
}

// LabelBadge renders a row's label, or a dim marker when it has none.
func LabelBadge(lbl string) string {
	switch lbl {
	case label.Informative:
		return informativeBadge.Render(lbl)
	case "":
		return DimStyle.Render("unlabeled")
	default:
		return notInformativeBadge.Render(lbl)
	}
}
