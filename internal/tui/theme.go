package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// impaktor Sky Blue Theme
var (
	// Primary colors - Sky blue palette
	SkyBlue      = lipgloss.Color("#87CEEB")
	DeepSkyBlue  = lipgloss.Color("#00BFFF")
	LightSkyBlue = lipgloss.Color("#B0E0E6")
	DarkSkyBlue  = lipgloss.Color("#4A90D9")

	// Neutral colors
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#B0B0B0")
	DarkGray  = lipgloss.Color("#404040")

	// Status colors
	Success = lipgloss.Color("#00FF88")
	Warning = lipgloss.Color("#FFD700")
	Error   = lipgloss.Color("#FF6B6B")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(DarkSkyBlue).
			Bold(true).
			Padding(0, 2)

	LogoStyle = lipgloss.NewStyle().
			Foreground(DeepSkyBlue).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SkyBlue).
			Padding(0, 1)

	ActiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(DeepSkyBlue).
				Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(LightSkyBlue)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	HelpStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Logo returns the impaktor banner.
func Logo() string {
	logo := `
  _                       _    _
 (_)_ __ ___  _ __   __ _| | _| |_ ___  _ __
 | | '_ ` + "`" + ` _ \| '_ \ / _` + "`" + ` | |/ / __/ _ \| '__|
 | | | | | | | |_) | (_| |   <| || (_) | |
 |_|_| |_| |_| .__/ \__,_|_|\_\\__\___/|_|
             |_|`

	return LogoStyle.Render(logo)
}

// MiniLogo returns a smaller logo
func MiniLogo() string {
	return LogoStyle.Render(Crosshair + " impaktor")
}

// Tagline returns the project tagline
func Tagline() string {
	return DimStyle.Render("Typed calls against a JSON REST API")
}

// Divider returns a horizontal divider
func Divider(width int) string {
	if width < 0 {
		width = 0
	}
	return DimStyle.Render(strings.Repeat("─", width))
}

// Spinner frames for loading animation (ASCII compatible)
var SpinnerFrames = []string{"|", "/", "-", "\\"}

// newSpinner returns a spinner using the theme's frames.
func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: SpinnerFrames, FPS: time.Second / 10}),
		spinner.WithStyle(LogoStyle),
	)
}

// Bullet points
const (
	ArrowRight  = "→"
	CheckMark   = "✓"
	CrossMark   = "✗"
	WarningSign = "⚠"
	Crosshair   = "⌖"
)
