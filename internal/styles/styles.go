// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorPanel  = lipgloss.Color("#24283b")
)

// Banner ASCII art for the header.
const Banner = `
 ╔═╗╔═╗╦  ╔═╗╦  ╦╔═╗╦═╗
 ╠═╝╠═╣║  ╠═╣╚╗╔╝║╣ ╠╦╝
 ╩  ╩ ╩╩═╝╩ ╩ ╚╝ ╚═╝╩╚═`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used by interactive forms.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)

	t.Blurred = t.Focused
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray).Bold(false)

	return t
}
