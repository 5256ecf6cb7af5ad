// Package tui implements the Bubble Tea chat screen for palaver.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/palaver/internal/styles"
)

// Styles used for rendering the chat screen.
var (
	// Title style for the header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	// Provider/model label on the right of the header.
	modelStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingRight(1)

	dividerStyle = styles.DividerStyle

	// Empty conversation hint.
	emptyStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Italic(true)

	// Sender line above each message.
	userLabelStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// User bubble: filled panel.
	userBubbleStyle = lipgloss.NewStyle().
			Foreground(styles.ColorWhite).
			Background(styles.ColorPanel).
			Padding(0, 1)

	// Bot bubble: left accent bar.
	botBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(styles.ColorGreen).
			PaddingLeft(1)

	pendingStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	// Composer box.
	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(0, 1)

	inputDisabledStyle = inputStyle.
				BorderForeground(styles.ColorGray)

	tokenStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)
)

// Icons and symbols.
const (
	iconDot  = "•"
	iconWarn = "⚠"
)
