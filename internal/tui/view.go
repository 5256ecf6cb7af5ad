package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	sections := []string{
		m.headerView(),
		dividerStyle.Render(strings.Repeat("─", max(m.width, 0))),
		m.viewport.View(),
		m.statusView(),
		m.inputView(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := titleStyle.Render(m.opts.Title)

	label := m.opts.Provider
	if m.opts.Model != "" && m.opts.Model != m.opts.Provider {
		label += " " + iconDot + " " + m.opts.Model
	}
	right := modelStyle.Render(label)

	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right), 1)
	return title + strings.Repeat(" ", gap) + right
}

// statusView shows, in order of precedence, the last request error, a
// transient notice, or the draft token estimate.
func (m Model) statusView() string {
	if err := m.coord.LastError(); err != nil {
		line := fmt.Sprintf(" %s %s", iconWarn, oneLine(err.Error()))
		return errorStyle.MaxWidth(m.width).Render(line)
	}
	if m.notice != "" {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(" " + m.notice)
	}
	if m.opts.Tokens != nil && m.tokens > 0 {
		estimate := tokenStyle.Render(fmt.Sprintf("~%d tokens", m.tokens))
		return lipgloss.PlaceHorizontal(m.width-1, lipgloss.Right, estimate)
	}
	return ""
}

// oneLine collapses whitespace runs, newlines included, so provider errors
// fit the single status row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (m Model) inputView() string {
	style := inputStyle
	if !m.coord.CanSubmit(m.input.Value()) {
		style = inputDisabledStyle
	}

	return style.Width(max(m.width-2, 1)).Render(m.input.View())
}
