package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/palaver/internal/core/chat"
	"github.com/hay-kot/palaver/internal/core/timefmt"
)

const (
	emptyText      = "Start a conversation by sending a message."
	bubbleRatio    = 0.8 // share of the width a message may use
	glamourGutter  = 2
	minBubbleWidth = 10
)

// transcript renders the conversation into the viewport. Rendered messages
// are cached by ID since messages never change once appended; the cache is
// dropped when the width changes.
type transcript struct {
	clock    timefmt.Formatter
	markdown bool
	width    int
	md       *glamour.TermRenderer
	cache    map[string]string
}

func newTranscript(clock timefmt.Formatter, markdown bool) *transcript {
	return &transcript{
		clock:    clock,
		markdown: markdown,
		cache:    make(map[string]string),
	}
}

// SetWidth updates the wrap width. It is a no-op if the width is unchanged.
func (t *transcript) SetWidth(width int) {
	if width == t.width {
		return
	}
	t.width = width
	t.md = nil
	clear(t.cache)
}

func (t *transcript) bubbleWidth() int {
	return max(int(float64(t.width)*bubbleRatio), minBubbleWidth)
}

// Render returns the full transcript. pending, if non-empty, is shown as a
// bot-side line below the last message.
func (t *transcript) Render(msgs []chat.Message, pending string) string {
	if len(msgs) == 0 && pending == "" {
		return lipgloss.Place(t.width, 3, lipgloss.Center, lipgloss.Center, emptyStyle.Render(emptyText))
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		blocks = append(blocks, t.message(msg))
	}
	if pending != "" {
		blocks = append(blocks, botBubbleStyle.Render(pendingStyle.Render(pending)))
	}

	return strings.Join(blocks, "\n\n")
}

func (t *transcript) message(msg chat.Message) string {
	if out, ok := t.cache[msg.ID]; ok {
		return out
	}

	stamp := timeStyle.Render(t.clock.Format(msg.Timestamp))

	var out string
	switch msg.Sender {
	case chat.SenderUser:
		label := userLabelStyle.Render("You") + " " + timeStyle.Render(iconDot) + " " + stamp
		body := userBubbleStyle.Width(min(lipgloss.Width(msg.Text())+2, t.bubbleWidth())).Render(msg.Text())
		block := lipgloss.JoinVertical(lipgloss.Right, label, body)
		out = lipgloss.PlaceHorizontal(t.width, lipgloss.Right, block)
	default:
		label := botLabelStyle.Render("Assistant") + " " + timeStyle.Render(iconDot) + " " + stamp
		body := botBubbleStyle.Render(t.reply(msg.Text()))
		out = lipgloss.JoinVertical(lipgloss.Left, label, body)
	}

	t.cache[msg.ID] = out
	return out
}

// reply renders bot text, as markdown when enabled. Rendering failures fall
// back to wrapped plain text.
func (t *transcript) reply(text string) string {
	width := t.bubbleWidth() - glamourGutter
	plain := lipgloss.NewStyle().Width(width).Render(text)
	if !t.markdown {
		return plain
	}

	if t.md == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("tokyo-night"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Debug().Err(err).Msg("markdown renderer unavailable")
			t.markdown = false
			return plain
		}
		t.md = renderer
	}

	rendered, err := t.md.Render(text)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed")
		return plain
	}

	// Trim glamour's margins and decorative rules
	content := strings.Trim(rendered, "\n")
	content = stripLeadingDecorative(content)
	content = stripTrailingDecorative(content)
	return content
}

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// isDecorativeLine checks if a line contains only decorative characters
// (horizontal rules, spaces) after stripping ANSI codes.
func isDecorativeLine(line string) bool {
	stripped := strings.TrimSpace(ansiPattern.ReplaceAllString(line, ""))
	if stripped == "" {
		return true
	}
	for _, r := range stripped {
		if r != '─' && r != '━' && r != '-' && r != '=' {
			return false
		}
	}
	return true
}

func stripLeadingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) && isDecorativeLine(lines[start]) {
		start++
	}
	return strings.Join(lines[start:], "\n")
}

func stripTrailingDecorative(content string) string {
	lines := strings.Split(content, "\n")
	end := len(lines)
	for end > 0 && isDecorativeLine(lines[end-1]) {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
