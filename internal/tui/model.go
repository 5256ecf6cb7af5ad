package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/palaver/internal/core/chat"
	"github.com/hay-kot/palaver/internal/core/timefmt"
	"github.com/hay-kot/palaver/internal/remote"
)

// Fixed rows around the viewport: header, divider, status, composer (3), help.
const chromeHeight = 7

// Exporter writes the conversation somewhere durable.
type Exporter interface {
	Save(ctx context.Context, provider, model string, msgs []chat.Message) (string, error)
}

// TokenCounter estimates the size of the draft.
type TokenCounter interface {
	Count(text string) (int, error)
}

// Options configures the chat screen. Zero values disable the optional
// features.
type Options struct {
	Title       string
	Placeholder string
	Provider    string
	Model       string
	Clock       timefmt.Formatter
	Markdown    bool
	Exporter    Exporter           // ctrl+s; nil disables export
	Tokens      TokenCounter       // draft estimate; nil hides it
	Clipboard   func(string) error // defaults to the system clipboard
}

// replyMsg carries the outcome of a request back to the event loop.
type replyMsg struct {
	outcome chat.Outcome
}

// exportedMsg is sent when a transcript export finishes.
type exportedMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx   context.Context
	coord *chat.Coordinator
	gen   remote.Generator
	opts  Options

	keys       keyMap
	help       help.Model
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript *transcript

	width  int
	height int
	ready  bool

	notice string // transient status, cleared on the next keypress
	tokens int
}

// New creates the chat model. Requests are sent through gen with ctx.
func New(ctx context.Context, coord *chat.Coordinator, gen remote.Generator, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.Prompt = ""
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = pendingStyle

	return Model{
		ctx:        ctx,
		coord:      coord,
		gen:        gen,
		opts:       opts,
		keys:       defaultKeyMap(),
		help:       help.New(),
		input:      ti,
		viewport:   viewport.New(0, 0),
		spinner:    s,
		transcript: newTranscript(opts.Clock, opts.Markdown),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh(true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		m.coord.Resolve(msg.outcome)
		m.refresh(true)
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Msg("export transcript")
			m.notice = errorStyle.Render(fmt.Sprintf("%s Export failed: %s", iconWarn, oneLine(msg.err.Error())))
		} else {
			m.notice = noticeStyle.Render("Saved transcript to " + msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.coord.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	case key.Matches(msg, m.keys.Copy):
		m.copyLastReply()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		cmd := m.export()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		m.refresh(false)
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfPageUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfPageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.countTokens()
	return m, cmd
}

// submit hands the draft to the coordinator. Blank drafts and drafts typed
// while a request is in flight are ignored and left in the composer.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req, ok := m.coord.Begin(m.input.Value())
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.tokens = 0
	m.refresh(true)

	return m, tea.Batch(m.send(req), m.spinner.Tick)
}

// send runs the request off the event loop.
func (m Model) send(req chat.Request) tea.Cmd {
	ctx, gen := m.ctx, m.gen
	return func() tea.Msg {
		return replyMsg{outcome: req.Run(ctx, gen)}
	}
}

func (m *Model) copyLastReply() {
	last, ok := m.coord.Conversation().Last(chat.SenderBot)
	if !ok {
		m.notice = tokenStyle.Render("Nothing to copy yet")
		return
	}

	if err := m.opts.Clipboard(last.Text()); err != nil {
		log.Error().Err(err).Msg("copy to clipboard")
		m.notice = errorStyle.Render(fmt.Sprintf("%s Copy failed: %s", iconWarn, oneLine(err.Error())))
		return
	}
	m.notice = noticeStyle.Render("Copied reply to clipboard")
}

func (m *Model) export() tea.Cmd {
	if m.opts.Exporter == nil {
		return nil
	}
	if m.coord.Conversation().Len() == 0 {
		m.notice = tokenStyle.Render("Nothing to export yet")
		return nil
	}

	ctx, exp := m.ctx, m.opts.Exporter
	provider, model := m.opts.Provider, m.opts.Model
	msgs := m.coord.Conversation().Messages()
	return func() tea.Msg {
		path, err := exp.Save(ctx, provider, model, msgs)
		return exportedMsg{path: path, err: err}
	}
}

func (m *Model) countTokens() {
	if m.opts.Tokens == nil {
		return
	}
	n, err := m.opts.Tokens.Count(m.input.Value())
	if err != nil {
		log.Debug().Err(err).Msg("count tokens")
		m.opts.Tokens = nil
		return
	}
	m.tokens = n
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.help.Width = width
	helpRows := 1
	if m.help.ShowAll {
		helpRows = len(m.keys.FullHelp()[0])
	}

	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight-(helpRows-1), 1)
	// border and padding of the composer box
	m.input.Width = max(width-6, 1)
	m.transcript.SetWidth(width)
}

// refresh re-renders the transcript. follow scrolls to the newest message;
// otherwise the view only follows if it was already at the bottom.
func (m *Model) refresh(follow bool) {
	atBottom := m.viewport.AtBottom()

	pending := ""
	if m.coord.Busy() {
		pending = m.spinner.View()
	}
	m.viewport.SetContent(m.transcript.Render(m.coord.Conversation().Messages(), pending))

	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

// Draft returns the current composer text.
func (m Model) Draft() string {
	return m.input.Value()
}
