package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/palaver/internal/core/timefmt"
	"github.com/hay-kot/palaver/internal/core/tokens"
	"github.com/hay-kot/palaver/internal/store/jsonfile"
	"github.com/hay-kot/palaver/internal/tui"
)

type TuiCmd struct {
	flags    *Flags
	plain    bool
	noTokens bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "plain",
			Usage:       "show replies as plain text instead of rendered markdown",
			Destination: &cmd.plain,
		},
		&cli.BoolFlag{
			Name:        "no-tokens",
			Usage:       "hide the draft token estimate",
			Destination: &cmd.noTokens,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	coord, err := newCoordinator(cfg, log.With().Str("component", "chat").Logger())
	if err != nil {
		return err
	}

	opts := tui.Options{
		Title:       cfg.UI.Title,
		Placeholder: cfg.UI.Placeholder,
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Clock:       timefmt.Formatter{Hour24: cfg.UI.Clock24h},
		Markdown:    !cfg.UI.PlainText && !cmd.plain,
		Exporter:    jsonfile.NewTranscriptWriter(cfg.TranscriptsDir()),
	}
	if !cmd.noTokens {
		opts.Tokens = tokens.NewCounter()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.New(ctx, coord, cmd.flags.Generator, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	log.Debug().Int("messages", coord.Conversation().Len()).Msg("chat closed")
	return nil
}
