package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/palaver/internal/core/tokens"
	"github.com/hay-kot/palaver/internal/printer"
)

type AskCmd struct {
	flags  *Flags
	raw    bool
	tokens bool
	stdin  io.Reader
}

// NewAskCmd creates a new ask command
func NewAskCmd(flags *Flags) *AskCmd {
	return &AskCmd{flags: flags, stdin: os.Stdin}
}

// Register adds the ask command to the application
func (cmd *AskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ask",
		Usage:     "Send a single prompt and print the reply",
		UsageText: "palaver ask [options] <prompt...>",
		Description: `Sends one prompt to the configured provider and prints the reply.

The prompt is taken from the arguments. With no arguments it is read from
stdin, which must not be a terminal.

Example:
  palaver ask What is a goroutine?
  git diff | palaver ask --raw`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the reply without markdown rendering",
				Destination: &cmd.raw,
			},
			&cli.BoolFlag{
				Name:        "tokens",
				Usage:       "print an estimate of the prompt size before sending",
				Destination: &cmd.tokens,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AskCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	input, err := cmd.readPrompt(c.Args().Slice())
	if err != nil {
		return err
	}

	if cmd.tokens {
		n, err := tokens.NewCounter().Count(input)
		if err != nil {
			p.Warnf("token estimate unavailable: %v", err)
		} else {
			p.Infof("~%d tokens", n)
		}
	}

	coord, err := newCoordinator(cmd.flags.Config, log.With().Str("component", "chat").Logger())
	if err != nil {
		return err
	}

	out, ok := coord.Submit(ctx, cmd.flags.Generator, input)
	if !ok {
		return fmt.Errorf("prompt is empty")
	}
	if !out.OK() {
		return out.Err()
	}

	reply := out.Result().Text
	if !cmd.raw && !cmd.flags.Config.UI.PlainText && isTerminal(c.Root().Writer) {
		reply = renderMarkdown(reply)
	}

	_, err = fmt.Fprintln(c.Root().Writer, strings.TrimRight(reply, "\n"))
	return err
}

// readPrompt joins args, or reads stdin when there are none.
func (cmd *AskCmd) readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := cmd.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("prompt required\n\nUsage: palaver ask <prompt...>\n\nExample: palaver ask What is a goroutine?")
	}

	data, err := io.ReadAll(cmd.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderMarkdown renders text for the terminal, falling back to the input
// on failure.
func renderMarkdown(text string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 120)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
