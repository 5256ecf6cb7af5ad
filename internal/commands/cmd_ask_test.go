package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/palaver/internal/core/chat"
	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/internal/remote"
)

func newTestApp(t *testing.T, gen remote.Generator) (*cli.Command, *Flags, *bytes.Buffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Provider = remote.ProviderEcho
	cfg.DataDir = t.TempDir()

	flags := &Flags{Config: &cfg, Generator: gen}
	out := &bytes.Buffer{}
	app := &cli.Command{
		Name:      "palaver",
		Writer:    out,
		ErrWriter: out,
		// exit codes are asserted on the returned error
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	return app, flags, out
}

func TestAskCmd_ReadPrompt(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{name: "args joined", args: []string{"what", "is", "go?"}, want: "what is go?"},
		{name: "stdin when no args", stdin: "from a pipe\n", want: "from a pipe\n"},
		{name: "args win over stdin", args: []string{"hi"}, stdin: "ignored", want: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &AskCmd{stdin: strings.NewReader(tt.stdin)}
			got, err := cmd.readPrompt(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAskCmd_PrintsReply(t *testing.T) {
	app, flags, out := newTestApp(t, remote.Echo{})
	app = NewAskCmd(flags).Register(app)

	err := app.Run(context.Background(), []string{"palaver", "ask", "hello", "there"})
	require.NoError(t, err)

	assert.Equal(t, "hello there\n", out.String())
}

func TestAskCmd_AppliesPromptTemplate(t *testing.T) {
	var sent string
	gen := remote.Func(func(_ context.Context, prompt string) (remote.Result, error) {
		sent = prompt
		return remote.Result{Text: "ok"}, nil
	})

	app, flags, _ := newTestApp(t, gen)
	flags.Config.PromptTemplate = "Answer briefly: {{ .Input }}"
	app = NewAskCmd(flags).Register(app)

	require.NoError(t, app.Run(context.Background(), []string{"palaver", "ask", "why?"}))
	assert.Equal(t, "Answer briefly: why?", sent)
}

func TestAskCmd_Errors(t *testing.T) {
	t.Run("blank prompt", func(t *testing.T) {
		app, flags, _ := newTestApp(t, remote.Echo{})
		cmd := NewAskCmd(flags)
		cmd.stdin = strings.NewReader("   ")
		app = cmd.Register(app)

		err := app.Run(context.Background(), []string{"palaver", "ask"})
		assert.ErrorContains(t, err, "prompt is empty")
	})

	t.Run("remote failure", func(t *testing.T) {
		gen := remote.Func(func(context.Context, string) (remote.Result, error) {
			return remote.Result{}, errors.New("rate limited")
		})
		app, flags, out := newTestApp(t, gen)
		app = NewAskCmd(flags).Register(app)

		err := app.Run(context.Background(), []string{"palaver", "ask", "hi"})
		require.ErrorIs(t, err, chat.ErrRemoteFailed)
		assert.ErrorContains(t, err, "rate limited")
		assert.Empty(t, out.String())
	})
}
