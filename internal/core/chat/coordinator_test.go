package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/palaver/internal/remote"
)

// countingGenerator records calls and answers with a fixed reply or error.
type countingGenerator struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (g *countingGenerator) Generate(_ context.Context, prompt string) (remote.Result, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return remote.Result{}, g.err
	}
	return remote.Result{Text: g.reply, Raw: "raw:" + g.reply}, nil
}

func newTestCoordinator() *Coordinator {
	fixed := time.Date(2024, 5, 1, 13, 5, 0, 0, time.UTC)
	return NewCoordinator(NewConversation(), zerolog.Nop()).
		WithClock(func() time.Time { return fixed })
}

func TestCoordinator_BlankInputIsIgnored(t *testing.T) {
	inputs := []string{"", " ", "\t", "\n  \t"}

	for _, in := range inputs {
		t.Run(strings.ReplaceAll(in, "\n", `\n`), func(t *testing.T) {
			c := newTestCoordinator()
			gen := &countingGenerator{reply: "never"}

			_, ok := c.Submit(context.Background(), gen, in)

			assert.False(t, ok)
			assert.Equal(t, 0, gen.calls)
			assert.Equal(t, 0, c.Conversation().Len())
			assert.Equal(t, StateIdle, c.State())
		})
	}
}

func TestCoordinator_SubmitAppendsUserThenBot(t *testing.T) {
	c := newTestCoordinator()
	gen := &countingGenerator{reply: "hi, how can I help?"}

	out, ok := c.Submit(context.Background(), gen, "hello")
	require.True(t, ok)
	require.True(t, out.OK())

	msgs := c.Conversation().Messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, "hello", msgs[0].Text())
	assert.Equal(t, PlainText("hello"), msgs[0].Content)

	assert.Equal(t, SenderBot, msgs[1].Sender)
	assert.Equal(t, "hi, how can I help?", msgs[1].Text())
	raw, isRaw := msgs[1].Content.(RawResult)
	require.True(t, isRaw)
	assert.Equal(t, "raw:hi, how can I help?", raw.Raw)

	assert.Equal(t, []string{"hello"}, gen.prompts)
	assert.False(t, c.Busy())
	assert.NoError(t, c.LastError())
}

func TestCoordinator_SecondBeginWhilePendingIsNoop(t *testing.T) {
	c := newTestCoordinator()

	_, ok := c.Begin("first")
	require.True(t, ok)
	assert.True(t, c.Busy())

	_, ok = c.Begin("second")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Conversation().Len())

	c.Resolve(Ok(remote.Result{Text: "answer"}))
	assert.Equal(t, 2, c.Conversation().Len())
	assert.False(t, c.Busy())

	_, ok = c.Begin("third")
	assert.True(t, ok)
}

func TestCoordinator_FailureAppendsNothingAndClearsBusy(t *testing.T) {
	c := newTestCoordinator()
	boom := errors.New("429 too many requests")
	gen := &countingGenerator{err: boom}

	out, ok := c.Submit(context.Background(), gen, "hello")
	require.True(t, ok)

	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err(), ErrRemoteFailed)
	assert.ErrorIs(t, out.Err(), boom)

	msgs := c.Conversation().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderUser, msgs[0].Sender)

	assert.False(t, c.Busy())
	assert.ErrorIs(t, c.LastError(), ErrRemoteFailed)

	// next request clears the error
	_, ok = c.Begin("again")
	require.True(t, ok)
	assert.NoError(t, c.LastError())
}

func TestCoordinator_ResolveWithoutPendingIsIgnored(t *testing.T) {
	c := newTestCoordinator()

	appended := c.Resolve(Ok(remote.Result{Text: "stray"}))

	assert.False(t, appended)
	assert.Equal(t, 0, c.Conversation().Len())
}

func TestCoordinator_PromptFunc(t *testing.T) {
	c := newTestCoordinator().WithPrompt(func(in string) (string, error) {
		return "Q: " + in, nil
	})
	gen := &countingGenerator{reply: "A"}

	_, ok := c.Submit(context.Background(), gen, "why?")
	require.True(t, ok)

	assert.Equal(t, []string{"Q: why?"}, gen.prompts)
	assert.Equal(t, "why?", c.Conversation().Messages()[0].Text())
}

func TestCoordinator_PromptFuncErrorFailsRequest(t *testing.T) {
	c := newTestCoordinator().WithPrompt(func(string) (string, error) {
		return "", errors.New("bad template")
	})
	gen := &countingGenerator{reply: "A"}

	out, ok := c.Submit(context.Background(), gen, "why?")
	require.True(t, ok)

	assert.False(t, out.OK())
	assert.Equal(t, 0, gen.calls)
	assert.ErrorContains(t, c.LastError(), "render prompt")
	assert.False(t, c.Busy())
}

func TestCoordinator_UsesClock(t *testing.T) {
	c := newTestCoordinator()
	_, _ = c.Submit(context.Background(), &countingGenerator{reply: "x"}, "y")

	for _, m := range c.Conversation().Messages() {
		assert.Equal(t, time.Date(2024, 5, 1, 13, 5, 0, 0, time.UTC), m.Timestamp)
	}
}

func TestFailed_WrapsOnce(t *testing.T) {
	out := Failed(Failed(errors.New("x")).Err())
	assert.Equal(t, 1, strings.Count(out.Err().Error(), ErrRemoteFailed.Error()))

	assert.ErrorIs(t, Failed(nil).Err(), remote.ErrEmptyResponse)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "unknown", State(42).String())
}
