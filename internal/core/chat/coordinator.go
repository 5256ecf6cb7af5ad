package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/palaver/internal/remote"
)

// ErrRemoteFailed covers every failure of the request step: transport,
// authentication, rate limiting and malformed replies alike.
var ErrRemoteFailed = errors.New("remote call failed")

// State is the request lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// PromptFunc turns raw user input into the prompt sent to the provider.
type PromptFunc func(input string) (string, error)

// Outcome is the result of one request: either a provider Result or an
// error wrapping ErrRemoteFailed.
type Outcome struct {
	result remote.Result
	err    error
}

// Ok returns a successful outcome.
func Ok(r remote.Result) Outcome {
	return Outcome{result: r}
}

// Failed returns a failed outcome. err is wrapped with ErrRemoteFailed.
func Failed(err error) Outcome {
	if err == nil {
		err = remote.ErrEmptyResponse
	}
	if !errors.Is(err, ErrRemoteFailed) {
		err = fmt.Errorf("%w: %w", ErrRemoteFailed, err)
	}
	return Outcome{err: err}
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool { return o.err == nil }

// Result returns the provider result. It is the zero value for failures.
func (o Outcome) Result() remote.Result { return o.result }

// Err returns the failure, or nil.
func (o Outcome) Err() error { return o.err }

// Request is a prompt accepted by Coordinator.Begin and waiting to be sent.
type Request struct {
	Input  string
	Prompt string
	err    error
}

// Run sends the prompt through gen. It performs no retries.
func (r Request) Run(ctx context.Context, gen remote.Generator) Outcome {
	if r.err != nil {
		return Failed(r.err)
	}

	res, err := gen.Generate(ctx, r.Prompt)
	if err != nil {
		return Failed(err)
	}
	return Ok(res)
}

// Coordinator drives the compose → pending → resolved cycle. It allows at
// most one request in flight; the pending state is the busy flag. It is not
// safe for concurrent use and is expected to be owned by a single event loop.
type Coordinator struct {
	conv    *Conversation
	state   State
	lastErr error
	prompt  PromptFunc
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCoordinator creates an idle coordinator appending to conv.
func NewCoordinator(conv *Conversation, logger zerolog.Logger) *Coordinator {
	if conv == nil {
		conv = NewConversation()
	}
	return &Coordinator{
		conv:   conv,
		state:  StateIdle,
		now:    time.Now,
		logger: logger,
	}
}

// WithPrompt sets the function used to build prompts from input.
func (c *Coordinator) WithPrompt(fn PromptFunc) *Coordinator {
	c.prompt = fn
	return c
}

// WithClock overrides the time source used to stamp messages.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Conversation returns the underlying message log.
func (c *Coordinator) Conversation() *Conversation { return c.conv }

// State returns the current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// Busy reports whether a request is in flight.
func (c *Coordinator) Busy() bool { return c.state == StatePending }

// LastError returns the error from the most recent failed request. It is
// cleared when the next request begins.
func (c *Coordinator) LastError() error { return c.lastErr }

// CanSubmit reports whether Begin would accept input.
func (c *Coordinator) CanSubmit(input string) bool {
	return c.state == StateIdle && strings.TrimSpace(input) != ""
}

// Begin accepts input if it is not blank and no request is in flight. On
// acceptance the user message is appended and the coordinator becomes
// pending. Rejected input leaves all state untouched.
func (c *Coordinator) Begin(input string) (Request, bool) {
	if !c.CanSubmit(input) {
		return Request{}, false
	}

	c.conv.Append(NewMessage(SenderUser, PlainText(input), c.now()))
	c.state = StatePending
	c.lastErr = nil

	req := Request{Input: input, Prompt: input}
	if c.prompt != nil {
		prompt, err := c.prompt(input)
		if err != nil {
			req.err = fmt.Errorf("render prompt: %w", err)
		}
		req.Prompt = prompt
	}

	return req, true
}

// Resolve completes the pending request. A successful outcome appends a bot
// message; a failure records the error and appends nothing. Either way the
// coordinator returns to idle. It reports whether a message was appended.
func (c *Coordinator) Resolve(o Outcome) bool {
	if c.state != StatePending {
		c.logger.Warn().Msg("resolve called with no request in flight")
		return false
	}
	c.state = StateIdle

	if !o.OK() {
		c.lastErr = o.Err()
		c.logger.Error().Err(o.Err()).Msg("request failed")
		return false
	}

	res := o.Result()
	c.conv.Append(NewMessage(SenderBot, RawResult{Body: res.Text, Raw: res.Raw}, c.now()))
	return true
}

// Submit runs Begin, the request and Resolve synchronously. It returns false
// if the input was rejected, in which case gen is not called.
func (c *Coordinator) Submit(ctx context.Context, gen remote.Generator, input string) (Outcome, bool) {
	req, ok := c.Begin(input)
	if !ok {
		return Outcome{}, false
	}

	out := req.Run(ctx, gen)
	c.Resolve(out)
	return out, true
}
