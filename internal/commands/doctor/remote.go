package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/palaver/internal/remote"
)

const pingPrompt = "Reply with the single word: pong"

// RemoteCheck sends one short prompt to the provider. It is opt-in since it
// spends a request.
type RemoteCheck struct {
	gen     remote.Generator
	timeout time.Duration
}

// NewRemoteCheck creates a new provider round-trip check.
func NewRemoteCheck(gen remote.Generator, timeout time.Duration) *RemoteCheck {
	return &RemoteCheck{gen: gen, timeout: timeout}
}

func (c *RemoteCheck) Name() string {
	return "Provider"
}

func (c *RemoteCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.gen.Generate(ctx, pingPrompt)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Round trip",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Round trip",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d chars in %s", len(res.Text), elapsed),
	})
	return result
}
