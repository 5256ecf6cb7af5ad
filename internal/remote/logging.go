package remote

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type loggingGenerator struct {
	next   Generator
	logger zerolog.Logger
}

// WithLogging logs the duration and outcome of every call made through next.
func WithLogging(next Generator, logger zerolog.Logger) Generator {
	return &loggingGenerator{next: next, logger: logger}
}

func (g *loggingGenerator) Generate(ctx context.Context, prompt string) (Result, error) {
	start := time.Now()
	res, err := g.next.Generate(ctx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		g.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("generate failed")
		return res, err
	}

	g.logger.Debug().
		Dur("elapsed", elapsed).
		Int("prompt_len", len(prompt)).
		Int("reply_len", len(res.Text)).
		Msg("generate complete")
	return res, nil
}

func (g *loggingGenerator) Close() error {
	return Close(g.next)
}
