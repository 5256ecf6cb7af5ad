// Package remote wraps the generative-language providers behind a single
// stateless call: send one prompt, get one text reply.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
	ProviderEcho   = "echo"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// Providers returns the supported provider names.
func Providers() []string {
	return []string{ProviderGemini, ProviderArk, ProviderEcho}
}

// IsProvider reports whether name is a supported provider.
func IsProvider(name string) bool {
	return slices.Contains(Providers(), name)
}

// DefaultModel returns the model used when none is configured. Ark has no
// default because its models are account-specific endpoint IDs.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-1.5-flash"
	case ProviderEcho:
		return "echo"
	default:
		return ""
	}
}

// Result is the reply to a single prompt. Raw holds the provider's native
// response value and is never rendered directly.
type Result struct {
	Text string
	Raw  any
}

// Generator sends a single prompt to a remote model. Each call is
// independent; no conversation history is carried between calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, prompt string) (Result, error)

// Generate calls f(ctx, prompt).
func (f Func) Generate(ctx context.Context, prompt string) (Result, error) {
	return f(ctx, prompt)
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Region   string
}

// New returns the generator for opts.Provider. Provider clients are built on
// the first call, so a missing or bad credential only surfaces as a failed
// Generate.
func New(opts Options) (Generator, error) {
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}

	switch opts.Provider {
	case ProviderGemini:
		return Lazy(func(ctx context.Context) (Generator, error) {
			return NewGemini(ctx, opts.APIKey, opts.Model)
		}), nil
	case ProviderArk:
		return Lazy(func(ctx context.Context) (Generator, error) {
			return NewArk(ctx, opts)
		}), nil
	case ProviderEcho:
		return Echo{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// Close releases provider resources if the generator holds any.
func Close(g Generator) error {
	if c, ok := g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// LazyGenerator defers building the underlying generator until the first
// Generate call. A failed build is not cached and is attempted again on the
// next call.
type LazyGenerator struct {
	build func(ctx context.Context) (Generator, error)

	mu  sync.Mutex
	gen Generator
}

// Lazy wraps build in a LazyGenerator.
func Lazy(build func(ctx context.Context) (Generator, error)) *LazyGenerator {
	return &LazyGenerator{build: build}
}

// Generate builds the generator if needed and forwards the prompt.
func (l *LazyGenerator) Generate(ctx context.Context, prompt string) (Result, error) {
	gen, err := l.get(ctx)
	if err != nil {
		return Result{}, err
	}
	return gen.Generate(ctx, prompt)
}

func (l *LazyGenerator) get(ctx context.Context) (Generator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != nil {
		return l.gen, nil
	}

	gen, err := l.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	l.gen = gen
	return gen, nil
}

// Close closes the underlying generator if it was built.
func (l *LazyGenerator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen == nil {
		return nil
	}
	return Close(l.gen)
}

// Echo replies with the prompt itself. It needs no credential and is useful
// for trying the interface offline.
type Echo struct{}

// Generate returns the prompt unchanged.
func (Echo) Generate(_ context.Context, prompt string) (Result, error) {
	return Result{Text: prompt}, nil
}
