package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrwolf/moodlog/internal/config"
)

var (
	// ErrEmptyResponse is returned when the service answers with blank text
	ErrEmptyResponse = errors.New("empty response")
	// ErrNotConfigured is returned when no generator is available
	ErrNotConfigured = errors.New("generator not configured")
)

// Generator produces free text for a prompt. Implementations make exactly
// one attempt per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthChecker is implemented by generators that can be checked cheaply
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Named is implemented by generators that report a provider name
type Named interface {
	Name() string
}

// Ask calls g once with a deadline of timeout. Every failure, including a
// panic inside the client and a blank answer, comes back as an error so the
// caller can take its fallback path.
func Ask(ctx context.Context, g Generator, prompt string, timeout time.Duration) (string, error) {
	if g == nil {
		return "", ErrNotConfigured
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		t, e := g.Generate(ctx, prompt)
		done <- result{text: t, err: e}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("generating: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("generating: %w", res.err)
		}
		if strings.TrimSpace(res.text) == "" {
			return "", ErrEmptyResponse
		}
		return res.text, nil
	}
}

// New builds the generator selected by cfg. It returns nil for provider
// "none" so callers always use their fallback content.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel), nil
	case config.ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.LLMProvider)
	}
}

// NameOf returns the provider name of g for health output
func NameOf(g Generator) string {
	if g == nil {
		return "none"
	}
	if n, ok := g.(Named); ok {
		return n.Name()
	}
	return "custom"
}
