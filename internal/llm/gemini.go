package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates text with the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for model
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name implements Named
func (g *Gemini) Name() string { return "gemini" }

// Generate sends prompt as a single user turn
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// HealthCheck looks up the configured model
func (g *Gemini) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("gemini model %s: %w", g.model, err)
	}
	return nil
}
