// Package assistant talks to the hosted text generation model behind the study assistant.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"careermate/internal/domain"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const systemInstruction = `You are CareerMate, an advanced AI study assistant specialized in education and career guidance. Your role is to provide clear, accurate explanations of academic concepts, break down complex topics into understandable parts, give practical examples, offer study tips and learning strategies, help with programming and technical concepts, guide students in their career decisions, and maintain a supportive and encouraging tone. Try to generate text without special characters like "-", "*", etc.

When responding, structure your answers clearly with headings, bullet points, or numbered lists where appropriate.`

type Config struct {
	APIKey string
	Model  string
}

// Gemini generates replies with a single GenerateContent call; there are no retries.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds the client. Without an API key the generator is still returned,
// and every call fails with domain.ErrAssistantNotConfigured.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if cfg.APIKey == "" {
		return &Gemini{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", domain.ErrAssistantNotConfigured
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &domain.UpstreamError{Service: "gemini", Err: errors.New("no valid response generated")}
	}
	return text, nil
}

func mapGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusForbidden:
		return domain.ErrAssistantDenied
	case http.StatusUnauthorized:
		return domain.ErrAssistantNotConfigured
	}
	return &domain.UpstreamError{Service: "gemini", Err: err}
}
