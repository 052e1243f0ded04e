// Package assistant is the completion-text boundary: a free-text prompt
// in, an HTML-bearing free-text completion out. No structured schema, no
// streaming.
package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-pro"

// FallbackReply is shown when the endpoint fails for any reason.
const FallbackReply = "Sorry, I encountered an error. Please try again."

const systemPrompt = `You are a smart, minimal, helpful and friendly study assistant for students.

Goal: Give short, actionable answers.

Respond clearly and concisely to questions about:
- Study planning and time management
- Homework and exam preparation
- Focus and motivation
- Subject-matter questions

Use polite, simple, actionable language. Avoid generic filler & unnecessary words.`

// Client wraps the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// New creates the Gemini client.
func New(ctx context.Context, apiKey string, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: defaultModel, log: log}, nil
}

// Complete sends the prompt and returns the completion text. Failures are
// wrapped; callers substitute FallbackReply for the user.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}
