package generation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed client
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Name identifies the client in logs and metrics
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete sends the prompt and returns the concatenated text parts
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// headlineSchema describes the {headline, analysis} object asked for in headline prompts
func headlineSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"headline": {
				Type:        genai.TypeString,
				Description: "Concise, engaging headline of at most 15 words",
			},
			"analysis": {
				Type:        genai.TypeString,
				Description: "Analysis of current trends and developments, 200-300 words",
			},
		},
		Required: []string{"headline", "analysis"},
	}
}
