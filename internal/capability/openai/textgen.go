// Package openai adapts the official OpenAI SDK to the domain's text and
// embedding capability interfaces. Both capabilities share one client and
// are injected into the pipeline as opaque, fallible collaborators.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jdevra/websage/internal/observability"
)

// TextGenerator implements domain.TextGenerator over the OpenAI chat API.
type TextGenerator struct {
	client openai.Client
	model  string
}

// NewTextGenerator creates a new OpenAI text generator.
func NewTextGenerator(config Config) (*TextGenerator, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &TextGenerator{
		client: openai.NewClient(opts...),
		model:  config.ChatModel,
	}, nil
}

// Generate returns generated text for a single-turn prompt.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI chat API")

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Name returns the generator identifier.
func (g *TextGenerator) Name() string {
	return "openai"
}
