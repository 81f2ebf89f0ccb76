// Package openai provides the high-quality analysis provider backed by the
// OpenAI chat completions API through the official SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

const defaultChatModel = "gpt-4o"

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	client openai.Client
	model  string
	name   string
}

// NewProvider creates a new OpenAI provider.
func NewProvider(config Config, extra ...option.RequestOption) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", domain.ErrProviderNotConfigured)
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

	model := config.ChatModel
	if model == "" {
		model = defaultChatModel
	}

	return &Provider{
		client: openai.NewClient(append(opts, extra...)...),
		model:  model,
		name:   domain.ProviderHighQuality,
	}, nil
}

// Generate streams a chat completion for prompt.
func (p *Provider) Generate(ctx context.Context, prompt string) (<-chan domain.StreamChunk, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI streaming API", observability.String("model", p.model))

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	stream := p.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)
		defer stream.Close()
		defer logger.Debug("OpenAI stream completed")

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}

			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				chunks <- domain.StreamChunk{Delta: delta}
			}

			if chunk.Choices[0].FinishReason != "" {
				chunks <- domain.StreamChunk{Done: true}
				return
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			logger.Error("OpenAI stream failed", observability.Error(err))
			chunks <- domain.StreamChunk{Error: fmt.Errorf("OpenAI stream error: %w", err)}
			return
		}

		chunks <- domain.StreamChunk{Done: true}
	}()

	return chunks, nil
}

// Ping checks that the API is reachable with the configured credentials.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}
