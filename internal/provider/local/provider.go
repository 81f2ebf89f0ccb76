// Package local provides a provider for a model server on the local network.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Provider streams completions from a local model server.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewProvider creates a local-network provider.
func NewProvider(config Config) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: local model server base URL is required", domain.ErrProviderNotConfigured)
	}

	if config.Model == "" {
		return nil, fmt.Errorf("%w: local model name is required", domain.ErrProviderNotConfigured)
	}

	return &Provider{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Generate streams a completion for prompt. A request that cannot be sent or is
// rejected by the server fails immediately.
func (p *Provider) Generate(ctx context.Context, prompt string) (<-chan domain.StreamChunk, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling local model server", observability.String("model", p.model))

	//nolint:bodyclose // Response body is closed in readStream goroutine
	resp, err := p.executeGenerate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	chunks := make(chan domain.StreamChunk)
	go p.readStream(ctx, resp, chunks)

	return chunks, nil
}

// Ping checks that the model server is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("local model server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("local model server returned status %d", resp.StatusCode)
	}
	return nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return domain.ProviderLocalNetwork
}

func (p *Provider) executeGenerate(ctx context.Context, prompt string) (*http.Response, error) {
	body, err := json.Marshal(generateRequest{Model: p.model, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("local model server returned status %d: %s", resp.StatusCode, string(msg))
	}

	return resp, nil
}

// readStream decodes one JSON object per line until a done marker or an error.
func (p *Provider) readStream(ctx context.Context, resp *http.Response, chunks chan<- domain.StreamChunk) {
	defer close(chunks)
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	for {
		var chunk generateChunk
		if err := decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				err = domain.ErrStreamTruncated
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			chunks <- domain.StreamChunk{Error: fmt.Errorf("local stream error: %w", err)}
			return
		}

		if chunk.Error != "" {
			chunks <- domain.StreamChunk{Error: fmt.Errorf("local model error: %s", chunk.Error)}
			return
		}

		if chunk.Response != "" {
			chunks <- domain.StreamChunk{Delta: chunk.Response}
		}

		if chunk.Done {
			chunks <- domain.StreamChunk{Done: true}
			return
		}
	}
}
