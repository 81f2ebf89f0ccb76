// Package canned provides in-process providers that stream deterministic replies.
// Each profile has its own chunking and pacing so routing decisions are observable
// without calling an external model.
package canned

import (
	"context"
	"strings"
	"time"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Profile describes what a canned provider says and how it paces the reply.
type Profile struct {
	Name  string
	Delay time.Duration
	Split func(text string) []string
	Reply func(question string) string
}

// Provider implements the domain.Provider interface with a canned reply.
type Provider struct {
	profile   Profile
	failAfter int
	failErr   error
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay overrides the per-chunk delay of the profile.
func WithDelay(delay time.Duration) Option {
	return func(p *Provider) {
		p.profile.Delay = delay
	}
}

// WithFailureAfter makes every stream end with err after n deltas.
func WithFailureAfter(n int, err error) Option {
	return func(p *Provider) {
		p.failAfter = n
		p.failErr = err
	}
}

// NewProvider creates a canned provider for profile.
// No configuration is required as this provider operates entirely in-memory.
func NewProvider(profile Profile, opts ...Option) *Provider {
	p := &Provider{
		profile:   profile,
		failAfter: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate returns a stream of the profile's reply to the last line of prompt.
func (p *Provider) Generate(ctx context.Context, prompt string) (<-chan domain.StreamChunk, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("streaming canned reply", observability.String("profile", p.profile.Name))

	pieces := p.profile.Split(p.profile.Reply(lastLine(prompt)))

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)

		for i, piece := range pieces {
			if i == p.failAfter {
				chunks <- domain.StreamChunk{Error: p.failErr}
				return
			}

			select {
			case <-ctx.Done():
				chunks <- domain.StreamChunk{Error: ctx.Err()}
				return
			case <-time.After(p.profile.Delay):
			}

			chunks <- domain.StreamChunk{Delta: piece}
		}

		if p.failAfter >= len(pieces) {
			chunks <- domain.StreamChunk{Error: p.failErr}
			return
		}

		chunks <- domain.StreamChunk{Done: true}
	}()

	return chunks, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.profile.Name
}

func lastLine(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if idx := strings.LastIndexByte(prompt, '\n'); idx >= 0 {
		return strings.TrimSpace(prompt[idx+1:])
	}
	return prompt
}
