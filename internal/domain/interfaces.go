package domain

import (
	"context"
	"time"
)

// Provider represents any text-generation backend.
type Provider interface {
	// Generate sends a prompt and returns a stream of chunks.
	Generate(ctx context.Context, prompt string) (<-chan StreamChunk, error)

	// Name returns the stable provider identifier.
	Name() string
}

// Pinger is implemented by providers that can be probed for liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// HealthRegistry holds the health record of every provider.
type HealthRegistry interface {
	// Get returns the record for a provider.
	Get(providerID string) (HealthRecord, bool)

	// UpdateHealth replaces the record for a provider.
	UpdateHealth(providerID string, healthy bool, latencyMs int64)

	// Snapshot returns a copy of all records.
	Snapshot() map[string]HealthRecord
}

// ProviderSelector chooses a provider for the given criteria. It never fails.
type ProviderSelector interface {
	SelectProvider(ctx context.Context, criteria RouteCriteria) Provider
}

// ResponseCache stores generated text by cache key.
type ResponseCache interface {
	// Get returns the cached text or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the text under key for ttl.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// EmbeddingGenerator creates vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// ContextRetriever finds corpus chunks relevant to a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]ScoredRecord, error)
}

// Metrics records gateway events. Implementations must be safe for concurrent use.
type Metrics interface {
	CacheLookup(hit bool)
	CacheWrite(err error)
	RetrievalDegraded()
	GenerationFinished(provider string, err error, elapsed time.Duration)
}
