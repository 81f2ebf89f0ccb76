// Package rag ingests source documents into a vector index and retrieves
// context for prompts.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

const (
	tracerName    = "github.com/schoolhub/aigateway/internal/rag"
	initializeKey = "initialize"
)

// Config controls ingestion.
type Config struct {
	Sources          []string `env:"RAG_SOURCES"           envSeparator:"," envDefault:"knowledge/*.md,knowledge/*.txt"`
	ChunkSize        int      `env:"RAG_CHUNK_SIZE"                         envDefault:"500"`
	ChunkOverlap     int      `env:"RAG_CHUNK_OVERLAP"                      envDefault:"50"`
	EmbedConcurrency int      `env:"RAG_EMBED_CONCURRENCY"                  envDefault:"4"`
}

// VectorStore is the index the retriever writes to and searches.
type VectorStore interface {
	AddVectors(records []domain.VectorRecord)
	Count() int
	SimilaritySearch(query []float64, topK int) []domain.ScoredRecord
}

// IngestStats describes one InitializeIndex run.
type IngestStats struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Skipped   bool          `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Retriever populates the index from source documents and answers context queries.
type Retriever struct {
	cfg      Config
	index    VectorStore
	embedder domain.EmbeddingGenerator
	group    singleflight.Group
	tracer   trace.Tracer
}

// NewRetriever creates a retriever (DI constructor).
func NewRetriever(cfg *Config, index VectorStore, embedder domain.EmbeddingGenerator) (*Retriever, error) {
	if _, err := SplitText("", cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, err
	}

	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding generator is required", domain.ErrProviderNotConfigured)
	}

	c := *cfg
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = 1
	}

	return &Retriever{
		cfg:      c,
		index:    index,
		embedder: embedder,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// InitializeIndex ingests every configured source unless the index already holds records.
// Concurrent calls share a single run.
//
// The first read or embedding error aborts the run. Documents appended before
// the failure stay in the index.
func (r *Retriever) InitializeIndex(ctx context.Context) (IngestStats, error) {
	result, err, _ := r.group.Do(initializeKey, func() (any, error) {
		return r.ingest(ctx)
	})

	stats, _ := result.(IngestStats)
	return stats, err
}

// Retrieve returns the topK chunks most similar to query.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredRecord, error) {
	if topK <= 0 || r.index.Count() == 0 {
		return []domain.ScoredRecord{}, nil
	}

	ctx, span := r.tracer.Start(ctx, "rag.retrieve")
	defer span.End()

	embedding, err := r.embedder.Generate(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query embedding failed")
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := r.index.SimilaritySearch(embedding, topK)
	span.SetAttributes(attribute.Int("rag.results", len(results)))
	return results, nil
}

func (r *Retriever) ingest(ctx context.Context) (IngestStats, error) {
	logger := observability.FromContext(ctx)
	started := time.Now()

	if count := r.index.Count(); count > 0 {
		logger.Info("vector index already populated, skipping ingestion", observability.Int("records", count))
		return IngestStats{Skipped: true}, nil
	}

	ctx, span := r.tracer.Start(ctx, "rag.initialize_index")
	defer span.End()

	paths, err := r.resolveSources(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source resolution failed")
		return IngestStats{}, err
	}

	var stats IngestStats
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		chunks, err := r.ingestDocument(ctx, path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "ingestion aborted")
			logger.Error("ingestion aborted",
				observability.String("document", path),
				observability.Int("documents_ingested", stats.Documents),
				observability.Error(err))
			return stats, err
		}

		stats.Documents++
		stats.Chunks += chunks
	}

	stats.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("rag.documents", stats.Documents),
		attribute.Int("rag.chunks", stats.Chunks),
	)
	logger.Info("vector index initialized",
		observability.Int("documents", stats.Documents),
		observability.Int("chunks", stats.Chunks),
		observability.String("embedder", r.embedder.Name()),
		observability.Duration("duration", stats.Duration))

	return stats, nil
}

func (r *Retriever) resolveSources(ctx context.Context) ([]string, error) {
	var paths []string
	for _, pattern := range r.cfg.Sources {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			observability.FromContext(ctx).Warn("source pattern matched no documents",
				observability.String("pattern", pattern))
		}
		paths = append(paths, matches...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func (r *Retriever) ingestDocument(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	chunks, err := SplitText(string(content), r.cfg.ChunkSize, r.cfg.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	records, err := r.embedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed document %s: %w", path, err)
	}

	r.index.AddVectors(records)
	return len(records), nil
}

// embedChunks embeds chunks in parallel and returns records in chunk order.
func (r *Retriever) embedChunks(ctx context.Context, chunks []string) ([]domain.VectorRecord, error) {
	records := make([]domain.VectorRecord, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.EmbedConcurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := r.embedder.Generate(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			records[i] = domain.VectorRecord{Content: chunk, Embedding: embedding}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
