package domain

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schoolhub/aigateway/internal/observability"
)

const tracerName = "github.com/schoolhub/aigateway/internal/domain"

// GatewayConfig controls a GatewayService.
type GatewayConfig struct {
	CacheTTL        time.Duration `env:"CACHE_TTL"                envDefault:"1h"`
	TopK            int           `env:"RAG_TOP_K"                envDefault:"3"`
	ProviderTimeout time.Duration `env:"GATEWAY_PROVIDER_TIMEOUT" envDefault:"0s"`
	DefaultTask     TaskType      `env:"GATEWAY_DEFAULT_TASK"     envDefault:"chat"`
	DefaultIntent   Intent        `env:"GATEWAY_DEFAULT_INTENT"   envDefault:"balanced"`
}

// GatewayService orchestrates cache lookup, retrieval, routing and streaming.
type GatewayService struct {
	cfg       GatewayConfig
	cache     ResponseCache
	retriever ContextRetriever
	router    ProviderSelector
	metrics   Metrics
	tracer    trace.Tracer

	writers sync.WaitGroup
}

// NewGatewayService creates a new gateway service (DI constructor).
// A nil metrics recorder disables metrics.
func NewGatewayService(
	cfg *GatewayConfig,
	cache ResponseCache,
	retriever ContextRetriever,
	router ProviderSelector,
	metrics Metrics,
) *GatewayService {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &GatewayService{
		cfg:       *cfg,
		cache:     cache,
		retriever: retriever,
		router:    router,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
	}
}

// Generate serves a request from the cache or streams a fresh generation.
//
// On a miss the returned stream is live: it is fed while the provider generates.
// A second copy of the same stream is consumed in the background and written to
// the cache when it completes successfully, even if the caller stops reading.
func (g *GatewayService) Generate(ctx context.Context, req GenerationRequest) (*Generation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := CacheKey(req.Role, req.Prompt)
	ctx = observability.WithRole(ctx, string(req.Role))
	ctx = observability.WithCacheKey(ctx, key)

	ctx, span := g.tracer.Start(ctx, "gateway.generate",
		trace.WithAttributes(attribute.String("gateway.role", string(req.Role))))
	defer span.End()

	logger := observability.FromContext(ctx)

	if cached, ok := g.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("gateway.cache_hit", true))
		logger.Info("serving cached response", observability.Int("length", len(cached)))
		return &Generation{Chunks: TextStream(cached), CacheHit: true, Provider: ""}, nil
	}

	augmented := BuildAugmentedPrompt(req.Role, g.retrieveContext(ctx, req.Prompt), req.Prompt)

	provider := g.router.SelectProvider(ctx, g.criteria(req))
	ctx = observability.WithProvider(ctx, provider.Name())
	span.SetAttributes(
		attribute.Bool("gateway.cache_hit", false),
		attribute.String("gateway.provider", provider.Name()),
	)

	genCtx, cancel := g.generationContext(ctx)
	src, err := provider.Generate(genCtx, augmented)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider refused request")
		logger.Error("provider failed to start generation", observability.Error(err))
		src = ErrorStream(err)
	}

	live, background := Tee(ctx, src)

	g.writers.Add(1)
	go g.writeBack(context.WithoutCancel(ctx), key, provider.Name(), background, cancel, time.Now())

	logger.Info("streaming generation", observability.Int("augmented_prompt_length", len(augmented)))

	return &Generation{Chunks: live, CacheHit: false, Provider: provider.Name()}, nil
}

// Wait blocks until every background cache writer has finished.
func (g *GatewayService) Wait() {
	g.writers.Wait()
}

func (g *GatewayService) lookup(ctx context.Context, key string) (string, bool) {
	cached, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		g.metrics.CacheLookup(true)
		return cached, true
	case errors.Is(err, ErrCacheMiss):
		observability.FromContext(ctx).Debug("cache miss")
	default:
		observability.FromContext(ctx).Warn("cache lookup failed, treating as miss",
			observability.Error(err))
	}
	g.metrics.CacheLookup(false)
	return "", false
}

func (g *GatewayService) retrieveContext(ctx context.Context, prompt string) string {
	if g.retriever == nil {
		return ""
	}

	records, err := g.retriever.Retrieve(ctx, prompt, g.cfg.TopK)
	if err != nil {
		g.metrics.RetrievalDegraded()
		observability.FromContext(ctx).Warn("context retrieval failed, continuing without context",
			observability.Error(err))
		return ""
	}

	return JoinContext(records)
}

func (g *GatewayService) criteria(req GenerationRequest) RouteCriteria {
	criteria := RouteCriteria{TaskType: req.TaskType, Intent: req.Intent}
	if criteria.TaskType == "" {
		criteria.TaskType = g.cfg.DefaultTask
	}
	if criteria.Intent == "" {
		criteria.Intent = g.cfg.DefaultIntent
	}
	return criteria
}

// generationContext detaches the provider call from the caller so the background
// branch can finish after the caller goes away.
func (g *GatewayService) generationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if g.cfg.ProviderTimeout > 0 {
		return context.WithTimeout(detached, g.cfg.ProviderTimeout)
	}
	return context.WithCancel(detached)
}

func (g *GatewayService) writeBack(
	ctx context.Context,
	key string,
	providerName string,
	chunks <-chan StreamChunk,
	cancel context.CancelFunc,
	started time.Time,
) {
	defer g.writers.Done()
	defer cancel()

	logger := observability.FromContext(ctx)

	text, err := Collect(chunks)
	g.metrics.GenerationFinished(providerName, err, time.Since(started))
	if err != nil {
		logger.Warn("generation failed, response not cached", observability.Error(err))
		return
	}

	if text == "" {
		logger.Info("empty generation, response not cached")
		return
	}

	err = g.cache.Set(ctx, key, text, g.cfg.CacheTTL)
	g.metrics.CacheWrite(err)
	if err != nil {
		logger.Warn("failed to store response in cache", observability.Error(err))
		return
	}

	logger.Info("response cached",
		observability.Int("length", len(text)),
		observability.Duration("ttl", g.cfg.CacheTTL))
}

type noopMetrics struct{}

func (noopMetrics) CacheLookup(bool)                                {}
func (noopMetrics) CacheWrite(error)                                {}
func (noopMetrics) RetrievalDegraded()                              {}
func (noopMetrics) GenerationFinished(string, error, time.Duration) {}
