package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/schoolhub/aigateway/internal/cache"
	"github.com/schoolhub/aigateway/internal/config"
	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/embedding"
	"github.com/schoolhub/aigateway/internal/health"
	"github.com/schoolhub/aigateway/internal/httpserver"
	"github.com/schoolhub/aigateway/internal/httpserver/middleware"
	"github.com/schoolhub/aigateway/internal/metrics"
	"github.com/schoolhub/aigateway/internal/observability"
	"github.com/schoolhub/aigateway/internal/provider/canned"
	"github.com/schoolhub/aigateway/internal/provider/local"
	"github.com/schoolhub/aigateway/internal/provider/openai"
	"github.com/schoolhub/aigateway/internal/provider/registry"
	"github.com/schoolhub/aigateway/internal/rag"
	"github.com/schoolhub/aigateway/internal/routing"
	"github.com/schoolhub/aigateway/internal/telemetry"
	"github.com/schoolhub/aigateway/internal/vectorindex"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container := buildContainer()

	if err := container.Invoke(run); err != nil {
		log.Fatalf("Gateway stopped with error: %v", err)
	}
}

type application struct {
	dig.In

	Logger    *zap.Logger
	Telemetry *telemetry.Config
	Server    *httpserver.Server
	Gateway   *domain.GatewayService
	Retriever *rag.Retriever
	Index     *vectorindex.Index
	Cache     *cache.Backend
	Checker   *health.Checker
	Metrics   *metrics.Registry
}

func run(app application) error {
	defer func() { _ = app.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.FromContext(ctx)

	shutdownTracer, err := telemetry.InitTracer(ctx, app.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	stats, err := app.Retriever.InitializeIndex(ctx)
	if err != nil {
		logger.Error("knowledge index initialization failed, serving without full context",
			observability.Error(err))
	} else {
		logger.Info("knowledge index ready",
			observability.Int("documents", stats.Documents),
			observability.Int("chunks", stats.Chunks),
			observability.Duration("duration", stats.Duration))
	}
	app.Metrics.SetIndexRecords(app.Index.Count())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(app.Server.Start)

	group.Go(func() error {
		return app.Checker.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		return app.Server.Shutdown(shutdownCtx)
	})

	runErr := group.Wait()

	logger.Info("waiting for background cache writes")
	app.Gateway.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, app.Cache.Close(), shutdownTracer(shutdownCtx))
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	provide(container, "config", config.Load)
	provide(container, "config dependencies", config.ParseDependenciesConfig)

	// Observability
	provide(container, "logger", observability.InitLogger)
	provide(container, "metrics", metrics.New)
	provide(container, "metrics recorder", func(m *metrics.Registry) domain.Metrics { return m })

	// Install the logger before anything else logs.
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Response cache
	provide(container, "response cache", func(cfg *cache.Config) (*cache.Backend, error) {
		return cache.New(context.Background(), cfg)
	})
	provide(container, "response cache interface", func(b *cache.Backend) domain.ResponseCache { return b })

	// Retrieval
	provide(container, "vector index", vectorindex.New)
	provide(container, "vector store", func(i *vectorindex.Index) rag.VectorStore { return i })
	provide(container, "index counter", func(i *vectorindex.Index) httpserver.RecordCounter { return i })
	provide(container, "embedding generator", embedding.NewGenerator)
	provide(container, "retriever", rag.NewRetriever)
	provide(container, "context retriever", func(r *rag.Retriever) domain.ContextRetriever { return r })

	// Providers
	provide(container, "provider registry", func() domain.ProviderRegistry {
		return registry.NewRegistry()
	})
	if err := container.Invoke(registerProviders); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	// Routing and health
	provide(container, "routing table", routing.Load)
	provide(container, "health registry", func(file routing.File) *health.Registry {
		return health.NewRegistry(file.Health)
	})
	provide(container, "health registry interface", func(r *health.Registry) domain.HealthRegistry { return r })
	provide(container, "health checker", newHealthChecker)
	provide(container, "model router", func(
		cfg *routing.Config,
		file routing.File,
		providers domain.ProviderRegistry,
		healthRegistry domain.HealthRegistry,
		m *metrics.Registry,
	) (domain.ProviderSelector, error) {
		return routing.NewModelRouter(context.Background(), cfg, file.Rules, providers, healthRegistry, m)
	})

	// Domain Services
	provide(container, "gateway service", domain.NewGatewayService)

	// HTTP Layer
	provide(container, "middleware chain", middleware.BuildMiddlewareChain)
	provide(container, "HTTP handler", httpserver.NewHandler)
	provide(container, "HTTP server", httpserver.NewServer)

	return container
}

func provide(container *dig.Container, name string, constructor any) {
	if err := container.Provide(constructor); err != nil {
		log.Fatalf("Failed to provide %s: %v", name, err)
	}
}

// registerProviders registers the in-process variants unconditionally and the
// network-backed ones when they are configured.
func registerProviders(reg domain.ProviderRegistry, openaiCfg *openai.Config, localCfg *local.Config) error {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	providers := []domain.Provider{
		canned.NewProvider(canned.FastChat()),
		canned.NewProvider(canned.Summarization()),
		canned.NewProvider(canned.CodeGeneration()),
		canned.NewProvider(canned.GeneralPurpose()),
	}

	if p, err := openai.NewProvider(*openaiCfg); err == nil {
		providers = append(providers, p)
	} else {
		logOptional(logger, domain.ProviderHighQuality, err)
	}

	if p, err := local.NewProvider(*localCfg); err == nil {
		providers = append(providers, p)
	} else {
		logOptional(logger, domain.ProviderLocalNetwork, err)
	}

	for _, p := range providers {
		if err := reg.Register(ctx, p); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", p.Name(), err)
		}
	}

	return nil
}

func logOptional(logger *zap.Logger, id string, err error) {
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		logger.Info("optional provider not configured, skipping", observability.String("provider", id))
		return
	}
	logger.Warn("optional provider unavailable, skipping",
		observability.String("provider", id),
		observability.Error(err))
}

// newHealthChecker probes every registered provider that supports Ping.
func newHealthChecker(
	cfg *health.Config,
	providers domain.ProviderRegistry,
	healthRegistry *health.Registry,
	m *metrics.Registry,
) (*health.Checker, error) {
	ctx := context.Background()

	ids, err := providers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}

	targets := make(map[string]domain.Pinger)
	for _, id := range ids {
		p, getErr := providers.Get(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get provider %s: %w", id, getErr)
		}
		if pinger, ok := p.(domain.Pinger); ok {
			targets[id] = pinger
		}
	}

	return health.NewChecker(cfg, healthRegistry, targets, m), nil
}
