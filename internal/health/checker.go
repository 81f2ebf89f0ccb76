package health

import (
	"context"
	"sync"
	"time"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Config controls the probe loop.
type Config struct {
	Interval time.Duration `env:"HEALTH_PROBE_INTERVAL" envDefault:"30s"`
	Timeout  time.Duration `env:"HEALTH_PROBE_TIMEOUT"  envDefault:"5s"`
}

// Observer is notified of every probe result.
type Observer interface {
	ProviderHealth(providerID string, healthy bool, latency time.Duration)
}

// Updater receives probe results.
type Updater interface {
	UpdateHealth(providerID string, healthy bool, latencyMs int64)
}

// Checker periodically pings providers and records the outcome.
type Checker struct {
	cfg      Config
	updater  Updater
	targets  map[string]domain.Pinger
	observer Observer
}

// NewChecker creates a checker for the providers in targets, keyed by provider id.
// observer may be nil.
func NewChecker(cfg *Config, updater Updater, targets map[string]domain.Pinger, observer Observer) *Checker {
	return &Checker{
		cfg:      *cfg,
		updater:  updater,
		targets:  targets,
		observer: observer,
	}
}

// Run probes once immediately and then on every interval until ctx is done.
// It returns nil at once when the interval is zero or there is nothing to probe.
func (c *Checker) Run(ctx context.Context) error {
	logger := observability.FromContext(ctx)

	if c.cfg.Interval <= 0 || len(c.targets) == 0 {
		logger.Info("health probe loop disabled",
			observability.Duration("interval", c.cfg.Interval),
			observability.Int("targets", len(c.targets)))
		return nil
	}

	logger.Info("health probe loop started",
		observability.Duration("interval", c.cfg.Interval),
		observability.Int("targets", len(c.targets)))

	c.ProbeOnce(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("health probe loop stopped")
			return nil
		case <-ticker.C:
			c.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce pings every target in parallel and waits for all results.
func (c *Checker) ProbeOnce(ctx context.Context) {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var wg sync.WaitGroup
	for id, target := range c.targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.probe(ctx, id, target, timeout)
		}()
	}
	wg.Wait()
}

func (c *Checker) probe(ctx context.Context, id string, target domain.Pinger, timeout time.Duration) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := target.Ping(probeCtx)
	latency := time.Since(started)

	healthy := err == nil
	c.updater.UpdateHealth(id, healthy, latency.Milliseconds())
	if c.observer != nil {
		c.observer.ProviderHealth(id, healthy, latency)
	}

	if !healthy {
		observability.FromContext(ctx).Warn("provider probe failed",
			observability.String("provider", id),
			observability.Duration("latency", latency),
			observability.Error(err))
	}
}
