// Package routing selects a provider for a request from rules and live health.
package routing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Reasons reported for a routing decision.
const (
	ReasonMatched  = "matched"
	ReasonOffline  = "offline"
	ReasonFallback = "fallback"
)

// ErrDefaultProviderMissing indicates the fallback provider was not registered.
var ErrDefaultProviderMissing = errors.New("default provider is not registered")

// DecisionObserver is notified of every routing decision.
type DecisionObserver interface {
	RouteSelected(providerID string, reason string)
}

type route struct {
	rule     domain.RoutingRule
	provider domain.Provider
}

type candidate struct {
	provider  domain.Provider
	latencyMs int64
}

// ModelRouter implements domain.ProviderSelector.
type ModelRouter struct {
	routes          []route
	health          domain.HealthRegistry
	defaultProvider domain.Provider
	localProvider   domain.Provider
	offline         bool
	observer        DecisionObserver
}

// NewModelRouter resolves every rule against the provider registry.
// Rules naming an unregistered provider are dropped. Construction fails only
// when the default provider is missing. observer may be nil.
func NewModelRouter(
	ctx context.Context,
	cfg *Config,
	rules []domain.RoutingRule,
	providers domain.ProviderRegistry,
	healthRegistry domain.HealthRegistry,
	observer DecisionObserver,
) (*ModelRouter, error) {
	logger := observability.FromContext(ctx)

	defaultProvider, err := providers.Get(ctx, cfg.defaultProvider())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDefaultProviderMissing, cfg.defaultProvider(), err)
	}

	localProvider, err := providers.Get(ctx, cfg.localProvider())
	if err != nil {
		localProvider = nil
		if cfg.OfflineMode {
			logger.Warn("offline mode enabled but local provider is not registered",
				observability.String("provider", cfg.localProvider()))
		}
	}

	routes := make([]route, 0, len(rules))
	for _, rule := range rules {
		provider, getErr := providers.Get(ctx, rule.ProviderID)
		if getErr != nil {
			logger.Warn("dropping routing rule for unavailable provider",
				observability.String("provider", rule.ProviderID),
				observability.String("rule", rule.Description),
				observability.Error(getErr))
			continue
		}
		routes = append(routes, route{rule: rule, provider: provider})
	}

	logger.Info("model router ready",
		observability.Int("rules", len(routes)),
		observability.Int("dropped_rules", len(rules)-len(routes)),
		observability.String("default_provider", defaultProvider.Name()),
		observability.Bool("offline_mode", cfg.OfflineMode))

	return &ModelRouter{
		routes:          routes,
		health:          healthRegistry,
		defaultProvider: defaultProvider,
		localProvider:   localProvider,
		offline:         cfg.OfflineMode,
		observer:        observer,
	}, nil
}

// SelectProvider returns the lowest-latency healthy provider among the rules
// matching criteria. With no such provider it returns the local provider in
// offline mode when that is healthy, and the default provider otherwise.
func (r *ModelRouter) SelectProvider(ctx context.Context, criteria domain.RouteCriteria) domain.Provider {
	logger := observability.FromContext(ctx)

	candidates := r.candidates(criteria)
	if len(candidates) > 0 {
		slices.SortStableFunc(candidates, func(a, b candidate) int {
			return cmp.Compare(a.latencyMs, b.latencyMs)
		})
		best := candidates[0]
		logger.Info("routing decision",
			observability.String("reason", ReasonMatched),
			observability.String("selected_provider", best.provider.Name()),
			observability.Int64("latency_ms", best.latencyMs),
			observability.Int("candidates", len(candidates)))
		r.notify(best.provider.Name(), ReasonMatched)
		return best.provider
	}

	if r.offline && r.localProvider != nil {
		if record, ok := r.health.Get(r.localProvider.Name()); ok && record.Healthy {
			logger.Info("routing decision",
				observability.String("reason", ReasonOffline),
				observability.String("selected_provider", r.localProvider.Name()),
				observability.Int64("latency_ms", record.LatencyMs))
			r.notify(r.localProvider.Name(), ReasonOffline)
			return r.localProvider
		}
	}

	logger.Info("routing decision",
		observability.String("reason", ReasonFallback),
		observability.String("selected_provider", r.defaultProvider.Name()),
		observability.String("task_type", string(criteria.TaskType)),
		observability.String("intent", string(criteria.Intent)))
	r.notify(r.defaultProvider.Name(), ReasonFallback)
	return r.defaultProvider
}

func (r *ModelRouter) candidates(criteria domain.RouteCriteria) []candidate {
	var candidates []candidate
	seen := make(map[string]struct{}, len(r.routes))

	for _, rt := range r.routes {
		if !rt.rule.Criteria.Matches(criteria) {
			continue
		}

		id := rt.provider.Name()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		record, ok := r.health.Get(id)
		if !ok || !record.Healthy {
			continue
		}
		candidates = append(candidates, candidate{provider: rt.provider, latencyMs: record.LatencyMs})
	}

	return candidates
}

func (r *ModelRouter) notify(providerID string, reason string) {
	if r.observer != nil {
		r.observer.RouteSelected(providerID, reason)
	}
}
