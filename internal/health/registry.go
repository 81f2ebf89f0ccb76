// Package health tracks provider liveness and latency for routing.
package health

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schoolhub/aigateway/internal/domain"
)

// Seed is an initial health record for one provider.
type Seed struct {
	Provider  string `yaml:"provider"`
	Healthy   bool   `yaml:"healthy"`
	LatencyMs int64  `yaml:"latency_ms"`
}

// Registry implements domain.HealthRegistry.
//
// Readers load an immutable snapshot and never block. Writers copy the
// current snapshot, apply the change and publish the copy.
type Registry struct {
	writeMu  sync.Mutex
	snapshot atomic.Pointer[map[string]domain.HealthRecord]
	now      func() time.Time
}

// NewRegistry creates a registry holding the given seeds.
func NewRegistry(seeds []Seed) *Registry {
	r := &Registry{now: time.Now}

	records := make(map[string]domain.HealthRecord, len(seeds))
	at := r.now()
	for _, seed := range seeds {
		records[seed.Provider] = domain.HealthRecord{
			Healthy:   seed.Healthy,
			LatencyMs: seed.LatencyMs,
			UpdatedAt: at,
		}
	}
	r.snapshot.Store(&records)

	return r
}

// Get returns the record for a provider.
func (r *Registry) Get(providerID string) (domain.HealthRecord, bool) {
	record, ok := (*r.snapshot.Load())[providerID]
	return record, ok
}

// UpdateHealth replaces the record for a provider. Last write wins.
func (r *Registry) UpdateHealth(providerID string, healthy bool, latencyMs int64) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	current := *r.snapshot.Load()
	next := make(map[string]domain.HealthRecord, len(current)+1)
	maps.Copy(next, current)
	next[providerID] = domain.HealthRecord{
		Healthy:   healthy,
		LatencyMs: latencyMs,
		UpdatedAt: r.now(),
	}

	r.snapshot.Store(&next)
}

// Snapshot returns a copy of all records.
func (r *Registry) Snapshot() map[string]domain.HealthRecord {
	return maps.Clone(*r.snapshot.Load())
}
