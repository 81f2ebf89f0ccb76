package health_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/health"
)

func TestRegistry(t *testing.T) {
	t.Run("should expose seeded records", func(t *testing.T) {
		reg := health.NewRegistry([]health.Seed{
			{Provider: "fast-chat", Healthy: true, LatencyMs: 300},
			{Provider: "local-network", Healthy: false, LatencyMs: 150},
		})

		record, ok := reg.Get("fast-chat")
		require.True(t, ok)
		require.True(t, record.Healthy)
		require.Equal(t, int64(300), record.LatencyMs)
		require.False(t, record.UpdatedAt.IsZero())

		_, ok = reg.Get("unknown")
		require.False(t, ok)
	})

	t.Run("should replace record on update", func(t *testing.T) {
		reg := health.NewRegistry([]health.Seed{{Provider: "fast-chat", Healthy: true, LatencyMs: 300}})

		reg.UpdateHealth("fast-chat", false, 9000)

		record, ok := reg.Get("fast-chat")
		require.True(t, ok)
		require.False(t, record.Healthy)
		require.Equal(t, int64(9000), record.LatencyMs)
	})

	t.Run("should not mutate snapshots already handed out", func(t *testing.T) {
		reg := health.NewRegistry(nil)
		reg.UpdateHealth("a", true, 1)

		before := reg.Snapshot()
		reg.UpdateHealth("a", false, 2)
		reg.UpdateHealth("b", true, 3)

		require.Len(t, before, 1)
		require.True(t, before["a"].Healthy)
		require.Len(t, reg.Snapshot(), 2)
	})

	t.Run("should keep every concurrent write", func(t *testing.T) {
		reg := health.NewRegistry(nil)

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				reg.UpdateHealth(fmt.Sprintf("p-%d", i), true, int64(i))
			}()
			go func() {
				defer wg.Done()
				_, _ = reg.Get("p-0")
			}()
		}
		wg.Wait()

		require.Len(t, reg.Snapshot(), 50)
	})
}
