package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/schoolhub/aigateway/internal/observability"
)

func TestFromContext(t *testing.T) {
	t.Run("should attach request fields from context", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		restore := observability.ReplaceLogger(zap.New(core))
		t.Cleanup(restore)

		ctx := observability.WithRequestID(context.Background(), "req-1")
		ctx = observability.WithRole(ctx, "teacher")
		ctx = observability.WithProvider(ctx, "fast-chat")
		ctx = observability.WithCacheKey(ctx, "abc")

		observability.FromContext(ctx).Info("hello")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		require.Equal(t, "req-1", fields["request_id"])
		require.Equal(t, "teacher", fields["role"])
		require.Equal(t, "fast-chat", fields["provider"])
		require.Equal(t, "abc", fields["cache_key"])
		require.NotContains(t, fields, "trace_id")
	})
}

func TestContextValues(t *testing.T) {
	t.Run("should return empty strings when unset", func(t *testing.T) {
		ctx := context.Background()

		require.Empty(t, observability.GetTraceID(ctx))
		require.Empty(t, observability.GetRole(ctx))
		require.Empty(t, observability.GetCacheKey(ctx))
	})

	t.Run("should generate ids of the expected shape", func(t *testing.T) {
		require.Len(t, observability.GenerateTraceID(), 32)
		require.Len(t, observability.GenerateSpanID(), 16)
		require.NotEqual(t, observability.GenerateRequestID(), observability.GenerateRequestID())
	})
}

func TestInitLogger(t *testing.T) {
	t.Run("should honor the configured level", func(t *testing.T) {
		logger, err := observability.InitLogger(&observability.LogConfig{Level: "warn"})
		require.NoError(t, err)
		t.Cleanup(observability.ReplaceLogger(zap.NewNop()))

		require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("should reject unknown levels", func(t *testing.T) {
		_, err := observability.InitLogger(&observability.LogConfig{Level: "loud"})

		require.Error(t, err)
	})
}
