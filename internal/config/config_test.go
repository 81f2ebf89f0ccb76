package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/config"
	"github.com/schoolhub/aigateway/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		os.Clearenv()

		cfg := config.Load()

		require.NotNil(t, cfg)

		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30, cfg.Server.ReadTimeout)
		require.Equal(t, 300, cfg.Server.WriteTimeout)
		require.Contains(t, cfg.CORS.ExposedHeaders, "X-Gateway-Cache")

		require.Equal(t, time.Hour, cfg.Gateway.CacheTTL)
		require.Equal(t, 3, cfg.Gateway.TopK)
		require.Equal(t, domain.TaskChat, cfg.Gateway.DefaultTask)
		require.Equal(t, domain.IntentBalanced, cfg.Gateway.DefaultIntent)
		require.Zero(t, cfg.Gateway.ProviderTimeout)

		require.Equal(t, "memory", cfg.Cache.Backend)
		require.Equal(t, []string{"knowledge/*.md", "knowledge/*.txt"}, cfg.RAG.Sources)
		require.Equal(t, 500, cfg.RAG.ChunkSize)
		require.Equal(t, 50, cfg.RAG.ChunkOverlap)
		require.Equal(t, "hashing", cfg.Embedding.Provider)
		require.Equal(t, 30*time.Second, cfg.Embedding.OpenAI.Timeout)
		require.Equal(t, domain.ProviderGeneralPurpose, cfg.Routing.DefaultProvider)
		require.False(t, cfg.Routing.OfflineMode)
		require.Equal(t, 30*time.Second, cfg.Health.Interval)
		require.Equal(t, "none", cfg.Telemetry.ExporterType)
		require.Equal(t, "info", cfg.Log.Level)

		require.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
		require.Equal(t, 60, cfg.OpenAI.Timeout)
		require.Equal(t, 3, cfg.OpenAI.MaxRetries)
		require.Empty(t, cfg.OpenAI.APIKey)
		require.Empty(t, cfg.Local.BaseURL)
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("OPENAI_API_KEY", "sk-test-key")
		t.Setenv("OPENAI_TIMEOUT", "120")
		t.Setenv("EMBEDDING_TIMEOUT", "5s")
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("CACHE_TTL", "10m")
		t.Setenv("RAG_SOURCES", "docs/*.md")
		t.Setenv("ROUTER_OFFLINE_MODE", "true")
		t.Setenv("LOCAL_LLM_BASE_URL", "http://ollama.lan:11434")

		cfg := config.Load()

		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
		require.Equal(t, "sk-test-key", cfg.Embedding.OpenAI.APIKey)
		require.Equal(t, 120, cfg.OpenAI.Timeout)
		require.Equal(t, 5*time.Second, cfg.Embedding.OpenAI.Timeout)
		require.Equal(t, "redis", cfg.Cache.Backend)
		require.Equal(t, 10*time.Minute, cfg.Gateway.CacheTTL)
		require.Equal(t, []string{"docs/*.md"}, cfg.RAG.Sources)
		require.True(t, cfg.Routing.OfflineMode)
		require.Equal(t, "http://ollama.lan:11434", cfg.Local.BaseURL)
	})
}

func TestParseDependenciesConfig(t *testing.T) {
	t.Run("should point at the loaded sub-configs", func(t *testing.T) {
		cfg := &config.Config{}

		deps := config.ParseDependenciesConfig(cfg)

		require.Same(t, &cfg.Server, deps.Server)
		require.Same(t, &cfg.Gateway, deps.Gateway)
		require.Same(t, &cfg.Local, deps.Local)
	})
}
