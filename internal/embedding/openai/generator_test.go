package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/embedding/openai"
)

func TestNewGenerator(t *testing.T) {
	t.Run("should require api key", func(t *testing.T) {
		_, err := openai.NewGenerator(openai.Config{})

		require.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})

	t.Run("should report dimension for model", func(t *testing.T) {
		small, err := openai.NewGenerator(openai.Config{APIKey: "sk-test"})
		require.NoError(t, err)
		require.Equal(t, 1536, small.Dimension())

		large, err := openai.NewGenerator(openai.Config{APIKey: "sk-test", Model: "text-embedding-3-large"})
		require.NoError(t, err)
		require.Equal(t, 3072, large.Dimension())
		require.Equal(t, "openai", large.Name())
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("should return first embedding from api", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/embeddings", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "text-embedding-3-small", body["model"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
				`"data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1]}],` +
				`"usage":{"prompt_tokens":3,"total_tokens":3}}`))
		}))
		defer server.Close()

		generator, err := openai.NewGenerator(openai.Config{APIKey: "sk-test", BaseURL: server.URL}, option.WithMaxRetries(0))
		require.NoError(t, err)

		embedding, err := generator.Generate(context.Background(), "school fees")

		require.NoError(t, err)
		require.Equal(t, []float64{0.25, -0.5, 1}, embedding)
	})

	t.Run("should reject empty text", func(t *testing.T) {
		generator, err := openai.NewGenerator(openai.Config{APIKey: "sk-test"})
		require.NoError(t, err)

		_, err = generator.Generate(context.Background(), "")

		require.Error(t, err)
	})

	t.Run("should wrap api errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer server.Close()

		generator, err := openai.NewGenerator(openai.Config{APIKey: "sk-bad", BaseURL: server.URL}, option.WithMaxRetries(0))
		require.NoError(t, err)

		_, err = generator.Generate(context.Background(), "hello")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create embeddings")
	})
}
