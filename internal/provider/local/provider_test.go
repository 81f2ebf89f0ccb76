package local_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/provider/local"
)

func newServer(t *testing.T, handler http.HandlerFunc) *local.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := local.NewProvider(local.Config{BaseURL: server.URL + "/", Model: "llama3.2", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return provider
}

func TestNewProvider(t *testing.T) {
	t.Run("should require base url", func(t *testing.T) {
		_, err := local.NewProvider(local.Config{Model: "llama3.2"})

		require.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})

	t.Run("should require model", func(t *testing.T) {
		_, err := local.NewProvider(local.Config{BaseURL: "http://localhost:11434"})

		require.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	})

	t.Run("should expose stable id", func(t *testing.T) {
		provider, err := local.NewProvider(local.Config{BaseURL: "http://localhost:11434", Model: "llama3.2"})

		require.NoError(t, err)
		require.Equal(t, domain.ProviderLocalNetwork, provider.Name())
	})
}

func TestProvider_Generate(t *testing.T) {
	t.Run("should stream newline delimited chunks", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/generate", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "llama3.2", body["model"])
			require.Equal(t, "Where is the library?", body["prompt"])
			require.Equal(t, true, body["stream"])

			_, _ = w.Write([]byte(`{"response":"Second ","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"response":"floor.","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"response":"","done":true}` + "\n"))
		})

		chunks, err := provider.Generate(context.Background(), "Where is the library?")
		require.NoError(t, err)

		text, err := domain.Collect(chunks)
		require.NoError(t, err)
		require.Equal(t, "Second floor.", text)
	})

	t.Run("should fail immediately on rejected request", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		})

		_, err := provider.Generate(context.Background(), "hi")

		require.Error(t, err)
		require.Contains(t, err.Error(), "404")
	})

	t.Run("should surface server error line", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"response":"par","done":false}` + "\n"))
			_, _ = w.Write([]byte(`{"error":"out of memory"}` + "\n"))
		})

		chunks, err := provider.Generate(context.Background(), "hi")
		require.NoError(t, err)

		text, err := domain.Collect(chunks)
		require.Error(t, err)
		require.Contains(t, err.Error(), "out of memory")
		require.Equal(t, "par", text)
	})

	t.Run("should report truncation when body ends early", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"response":"cut","done":false}` + "\n"))
		})

		chunks, err := provider.Generate(context.Background(), "hi")
		require.NoError(t, err)

		_, err = domain.Collect(chunks)
		require.ErrorIs(t, err, domain.ErrStreamTruncated)
	})
}

func TestProvider_Ping(t *testing.T) {
	t.Run("should succeed when tags endpoint answers", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[]}`))
		})

		require.NoError(t, provider.Ping(context.Background()))
	})

	t.Run("should fail on server error", func(t *testing.T) {
		provider := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		require.Error(t, provider.Ping(context.Background()))
	})
}
