package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/config"
	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/health"
	"github.com/schoolhub/aigateway/internal/httpserver"
	"github.com/schoolhub/aigateway/internal/httpserver/middleware"
	"github.com/schoolhub/aigateway/internal/metrics"
	"github.com/schoolhub/aigateway/internal/mocks"
	"github.com/schoolhub/aigateway/internal/provider/registry"
	"github.com/schoolhub/aigateway/internal/vectorindex"
)

type fixture struct {
	routes  http.Handler
	gateway *domain.GatewayService
	cache   *mocks.MockResponseCache
	router  *mocks.MockProviderSelector
	health  *health.Registry
	index   *vectorindex.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cache := mocks.NewMockResponseCache(t)
	router := mocks.NewMockProviderSelector(t)

	providers := registry.NewRegistry()
	stub := mocks.NewMockProvider(t)
	stub.EXPECT().Name().Return(domain.ProviderFastChat).Maybe()
	require.NoError(t, providers.Register(context.Background(), stub))

	healthRegistry := health.NewRegistry([]health.Seed{
		{Provider: domain.ProviderFastChat, Healthy: true, LatencyMs: 300},
		{Provider: domain.ProviderLocalNetwork, Healthy: false, LatencyMs: 150},
	})

	index := vectorindex.New()
	gateway := domain.NewGatewayService(&domain.GatewayConfig{
		CacheTTL:      time.Hour,
		TopK:          3,
		DefaultTask:   domain.TaskChat,
		DefaultIntent: domain.IntentBalanced,
	}, cache, nil, router, nil)
	t.Cleanup(gateway.Wait)

	handler := httpserver.NewHandler(gateway, providers, healthRegistry, index)
	server := httpserver.NewServer(&config.ServerConfig{Port: 0}, handler, middleware.Chain(middleware.Trace()), metrics.New())

	return &fixture{
		routes:  server.Routes(),
		gateway: gateway,
		cache:   cache,
		router:  router,
		health:  healthRegistry,
		index:   index,
	}
}

func (f *fixture) do(method string, path string, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.routes.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandleGenerate(t *testing.T) {
	const body = `{"prompt":"When is the parent meeting?","role":"parent"}`
	key := domain.CacheKey(domain.RoleParent, "When is the parent meeting?")

	t.Run("should stream a fresh generation as events", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, key).Return("", domain.ErrCacheMiss)
		f.cache.EXPECT().Set(mock.Anything, key, "Tuesday at 6pm.", time.Hour).Return(nil)

		provider := mocks.NewMockProvider(t)
		provider.EXPECT().Name().Return(domain.ProviderGeneralPurpose)
		provider.EXPECT().Generate(mock.Anything, mock.Anything).Return(domain.TextStream("Tuesday at 6pm."), nil)
		f.router.EXPECT().SelectProvider(mock.Anything, mock.Anything).Return(provider)

		rec := f.do(http.MethodPost, "/v1/generate", body)
		f.gateway.Wait()

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		require.Equal(t, "MISS", rec.Header().Get(httpserver.HeaderCache))
		require.Equal(t, domain.ProviderGeneralPurpose, rec.Header().Get(httpserver.HeaderProvider))
		require.Equal(t,
			"data: {\"delta\":\"Tuesday at 6pm.\",\"done\":false}\n\n"+
				"data: {\"delta\":\"\",\"done\":true}\n\n",
			rec.Body.String())
	})

	t.Run("should mark cache hits", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, key).Return("Tuesday at 6pm.", nil)

		rec := f.do(http.MethodPost, "/v1/generate", body)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "HIT", rec.Header().Get(httpserver.HeaderCache))
		require.Empty(t, rec.Header().Get(httpserver.HeaderProvider))
		require.Contains(t, rec.Body.String(), `"delta":"Tuesday at 6pm."`)
	})

	t.Run("should send provider failures as error events", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, key).Return("", domain.ErrCacheMiss)

		provider := mocks.NewMockProvider(t)
		provider.EXPECT().Name().Return(domain.ProviderHighQuality)
		provider.EXPECT().Generate(mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))
		f.router.EXPECT().SelectProvider(mock.Anything, mock.Anything).Return(provider)

		rec := f.do(http.MethodPost, "/v1/generate", body)
		f.gateway.Wait()

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "event: error\ndata: quota exceeded\n\n", rec.Body.String())
	})

	t.Run("should reject invalid requests", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "malformed json", body: `{"prompt":`},
			{name: "empty prompt", body: `{"prompt":"","role":"teacher"}`},
			{name: "unknown role", body: `{"prompt":"hi","role":"janitor"}`},
			{name: "unknown task", body: `{"prompt":"hi","role":"teacher","task_type":"poetry"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				rec := f.do(http.MethodPost, "/v1/generate", tt.body)

				require.Equal(t, http.StatusBadRequest, rec.Code)
				require.Contains(t, rec.Body.String(), `"error"`)
			})
		}
	})
}

func TestProviderEndpoints(t *testing.T) {
	t.Run("should list registered and tracked providers", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/v1/providers", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Providers []httpserver.ProviderStatus `json:"providers"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Providers, 2)

		require.Equal(t, domain.ProviderFastChat, resp.Providers[0].ID)
		require.True(t, resp.Providers[0].Registered)
		require.True(t, resp.Providers[0].Healthy)
		require.Equal(t, int64(300), resp.Providers[0].LatencyMs)

		require.Equal(t, domain.ProviderLocalNetwork, resp.Providers[1].ID)
		require.False(t, resp.Providers[1].Registered)
		require.False(t, resp.Providers[1].Healthy)
	})

	t.Run("should override health of a registered provider", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/v1/providers/fast-chat/health", `{"healthy":false,"latency_ms":900}`)
		require.Equal(t, http.StatusOK, rec.Code)

		record, ok := f.health.Get(domain.ProviderFastChat)
		require.True(t, ok)
		require.False(t, record.Healthy)
		require.Equal(t, int64(900), record.LatencyMs)
	})

	t.Run("should return not found for unknown providers", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/v1/providers/nope/health", `{"healthy":true}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		_, ok := f.health.Get("nope")
		require.False(t, ok)
	})

	t.Run("should validate the health body", func(t *testing.T) {
		f := newFixture(t)

		require.Equal(t, http.StatusBadRequest,
			f.do(http.MethodPut, "/v1/providers/fast-chat/health", `{"latency_ms":10}`).Code)
		require.Equal(t, http.StatusBadRequest,
			f.do(http.MethodPut, "/v1/providers/fast-chat/health", `{"healthy":true,"latency_ms":-1}`).Code)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	t.Run("should report health", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
		require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("should report index size", func(t *testing.T) {
		f := newFixture(t)
		f.index.AddVectors([]domain.VectorRecord{
			{Content: "a", Embedding: []float64{1, 0}},
			{Content: "b", Embedding: []float64{0, 1}},
		})

		rec := f.do(http.MethodGet, "/v1/index", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"records":2}`, rec.Body.String())
	})

	t.Run("should expose request metrics", func(t *testing.T) {
		f := newFixture(t)
		f.do(http.MethodGet, "/health", "")

		rec := f.do(http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `gateway_http_requests_total{method="GET",route="/health",status="200"} 1`)
	})
}
