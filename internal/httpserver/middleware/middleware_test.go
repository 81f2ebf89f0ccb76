package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/aigateway/internal/config"
	"github.com/schoolhub/aigateway/internal/httpserver/middleware"
	"github.com/schoolhub/aigateway/internal/observability"
)

type observation struct {
	route  string
	method string
	status int
}

type fakeRecorder struct {
	mu           sync.Mutex
	observations []observation
}

func (f *fakeRecorder) ObserveHTTP(route string, method string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observations = append(f.observations, observation{route: route, method: method, status: status})
}

func TestChain(t *testing.T) {
	t.Run("should apply middlewares outermost first", func(t *testing.T) {
		var order []string
		mark := func(name string) middleware.Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		handler := middleware.Chain(mark("first"), mark("second"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, []string{"first", "second", "handler"}, order)
	})
}

func TestTrace(t *testing.T) {
	t.Run("should inject ids into context and response headers", func(t *testing.T) {
		var traceID, requestID string
		handler := middleware.Trace()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			traceID = observability.GetTraceID(r.Context())
			requestID = observability.GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Len(t, traceID, 32)
		require.NotEmpty(t, requestID)
		require.Equal(t, traceID, rec.Header().Get("X-Trace-Id"))
		require.Equal(t, requestID, rec.Header().Get("X-Request-Id"))
	})
}

func TestCORS(t *testing.T) {
	t.Run("should answer preflight requests", func(t *testing.T) {
		cfg := &config.CORSConfig{
			AllowedOrigins: []string{"https://school.example"},
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         60,
		}
		handler := middleware.CORS(cfg)(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodOptions, "/v1/generate", nil)
		req.Header.Set("Origin", "https://school.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "https://school.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should pass through when config is nil", func(t *testing.T) {
		rec := httptest.NewRecorder()
		middleware.CORS(nil)(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMetrics(t *testing.T) {
	t.Run("should record the matched route pattern and status", func(t *testing.T) {
		recorder := &fakeRecorder{}
		r := chi.NewRouter()
		r.Use(middleware.Metrics(recorder))
		r.Put("/v1/providers/{id}/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/v1/providers/x/health", nil))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, []observation{
			{route: "/v1/providers/{id}/health", method: http.MethodPut, status: http.StatusNotFound},
			{route: "/health", method: http.MethodGet, status: http.StatusOK},
		}, recorder.observations)
	})
}
