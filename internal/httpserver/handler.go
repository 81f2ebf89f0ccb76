package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/observability"
)

// Response headers describing how a generation was served.
const (
	HeaderCache    = "X-Gateway-Cache"
	HeaderProvider = "X-Gateway-Provider"
)

// RecordCounter reports the size of the vector index.
type RecordCounter interface {
	Count() int
}

// Handler handles HTTP requests.
type Handler struct {
	gateway   *domain.GatewayService
	providers domain.ProviderRegistry
	health    domain.HealthRegistry
	index     RecordCounter
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	gateway *domain.GatewayService,
	providers domain.ProviderRegistry,
	health domain.HealthRegistry,
	index RecordCounter,
) *Handler {
	return &Handler{
		gateway:   gateway,
		providers: providers,
		health:    health,
		index:     index,
	}
}

// ProviderStatus is one entry of the provider listing.
type ProviderStatus struct {
	ID         string     `json:"id"`
	Registered bool       `json:"registered"`
	Healthy    bool       `json:"healthy"`
	LatencyMs  int64      `json:"latency_ms"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// HealthUpdate is the body of a provider health override.
type HealthUpdate struct {
	Healthy   *bool `json:"healthy"`
	LatencyMs int64 `json:"latency_ms"`
}

// HandleGenerate streams a generation as server-sent events.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("generation request received",
		observability.String("role", string(req.Role)),
		observability.String("task_type", string(req.TaskType)),
		observability.String("intent", string(req.Intent)),
	)

	gen, err := h.gateway.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("generation failed", observability.Error(err))
		writeError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		writeError(ctx, w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if gen.CacheHit {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
		w.Header().Set(HeaderProvider, gen.Provider)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	streamEvents(ctx, w, flusher, gen.Chunks)
}

func streamEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, chunks <-chan domain.StreamChunk) {
	logger := observability.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("client went away, stream abandoned", observability.Error(ctx.Err()))
			return

		case chunk, ok := <-chunks:
			if !ok {
				logger.Warn("stream closed without terminal chunk")
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", domain.ErrStreamTruncated.Error())
				flusher.Flush()
				return
			}

			if chunk.Error != nil {
				logger.Error("stream chunk error", observability.Error(chunk.Error))
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", chunk.Error.Error())
				flusher.Flush()
				return
			}

			data, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

			if chunk.Done {
				logger.Info("stream completed")
				return
			}
		}
	}
}

// HandleHealth handles liveness checks.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleListProviders returns every registered or tracked provider with its health.
func (h *Handler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registered, err := h.providers.List(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot := h.health.Snapshot()
	statuses := make(map[string]ProviderStatus, len(snapshot)+len(registered))
	for id, record := range snapshot {
		updatedAt := record.UpdatedAt
		statuses[id] = ProviderStatus{
			ID:        id,
			Healthy:   record.Healthy,
			LatencyMs: record.LatencyMs,
			UpdatedAt: &updatedAt,
		}
	}
	for _, id := range registered {
		status := statuses[id]
		status.ID = id
		status.Registered = true
		statuses[id] = status
	}

	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]ProviderStatus, 0, len(ids))
	for _, id := range ids {
		out = append(out, statuses[id])
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"providers": out})
}

// HandleUpdateHealth overrides the health record of a registered provider.
func (h *Handler) HandleUpdateHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := h.providers.Get(ctx, id); err != nil {
		writeError(ctx, w, http.StatusNotFound, fmt.Sprintf("provider %q is not registered", id))
		return
	}

	var update HealthUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if update.Healthy == nil {
		writeError(ctx, w, http.StatusBadRequest, "healthy is required")
		return
	}
	if update.LatencyMs < 0 {
		writeError(ctx, w, http.StatusBadRequest, "latency_ms cannot be negative")
		return
	}

	h.health.UpdateHealth(id, *update.Healthy, update.LatencyMs)
	record, _ := h.health.Get(id)

	observability.FromContext(ctx).Info("provider health overridden",
		observability.String("provider", id),
		observability.Bool("healthy", record.Healthy),
		observability.Int64("latency_ms", record.LatencyMs))

	writeJSON(ctx, w, http.StatusOK, ProviderStatus{
		ID:         id,
		Registered: true,
		Healthy:    record.Healthy,
		LatencyMs:  record.LatencyMs,
		UpdatedAt:  &record.UpdatedAt,
	})
}

// HandleIndexStats reports the size of the vector index.
func (h *Handler) HandleIndexStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]int{"records": h.index.Count()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status already written, just log.
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"error": message})
}
