package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

// QueryAgent is the slice of the agent the HTTP layer depends on.
type QueryAgent interface {
	ProcessQuery(ctx context.Context, query string) *domain.QueryResult
	Status(ctx context.Context) *domain.StatusReport
}

// QueryRequest is the body of a query submission.
type QueryRequest struct {
	Query string `json:"query"`
}

// Handler handles HTTP requests.
type Handler struct {
	agent QueryAgent
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(agent QueryAgent) *Handler {
	return &Handler{
		agent: agent,
	}
}

// HandleQuery processes query requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request.
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query must not be empty", http.StatusBadRequest)
		return
	}

	// Inject query into context for downstream logging.
	ctx = observability.WithQuery(ctx, req.Query)

	logger := observability.FromContext(ctx)
	logger.Info("query request received", zap.String("query", req.Query))

	result := h.agent.ProcessQuery(ctx, req.Query)

	logger.Info("query processed",
		zap.String("result_type", string(result.Type)),
		zap.Bool("cached", result.Cached),
		zap.Float64("processing_time", result.ProcessingTime),
	)

	writeJSON(ctx, w, result)
}

// HandleStatus reports component health and cache statistics.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(ctx, w, h.agent.Status(ctx))
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "websage",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}
