package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/plaidlibs/internal/services"
	"github.com/jwebster45206/plaidlibs/pkg/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	storage    storage.Storage
	llmService services.LLMService
	modelName  string
	logger     *slog.Logger
}

func NewHealthHandler(storage storage.Storage, llmService services.LLMService, modelName string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:    storage,
		llmService: llmService,
		modelName:  modelName,
		logger:     logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if h.llmService != nil {
		ready, err := h.llmService.IsModelReady(ctx, h.modelName)
		switch {
		case err != nil:
			h.logger.Warn("LLM health check failed", "error", err, "model", h.modelName)
			components["llm"] = "unhealthy"
			overallStatus = "degraded"
		case !ready:
			components["llm"] = "not ready"
			overallStatus = "degraded"
		default:
			components["llm"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "plaidlibs",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
	}
}
