package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/lineupsheet/internal/api/response"
	"github.com/mcoot/lineupsheet/internal/storage"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports service and storage health
type HealthHandler struct {
	storage        storage.Storage
	storageType    string
	memoryFallback bool
	logger         *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Storage, storageType string, memoryFallback bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:        store,
		storageType:    storageType,
		memoryFallback: memoryFallback,
		logger:         logger,
	}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	body := response.Health{
		Status:         "ok",
		Storage:        h.storageType,
		MemoryFallback: h.memoryFallback,
	}

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("storage ping failed", slog.String("error", err.Error()))
		body.Status = "unavailable"
		response.JSON(w, http.StatusServiceUnavailable, body)
		return
	}

	response.JSON(w, http.StatusOK, body)
}
