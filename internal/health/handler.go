package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler handles health check operations.
type Handler struct {
	storage Checker
	backend string
	logger  *zap.Logger
}

// NewHandler creates a new health handler reporting on the named storage backend.
func NewHandler(storage Checker, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		storage: storage,
		backend: backend,
		logger:  logger,
	}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status  string `json:"status"`
		Storage string `json:"storage"`
		Backend string `json:"backend"`
	}
}

// Check performs a health check of the application and its storage backend.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Backend = h.backend

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("storage health check failed", zap.String("backend", h.backend), zap.Error(err))

		resp.Body.Storage = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Storage = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
