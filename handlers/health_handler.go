package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/newsletter/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the readiness check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     DatabaseChecker
	logger *zap.Logger
}

// DatabaseChecker reports whether the database can serve queries.
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// service runs without a database.
func NewHealthHandler(db DatabaseChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleHealthCheck handles GET /health_check.
// Liveness only: always 200 with an empty body.
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteEmpty(w, http.StatusOK)
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.db == nil {
		checks["database"] = "not_configured"
	} else if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	status := "healthy"
	if !allHealthy {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	var err error
	if allHealthy {
		err = utils.WriteOK(w, response)
	} else {
		err = utils.WriteJSON(w, http.StatusServiceUnavailable, utils.SuccessResponse{Data: response})
	}
	if err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
