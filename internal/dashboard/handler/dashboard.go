package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/dashboard/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// StatsService computes dashboard statistics
type StatsService interface {
	Stats(ctx context.Context) (*service.Stats, error)
}

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service StatsService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc StatsService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the dashboard endpoints
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/stats", h.GetStats)
}

// GetStats returns dashboard statistics
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
