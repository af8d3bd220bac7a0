package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/coral-stay/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// StatsProvider defines what the dashboard handler needs. Satisfied by
// *service.StatsService.
type StatsProvider interface {
	ComputeDashboard(ctx context.Context) (service.DashboardStats, error)
}

// DashboardHandler serves the admin aggregates.
type DashboardHandler struct {
	stats StatsProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(stats StatsProvider) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// RegisterRoutes registers the dashboard endpoint. Mounted behind the
// admin role middleware.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// Get computes the dashboard aggregates on demand.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.ComputeDashboard(r.Context())
	if err != nil {
		log.Printf("ERROR: compute dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
