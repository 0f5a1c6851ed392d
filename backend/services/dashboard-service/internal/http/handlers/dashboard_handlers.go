package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"energyprofile/backend/services/dashboard-service/internal/service"
)

const maxReadingsLimit = 100000

// DashboardHandlers serves the dashboard view models.
type DashboardHandlers struct {
	service *service.DashboardService
	logger  *zap.Logger
}

// NewDashboardHandlers returns handlers.
func NewDashboardHandlers(svc *service.DashboardService, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{service: svc, logger: logger}
}

// Status handles GET /api/status. It answers 200 in every lifecycle state.
func (h *DashboardHandlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status())
}

// Header handles GET /api/header.
func (h *DashboardHandlers) Header(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Header()
	if err != nil {
		writeDatasetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Dashboard handles GET /api/dashboard.
func (h *DashboardHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Dashboard()
	if err != nil {
		writeDatasetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Analytics handles GET /api/analytics.
func (h *DashboardHandlers) Analytics(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Analytics()
	if err != nil {
		writeDatasetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Cost handles GET /api/cost.
func (h *DashboardHandlers) Cost(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Cost()
	if err != nil {
		writeDatasetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Readings handles GET /api/readings?limit=N.
func (h *DashboardHandlers) Readings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > maxReadingsLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 0 and 100000")
			return
		}
		limit = parsed
	}

	readings, err := h.service.Readings(limit)
	if err != nil {
		writeDatasetError(w, err)
		return
	}
	h.logger.Debug("serving readings", zap.Int("count", len(readings)), zap.Int("limit", limit))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"readings": readings,
	})
}
