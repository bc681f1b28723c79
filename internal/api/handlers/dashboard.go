package handlers

import (
	"net/http"

	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/service"
)

// DashboardHandler serves the aggregate profit and ledger view.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Dashboard handles GET requests for overall totals, the per-user ledger,
// per-purchase results and their reconciliation.
//
// Endpoint: GET /api/dashboard
// Response: 200 OK with model.Dashboard
// Error: 500 Internal Server Error if the ledger cannot be loaded
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetDashboard.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dashboard)
}
