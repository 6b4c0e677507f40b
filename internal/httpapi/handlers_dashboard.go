package httpapi

import (
	"context"
	"net/http"

	"github.com/PabloPavan/pharmaerp_api/internal/dashboard"
)

type DashboardService interface {
	Summary(ctx context.Context) (dashboard.Summary, error)
}

type DashboardHandler struct {
	Service DashboardService
}

// Get Dashboard
// @Summary Dashboard summary
// @Description Customer and active item counts, open orders and shipped revenue for the current month.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dashboard.Summary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) error {
	sum, err := h.Service.Summary(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, sum)
	return nil
}
