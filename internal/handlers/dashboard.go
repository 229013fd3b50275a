package handlers

import (
	"net/http"

	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Summary(r.Context(), session(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}
