package handler

import (
	"net/http"

	"gestmed/internal/usecase"
	"gestmed/pkg/response"
)

type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUsecase: dashboardUsecase}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardUsecase.Get(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to get dashboard")
		return
	}

	response.OK(w, dashboard)
}
