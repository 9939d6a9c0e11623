package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicesxpert/backend/internal/application/invoicing"
)

// DashboardHandler serves the dashboard summary
type DashboardHandler struct {
	BaseHandler
	dashboardService *invoicingapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *invoicingapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @ID           getDashboard
// @Summary      Dashboard summary
// @Description  Counts, the five most recent invoices, and paid/outstanding/revenue totals per currency.
// @Tags         dashboard
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Success      200 {object} APIResponse[invoicingapp.DashboardResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), getSession(c).OwnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
