package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/services"
)

// DashboardHandler serves the aggregated analytics endpoints.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview returns the admin analytics snapshot for the requested
// timeframe (?timeframe=today|week|month|quarter|year, default month).
func (h *DashboardHandler) Overview(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", services.TimeframeMonth)

	overview, err := h.dashboardService.Overview(c.Request.Context(), timeframe)
	if err != nil {
		logger.Log.Error("dashboard aggregation failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}

// Member returns the caller's personal task statistics.
func (h *DashboardHandler) Member(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	overview, err := h.dashboardService.MemberOverview(identity)
	if err != nil {
		logger.Log.Error("member dashboard failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}
