package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/services"
)

// DashboardController serves the aggregate views
type DashboardController struct {
	ledger *services.Ledger
}

// NewDashboardController creates a dashboard controller over ledger
func NewDashboardController(ledger *services.Ledger) *DashboardController {
	return &DashboardController{ledger: ledger}
}

// GetDashboard handles GET /api/v1/dashboard - stats, revenue chart and channel share
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.BuildDashboard(dc.ledger.List()),
	})
}

// GetStats handles GET /api/v1/dashboard/stats
func (dc *DashboardController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dc.ledger.Stats(),
	})
}
