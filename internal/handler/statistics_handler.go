package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
)

// StatisticsHandler serves installation-wide counts.
type StatisticsHandler struct {
	statisticsService *service.StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// GetStatistics godoc
// GET /api/v1/statistics
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	stats, err := h.statisticsService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}
