package usage

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UsageController struct {
	usageService *UsageService
}

func (c *UsageController) RegisterRoutes(router *gin.RouterGroup) {
	statsRoutes := router.Group("/stats")

	statsRoutes.GET("", c.GetStats)
}

// GetStats
// @Summary Get usage statistics
// @Description Aggregate daily stats grouped by (date, provider), newest date first
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param keyId query string false "Filter by API key ID"
// @Param provider query string false "Filter by provider (openai, anthropic, google); 'all' or empty for all"
// @Param days query int false "Window in days" default(7)
// @Success 200 {object} GetStatsResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /admin/stats [get]
func (c *UsageController) GetStats(ctx *gin.Context) {
	request := &GetStatsRequestDTO{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.usageService.GetStats(request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
