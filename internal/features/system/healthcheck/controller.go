package system_healthcheck

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckController struct {
	healthcheckService *HealthcheckService
}

func (c *HealthcheckController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.GetHealth)
}

// GetHealth
// @Summary Health check
// @Description Report database, cache and host resource status
// @Tags system
// @Produce json
// @Success 200 {object} HealthReport
// @Failure 503 {object} HealthReport
// @Router /health [get]
func (c *HealthcheckController) GetHealth(ctx *gin.Context) {
	report := c.healthcheckService.CheckHealth()

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, report)
}
