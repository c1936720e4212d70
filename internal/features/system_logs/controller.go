package system_logs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SystemLogController struct {
	systemLogService *SystemLogService
}

func (c *SystemLogController) RegisterRoutes(router *gin.RouterGroup) {
	logRoutes := router.Group("/system-logs")

	logRoutes.GET("", c.GetSystemLogs)
}

// GetSystemLogs
// @Summary Get system logs
// @Description Retrieve administrative event logs with optional level/source filters
// @Tags system-logs
// @Produce json
// @Security BearerAuth
// @Param level query string false "Filter by level (INFO, WARNING, ERROR)"
// @Param source query string false "Filter by source"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Param beforeDate query string false "Filter logs created before this date (RFC3339 format)" format(date-time)
// @Success 200 {object} GetSystemLogsResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /admin/system-logs [get]
func (c *SystemLogController) GetSystemLogs(ctx *gin.Context) {
	request := &GetSystemLogsRequestDTO{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := c.systemLogService.GetSystemLogs(request)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve system logs"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
