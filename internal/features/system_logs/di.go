package system_logs

import (
	"keygate/internal/util/logger"
)

var systemLogRepository = &SystemLogRepository{}

var systemLogService = &SystemLogService{
	systemLogRepository: systemLogRepository,
	logger:              logger.GetLogger(),
}

var systemLogController = &SystemLogController{
	systemLogService: systemLogService,
}

func GetSystemLogService() *SystemLogService {
	return systemLogService
}

func GetSystemLogController() *SystemLogController {
	return systemLogController
}
