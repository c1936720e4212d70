package usage

import (
	"keygate/internal/util/logger"
)

var usageRepository = &UsageRepository{}

var usageService = &UsageService{
	usageRepository: usageRepository,
	logger:          logger.GetLogger(),
}

var rateLimiter = &RateLimiter{
	usageRepository: usageRepository,
}

var usageController = &UsageController{
	usageService: usageService,
}

func GetUsageService() *UsageService {
	return usageService
}

func GetRateLimiter() *RateLimiter {
	return rateLimiter
}

func GetUsageController() *UsageController {
	return usageController
}
