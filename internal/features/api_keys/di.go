package api_keys

import (
	"keygate/internal/cache"
	system_logs "keygate/internal/features/system_logs"
	usage "keygate/internal/features/usage"
	cache_utils "keygate/internal/util/cache"
	"keygate/internal/util/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var apiKeyRepository = &ApiKeyRepository{}

var apiKeyService = &ApiKeyService{
	apiKeyRepository: apiKeyRepository,
	usageService:     usage.GetUsageService(),
	systemLogService: system_logs.GetSystemLogService(),
	apiKeyCacheUtil:  cache_utils.NewCacheUtil[CachedApiKey](cache.GetCache(), "kg_apikey:"),
	singleflight:     singleflight.Group{},
	logger:           logger.GetLogger(),
}

var apiKeyController = &ApiKeyController{
	apiKeyService: apiKeyService,
	createLimiter: rate.NewLimiter(rate.Limit(3), 3), // 3 RPS with burst of 3
}

func GetApiKeyService() *ApiKeyService {
	return apiKeyService
}

func GetApiKeyController() *ApiKeyController {
	return apiKeyController
}
