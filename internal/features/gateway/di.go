package gateway

import (
	"keygate/internal/config"
	api_keys "keygate/internal/features/api_keys"
	usage "keygate/internal/features/usage"
	"keygate/internal/util/logger"
	rate_limit "keygate/internal/util/rate_limit"
)

var gatewayService = &GatewayService{
	apiKeyService: api_keys.GetApiKeyService(),
	rateLimiter:   usage.GetRateLimiter(),
	usageService:  usage.GetUsageService(),
	floodGuard:    rate_limit.NewFloodGuard(),
	gateRpsLimit:  config.GetEnv().GateRpsLimit,
	logger:        logger.GetLogger(),
}

var relayService = NewRelayService(map[string]string{
	"openai":    config.GetEnv().OpenAIUpstreamURL,
	"anthropic": config.GetEnv().AnthropicUpstreamURL,
	"google":    config.GetEnv().GoogleUpstreamURL,
}, logger.GetLogger())

var gatewayController = &GatewayController{
	gatewayService: gatewayService,
	relayService:   relayService,
}

func GetGatewayService() *GatewayService {
	return gatewayService
}

func GetGatewayController() *GatewayController {
	return gatewayController
}
