package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type GatewayController struct {
	gatewayService *GatewayService
	relayService   *RelayService
}

func (c *GatewayController) RegisterRoutes(router *gin.RouterGroup) {
	proxyRoutes := router.Group("/proxy")
	proxyRoutes.Use(RequireApiKey(c.gatewayService))

	proxyRoutes.Any("/:provider/*path", c.Relay)
}

// Relay
// @Summary Relay a call to a provider upstream
// @Description Forward an admitted request to the named provider and record the outcome
// @Tags gateway
// @Accept json
// @Produce json
// @Param provider path string true "Provider name (openai, anthropic, google)"
// @Param X-API-Key header string false "API key secret"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /proxy/{provider}/{path} [post]
func (c *GatewayController) Relay(ctx *gin.Context) {
	resolvedKey, ok := GetResolvedKeyFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse(ErrInvalidCredential))
		return
	}

	provider := ctx.Param("provider")
	path := ctx.Param("path")

	outcome := c.relayService.Forward(ctx, provider, path)

	// A caller that disconnected mid-call leaves no trace in the ledger
	if ctx.Request.Context().Err() != nil {
		return
	}

	c.gatewayService.RecordOutcome(resolvedKey, &CallMetadata{
		ClientIP:      ctx.ClientIP(),
		RequestPath:   ctx.Request.URL.Path,
		RequestMethod: ctx.Request.Method,
	}, outcome)
}
