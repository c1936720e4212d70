package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const resolvedKeyContextField = "resolvedApiKey"

// RequireApiKey admits or rejects the request before the relay handler
// runs. On admission the resolved key is attached to the gin context.
func RequireApiKey(gatewayService *GatewayService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		secret := gatewayService.ExtractSecret(ctx)

		resolvedKey, err := gatewayService.Authorize(secret)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrQuotaExceeded) {
				status = http.StatusTooManyRequests
			}

			ctx.AbortWithStatusJSON(status, errorResponse(err))
			return
		}

		ctx.Set(resolvedKeyContextField, resolvedKey)
		ctx.Next()
	}
}

func GetResolvedKeyFromContext(ctx *gin.Context) (*ResolvedKey, bool) {
	value, exists := ctx.Get(resolvedKeyContextField)
	if !exists {
		return nil, false
	}

	resolvedKey, ok := value.(*ResolvedKey)
	return resolvedKey, ok
}
