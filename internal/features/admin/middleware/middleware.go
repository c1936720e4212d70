package admin_middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"keygate/internal/config"

	"github.com/gin-gonic/gin"
)

// AdminTokenMiddleware guards the administrative surface with the static
// token from the environment. Comparison is constant time.
func AdminTokenMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		expected := config.GetEnv().AdminToken
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
			return
		}

		ctx.Next()
	}
}
