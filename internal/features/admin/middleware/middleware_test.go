package admin_middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"keygate/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func createProtectedTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	protected := router.Group("/admin")
	protected.Use(AdminTokenMiddleware())
	protected.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return router
}

func makePingRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/admin/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func Test_AdminTokenMiddleware_WhenTokenValid_RequestPasses(t *testing.T) {
	router := createProtectedTestRouter()

	w := makePingRequest(router, "Bearer "+config.GetEnv().AdminToken)

	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_AdminTokenMiddleware_WhenHeaderMissing_ReturnsUnauthorized(t *testing.T) {
	router := createProtectedTestRouter()

	w := makePingRequest(router, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_AdminTokenMiddleware_WhenSchemeNotBearer_ReturnsUnauthorized(t *testing.T) {
	router := createProtectedTestRouter()

	w := makePingRequest(router, config.GetEnv().AdminToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_AdminTokenMiddleware_WhenTokenWrong_ReturnsUnauthorized(t *testing.T) {
	router := createProtectedTestRouter()

	w := makePingRequest(router, "Bearer wrong-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
