package api_keys

import (
	"encoding/json"
	"fmt"
	"net/http"

	"keygate/internal/config"
	admin_middleware "keygate/internal/features/admin/middleware"
	test_utils "keygate/internal/util/testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CreateApiKeyTestRouter mounts the admin key routes behind the token
// middleware. The creation limiter is widened so tests can create keys
// back to back.
func CreateApiKeyTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	controller := &ApiKeyController{
		apiKeyService: GetApiKeyService(),
		createLimiter: rate.NewLimiter(rate.Limit(1000), 1000),
	}

	router := gin.New()
	admin := router.Group("/api/v1/admin")
	admin.Use(admin_middleware.AdminTokenMiddleware())
	controller.RegisterRoutes(admin)

	return router
}

func AdminAuthHeader() string {
	return "Bearer " + config.GetEnv().AdminToken
}

func CreateTestApiKey(name string, dailyLimit int, router *gin.Engine) *ApiKey {
	request := CreateApiKeyRequestDTO{
		Name:       name,
		DailyLimit: dailyLimit,
	}

	w := test_utils.MakeAPIRequest(
		router,
		"POST",
		"/api/v1/admin/api-keys",
		AdminAuthHeader(),
		request,
	)

	if w.Code != http.StatusOK {
		fmt.Printf("Failed to create API key. Status: %d, Body: %s\n", w.Code, w.Body.String())
		panic("Failed to create API key via API")
	}

	var response ApiKey
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		panic(err)
	}

	return &response
}
