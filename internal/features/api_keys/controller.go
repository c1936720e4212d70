package api_keys

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ApiKeyController struct {
	apiKeyService *ApiKeyService
	createLimiter *rate.Limiter
}

func (c *ApiKeyController) RegisterRoutes(router *gin.RouterGroup) {
	apiKeyRoutes := router.Group("/api-keys")

	apiKeyRoutes.POST("", c.CreateApiKey)
	apiKeyRoutes.GET("", c.GetApiKeys)
	apiKeyRoutes.GET("/:apiKeyId", c.GetApiKeyDetails)
	apiKeyRoutes.POST("/:apiKeyId/toggle", c.ToggleApiKeyStatus)
	apiKeyRoutes.DELETE("/:apiKeyId", c.DeleteApiKey)
}

// CreateApiKey
// @Summary Create a new API key
// @Description Create a new API key. The plaintext secret is returned only in this response.
// @Tags api-keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateApiKeyRequestDTO true "API key creation data"
// @Success 200 {object} ApiKey
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /admin/api-keys [post]
func (c *ApiKeyController) CreateApiKey(ctx *gin.Context) {
	if !c.createLimiter.Allow() {
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many key creation requests"})
		return
	}

	var request CreateApiKeyRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.apiKeyService.CreateApiKey(&request)
	if err != nil {
		if errors.Is(err, ErrInvalidKeyConfig) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApiKeys
// @Summary List API keys
// @Description Get all API keys, newest first
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} GetApiKeysResponseDTO
// @Failure 401 {object} map[string]string
// @Router /admin/api-keys [get]
func (c *ApiKeyController) GetApiKeys(ctx *gin.Context) {
	response, err := c.apiKeyService.GetApiKeys()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve API keys"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApiKeyDetails
// @Summary Get API key details
// @Description Get a single API key with its recent call logs and daily stats
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Param apiKeyId path string true "API Key ID"
// @Success 200 {object} ApiKeyDetailResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{apiKeyId} [get]
func (c *ApiKeyController) GetApiKeyDetails(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("apiKeyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	response, err := c.apiKeyService.GetApiKeyDetails(apiKeyID)
	if err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve API key"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ToggleApiKeyStatus
// @Summary Toggle API key status
// @Description Flip a key between ACTIVE and DISABLED
// @Tags api-keys
// @Produce json
// @Security BearerAuth
// @Param apiKeyId path string true "API Key ID"
// @Success 200 {object} ToggleStatusResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{apiKeyId}/toggle [post]
func (c *ApiKeyController) ToggleApiKeyStatus(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("apiKeyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	apiKey, err := c.apiKeyService.ToggleApiKeyStatus(apiKeyID)
	if err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle API key status"})
		return
	}

	ctx.JSON(http.StatusOK, ToggleStatusResponseDTO{
		ID:        apiKey.ID,
		NewStatus: apiKey.Status,
	})
}

// DeleteApiKey
// @Summary Delete API key
// @Description Delete an API key and its call logs and stats
// @Tags api-keys
// @Security BearerAuth
// @Param apiKeyId path string true "API Key ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/api-keys/{apiKeyId} [delete]
func (c *ApiKeyController) DeleteApiKey(ctx *gin.Context) {
	apiKeyID, err := uuid.Parse(ctx.Param("apiKeyId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key ID"})
		return
	}

	if err := c.apiKeyService.DeleteApiKey(apiKeyID); err != nil {
		if errors.Is(err, ErrApiKeyNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "API key deleted successfully"})
}
