package gateway

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	api_keys "keygate/internal/features/api_keys"
	usage "keygate/internal/features/usage"
	"keygate/internal/storage"
	"keygate/internal/util/logger"
	rate_limit "keygate/internal/util/rate_limit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGatewayService() *GatewayService {
	return &GatewayService{
		apiKeyService: api_keys.GetApiKeyService(),
		rateLimiter:   usage.GetRateLimiter(),
		usageService:  usage.GetUsageService(),
		floodGuard:    rate_limit.NewFloodGuard(),
		gateRpsLimit:  0,
		logger:        logger.GetLogger(),
	}
}

func createGatewayTestKey(t *testing.T, name string, dailyLimit int) *api_keys.ApiKey {
	apiKey, err := api_keys.GetApiKeyService().CreateApiKey(&api_keys.CreateApiKeyRequestDTO{
		Name:       name,
		DailyLimit: dailyLimit,
	})
	require.NoError(t, err)

	return apiKey
}

func newExtractionContext(t *testing.T, method, target, contentType string, body []byte) *gin.Context {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	ctx.Request = httptest.NewRequest(method, target, reader)
	if contentType != "" {
		ctx.Request.Header.Set("Content-Type", contentType)
	}

	return ctx
}

// ExtractSecret Tests

func Test_ExtractSecret_WhenHeaderPresent_HeaderWins(t *testing.T) {
	ctx := newExtractionContext(t, "POST", "/proxy/openai/test?api_key=from-query", "application/json",
		[]byte(`{"api_key":"from-body"}`))
	ctx.Request.Header.Set("X-API-Key", "from-header")

	secret := newTestGatewayService().ExtractSecret(ctx)

	assert.Equal(t, "from-header", secret)
}

func Test_ExtractSecret_WhenNoHeader_QueryWins(t *testing.T) {
	ctx := newExtractionContext(t, "POST", "/proxy/openai/test?api_key=from-query", "application/json",
		[]byte(`{"api_key":"from-body"}`))

	secret := newTestGatewayService().ExtractSecret(ctx)

	assert.Equal(t, "from-query", secret)
}

func Test_ExtractSecret_WhenOnlyJsonBody_BodyFieldUsed(t *testing.T) {
	ctx := newExtractionContext(t, "POST", "/proxy/openai/test", "application/json",
		[]byte(`{"api_key":"from-body","model":"test-model"}`))

	secret := newTestGatewayService().ExtractSecret(ctx)

	assert.Equal(t, "from-body", secret)

	// Body must still be readable for the relay
	restored, err := io.ReadAll(ctx.Request.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_key":"from-body","model":"test-model"}`, string(restored))
}

func Test_ExtractSecret_WhenFormEncoded_FormFieldUsed(t *testing.T) {
	ctx := newExtractionContext(t, "POST", "/proxy/openai/test", "application/x-www-form-urlencoded",
		[]byte("api_key=from-form&prompt=hello"))

	secret := newTestGatewayService().ExtractSecret(ctx)

	assert.Equal(t, "from-form", secret)

	// Form parsing must not eat the body the relay forwards
	restored, err := io.ReadAll(ctx.Request.Body)
	require.NoError(t, err)
	assert.Equal(t, "api_key=from-form&prompt=hello", string(restored))
}

func Test_ExtractSecret_WhenNoCarrier_ReturnsEmpty(t *testing.T) {
	ctx := newExtractionContext(t, "POST", "/proxy/openai/test", "application/json",
		[]byte(`{"model":"test-model"}`))

	secret := newTestGatewayService().ExtractSecret(ctx)

	assert.Empty(t, secret)
}

// Authorize Tests

func Test_Authorize_WhenSecretEmpty_ReturnsMissingCredential(t *testing.T) {
	_, err := newTestGatewayService().Authorize("")

	assert.ErrorIs(t, err, ErrMissingCredential)
}

func Test_Authorize_WhenSecretUnknown_ReturnsInvalidCredential(t *testing.T) {
	_, err := newTestGatewayService().Authorize("kg_0123456789abcdef0123456789abcdef")

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func Test_Authorize_WhenKeyActive_ReturnsResolvedKey(t *testing.T) {
	apiKey := createGatewayTestKey(t, "Gate Key", 50)

	resolved, err := newTestGatewayService().Authorize(apiKey.Secret)

	require.NoError(t, err)
	assert.Equal(t, apiKey.ID, resolved.ID)
	assert.Equal(t, "Gate Key", resolved.Name)
	assert.Equal(t, 50, resolved.DailyLimit)
}

func Test_Authorize_WhenKeyDisabled_ReturnsInvalidCredential(t *testing.T) {
	apiKey := createGatewayTestKey(t, "Disabled Gate Key", 50)

	_, err := api_keys.GetApiKeyService().ToggleApiKeyStatus(apiKey.ID)
	require.NoError(t, err)

	_, err = newTestGatewayService().Authorize(apiKey.Secret)

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func Test_Authorize_WhenKeyExpired_RejectedLikeUnknownKey(t *testing.T) {
	secret := "kg_" + hex.EncodeToString([]byte(uuid.NewString())[:16])
	hash := sha256.Sum256([]byte(secret))
	expired := time.Now().UTC().Add(-time.Hour)

	err := storage.GetDb().Exec(`
		INSERT INTO api_keys (id, name, created_by, secret_prefix, secret_hash, status, expires_at, daily_limit)
		VALUES (?, 'Expired Gate Key', 'test', 'kg_expire...', ?, 'ACTIVE', ?, 50)`,
		uuid.New(), hex.EncodeToString(hash[:]), expired,
	).Error
	require.NoError(t, err)

	_, err = newTestGatewayService().Authorize(secret)

	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func Test_Authorize_WhenQuotaExhausted_ReturnsQuotaExceeded(t *testing.T) {
	apiKey := createGatewayTestKey(t, "Exhausted Gate Key", 2)

	service := newTestGatewayService()

	for i := 0; i < 2; i++ {
		require.NoError(t, usage.GetUsageService().Record(&usage.RecordCallInput{
			ApiKeyID:  apiKey.ID,
			Provider:  "openai",
			Success:   true,
			LatencyMs: 10.0,
		}))
	}

	_, err := service.Authorize(apiKey.Secret)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func Test_Authorize_WhenDailyLimitZero_ReturnsQuotaExceeded(t *testing.T) {
	secret := "kg_" + hex.EncodeToString([]byte(uuid.NewString())[:16])
	hash := sha256.Sum256([]byte(secret))

	err := storage.GetDb().Exec(`
		INSERT INTO api_keys (id, name, created_by, secret_prefix, secret_hash, status, daily_limit)
		VALUES (?, 'Zero Limit Key', 'test', 'kg_zero...', ?, 'ACTIVE', 0)`,
		uuid.New(), hex.EncodeToString(hash[:]),
	).Error
	require.NoError(t, err)

	_, err = newTestGatewayService().Authorize(secret)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
}
