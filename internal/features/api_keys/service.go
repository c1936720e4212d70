package api_keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	system_logs "keygate/internal/features/system_logs"
	usage "keygate/internal/features/usage"
	cache_utils "keygate/internal/util/cache"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrApiKeyNotFound = errors.New("API key not found")
	// ErrInvalidKeyConfig covers malformed administrative input such as a
	// non-positive daily limit or a negative validity period.
	ErrInvalidKeyConfig = errors.New("invalid API key configuration")
)

type ApiKeyService struct {
	apiKeyRepository *ApiKeyRepository
	usageService     *usage.UsageService
	systemLogService *system_logs.SystemLogService

	apiKeyCacheUtil *cache_utils.CacheUtil[CachedApiKey]
	singleflight    singleflight.Group // Prevents thundering herd on DB calls
	logger          *slog.Logger
}

const (
	SecretPrefix = "kg_"
	SecretLength = 32 // hex chars after the prefix, 128 bits of entropy

	detailRecentLogs = 100
	detailStatRows   = 30
)

func (s *ApiKeyService) CreateApiKey(request *CreateApiKeyRequestDTO) (*ApiKey, error) {
	if request.DailyLimit <= 0 {
		return nil, fmt.Errorf("%w: daily limit must be positive", ErrInvalidKeyConfig)
	}
	if request.ValidityDays < 0 {
		return nil, fmt.Errorf("%w: validity days cannot be negative", ErrInvalidKeyConfig)
	}

	createdBy := request.CreatedBy
	if createdBy == "" {
		createdBy = "admin"
	}

	var expiresAt *time.Time
	if request.ValidityDays > 0 {
		expiry := time.Now().UTC().AddDate(0, 0, request.ValidityDays)
		expiresAt = &expiry
	}

	apiKey, fullSecret, err := s.persistWithFreshSecret(request, createdBy, expiresAt)
	if err != nil {
		return nil, err
	}

	// Pre-warm cache with the new key for immediate availability
	s.apiKeyCacheUtil.Set(apiKey.SecretHash, &CachedApiKey{
		ID:         apiKey.ID,
		Name:       apiKey.Name,
		Status:     apiKey.Status,
		ExpiresAt:  apiKey.ExpiresAt,
		DailyLimit: apiKey.DailyLimit,
	})

	s.systemLogService.Write(
		system_logs.LevelInfo,
		fmt.Sprintf("API key created: %s (%s)", apiKey.Name, apiKey.SecretPrefix),
		"create_api_key",
		&apiKey.ID,
	)

	// The full secret is returned exactly once
	apiKey.Secret = fullSecret

	return apiKey, nil
}

// persistWithFreshSecret re-rolls the secret once on a uniqueness violation
// and fails loudly after that; a secret is never silently reused.
func (s *ApiKeyService) persistWithFreshSecret(
	request *CreateApiKeyRequestDTO,
	createdBy string,
	expiresAt *time.Time,
) (*ApiKey, string, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		fullSecret, secretPrefix, secretHash, err := s.generateSecret()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate secret: %w", err)
		}

		apiKey := &ApiKey{
			ID:           uuid.New(),
			Name:         request.Name,
			CreatedBy:    createdBy,
			SecretPrefix: secretPrefix,
			SecretHash:   secretHash,
			Status:       ApiKeyStatusActive,
			ExpiresAt:    expiresAt,
			DailyLimit:   request.DailyLimit,
		}

		err = s.apiKeyRepository.CreateApiKey(apiKey)
		if err == nil {
			return apiKey, fullSecret, nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", fmt.Errorf("failed to create API key: %w", err)
		}

		s.logger.Warn("secret collision on API key creation, re-rolling",
			slog.String("name", request.Name))
		lastErr = err
	}

	return nil, "", fmt.Errorf("failed to create API key after secret re-roll: %w", lastErr)
}

func (s *ApiKeyService) GetApiKeys() (*GetApiKeysResponseDTO, error) {
	apiKeys, err := s.apiKeyRepository.GetApiKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	return &GetApiKeysResponseDTO{
		ApiKeys: apiKeys,
	}, nil
}

func (s *ApiKeyService) GetApiKeyDetails(apiKeyID uuid.UUID) (*ApiKeyDetailResponseDTO, error) {
	apiKey, err := s.apiKeyRepository.GetApiKeyByID(apiKeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApiKeyNotFound
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	recentLogs, err := s.usageService.GetRecentLogs(apiKeyID, detailRecentLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent call logs: %w", err)
	}

	dailyStats, err := s.usageService.GetKeyStats(apiKeyID, detailStatRows)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return &ApiKeyDetailResponseDTO{
		ApiKey:     apiKey,
		RecentLogs: recentLogs,
		DailyStats: dailyStats,
	}, nil
}

// ToggleApiKeyStatus flips ACTIVE <-> DISABLED. Calling it twice returns
// the key to its original status.
func (s *ApiKeyService) ToggleApiKeyStatus(apiKeyID uuid.UUID) (*ApiKey, error) {
	apiKey, err := s.apiKeyRepository.GetApiKeyByID(apiKeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApiKeyNotFound
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	if apiKey.Status == ApiKeyStatusActive {
		apiKey.Status = ApiKeyStatusDisabled
	} else {
		apiKey.Status = ApiKeyStatusActive
	}

	if err := s.apiKeyRepository.UpdateApiKey(apiKey); err != nil {
		return nil, fmt.Errorf("failed to update API key: %w", err)
	}

	s.apiKeyCacheUtil.Invalidate(apiKey.SecretHash)

	s.systemLogService.Write(
		system_logs.LevelInfo,
		fmt.Sprintf("API key status toggled: %s -> %s", apiKey.Name, apiKey.Status),
		"toggle_api_key",
		&apiKey.ID,
	)

	return apiKey, nil
}

func (s *ApiKeyService) DeleteApiKey(apiKeyID uuid.UUID) error {
	apiKey, err := s.apiKeyRepository.GetApiKeyByID(apiKeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApiKeyNotFound
		}
		return fmt.Errorf("failed to get API key: %w", err)
	}

	if err := s.apiKeyRepository.DeleteApiKey(apiKeyID); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	s.apiKeyCacheUtil.Invalidate(apiKey.SecretHash)

	s.systemLogService.Write(
		system_logs.LevelInfo,
		fmt.Sprintf("API key deleted: %s (%s)", apiKey.Name, apiKey.SecretPrefix),
		"delete_api_key",
		&apiKey.ID,
	)

	return nil
}

// ResolveSecret looks up the presented secret for the validation hot path.
// A nil result with nil error means the secret matches no active key. An
// error means the store could not answer; callers must treat that as a
// rejection, not an admission.
//
// Expiry is deliberately not checked here: the gateway separates lookup
// failure from expiry failure for diagnostics.
func (s *ApiKeyService) ResolveSecret(secret string) (*CachedApiKey, error) {
	secretHash := s.hashSecret(secret)

	// Tier 1: cache
	if cached := s.apiKeyCacheUtil.Get(secretHash); cached != nil {
		if cached.Status != ApiKeyStatusActive {
			return nil, nil
		}
		return cached, nil
	}

	// Tier 2: database lookup with singleflight protection
	result, err, _ := s.singleflight.Do(secretHash, func() (any, error) {
		return s.apiKeyRepository.GetApiKeyBySecretHash(secretHash)
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Cache the miss to prevent repeated DB hits for bad secrets
			s.apiKeyCacheUtil.Set(secretHash, &CachedApiKey{Status: ApiKeyStatusNotFound})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	apiKey, ok := result.(*ApiKey)
	if !ok {
		return nil, fmt.Errorf("failed to cast result to ApiKey")
	}

	cached := &CachedApiKey{
		ID:         apiKey.ID,
		Name:       apiKey.Name,
		Status:     apiKey.Status,
		ExpiresAt:  apiKey.ExpiresAt,
		DailyLimit: apiKey.DailyLimit,
	}
	s.apiKeyCacheUtil.Set(secretHash, cached)

	return cached, nil
}

// TouchUsage is reported back by the gateway after a recorded call.
func (s *ApiKeyService) TouchUsage(apiKeyID uuid.UUID) error {
	return s.apiKeyRepository.TouchUsage(apiKeyID)
}

func (s *ApiKeyService) generateSecret() (fullSecret, prefix, hash string, err error) {
	secretBytes := make([]byte, SecretLength/2) // hex encoding doubles the length
	if _, err := rand.Read(secretBytes); err != nil {
		return "", "", "", err
	}

	secretSuffix := hex.EncodeToString(secretBytes)
	fullSecret = SecretPrefix + secretSuffix
	prefix = SecretPrefix + secretSuffix[:6] + "..."
	hash = s.hashSecret(fullSecret)

	return fullSecret, prefix, hash, nil
}

func (s *ApiKeyService) hashSecret(secret string) string {
	hasher := sha256.New()
	hasher.Write([]byte(secret))
	return hex.EncodeToString(hasher.Sum(nil))
}
