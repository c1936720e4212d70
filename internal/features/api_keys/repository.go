package api_keys

import (
	"time"

	"keygate/internal/storage"

	"github.com/google/uuid"
)

type ApiKeyRepository struct{}

func (r *ApiKeyRepository) CreateApiKey(apiKey *ApiKey) error {
	if apiKey.ID == uuid.Nil {
		apiKey.ID = uuid.New()
	}

	if apiKey.CreatedAt.IsZero() {
		apiKey.CreatedAt = time.Now().UTC()
	}
	apiKey.UpdatedAt = apiKey.CreatedAt

	return storage.GetDb().Create(apiKey).Error
}

// GetApiKeys returns all keys, newest first.
func (r *ApiKeyRepository) GetApiKeys() ([]*ApiKey, error) {
	var apiKeys []*ApiKey

	err := storage.GetDb().
		Order("created_at DESC").
		Find(&apiKeys).Error

	return apiKeys, err
}

func (r *ApiKeyRepository) GetApiKeyByID(apiKeyID uuid.UUID) (*ApiKey, error) {
	var apiKey ApiKey

	err := storage.GetDb().
		Where("id = ?", apiKeyID).
		First(&apiKey).Error

	if err != nil {
		return nil, err
	}

	return &apiKey, nil
}

// GetApiKeyBySecretHash matches active keys only. An expired key with
// ACTIVE status is still returned; expiry is the caller's check so that
// lookup failures and expiry failures stay distinguishable.
func (r *ApiKeyRepository) GetApiKeyBySecretHash(secretHash string) (*ApiKey, error) {
	var apiKey ApiKey

	err := storage.GetDb().
		Where("secret_hash = ? AND status = ?", secretHash, ApiKeyStatusActive).
		First(&apiKey).Error

	if err != nil {
		return nil, err
	}

	return &apiKey, nil
}

func (r *ApiKeyRepository) UpdateApiKey(apiKey *ApiKey) error {
	apiKey.UpdatedAt = time.Now().UTC()
	return storage.GetDb().Save(apiKey).Error
}

func (r *ApiKeyRepository) DeleteApiKey(apiKeyID uuid.UUID) error {
	return storage.GetDb().Delete(&ApiKey{}, apiKeyID).Error
}

// TouchUsage bumps last_used_at and the lifetime call counter in one
// statement so concurrent recorders never lose an increment.
func (r *ApiKeyRepository) TouchUsage(apiKeyID uuid.UUID) error {
	return storage.GetDb().Exec(
		`UPDATE api_keys SET last_used_at = ?, total_calls = total_calls + 1 WHERE id = ?`,
		time.Now().UTC(), apiKeyID,
	).Error
}
