package api_keys

import (
	"time"

	usage "keygate/internal/features/usage"

	"github.com/google/uuid"
)

type CreateApiKeyRequestDTO struct {
	Name      string `json:"name"      binding:"required,min=1,max=100"`
	CreatedBy string `json:"createdBy" binding:"omitempty,max=100"`
	// 0 means the key never expires
	ValidityDays int `json:"validityDays"`
	DailyLimit   int `json:"dailyLimit" binding:"required"`
}

type GetApiKeysResponseDTO struct {
	ApiKeys []*ApiKey `json:"apiKeys"`
}

type ApiKeyDetailResponseDTO struct {
	ApiKey     *ApiKey            `json:"apiKey"`
	RecentLogs []*usage.CallLog   `json:"recentLogs"`
	DailyStats []*usage.DailyStat `json:"dailyStats"`
}

type ToggleStatusResponseDTO struct {
	ID        uuid.UUID    `json:"id"`
	NewStatus ApiKeyStatus `json:"newStatus"`
}

// CachedApiKey is the subset of a key the validation hot path needs. Expiry
// and quota are checked by the gateway, not here, so both fields ride along.
type CachedApiKey struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Status     ApiKeyStatus `json:"status"`
	ExpiresAt  *time.Time   `json:"expiresAt"`
	DailyLimit int          `json:"dailyLimit"`
}

func (k *CachedApiKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().UTC().After(*k.ExpiresAt)
}
