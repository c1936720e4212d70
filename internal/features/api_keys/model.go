package api_keys

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID           uuid.UUID    `json:"id"           gorm:"column:id"`
	Name         string       `json:"name"         gorm:"column:name"`
	CreatedBy    string       `json:"createdBy"    gorm:"column:created_by"`
	SecretPrefix string       `json:"secretPrefix" gorm:"column:secret_prefix"`
	SecretHash   string       `json:"-"            gorm:"column:secret_hash"` // Never expose in JSON
	Status       ApiKeyStatus `json:"status"       gorm:"column:status"`
	CreatedAt    time.Time    `json:"createdAt"    gorm:"column:created_at"`
	UpdatedAt    time.Time    `json:"updatedAt"    gorm:"column:updated_at"`
	ExpiresAt    *time.Time   `json:"expiresAt"    gorm:"column:expires_at"` // nil = never expires
	LastUsedAt   *time.Time   `json:"lastUsedAt"   gorm:"column:last_used_at"`
	DailyLimit   int          `json:"dailyLimit"   gorm:"column:daily_limit"`
	TotalCalls   int64        `json:"totalCalls"   gorm:"column:total_calls"`

	Secret string `json:"secret,omitempty" gorm:"-"` // Temporary field only populated during creation
}

func (ApiKey) TableName() string {
	return "api_keys"
}
