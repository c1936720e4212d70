package system_logs

import (
	"time"

	"github.com/google/uuid"
)

type SystemLog struct {
	ID        uuid.UUID  `json:"id"        gorm:"column:id"`
	Level     LogLevel   `json:"level"     gorm:"column:level"`
	Message   string     `json:"message"   gorm:"column:message"`
	Source    string     `json:"source"    gorm:"column:source"`
	ApiKeyID  *uuid.UUID `json:"apiKeyId"  gorm:"column:api_key_id"`
	CreatedAt time.Time  `json:"createdAt" gorm:"column:created_at"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}
