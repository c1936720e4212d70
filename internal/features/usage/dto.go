package usage

import (
	"time"

	"github.com/google/uuid"
)

// RecordCallInput carries the outcome of one admitted call.
type RecordCallInput struct {
	ApiKeyID      uuid.UUID
	Provider      string
	Model         string
	ClientIP      string
	RequestPath   string
	RequestMethod string
	ResponseCode  int
	Success       bool
	ErrorMessage  string
	LatencyMs     float64
	Tokens        int64
	Cost          float64
}

type GetStatsRequestDTO struct {
	KeyID    string `form:"keyId"    json:"keyId"`
	Provider string `form:"provider" json:"provider"`
	Days     int    `form:"days"     json:"days"`
}

type StatRowDTO struct {
	Date             time.Time `json:"date"             gorm:"column:date"`
	Provider         string    `json:"provider"         gorm:"column:provider"`
	TotalCalls       int64     `json:"totalCalls"       gorm:"column:total_calls"`
	SuccessCalls     int64     `json:"successCalls"     gorm:"column:success_calls"`
	AverageLatencyMs float64   `json:"averageLatencyMs" gorm:"column:average_latency_ms"`
	TotalTokens      int64     `json:"totalTokens"      gorm:"column:total_tokens"`
	TotalCost        float64   `json:"totalCost"        gorm:"column:total_cost"`
}

type GetStatsResponseDTO struct {
	Stats []*StatRowDTO `json:"stats"`
	Days  int           `json:"days"`
}
