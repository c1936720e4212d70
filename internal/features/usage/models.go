package usage

import (
	"time"

	"github.com/google/uuid"
)

// CallLog is one immutable record per call attempt.
type CallLog struct {
	ID            uuid.UUID `json:"id"            gorm:"column:id"`
	ApiKeyID      uuid.UUID `json:"apiKeyId"      gorm:"column:api_key_id"`
	Timestamp     time.Time `json:"timestamp"     gorm:"column:timestamp"`
	ClientIP      string    `json:"clientIp"      gorm:"column:client_ip"`
	Provider      string    `json:"provider"      gorm:"column:provider"`
	Model         string    `json:"model"         gorm:"column:model"`
	RequestPath   string    `json:"requestPath"   gorm:"column:request_path"`
	RequestMethod string    `json:"requestMethod" gorm:"column:request_method"`
	ResponseCode  int       `json:"responseCode"  gorm:"column:response_code"`
	Success       bool      `json:"success"       gorm:"column:success"`
	ErrorMessage  string    `json:"errorMessage"  gorm:"column:error_message"`
	LatencyMs     float64   `json:"latencyMs"     gorm:"column:latency_ms"`
}

func (CallLog) TableName() string {
	return "call_logs"
}

// DailyStat is the per (key, provider, day) aggregate, maintained
// incrementally so dashboards never re-scan raw logs. average_latency_ms
// reflects successful calls only.
type DailyStat struct {
	ID               uuid.UUID `json:"id"               gorm:"column:id"`
	ApiKeyID         uuid.UUID `json:"apiKeyId"         gorm:"column:api_key_id"`
	Provider         string    `json:"provider"         gorm:"column:provider"`
	Date             time.Time `json:"date"             gorm:"column:date"`
	TotalCalls       int64     `json:"totalCalls"       gorm:"column:total_calls"`
	SuccessCalls     int64     `json:"successCalls"     gorm:"column:success_calls"`
	AverageLatencyMs float64   `json:"averageLatencyMs" gorm:"column:average_latency_ms"`
	TotalTokens      int64     `json:"totalTokens"      gorm:"column:total_tokens"`
	TotalCost        float64   `json:"totalCost"        gorm:"column:total_cost"`
}

func (DailyStat) TableName() string {
	return "daily_stats"
}
