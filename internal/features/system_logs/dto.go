package system_logs

import (
	"time"
)

type GetSystemLogsRequestDTO struct {
	Level      string     `form:"level"      json:"level"`
	Source     string     `form:"source"     json:"source"`
	Limit      int        `form:"limit"      json:"limit"`
	Offset     int        `form:"offset"     json:"offset"`
	BeforeDate *time.Time `form:"beforeDate" json:"beforeDate"`
}

type GetSystemLogsResponseDTO struct {
	SystemLogs []*SystemLog `json:"systemLogs"`
	Total      int64        `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
