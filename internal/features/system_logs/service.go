package system_logs

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type SystemLogService struct {
	systemLogRepository *SystemLogRepository
	logger              *slog.Logger
}

// Write appends an administrative event. Failures are logged and swallowed
// so a broken log table never blocks the admin action itself.
func (s *SystemLogService) Write(
	level LogLevel,
	message string,
	source string,
	apiKeyID *uuid.UUID,
) {
	systemLog := &SystemLog{
		Level:     level,
		Message:   message,
		Source:    source,
		ApiKeyID:  apiKeyID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.systemLogRepository.Create(systemLog)
	if err != nil {
		s.logger.Error("failed to create system log", "error", err)
		return
	}
}

func (s *SystemLogService) GetSystemLogs(request *GetSystemLogsRequestDTO) (*GetSystemLogsResponseDTO, error) {
	limit := request.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	offset := max(request.Offset, 0)

	logs, err := s.systemLogRepository.GetLogs(request.Level, request.Source, limit, offset, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	total, err := s.systemLogRepository.CountLogs(request.Level, request.Source, request.BeforeDate)
	if err != nil {
		return nil, err
	}

	return &GetSystemLogsResponseDTO{
		SystemLogs: logs,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}
