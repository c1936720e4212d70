package usage

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type UsageService struct {
	usageRepository *UsageRepository
	logger          *slog.Logger
}

// Record writes the call log and daily aggregate for one finished call.
// The write happens after the call was already answered, so failures here
// are surfaced to the caller for logging but must never affect the call.
func (s *UsageService) Record(input *RecordCallInput) error {
	if err := s.usageRepository.RecordCall(input); err != nil {
		s.logger.Error("failed to record call",
			slog.String("apiKeyId", input.ApiKeyID.String()),
			slog.String("provider", input.Provider),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to record call: %w", err)
	}

	return nil
}

func (s *UsageService) CountToday(apiKeyID uuid.UUID) (int64, error) {
	return s.usageRepository.CountToday(apiKeyID)
}

func (s *UsageService) GetRecentLogs(apiKeyID uuid.UUID, limit int) ([]*CallLog, error) {
	return s.usageRepository.GetRecentLogs(apiKeyID, limit)
}

func (s *UsageService) GetKeyStats(apiKeyID uuid.UUID, limit int) ([]*DailyStat, error) {
	return s.usageRepository.GetStatsByKey(apiKeyID, limit)
}

func (s *UsageService) GetStats(request *GetStatsRequestDTO) (*GetStatsResponseDTO, error) {
	days := request.Days
	if days <= 0 || days > 365 {
		days = 7
	}

	var apiKeyID *uuid.UUID
	if request.KeyID != "" {
		parsed, err := uuid.Parse(request.KeyID)
		if err != nil {
			return nil, fmt.Errorf("invalid key id: %w", err)
		}
		apiKeyID = &parsed
	}

	rows, err := s.usageRepository.QueryStats(apiKeyID, request.Provider, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}

	return &GetStatsResponseDTO{
		Stats: rows,
		Days:  days,
	}, nil
}
