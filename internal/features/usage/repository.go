package usage

import (
	"time"

	"keygate/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageRepository struct{}

// RecordCall appends the call log row and folds the call into the daily
// aggregate inside one transaction. The aggregate update is a single
// INSERT ... ON CONFLICT statement, so two concurrent recorders for the
// same (key, provider, day) can never lose an increment or produce an
// average reflecting only one of their latencies.
func (r *UsageRepository) RecordCall(input *RecordCallInput) error {
	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	callLog := &CallLog{
		ID:            uuid.New(),
		ApiKeyID:      input.ApiKeyID,
		Timestamp:     now,
		ClientIP:      input.ClientIP,
		Provider:      input.Provider,
		Model:         input.Model,
		RequestPath:   input.RequestPath,
		RequestMethod: input.RequestMethod,
		ResponseCode:  input.ResponseCode,
		Success:       input.Success,
		ErrorMessage:  input.ErrorMessage,
		LatencyMs:     input.LatencyMs,
	}

	successIncrement := 0
	insertedLatency := 0.0
	if input.Success {
		successIncrement = 1
		insertedLatency = input.LatencyMs
	}

	return storage.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(callLog).Error; err != nil {
			return err
		}

		// The incremental mean uses the pre-update success count; a first
		// success takes its latency directly instead of averaging with the
		// zero placeholder. Failed calls leave the average untouched.
		return tx.Exec(`
			INSERT INTO daily_stats (
				id, api_key_id, provider, date,
				total_calls, success_calls, average_latency_ms, total_tokens, total_cost
			) VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?)
			ON CONFLICT (api_key_id, provider, date) DO UPDATE SET
				total_calls = daily_stats.total_calls + 1,
				success_calls = daily_stats.success_calls + EXCLUDED.success_calls,
				average_latency_ms = CASE
					WHEN EXCLUDED.success_calls = 0 THEN daily_stats.average_latency_ms
					WHEN daily_stats.success_calls = 0 THEN EXCLUDED.average_latency_ms
					ELSE (daily_stats.average_latency_ms * daily_stats.success_calls + EXCLUDED.average_latency_ms)
						/ (daily_stats.success_calls + 1)
				END,
				total_tokens = daily_stats.total_tokens + EXCLUDED.total_tokens,
				total_cost = daily_stats.total_cost + EXCLUDED.total_cost`,
			uuid.New(), input.ApiKeyID, input.Provider, day,
			successIncrement, insertedLatency, input.Tokens, input.Cost,
		).Error
	})
}

// CountToday counts call log rows for the key on the current UTC calendar
// day, across all providers.
func (r *UsageRepository) CountToday(apiKeyID uuid.UUID) (int64, error) {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	err := storage.GetDb().
		Model(&CallLog{}).
		Where("api_key_id = ? AND timestamp >= ? AND timestamp < ?", apiKeyID, dayStart, dayEnd).
		Count(&count).Error

	return count, err
}

func (r *UsageRepository) GetRecentLogs(apiKeyID uuid.UUID, limit int) ([]*CallLog, error) {
	var logs = make([]*CallLog, 0)

	err := storage.GetDb().
		Where("api_key_id = ?", apiKeyID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error

	return logs, err
}

func (r *UsageRepository) GetStatsByKey(apiKeyID uuid.UUID, limit int) ([]*DailyStat, error) {
	var stats = make([]*DailyStat, 0)

	err := storage.GetDb().
		Where("api_key_id = ?", apiKeyID).
		Order("date DESC").
		Limit(limit).
		Find(&stats).Error

	return stats, err
}

// QueryStats aggregates daily stats over the window, optionally filtered by
// key and provider, grouped by (date, provider).
func (r *UsageRepository) QueryStats(
	apiKeyID *uuid.UUID,
	provider string,
	sinceDays int,
) ([]*StatRowDTO, error) {
	var rows = make([]*StatRowDTO, 0)

	since := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -sinceDays)

	sql := `
		SELECT
			date,
			provider,
			SUM(total_calls) as total_calls,
			SUM(success_calls) as success_calls,
			AVG(average_latency_ms) as average_latency_ms,
			SUM(total_tokens) as total_tokens,
			SUM(total_cost) as total_cost
		FROM daily_stats
		WHERE date >= ?`

	args := []interface{}{since}

	if apiKeyID != nil {
		sql += " AND api_key_id = ?"
		args = append(args, *apiKeyID)
	}
	if provider != "" && provider != "all" {
		sql += " AND provider = ?"
		args = append(args, provider)
	}

	sql += " GROUP BY date, provider ORDER BY date DESC, provider ASC"

	err := storage.GetDb().Raw(sql, args...).Scan(&rows).Error

	return rows, err
}
