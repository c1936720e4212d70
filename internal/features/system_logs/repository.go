package system_logs

import (
	"time"

	"keygate/internal/storage"

	"github.com/google/uuid"
)

type SystemLogRepository struct{}

func (r *SystemLogRepository) Create(systemLog *SystemLog) error {
	if systemLog.ID == uuid.Nil {
		systemLog.ID = uuid.New()
	}

	return storage.GetDb().Create(systemLog).Error
}

func (r *SystemLogRepository) GetLogs(
	level, source string,
	limit, offset int,
	beforeDate *time.Time,
) ([]*SystemLog, error) {
	var logs = make([]*SystemLog, 0)

	query := storage.GetDb().Model(&SystemLog{})

	if level != "" && level != "all" {
		query = query.Where("level = ?", level)
	}
	if source != "" && source != "all" {
		query = query.Where("source = ?", source)
	}
	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, err
}

func (r *SystemLogRepository) CountLogs(level, source string, beforeDate *time.Time) (int64, error) {
	var count int64
	query := storage.GetDb().Model(&SystemLog{})

	if level != "" && level != "all" {
		query = query.Where("level = ?", level)
	}
	if source != "" && source != "all" {
		query = query.Where("source = ?", source)
	}
	if beforeDate != nil {
		query = query.Where("created_at < ?", *beforeDate)
	}

	err := query.Count(&count).Error
	return count, err
}
