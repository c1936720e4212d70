package system_healthcheck

import (
	"fmt"

	"keygate/internal/storage"
	cache_utils "keygate/internal/util/cache"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

type HealthcheckService struct{}

type HealthReport struct {
	Status          string  `json:"status"`
	Database        string  `json:"database"`
	Cache           string  `json:"cache"`
	DiskUsedPercent float64 `json:"diskUsedPercent"`
	MemUsedPercent  float64 `json:"memUsedPercent"`
}

// CheckHealth probes the stores the gateway depends on. The disk and
// memory figures are informational and never flip the status.
func (s *HealthcheckService) CheckHealth() *HealthReport {
	report := &HealthReport{
		Status:   "ok",
		Database: "up",
		Cache:    "up",
	}

	if err := storage.GetDb().Exec("SELECT 1").Error; err != nil {
		report.Status = "degraded"
		report.Database = "down"
	}

	if err := s.testCacheConnection(); err != nil {
		report.Status = "degraded"
		report.Cache = "down"
	}

	if diskUsage, err := disk.Usage("/"); err == nil {
		report.DiskUsedPercent = diskUsage.UsedPercent
	}
	if memUsage, err := mem.VirtualMemory(); err == nil {
		report.MemUsedPercent = memUsage.UsedPercent
	}

	return report
}

func (s *HealthcheckService) testCacheConnection() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache connection test panicked: %v", r)
		}
	}()

	cache_utils.TestCacheConnection()
	return nil
}
