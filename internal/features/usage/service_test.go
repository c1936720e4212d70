package usage

import (
	"sync"
	"testing"
	"time"

	"keygate/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUsageTestKey(t *testing.T) uuid.UUID {
	id := uuid.New()

	err := storage.GetDb().Exec(`
		INSERT INTO api_keys (id, name, created_by, secret_prefix, secret_hash, status, daily_limit)
		VALUES (?, ?, 'test', 'kg_test...', ?, 'ACTIVE', ?)`,
		id, "Usage Test Key", uuid.NewString(), 100,
	).Error
	require.NoError(t, err)

	return id
}

func recordTestCall(t *testing.T, apiKeyID uuid.UUID, provider string, success bool, latencyMs float64) {
	err := GetUsageService().Record(&RecordCallInput{
		ApiKeyID:      apiKeyID,
		Provider:      provider,
		Model:         "test-model",
		ClientIP:      "127.0.0.1",
		RequestPath:   "/api/v1/proxy/" + provider + "/test",
		RequestMethod: "POST",
		ResponseCode:  200,
		Success:       success,
		ErrorMessage:  "",
		LatencyMs:     latencyMs,
	})
	require.NoError(t, err)
}

func getDailyStat(t *testing.T, apiKeyID uuid.UUID, provider string) *DailyStat {
	stats, err := GetUsageService().GetKeyStats(apiKeyID, 10)
	require.NoError(t, err)

	for _, stat := range stats {
		if stat.Provider == provider {
			return stat
		}
	}

	t.Fatalf("no daily stat found for provider %s", provider)
	return nil
}

// Record Tests

func Test_Record_WhenFirstCallSucceeds_AverageTakesLatencyDirectly(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	recordTestCall(t, apiKeyID, "openai", true, 120.0)

	stat := getDailyStat(t, apiKeyID, "openai")
	assert.Equal(t, int64(1), stat.TotalCalls)
	assert.Equal(t, int64(1), stat.SuccessCalls)
	assert.InDelta(t, 120.0, stat.AverageLatencyMs, 0.001)
}

func Test_Record_WhenSecondSuccessRecorded_AverageIsRunningMean(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	recordTestCall(t, apiKeyID, "openai", true, 120.0)
	recordTestCall(t, apiKeyID, "openai", true, 80.0)

	stat := getDailyStat(t, apiKeyID, "openai")
	assert.Equal(t, int64(2), stat.TotalCalls)
	assert.Equal(t, int64(2), stat.SuccessCalls)
	assert.InDelta(t, 100.0, stat.AverageLatencyMs, 0.001)
}

func Test_Record_WhenCallFails_AverageUnchanged(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	recordTestCall(t, apiKeyID, "openai", true, 100.0)
	recordTestCall(t, apiKeyID, "openai", false, 5000.0)

	stat := getDailyStat(t, apiKeyID, "openai")
	assert.Equal(t, int64(2), stat.TotalCalls)
	assert.Equal(t, int64(1), stat.SuccessCalls)
	assert.InDelta(t, 100.0, stat.AverageLatencyMs, 0.001)
}

func Test_Record_WhenOnlyFailuresRecorded_AverageStaysZero(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	recordTestCall(t, apiKeyID, "openai", false, 300.0)
	recordTestCall(t, apiKeyID, "openai", false, 700.0)

	stat := getDailyStat(t, apiKeyID, "openai")
	assert.Equal(t, int64(2), stat.TotalCalls)
	assert.Equal(t, int64(0), stat.SuccessCalls)
	assert.InDelta(t, 0.0, stat.AverageLatencyMs, 0.001)
}

func Test_Record_WhenRecordersRunConcurrently_NoIncrementLost(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	const workers = 20
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(latency float64) {
			defer wg.Done()
			recordTestCall(t, apiKeyID, "openai", true, latency)
		}(float64((i + 1) * 10))
	}
	wg.Wait()

	stat := getDailyStat(t, apiKeyID, "openai")
	assert.Equal(t, int64(workers), stat.TotalCalls)
	assert.Equal(t, int64(workers), stat.SuccessCalls)
	// mean of 10, 20, ..., 200
	assert.InDelta(t, 105.0, stat.AverageLatencyMs, 0.01)
}

func Test_Record_WhenProvidersDiffer_AggregatesStaySeparate(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	recordTestCall(t, apiKeyID, "openai", true, 100.0)
	recordTestCall(t, apiKeyID, "anthropic", true, 200.0)

	openaiStat := getDailyStat(t, apiKeyID, "openai")
	anthropicStat := getDailyStat(t, apiKeyID, "anthropic")

	assert.Equal(t, int64(1), openaiStat.TotalCalls)
	assert.InDelta(t, 100.0, openaiStat.AverageLatencyMs, 0.001)
	assert.Equal(t, int64(1), anthropicStat.TotalCalls)
	assert.InDelta(t, 200.0, anthropicStat.AverageLatencyMs, 0.001)
}

// CountToday Tests

func Test_CountToday_WhenCallLoggedYesterday_NotCounted(t *testing.T) {
	apiKeyID := createUsageTestKey(t)

	yesterday := time.Now().UTC().Add(-25 * time.Hour)
	err := storage.GetDb().Create(&CallLog{
		ID:        uuid.New(),
		ApiKeyID:  apiKeyID,
		Timestamp: yesterday,
		Provider:  "openai",
		Success:   true,
	}).Error
	require.NoError(t, err)

	recordTestCall(t, apiKeyID, "openai", true, 50.0)

	count, err := GetUsageService().CountToday(apiKeyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// GetStats Tests

func Test_GetStats_WhenDaysOutOfRange_DefaultsToSevenDays(t *testing.T) {
	apiKeyID := createUsageTestKey(t)
	recordTestCall(t, apiKeyID, "openai", true, 100.0)

	response, err := GetUsageService().GetStats(&GetStatsRequestDTO{
		KeyID: apiKeyID.String(),
		Days:  0,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, response.Days)
	require.Len(t, response.Stats, 1)
	assert.Equal(t, "openai", response.Stats[0].Provider)
}

func Test_GetStats_WhenProviderFiltered_OtherProvidersExcluded(t *testing.T) {
	apiKeyID := createUsageTestKey(t)
	recordTestCall(t, apiKeyID, "openai", true, 100.0)
	recordTestCall(t, apiKeyID, "anthropic", true, 200.0)

	response, err := GetUsageService().GetStats(&GetStatsRequestDTO{
		KeyID:    apiKeyID.String(),
		Provider: "anthropic",
		Days:     7,
	})
	require.NoError(t, err)

	require.Len(t, response.Stats, 1)
	assert.Equal(t, "anthropic", response.Stats[0].Provider)
}

func Test_GetStats_WhenKeyIDInvalid_ReturnsError(t *testing.T) {
	_, err := GetUsageService().GetStats(&GetStatsRequestDTO{
		KeyID: "not-a-uuid",
	})

	assert.Error(t, err)
}
