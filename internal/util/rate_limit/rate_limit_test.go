package rate_limit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_Check_WithinLimits_AllowsRequest(t *testing.T) {
	guard := NewFloodGuard()
	apiKeyID := uuid.New()
	rpsLimit := 10
	burstLimit := 20

	guard.Reset(apiKeyID)

	result, err := guard.Check(apiKeyID, rpsLimit, burstLimit)

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, burstLimit-1, result.Remaining)
	assert.Equal(t, 0, result.RetryAfterSec)
	assert.True(t, result.ResetTime.After(time.Now().Add(-time.Second)))
}

func Test_Check_ExceedsBurstLimit_DeniesRequest(t *testing.T) {
	guard := NewFloodGuard()
	apiKeyID := uuid.New()
	rpsLimit := 1
	burstLimit := 2

	guard.Reset(apiKeyID)

	for i := 0; i < burstLimit; i++ {
		result, err := guard.Check(apiKeyID, rpsLimit, burstLimit)
		assert.NoError(t, err)
		assert.True(t, result.Allowed, "Request %d should be allowed", i+1)
	}

	result, err := guard.Check(apiKeyID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.True(t, result.RetryAfterSec > 0)
}

func Test_Check_TokensRefillOverTime_AllowsRequestsAfterWait(t *testing.T) {
	guard := NewFloodGuard()
	apiKeyID := uuid.New()
	rpsLimit := 10 // 1 token every 100ms
	burstLimit := 1

	guard.Reset(apiKeyID)

	result, err := guard.Check(apiKeyID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	result, err = guard.Check(apiKeyID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)

	time.Sleep(150 * time.Millisecond)

	result, err = guard.Check(apiKeyID, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func Test_Check_DifferentKeys_IsolatedBuckets(t *testing.T) {
	guard := NewFloodGuard()
	keyID1 := uuid.New()
	keyID2 := uuid.New()
	rpsLimit := 1
	burstLimit := 1

	guard.Reset(keyID1)
	guard.Reset(keyID2)

	result1, err := guard.Check(keyID1, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result1.Allowed)

	result1, err = guard.Check(keyID1, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.False(t, result1.Allowed)

	result2, err := guard.Check(keyID2, rpsLimit, burstLimit)
	assert.NoError(t, err)
	assert.True(t, result2.Allowed)
}

func Test_Check_WithInvalidParameters_FallsBackToDefaults(t *testing.T) {
	guard := NewFloodGuard()
	apiKeyID := uuid.New()

	guard.Reset(apiKeyID)

	result, err := guard.Check(apiKeyID, 0, 10)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	guard.Reset(apiKeyID)

	result, err = guard.Check(apiKeyID, 10, 0)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}
