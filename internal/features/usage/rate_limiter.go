package usage

import (
	"fmt"

	"github.com/google/uuid"
)

// RateLimiter enforces the per-key daily quota from ledger counts.
//
// The check-then-act against concurrent Record calls is a known soft
// limit: a burst arriving at the boundary can collectively overshoot the
// quota by up to concurrency-1 calls. That matches the legacy behavior
// and is accepted; the quota is billing protection, not admission control.
type RateLimiter struct {
	usageRepository *UsageRepository
}

// IsAllowed reports whether the key may make another call today. A zero or
// negative limit blocks all traffic; there is no unlimited sentinel.
func (l *RateLimiter) IsAllowed(apiKeyID uuid.UUID, dailyLimit int) (bool, error) {
	if dailyLimit <= 0 {
		return false, nil
	}

	usedToday, err := l.usageRepository.CountToday(apiKeyID)
	if err != nil {
		return false, fmt.Errorf("failed to count today's usage: %w", err)
	}

	return usedToday < int64(dailyLimit), nil
}
