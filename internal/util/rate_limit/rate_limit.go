package rate_limit

import (
	"context"
	"fmt"
	"keygate/internal/cache"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// FloodGuard is a token-bucket limiter keyed by API key. It protects the
// gateway from per-second bursts; the daily quota is enforced separately
// from the usage ledger.
type FloodGuard struct {
	client valkey.Client
}

type FloodGuardResult struct {
	Allowed       bool      `json:"allowed"`
	Remaining     int       `json:"remaining"`
	ResetTime     time.Time `json:"resetTime"`
	RetryAfterSec int       `json:"retryAfterSec,omitempty"`
}

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "flood_guard:key:"
)

// The script atomically refills the bucket from elapsed time, takes a token
// when one is available, and stores the new state with a cleanup TTL.
const tokenBucketLuaScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rps_limit = tonumber(ARGV[2])
local burst_limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local current = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(current[1]) or burst_limit
local last_refill = tonumber(current[2]) or now

local elapsed = math.max(0, now - last_refill)
local tokens_to_add = math.floor(elapsed * rps_limit / 1000)
tokens = math.min(burst_limit, tokens + tokens_to_add)

local allowed = 0
local remaining = tokens
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
    remaining = tokens
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('EXPIRE', key, ttl)

local time_to_full = 0
if tokens < burst_limit then
    time_to_full = math.ceil((burst_limit - tokens) * 1000 / rps_limit)
end

return {allowed, remaining, time_to_full}
`

func NewFloodGuard() *FloodGuard {
	return &FloodGuard{
		client: cache.GetCache(),
	}
}

func (g *FloodGuard) Check(apiKeyID uuid.UUID, rpsLimit, burstLimit int) (*FloodGuardResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if rpsLimit <= 0 {
		rpsLimit = 100
	}
	if burstLimit <= 0 {
		burstLimit = max(rpsLimit*5, 500)
	}

	key := keyPrefix + apiKeyID.String()
	now := time.Now().UnixMilli()
	ttl := int64(300)

	result := g.client.Do(ctx, g.client.B().Eval().
		Script(tokenBucketLuaScript).
		Numkeys(1).
		Key(key).
		Arg(fmt.Sprintf("%d", now)).
		Arg(fmt.Sprintf("%d", rpsLimit)).
		Arg(fmt.Sprintf("%d", burstLimit)).
		Arg(fmt.Sprintf("%d", ttl)).
		Build())

	if result.Error() != nil {
		return nil, fmt.Errorf("flood guard check failed: %w", result.Error())
	}

	values, err := result.AsIntSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to parse flood guard result: %w", err)
	}

	if len(values) < 3 {
		return nil, fmt.Errorf("invalid flood guard result: expected 3 values, got %d", len(values))
	}

	allowed := values[0] == 1
	remaining := int(values[1])
	timeToFullMs := values[2]

	resetTime := time.Now().Add(time.Duration(timeToFullMs) * time.Millisecond)

	var retryAfterSec int
	if !allowed {
		retryAfterMs := 1000.0 / float64(rpsLimit)
		retryAfterSec = int(math.Ceil(retryAfterMs / 1000.0))
		if retryAfterSec < 1 {
			retryAfterSec = 1
		}
	}

	return &FloodGuardResult{
		Allowed:       allowed,
		Remaining:     remaining,
		ResetTime:     resetTime,
		RetryAfterSec: retryAfterSec,
	}, nil
}

func (g *FloodGuard) Reset(apiKeyID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := keyPrefix + apiKeyID.String()

	result := g.client.Do(ctx, g.client.B().Del().Key(key).Build())
	return result.Error()
}
