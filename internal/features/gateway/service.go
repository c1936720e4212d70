package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	api_keys "keygate/internal/features/api_keys"
	usage "keygate/internal/features/usage"
	rate_limit "keygate/internal/util/rate_limit"

	"github.com/gin-gonic/gin"
)

type GatewayService struct {
	apiKeyService *api_keys.ApiKeyService
	rateLimiter   *usage.RateLimiter
	usageService  *usage.UsageService
	floodGuard    *rate_limit.FloodGuard
	gateRpsLimit  int
	logger        *slog.Logger
}

const (
	headerCarrier = "X-API-Key"
	paramCarrier  = "api_key"
)

// ExtractSecret pulls the presented secret from the request, checking the
// carriers in priority order: header, query parameter, form field, JSON
// body field. The body is restored after inspection so the relay can still
// forward it.
func (s *GatewayService) ExtractSecret(ctx *gin.Context) string {
	if secret := ctx.GetHeader(headerCarrier); secret != "" {
		return secret
	}

	if secret := ctx.Query(paramCarrier); secret != "" {
		return secret
	}

	contentType := ctx.ContentType()

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		body, err := ctx.GetRawData()
		if err != nil {
			return ""
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		secret := ctx.PostForm(paramCarrier)

		// PostForm drains the body; hand the relay a fresh copy
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		return secret
	}

	if strings.HasPrefix(contentType, "application/json") {
		body, err := ctx.GetRawData()
		if err != nil {
			return ""
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return ""
		}
		if secret, ok := fields[paramCarrier].(string); ok {
			return secret
		}
	}

	return ""
}

// Authorize runs the admission checks for one call: credential presence,
// key lookup, expiry, the optional flood guard, and the daily quota.
//
// A store fault denies access. Lookup faults surface as an invalid
// credential and quota faults as an exceeded quota, so a broken store never
// admits traffic.
func (s *GatewayService) Authorize(secret string) (*ResolvedKey, error) {
	if secret == "" {
		return nil, ErrMissingCredential
	}

	cached, err := s.apiKeyService.ResolveSecret(secret)
	if err != nil {
		s.logger.Error("key lookup failed, denying access", "error", err)
		return nil, ErrInvalidCredential
	}
	if cached == nil {
		return nil, ErrInvalidCredential
	}

	// Expired keys are rejected identically to unknown ones
	if cached.IsExpired() {
		return nil, ErrInvalidCredential
	}

	if s.gateRpsLimit > 0 {
		result, err := s.floodGuard.Check(cached.ID, s.gateRpsLimit, s.gateRpsLimit*5)
		if err != nil {
			// The guard is auxiliary; the daily quota below still decides
			s.logger.Error("flood guard unavailable, skipping burst check",
				slog.String("apiKeyId", cached.ID.String()),
				slog.String("error", err.Error()))
		} else if !result.Allowed {
			return nil, ErrQuotaExceeded
		}
	}

	allowed, err := s.rateLimiter.IsAllowed(cached.ID, cached.DailyLimit)
	if err != nil {
		s.logger.Error("quota check failed, denying access",
			slog.String("apiKeyId", cached.ID.String()),
			slog.String("error", err.Error()))
		return nil, ErrQuotaExceeded
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	return &ResolvedKey{
		ID:         cached.ID,
		Name:       cached.Name,
		DailyLimit: cached.DailyLimit,
	}, nil
}

// RecordOutcome persists the call log and touches the key counters. The
// call was already answered, so failures are logged and dropped rather
// than surfaced to the caller.
func (s *GatewayService) RecordOutcome(key *ResolvedKey, metadata *CallMetadata, outcome *CallOutcome) {
	err := s.usageService.Record(&usage.RecordCallInput{
		ApiKeyID:      key.ID,
		Provider:      outcome.Provider,
		Model:         outcome.Model,
		ClientIP:      metadata.ClientIP,
		RequestPath:   metadata.RequestPath,
		RequestMethod: metadata.RequestMethod,
		ResponseCode:  outcome.ResponseCode,
		Success:       outcome.Success,
		ErrorMessage:  outcome.ErrorMessage,
		LatencyMs:     outcome.LatencyMs,
		Tokens:        outcome.Tokens,
		Cost:          outcome.Cost,
	})
	if err != nil {
		// Record already logged the details
		return
	}

	if err := s.apiKeyService.TouchUsage(key.ID); err != nil {
		s.logger.Error("failed to touch key usage counters",
			slog.String("apiKeyId", key.ID.String()),
			slog.String("error", err.Error()))
	}
}

func errorResponse(err error) gin.H {
	return gin.H{"error": fmt.Sprintf("%v", err)}
}
