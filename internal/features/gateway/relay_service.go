package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RelayService forwards admitted calls to the configured provider
// upstream and reports the outcome for accounting.
type RelayService struct {
	client    *req.Client
	upstreams map[string]string
	logger    *slog.Logger
}

const (
	relayTimeout       = 120 * time.Second
	errorSnippetLength = 500
)

func NewRelayService(upstreams map[string]string, logger *slog.Logger) *RelayService {
	client := req.C().
		SetTimeout(relayTimeout)

	return &RelayService{
		client:    client,
		upstreams: upstreams,
		logger:    logger,
	}
}

// Forward proxies the request to the provider's upstream, writes the
// upstream answer back to the caller, and returns the outcome. Unknown or
// unconfigured providers answer 502 and still produce a failed outcome so
// the ledger sees them.
func (s *RelayService) Forward(ctx *gin.Context, provider, path string) *CallOutcome {
	start := time.Now()

	base := s.upstreams[provider]
	if base == "" {
		outcome := &CallOutcome{
			Provider:     provider,
			Success:      false,
			ResponseCode: http.StatusBadGateway,
			ErrorMessage: fmt.Sprintf("provider not configured: %s", provider),
			LatencyMs:    elapsedMs(start),
		}
		ctx.JSON(http.StatusBadGateway, gin.H{"error": outcome.ErrorMessage})
		return outcome
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		outcome := &CallOutcome{
			Provider:     provider,
			Success:      false,
			ResponseCode: http.StatusBadRequest,
			ErrorMessage: "failed to read request body",
			LatencyMs:    elapsedMs(start),
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": outcome.ErrorMessage})
		return outcome
	}

	model := gjson.GetBytes(body, "model").String()
	body = stripCredential(ctx.ContentType(), body)

	request := s.client.R().
		SetContext(ctx.Request.Context()).
		SetBodyBytes(body)

	for name, values := range ctx.Request.Header {
		if isDroppedHeader(name) {
			continue
		}
		request.SetHeader(name, strings.Join(values, ", "))
	}

	response, err := request.Send(ctx.Request.Method, s.upstreamURL(base, path, ctx.Request.URL.Query()))
	if err != nil {
		s.logger.Error("upstream request failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()))

		outcome := &CallOutcome{
			Provider:     provider,
			Model:        model,
			Success:      false,
			ResponseCode: http.StatusBadGateway,
			ErrorMessage: err.Error(),
			LatencyMs:    elapsedMs(start),
		}
		if ctx.Request.Context().Err() == nil {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
		}
		return outcome
	}

	responseBody := response.Bytes()
	success := response.StatusCode < http.StatusBadRequest

	outcome := &CallOutcome{
		Provider:     provider,
		Model:        model,
		Success:      success,
		ResponseCode: response.StatusCode,
		LatencyMs:    elapsedMs(start),
		Tokens:       extractTokens(responseBody),
	}
	if !success {
		outcome.ErrorMessage = errorSnippet(responseBody)
	}

	ctx.Data(response.StatusCode, response.GetContentType(), responseBody)

	return outcome
}

func (s *RelayService) upstreamURL(base, path string, query url.Values) string {
	upstream := strings.TrimRight(base, "/") + path

	query.Del(paramCarrier)
	if encoded := query.Encode(); encoded != "" {
		upstream += "?" + encoded
	}

	return upstream
}

// stripCredential removes a body-carried secret so it never reaches the
// upstream, matching the header and query carriers which are stripped too.
func stripCredential(contentType string, body []byte) []byte {
	if strings.HasPrefix(contentType, "application/json") {
		if !gjson.GetBytes(body, paramCarrier).Exists() {
			return body
		}
		stripped, err := sjson.DeleteBytes(body, paramCarrier)
		if err != nil {
			return body
		}
		return stripped
	}

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil || !values.Has(paramCarrier) {
			return body
		}
		values.Del(paramCarrier)
		return []byte(values.Encode())
	}

	return body
}

// extractTokens reads the usage block providers attach to their responses.
// OpenAI-style bodies carry a total; Anthropic-style bodies split input
// and output.
func extractTokens(responseBody []byte) int64 {
	if total := gjson.GetBytes(responseBody, "usage.total_tokens"); total.Exists() {
		return total.Int()
	}

	input := gjson.GetBytes(responseBody, "usage.input_tokens").Int()
	output := gjson.GetBytes(responseBody, "usage.output_tokens").Int()

	return input + output
}

func isDroppedHeader(name string) bool {
	switch http.CanonicalHeaderKey(name) {
	case "X-Api-Key", "Host", "Connection", "Content-Length", "Accept-Encoding":
		return true
	}
	return false
}

func errorSnippet(responseBody []byte) string {
	snippet := string(responseBody)
	if len(snippet) > errorSnippetLength {
		snippet = snippet[:errorSnippetLength]
	}
	return snippet
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
