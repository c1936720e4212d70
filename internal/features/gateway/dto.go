package gateway

import (
	"github.com/google/uuid"
)

// ResolvedKey is the identity the gate attaches to an admitted call. It is
// passed explicitly to downstream handlers instead of living in ambient
// request state.
type ResolvedKey struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DailyLimit int       `json:"dailyLimit"`
}

// CallOutcome is what the downstream handler reports back after executing
// an admitted call.
type CallOutcome struct {
	Provider     string
	Model        string
	Success      bool
	ErrorMessage string
	ResponseCode int
	LatencyMs    float64
	Tokens       int64
	Cost         float64
}

// CallMetadata captures request attributes the ledger stores with each log
// row.
type CallMetadata struct {
	ClientIP      string
	RequestPath   string
	RequestMethod string
}
