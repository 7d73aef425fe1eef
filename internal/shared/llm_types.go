package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a model request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ExecutionMeta holds operational metadata for one tracked run: an order
// aggregation, a recipe import or an extraction call.
type ExecutionMeta struct {
	Name    string
	Usage   TokenUsage
	Items   int
	Latency time.Duration
}
