package ports

import "context"

// LLMClient interface for LLM providers
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}

// InsightGenerator writes narrative commentary for an analysis prompt.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
