package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"abkpi/internal/errors"
	"abkpi/internal/insights"
	"abkpi/ports"
)

// InsightGenerator bounds a model call with a timeout and tidies the reply.
type InsightGenerator struct {
	client    ports.LLMClient
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewInsightGenerator wraps client for insight generation.
func NewInsightGenerator(client ports.LLMClient, model string, maxTokens int, timeout time.Duration) *InsightGenerator {
	return &InsightGenerator{client: client, model: model, maxTokens: maxTokens, timeout: timeout}
}

// Generate sends prompt and returns the cleaned markdown reply.
func (g *InsightGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := g.client.ChatCompletion(ctx, g.model, prompt, g.maxTokens)
	if err != nil {
		return "", errors.ExternalServiceError("insight model", err)
	}
	text = insights.CleanResponse(text)
	if strings.TrimSpace(text) == "" {
		return "", errors.ExternalServiceError("insight model", fmt.Errorf("empty response"))
	}
	return text, nil
}
