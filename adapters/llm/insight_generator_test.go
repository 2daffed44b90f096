package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"abkpi/internal/config"
	"abkpi/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightGeneratorCleansFences(t *testing.T) {
	mock := &MockLLMClient{Response: "```markdown\n**Rollout** the variation.\n```"}
	gen := NewInsightGenerator(mock, "test-model", 100, time.Second)

	text, err := gen.Generate(context.Background(), "prompt body")
	require.NoError(t, err)
	assert.Equal(t, "**Rollout** the variation.", text)
	assert.Equal(t, []string{"prompt body"}, mock.Prompts)
}

func TestInsightGeneratorWrapsFailures(t *testing.T) {
	gen := NewInsightGenerator(&MockLLMClient{Error: fmt.Errorf("quota exceeded")}, "m", 0, 0)
	_, err := gen.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))

	gen = NewInsightGenerator(&MockLLMClient{Response: "```\n```"}, "m", 0, 0)
	_, err = gen.Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"hello"}}]}`)
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), config.AIConfig{
		Provider: config.ProviderOpenAI, OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL, Timeout: time.Second,
	})
	require.NoError(t, err)
	text, err := client.ChatCompletion(context.Background(), "gpt-test", "hi", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &OpenAIClient{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}
	_, err := client.ChatCompletion(context.Background(), "m", "p", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = client.ChatCompletion(context.Background(), "", "p", 0)
	assert.Error(t, err)
}

func TestNewClientRequiresKeys(t *testing.T) {
	_, err := NewClient(context.Background(), config.AIConfig{Provider: config.ProviderGemini})
	assert.Error(t, err)
	_, err = NewClient(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI})
	assert.Error(t, err)
	_, err = NewClient(context.Background(), config.AIConfig{Provider: "other"})
	assert.Error(t, err)
}
