package container

import (
	"context"
	"testing"

	"abkpi/adapters/memory"
	"abkpi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDatabase(t *testing.T) {
	c, err := New(context.Background(), &config.Config{
		LogLevel: "ERROR",
		AI:       config.AIConfig{Provider: config.ProviderOpenAI},
	})
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.DB)
	assert.IsType(t, &memory.RunRepository{}, c.RunRepo)
	assert.Nil(t, c.InsightGenerator)
	assert.NotNil(t, c.AnalysisService)

	_, err = New(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewWithOpenAI(t *testing.T) {
	c, err := New(context.Background(), &config.Config{
		AI: config.AIConfig{Provider: config.ProviderOpenAI, OpenAIKey: "sk-test", Model: "gpt-test"},
	})
	require.NoError(t, err)
	assert.NotNil(t, c.InsightGenerator)
}
