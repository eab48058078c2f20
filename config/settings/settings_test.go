package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepquery/dqf/config/settings"
)

func setRequired(t *testing.T) {
	t.Setenv("QUERY_ENGINE_API_KEY", "sk-test")
	t.Setenv("QUERY_ENGINE_MODEL_NAME", "gpt-4o")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
}

func TestLoadEnv_Defaults(t *testing.T) {
	setRequired(t)

	s, err := settings.LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", s.LLM.APIKey)
	assert.Equal(t, "gpt-4o", s.LLM.Model)
	assert.Empty(t, s.LLM.BaseURL)

	assert.Equal(t, "tvly-test", s.Search.TavilyAPIKey)
	assert.Equal(t, 240, s.Search.TimeoutSeconds)
	assert.Equal(t, 20, s.Search.MaxResults)
	assert.Equal(t, 20000, s.Search.ContentMaxLength)

	assert.Equal(t, "reports", s.Report.OutputDir)
	assert.True(t, s.Report.SaveIntermediate)
	assert.Equal(t, 2, s.Report.MaxReflections)
	assert.Equal(t, 5, s.Report.MaxParagraphs)
}

func TestLoadEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QUERY_ENGINE_BASE_URL", "https://llm.internal/v1")
	t.Setenv("SEARCH_TIMEOUT", "30")
	t.Setenv("MAX_SEARCH_RESULTS", "5")
	t.Setenv("OUTPUT_DIR", "/tmp/reports")
	t.Setenv("SAVE_INTERMEDIATE_STATES", "false")

	s, err := settings.LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://llm.internal/v1", s.LLM.BaseURL)
	assert.Equal(t, 30, s.Search.TimeoutSeconds)
	assert.Equal(t, 5, s.Search.MaxResults)
	assert.Equal(t, "/tmp/reports", s.Report.OutputDir)
	assert.False(t, s.Report.SaveIntermediate)
}

func TestLoadEnv_MissingRequired(t *testing.T) {
	t.Setenv("QUERY_ENGINE_API_KEY", "")
	t.Setenv("QUERY_ENGINE_MODEL_NAME", "")
	t.Setenv("TAVILY_API_KEY", "")

	_, err := settings.LoadEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestLoadEnv_InvalidNumeric(t *testing.T) {
	setRequired(t)
	t.Setenv("SEARCH_TIMEOUT", "0")

	_, err := settings.LoadEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrValidation)
}
