package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepquery/dqf/config"
	"github.com/deepquery/dqf/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestLoad_ReadsValues(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "query-engine"
  debug: true
search:
  timeout: "4m"
  max_results: 20
`)

	cfg := config.New()
	require.NoError(t, cfg.Load(path, "", ""))

	assert.Equal(t, "query-engine", cfg.GetString("app.name"))
	assert.True(t, cfg.GetBool("app.debug"))
	assert.Equal(t, 4*time.Minute, cfg.GetDuration("search.timeout"))
	assert.Equal(t, 20, cfg.GetInt("search.max_results"))
	assert.True(t, cfg.IsSet("app.name"))
	assert.False(t, cfg.IsSet("app.missing"))
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := config.New()
	assert.Error(t, cfg.Load("/nonexistent/config.yaml", "", ""))
}

func TestRetryPolicy_Overlay(t *testing.T) {
	path := writeConfig(t, `
retry:
  search:
    max_retries: 2
    initial_delay: "500ms"
  datastore:
    max_delay: "3s"
    backoff_factor: 2.5
`)

	cfg := config.New()
	require.NoError(t, cfg.Load(path, "", ""))

	p := cfg.RetryPolicy("retry.search", retry.SearchCall)
	assert.Equal(t, 2, p.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, p.InitialDelay)
	assert.Equal(t, retry.SearchCall.BackoffFactor, p.BackoffFactor, "absent keys keep the base value")
	assert.Equal(t, retry.SearchCall.MaxDelay, p.MaxDelay)

	d := cfg.RetryPolicy("retry.datastore", retry.DatastoreCall)
	assert.Equal(t, retry.DatastoreCall.MaxRetries, d.MaxRetries)
	assert.Equal(t, 3*time.Second, d.MaxDelay)
	assert.Equal(t, 2.5, d.BackoffFactor)
}

func TestRetryPolicy_NoOverlayKeepsBase(t *testing.T) {
	path := writeConfig(t, "app:\n  name: x\n")

	cfg := config.New()
	require.NoError(t, cfg.Load(path, "", ""))

	p := cfg.RetryPolicy("retry.model", retry.ModelInference)
	assert.Equal(t, retry.ModelInference, p)
}

func TestUnmarshal_Subtree(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: "gpt-4o"
  base_url: "https://llm.internal/v1"
`)

	cfg := config.New()
	require.NoError(t, cfg.Load(path, "", ""))

	var out struct {
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	}
	require.NoError(t, cfg.Unmarshal("llm", &out))
	assert.Equal(t, "gpt-4o", out.Model)
	assert.Equal(t, "https://llm.internal/v1", out.BaseURL)
}
