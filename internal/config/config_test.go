package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"volprofile/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "text", cfg.App.LogFormat)
	assert.Equal(t, ":9992", cfg.App.HTTPAddr)
	assert.Equal(t, feed.DefaultBaseURL, cfg.Feed.BaseURL)
	assert.Equal(t, feed.DefaultFileName, cfg.Feed.FileName)
	assert.Equal(t, 15*time.Second, cfg.Feed.Timeout())
	assert.Equal(t, 3, cfg.Feed.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.Feed.BreakerTimeout())
	assert.Zero(t, cfg.Feed.RefreshInterval())
	assert.False(t, cfg.Feed.UsesLocalFile())
	assert.Equal(t, 25, cfg.Dashboard.PageSize)
	assert.Equal(t, 5, cfg.Dashboard.PageWindow)
	assert.Equal(t, 25, cfg.Chart.BarHeightPx)
	assert.Equal(t, 1200, cfg.Chart.WidthPx)
	assert.False(t, cfg.Chart.PNGEnabled)
}

func TestLoadIncludeChain(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
feed:
  base_url: https://mirror.example.com/strategy
  timeout_seconds: 20
dashboard:
  page_size: 100
`)
	main := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
app:
  http_addr: ":8080"
  log_level: debug
feed:
  timeout_seconds: 5
  refresh_interval_seconds: 600
chart:
  png_enabled: true
`)

	cfg, err := Load(main)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "https://mirror.example.com/strategy", cfg.Feed.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout())
	assert.Equal(t, 10*time.Minute, cfg.Feed.RefreshInterval())
	assert.Equal(t, 100, cfg.Dashboard.PageSize)
	assert.True(t, cfg.Chart.PNGEnabled)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	b := writeConfig(t, dir, "b.yaml", "include: [a.yaml]\n")

	_, err := Load(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VOLPROFILE_FEED_DATE", "2025-06-20")
	t.Setenv("VOLPROFILE_CHART_PNG_ENABLED", "true")
	t.Setenv("VOLPROFILE_APP_HTTP_ADDR", ":7000")

	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "app:\n  http_addr: \":8080\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", cfg.Feed.Date)
	assert.True(t, cfg.Chart.PNGEnabled)
	assert.Equal(t, ":7000", cfg.App.HTTPAddr)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"page size", "dashboard:\n  page_size: 10\n", "dashboard.page_size"},
		{"date", "feed:\n  date: 2025/06/20\n", "feed.date"},
		{"log level", "app:\n  log_level: loud\n", "app.log_level"},
		{"log format", "app:\n  log_format: xml\n", "app.log_format"},
		{"base url", "feed:\n  base_url: not-a-url\n", "feed.base_url"},
		{"file name", "feed:\n  file_name: result.csv\n", "feed.file_name"},
		{"explicit zero threshold", "feed:\n  breaker_threshold: 0\n", "feed.breaker_threshold"},
		{"watch with polling", "feed:\n  local_path: /tmp/x.json\n  watch: true\n  refresh_interval_seconds: 60\n", "mutually exclusive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tc.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadLocalFileSkipsBaseURLCheck(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "feed:\n  local_path: ./data/result.json\n  base_url: not-a-url\n  watch: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Feed.UsesLocalFile())
	assert.True(t, cfg.Feed.Watch)
}
