package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/pkg/failure"
)

func TestWithDefault(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxDepth())
	assert.Equal(t, 50, cfg.MaxPages())
	assert.Equal(t, 3, cfg.Concurrency())
	assert.Equal(t, 2*time.Second, cfg.BaseDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.Jitter())
	assert.True(t, cfg.RespectRobots())
	assert.Equal(t, 3, cfg.MaxRetries())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.False(t, cfg.AllowCrossDomain())
	assert.Equal(t, "output", cfg.OutputDir())
	assert.Equal(t, []string{config.FormatJSON}, cfg.ExportFormats())
	assert.NotEmpty(t, cfg.UserAgent())
}

func TestBuilder_Overrides(t *testing.T) {
	cfg, err := config.WithDefault().
		WithMaxDepth(1).
		WithMaxPages(10).
		WithConcurrency(5).
		WithBaseDelay(time.Second).
		WithRespectRobots(false).
		WithAllowCrossDomain(true).
		WithExportFormats([]string{config.FormatCSV, config.FormatExcel}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.MaxDepth())
	assert.Equal(t, 10, cfg.MaxPages())
	assert.Equal(t, 5, cfg.Concurrency())
	assert.Equal(t, time.Second, cfg.BaseDelay())
	assert.False(t, cfg.RespectRobots())
	assert.True(t, cfg.AllowCrossDomain())
	assert.Equal(t, []string{config.FormatCSV, config.FormatExcel}, cfg.ExportFormats())
}

func TestBuild_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		builder config.Builder
		field   string
	}{
		{"negative depth", config.WithDefault().WithMaxDepth(-1), "maxDepth"},
		{"zero pages", config.WithDefault().WithMaxPages(0), "maxPages"},
		{"zero concurrency", config.WithDefault().WithConcurrency(0), "concurrency"},
		{"negative delay", config.WithDefault().WithBaseDelay(-time.Second), "baseDelay"},
		{"negative retries", config.WithDefault().WithMaxRetries(-1), "maxRetries"},
		{"zero timeout", config.WithDefault().WithTimeout(0), "timeout"},
		{"empty user agent", config.WithDefault().WithUserAgent(""), "userAgent"},
		{"no formats", config.WithDefault().WithExportFormats(nil), "exportFormats"},
		{"unknown format", config.WithDefault().WithExportFormats([]string{"xml"}), "exportFormats"},
		{"duplicate format", config.WithDefault().WithExportFormats([]string{"json", "json"}), "exportFormats"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			require.Error(t, err)

			var cfgErr *config.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.Equal(t, failure.SeverityFatal, cfgErr.Severity())
		})
	}
}

func TestExportFormats_ReturnsCopy(t *testing.T) {
	cfg, err := config.WithDefault().
		WithExportFormats([]string{config.FormatJSON, config.FormatCSV}).
		Build()
	require.NoError(t, err)

	formats := cfg.ExportFormats()
	formats[0] = "mutated"

	assert.Equal(t, []string{config.FormatJSON, config.FormatCSV}, cfg.ExportFormats())
}

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWithConfigFile_JSON(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{
		"maxDepth": 2,
		"maxPages": 20,
		"baseDelay": "750ms",
		"respectRobots": false,
		"exportFormats": ["json", "markdown"]
	}`)

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxDepth())
	assert.Equal(t, 20, cfg.MaxPages())
	assert.Equal(t, 750*time.Millisecond, cfg.BaseDelay())
	assert.False(t, cfg.RespectRobots())
	assert.Equal(t, []string{config.FormatJSON, config.FormatMarkdown}, cfg.ExportFormats())
	// untouched fields keep defaults
	assert.Equal(t, 3, cfg.Concurrency())
}

func TestWithConfigFile_YAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
maxDepth: 1
timeout: 5s
userAgent: custom-agent/1.0
allowCrossDomain: true
`)

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.MaxDepth())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "custom-agent/1.0", cfg.UserAgent())
	assert.True(t, cfg.AllowCrossDomain())
}

func TestWithConfigFile_ZeroRetriesHonored(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "maxRetries: 0\n")

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MaxRetries())
}

func TestBuild_ZeroRetriesAllowed(t *testing.T) {
	cfg, err := config.WithDefault().WithMaxRetries(0).Build()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries())
}

func TestWithConfigFile_Missing(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}

func TestWithConfigFile_BadDuration(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{"baseDelay": "soon"}`)

	_, err := config.WithConfigFile(path)
	require.Error(t, err)

	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "baseDelay", cfgErr.Field)
}

func TestWithConfigFile_UnsupportedExtension(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `maxDepth = 2`)

	_, err := config.WithConfigFile(path)
	assert.ErrorIs(t, err, config.ErrConfigParsingFail)
}
