package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("MONGODB_URL", "mongodb://localhost:27017")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3333", cfg.Server.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URL)
	assert.Equal(t, "licitacao_db", cfg.MongoDB.Database)
	assert.Equal(t, 30*time.Second, cfg.MongoDB.QueryTimeout)
	assert.Equal(t, string(domain.SourceUnified), cfg.Reports.Source)
	assert.Equal(t, []int{2023, 2024}, cfg.Reports.Years)
	assert.False(t, cfg.Reports.YearBreakdown.RestrictYears)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_MissingMongoURL(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("MONGODB_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MONGODB_DATABASE", "pncp")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATADRIVEN_SERVER_ADDR", ":8080")
	t.Setenv("DATADRIVEN_REPORTS_SOURCE", "normalized")
	t.Setenv("DATADRIVEN_REPORTS_YEARS", "2022,2023,2024")
	t.Setenv("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_RESTRICT_YEARS", "true")
	t.Setenv("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_MIN_COUNT", "5")
	t.Setenv("DATADRIVEN_MONGODB_QUERY_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "pncp", cfg.MongoDB.Database)
	assert.Equal(t, 5*time.Second, cfg.MongoDB.QueryTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	opts := cfg.ReportOptions()
	assert.Equal(t, []int{2022, 2023, 2024}, opts.Years)
	assert.Equal(t, domain.YearBreakdownPolicy{RestrictYears: true, MinCount: 5}, opts.YearBreakdown)
}

func TestLoad_InvalidSource(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATADRIVEN_REPORTS_SOURCE", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  addr: ":9000"
log:
  level: debug
  format: console
reports:
  years: [2024]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []int{2024}, cfg.Reports.Years)
}

func TestPrefixedTransform(t *testing.T) {
	assert.Equal(t, "server.gin_mode", prefixedTransform("DATADRIVEN_SERVER_GIN_MODE"))
	assert.Equal(t, "reports.year_breakdown.min_count", prefixedTransform("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_MIN_COUNT"))
	assert.Equal(t, "reports.source", prefixedTransform("DATADRIVEN_REPORTS_SOURCE"))
	assert.Equal(t, "", prefixedTransform("DATADRIVEN_CONFIG"))
	assert.Equal(t, "reports.year_breakdown.restrict_years", prefixedTransform("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_RESTRICT_YEARS"))
	assert.Equal(t, "", prefixedTransform("DATADRIVEN_UNKNOWN_KEY"))
	assert.Equal(t, "", prefixedTransform("DATADRIVEN_REPORTS_"))
}

func TestLoad_YearBreakdownFromEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_RESTRICT_YEARS", "true")
	t.Setenv("DATADRIVEN_REPORTS_YEAR_BREAKDOWN_MIN_COUNT", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Reports.YearBreakdown.RestrictYears)
	assert.Equal(t, 5, cfg.Reports.YearBreakdown.MinCount)
	assert.Equal(t, []int{2023, 2024}, cfg.Reports.Years)
}
