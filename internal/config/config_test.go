package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("RESPONSE_CACHE_TTL", "")
	t.Setenv("SUBMISSION_CACHE_TTL", "")
	t.Setenv("ELASTICSEARCH_AWARD_INDEX", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.ResponseCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.PeriodCacheTTL)
	assert.Equal(t, "award-line-items", cfg.AwardIndex)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", "postgres://localhost/spending_test")
	t.Setenv("RESPONSE_CACHE_TTL", "30s")
	t.Setenv("ELASTICSEARCH_URL", "http://localhost:9200")
	t.Setenv("ALLOW_CROSS_SITE_DEV", "TRUE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/spending_test", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.ResponseCacheTTL)
	assert.Equal(t, "http://localhost:9200", cfg.ElasticsearchURL)
	assert.True(t, cfg.AllowCrossSiteDev)
}

func TestLoad_ZeroSubmissionTTLIsKept(t *testing.T) {
	t.Setenv("SUBMISSION_CACHE_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.PeriodCacheTTL)
}
