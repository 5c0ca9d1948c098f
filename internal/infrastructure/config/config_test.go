package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MAIL_CLIENT_ID", "client")
	t.Setenv("MAIL_CLIENT_SECRET", "secret")
	t.Setenv("MAIL_REFRESH_TOKEN", "refresh")
	t.Setenv("COMMERCE_STORE", "glowlab")
	t.Setenv("COMMERCE_ACCESS_TOKEN", "shpat_test")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "client", cfg.Mail.ClientID)
	assert.Equal(t, "glowlab", cfg.Commerce.Store)
	assert.Equal(t, "shpat_test", cfg.Commerce.AccessToken)

	// Defaults.
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "order@korealy", cfg.Sync.PartnerSender)
	assert.Equal(t, 90, cfg.Sync.LookbackDays)
	assert.Equal(t, 500, cfg.Sync.BatchLimit)
	assert.Equal(t, 30*time.Second, cfg.Sync.CallTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.HTTP.RateLimitEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PARTNER_SENDER_ADDRESS", "dispatch@korealy")
	t.Setenv("LOOKBACK_DAYS", "14")
	t.Setenv("BATCH_LIMIT", "50")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dispatch@korealy", cfg.Sync.PartnerSender)
	assert.Equal(t, 14, cfg.Sync.LookbackDays)
	assert.Equal(t, 50, cfg.Sync.BatchLimit)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("MAIL_CLIENT_ID", "client")
	t.Setenv("MAIL_CLIENT_SECRET", "secret")
	t.Setenv("MAIL_REFRESH_TOKEN", "")
	t.Setenv("COMMERCE_STORE", "")
	t.Setenv("COMMERCE_ACCESS_TOKEN", "shpat_test")

	_, err := Load()

	require.ErrorIs(t, err, ErrMissingRequired)
	// The error names every missing key so one deploy round-trip fixes all.
	assert.Contains(t, err.Error(), "MAIL_REFRESH_TOKEN")
	assert.Contains(t, err.Error(), "COMMERCE_STORE")
	assert.NotContains(t, err.Error(), "MAIL_CLIENT_ID")
}
