package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGmailConfig_Validate(t *testing.T) {
	t.Run("complete bundle", func(t *testing.T) {
		cfg := &GmailConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RefreshToken: "refresh",
		}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 30, cfg.TimeoutSeconds)
	})

	t.Run("missing client id", func(t *testing.T) {
		cfg := &GmailConfig{ClientSecret: "secret", RefreshToken: "refresh"}
		assert.ErrorIs(t, cfg.Validate(), ErrGmailConfigMissingClientID)
	})

	t.Run("missing client secret", func(t *testing.T) {
		cfg := &GmailConfig{ClientID: "client", RefreshToken: "refresh"}
		assert.ErrorIs(t, cfg.Validate(), ErrGmailConfigMissingClientSecret)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		cfg := &GmailConfig{ClientID: "client", ClientSecret: "secret"}
		assert.ErrorIs(t, cfg.Validate(), ErrGmailConfigMissingRefreshToken)
	})
}
