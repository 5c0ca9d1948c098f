package mail

import "errors"

// GmailConfig holds credentials for the Gmail read adapter. The bundle is
// immutable after load; the adapter owns it exclusively.
type GmailConfig struct {
	// ClientID and ClientSecret identify the OAuth application.
	ClientID     string
	ClientSecret string
	// RefreshToken is the long-lived token exchanged for short-lived access
	// tokens on demand.
	RefreshToken string
	// RedirectURI is the OAuth redirect registered for the application.
	RedirectURI string
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

// Errors for Gmail configuration.
var (
	ErrGmailConfigMissingClientID     = errors.New("gmail: client id is required")
	ErrGmailConfigMissingClientSecret = errors.New("gmail: client secret is required")
	ErrGmailConfigMissingRefreshToken = errors.New("gmail: refresh token is required")
)

// Validate validates the Gmail configuration and applies defaults.
func (c *GmailConfig) Validate() error {
	if c.ClientID == "" {
		return ErrGmailConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrGmailConfigMissingClientSecret
	}
	if c.RefreshToken == "" {
		return ErrGmailConfigMissingRefreshToken
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
