package commerce

import (
	"errors"
	"fmt"
	"strings"
)

// ShopifyConfig holds configuration for the Shopify Admin API integration.
// The credentials are immutable after load; the adapter owns them
// exclusively.
type ShopifyConfig struct {
	// Store is the store handle, e.g. "glowlab" for glowlab.myshopify.com.
	// A full myshopify.com hostname is also accepted.
	Store string
	// AccessToken is the Admin API access token.
	AccessToken string
	// APIVersion is the Admin API version path segment.
	APIVersion string
	// BaseURL overrides the derived https://{store}.myshopify.com base.
	// Used by tests.
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

// ShopifyDefaultAPIVersion is the Admin API version used when none is
// configured.
const ShopifyDefaultAPIVersion = "2024-01"

// Errors for Shopify configuration.
var (
	ErrShopifyConfigMissingStore = errors.New("shopify: store is required")
	ErrShopifyConfigMissingToken = errors.New("shopify: access token is required")
)

// Validate validates the Shopify configuration and applies defaults.
func (c *ShopifyConfig) Validate() error {
	if c.Store == "" {
		return ErrShopifyConfigMissingStore
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.BaseURL == "" {
		host := c.Store
		if !strings.Contains(host, ".") {
			host = host + ".myshopify.com"
		}
		c.BaseURL = "https://" + host
	}
	return nil
}

// apiURL builds a versioned Admin API URL.
func (c *ShopifyConfig) apiURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.BaseURL, c.APIVersion, strings.TrimPrefix(path, "/"))
}
