package opn

import (
	"errors"
	"time"
)

// Config holds the payment gateway API settings
type Config struct {
	// BaseURL is the gateway API base URL
	BaseURL string
	// SecretKey authenticates API calls via basic auth
	SecretKey string
	// ReturnURI is where the gateway redirects after 3-D Secure
	ReturnURI string
	// Enable3DS requests 3-D Secure authorization on card charges
	Enable3DS bool
	// Timeout is the HTTP client timeout
	Timeout time.Duration
}

// Validate checks required config fields
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("opn: secret key is required")
	}
	if c.Enable3DS && c.ReturnURI == "" {
		return errors.New("opn: return URI is required when 3-D Secure is enabled")
	}
	return nil
}

// applyDefaults fills optional fields
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.omise.co"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}
