package crm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the CRM API connection settings
type Config struct {
	// Host is the CRM host, with or without scheme
	Host string
	// CompanyID identifies the company workspace in the CRM
	CompanyID string
	// Token is the API bearer token
	Token string
	// StatusID is the CRM status assigned to newly created orders
	StatusID int
	// ProjectID is the CRM project new orders are filed under
	ProjectID int
	// Timeout is the HTTP client timeout
	Timeout time.Duration
}

// Validate checks required config fields
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("crm: host is required")
	}
	if c.CompanyID == "" {
		return errors.New("crm: company ID is required")
	}
	if c.Token == "" {
		return errors.New("crm: token is required")
	}
	return nil
}

// applyDefaults fills optional fields
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Endpoint returns the company-scoped GraphQL endpoint URL.
// Authentication travels in the Authorization header only.
func (c *Config) Endpoint() string {
	host := c.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return fmt.Sprintf("%s/companies/%s/CRM", strings.TrimRight(host, "/"), c.CompanyID)
}
