package config

import (
	"fmt"
	"net/url"
	"time"
)

type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// Validate checks the backend settings.
func (c *BackendConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("backend.url is required")
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("backend.url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must be http or https, got %q", c.URL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}

	return nil
}

// GetInfo describes the backend settings for status output.
func (c *BackendConfig) GetInfo() map[string]interface{} {
	timeout := "none"
	if c.Timeout > 0 {
		timeout = c.Timeout.String()
	}
	return map[string]interface{}{
		"url":     c.URL,
		"timeout": timeout,
	}
}
