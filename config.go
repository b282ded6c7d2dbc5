package verdict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is matched by every configuration failure.
var ErrConfiguration = errors.New("configuration error")

// PlaceholderAPIKey is the sample key shipped in example configs; it is never accepted.
const PlaceholderAPIKey = "your-api-key-here"

// ConfigError reports a missing or invalid setting. It halts a run before any request is sent.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

// Is lets errors.Is match ErrConfiguration.
func (*ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Config holds the settings a pipeline run depends on.
type Config struct {
	Endpoint     string // Chat-completion URL
	APIKey       string // Service credential
	Concurrency  int    // Requests in flight at once, defaults to DefaultConcurrency
	SystemPrompt string // Optional, defaults to DefaultSystemPrompt()
}

// Validate checks the credential and endpoint.
func (c Config) Validate() error {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return &ConfigError{Field: "api key", Reason: "is not set"}
	}
	if key == PlaceholderAPIKey {
		return &ConfigError{Field: "api key", Reason: "is still the placeholder value"}
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return &ConfigError{Field: "endpoint", Reason: "is not set"}
	}
	if c.Concurrency < 0 {
		return &ConfigError{Field: "concurrency", Reason: fmt.Sprintf("must be positive, got %d", c.Concurrency)}
	}
	return nil
}

func (c Config) concurrency() int {
	if c.Concurrency == 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c Config) systemPrompt() string {
	if c.SystemPrompt == "" {
		return DefaultSystemPrompt()
	}
	return c.SystemPrompt
}
