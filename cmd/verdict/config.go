package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/verdict"
	"github.com/zoobzio/verdict/providers/azure"
)

// DefaultEndpoint is the chat-completions deployment used when none is configured.
const DefaultEndpoint = "https://rmit-hackathon-ve.openai.azure.com/openai/deployments/gpt-35-turbo/chat/completions?api-version=2025-01-01-preview"

// Settings is the on-disk configuration of the command.
type Settings struct {
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"api_key"`
	Concurrency  int           `yaml:"concurrency"`
	SystemPrompt string        `yaml:"system_prompt"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	RateLimit    float64       `yaml:"rate_limit"`
	Output       OutputConfig  `yaml:"output"`
}

// OutputConfig selects where results are persisted.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	return &Settings{
		Endpoint:    DefaultEndpoint,
		APIKey:      verdict.PlaceholderAPIKey,
		Concurrency: verdict.DefaultConcurrency,
		MaxTokens:   verdict.DefaultMaxTokens,
		Temperature: verdict.DefaultTemperature,
		Timeout:     verdict.DefaultTimeout,
	}
}

// LoadSettings reads path, if it is set and exists, then applies environment overrides.
func LoadSettings(path string, getenv func(string) string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := s.applyEnvOverrides(getenv); err != nil {
		return nil, err
	}
	return s, nil
}

// applyEnvOverrides applies environment variable overrides.
func (s *Settings) applyEnvOverrides(getenv func(string) string) error {
	if endpoint := getenv("AZURE_ENDPOINT"); endpoint != "" {
		s.Endpoint = endpoint
	}
	if key := getenv("AZURE_API_KEY"); key != "" {
		s.APIKey = key
	}
	if raw := getenv("VERDICT_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &verdict.ConfigError{Field: "concurrency", Reason: fmt.Sprintf("must be an integer, got %q", raw)}
		}
		s.Concurrency = n
	}
	return nil
}

// Pipeline returns the library configuration.
func (s *Settings) Pipeline() verdict.Config {
	return verdict.Config{
		Endpoint:     s.Endpoint,
		APIKey:       s.APIKey,
		Concurrency:  s.Concurrency,
		SystemPrompt: s.SystemPrompt,
	}
}

// Azure returns the provider configuration.
func (s *Settings) Azure() azure.Config {
	return azure.Config{
		Endpoint:    s.Endpoint,
		APIKey:      s.APIKey,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Timeout:     s.Timeout,
		Retries:     s.Retries,
		RateLimit:   s.RateLimit,
	}
}

// configHint tells the user how to fix a rejected setting.
func configHint(field string) string {
	switch field {
	case "api key":
		return "set AZURE_API_KEY or api_key in the config file"
	case "endpoint":
		return "set AZURE_ENDPOINT or endpoint in the config file"
	case "concurrency":
		return "use --concurrency, VERDICT_CONCURRENCY or concurrency with a positive integer"
	default:
		return "check the config file"
	}
}
