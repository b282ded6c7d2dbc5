// Package azure implements a verdict Provider for Azure OpenAI chat completions.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
	"github.com/zoobzio/verdict"
)

// Provider implements the verdict Provider interface for Azure OpenAI Service.
type Provider struct {
	endpoint    string
	apiKey      string
	maxTokens   int
	temperature float32
	options     []verdict.Option
	name        string
}

// Config holds configuration for the Azure provider.
type Config struct {
	Endpoint    string        // Full chat-completions URL, including deployment and api-version
	APIKey      string        // Your Azure API key
	MaxTokens   int           // Optional, defaults to verdict.DefaultMaxTokens
	Temperature float32       // Optional, defaults to verdict.DefaultTemperature
	Timeout     time.Duration // Optional, defaults to verdict.DefaultTimeout

	// Retries is the number of extra attempts after a failure. Zero, the default,
	// sends every request exactly once.
	Retries     int
	BackoffBase time.Duration // Optional, defaults to 500ms when Retries > 0

	// RateLimit caps requests per second across a session. Zero disables it.
	RateLimit float64
	Burst     int // Optional, defaults to 1 when RateLimit > 0
}

// New creates a new Azure OpenAI provider.
func New(config Config) *Provider {
	if config.MaxTokens == 0 {
		config.MaxTokens = verdict.DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = verdict.DefaultTemperature
	}
	if config.Timeout == 0 {
		config.Timeout = verdict.DefaultTimeout
	}

	opts := []verdict.Option{verdict.WithTimeout(config.Timeout)}
	if config.Retries > 0 {
		if config.BackoffBase == 0 {
			config.BackoffBase = 500 * time.Millisecond
		}
		opts = append(opts, verdict.WithBackoff(config.Retries+1, config.BackoffBase))
	}
	if config.RateLimit > 0 {
		if config.Burst < 1 {
			config.Burst = 1
		}
		opts = append(opts, verdict.WithRateLimit(config.RateLimit, config.Burst))
	}

	return &Provider{
		endpoint:    config.Endpoint,
		apiKey:      config.APIKey,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		options:     opts,
		name:        "azure",
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Open returns a session with its own connection pool.
func (p *Provider) Open() verdict.Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	s := &session{
		provider:  p,
		transport: transport,
		client:    &http.Client{Transport: transport},
	}
	s.pipeline = verdict.Apply(pipz.Apply("chat-completion", s.call), p.options...)
	return s
}

type session struct {
	provider  *Provider
	transport *http.Transport
	client    *http.Client
	pipeline  pipz.Chainable[*verdict.Exchange]
}

// Send performs one chat completion and returns the reply content or a failure marker.
func (s *session) Send(ctx context.Context, messages []verdict.Message) string {
	exchange := &verdict.Exchange{
		Messages:    messages,
		MaxTokens:   s.provider.maxTokens,
		Temperature: s.provider.temperature,
		RequestID:   uuid.New().String(),
	}

	processed, err := s.pipeline.Process(ctx, exchange)
	if err != nil {
		return verdict.FailureMarker(cause(err))
	}
	return processed.Response
}

// Close releases the session's idle connections.
func (s *session) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

// call is the terminal processor: one HTTP round trip.
func (s *session) call(ctx context.Context, ex *verdict.Exchange) (*verdict.Exchange, error) {
	p := s.provider
	startTime := time.Now()
	ex.Attempts++

	capitan.Info(ctx, verdict.ProviderCallStarted,
		verdict.ProviderKey.Field(p.name),
		verdict.RequestIDKey.Field(ex.RequestID),
		verdict.AttemptKey.Field(ex.Attempts),
	)

	requestBody := chatCompletionRequest{
		Messages:    make([]message, len(ex.Messages)),
		MaxTokens:   ex.MaxTokens,
		Temperature: ex.Temperature,
	}
	for i, msg := range ex.Messages {
		requestBody.Messages[i] = message(msg)
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return ex, s.fail(ctx, ex, startTime, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return ex, s.fail(ctx, ex, startTime, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return ex, s.fail(ctx, ex, startTime, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ex, s.fail(ctx, ex, startTime, fmt.Errorf("failed to read response: %w", err))
	}
	ex.Status = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		return ex, s.fail(ctx, ex, startTime, &verdict.StatusError{Code: resp.StatusCode, Body: string(body)})
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return ex, s.fail(ctx, ex, startTime, fmt.Errorf("failed to parse response: %w", err))
	}

	ex.Response = completionResp.content()

	capitan.Info(ctx, verdict.ProviderCallCompleted,
		verdict.ProviderKey.Field(p.name),
		verdict.RequestIDKey.Field(ex.RequestID),
		verdict.HTTPStatusCodeKey.Field(resp.StatusCode),
		verdict.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)

	return ex, nil
}

// fail emits provider.call.failed and returns err unchanged.
func (s *session) fail(ctx context.Context, ex *verdict.Exchange, startTime time.Time, err error) error {
	fields := []capitan.Field{
		verdict.ProviderKey.Field(s.provider.name),
		verdict.RequestIDKey.Field(ex.RequestID),
		verdict.AttemptKey.Field(ex.Attempts),
		verdict.DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
		verdict.ErrorKey.Field(err.Error()),
	}
	if ex.Status != 0 {
		fields = append(fields, verdict.HTTPStatusCodeKey.Field(ex.Status))
	}
	capitan.Error(ctx, verdict.ProviderCallFailed, fields...)
	return err
}

// cause strips pipz wrappers so the marker shows the underlying failure.
func cause(err error) error {
	for {
		var perr *pipz.Error[*verdict.Exchange]
		if !errors.As(err, &perr) {
			return err
		}
		next := errors.Unwrap(perr)
		if next == nil {
			return err
		}
		err = next
	}
}

// Request/Response types for the chat-completions API

type chatCompletionRequest struct {
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int      `json:"index"`
	Message      *message `json:"message"`
	FinishReason string   `json:"finish_reason"`
}

// content returns the first choice's message content, or "" when any part is missing.
func (r chatCompletionResponse) content() string {
	if len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}
