package verdict

import (
	"context"
	"encoding/json"
	"strings"
)

// MockProvider simulates the remote service for testing.
// It returns deterministic structured replies based on prompt patterns.
type MockProvider struct {
	name      string
	available bool
}

// NewMockProvider creates a new mock provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:      "mock",
		available: true,
	}
}

// NewMockProviderWithName creates a new mock provider with a specific name.
func NewMockProviderWithName(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		available: true,
	}
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return m.name
}

// Open returns a session answering from prompt patterns.
func (m *MockProvider) Open() Session {
	return mockSession{generate: m.generateResponse}
}

// SetAvailable sets the availability status (for testing failures).
// An unavailable provider answers every request with a failure marker.
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

// generateResponse creates a reply based on the user input.
func (m *MockProvider) generateResponse(messages []Message) string {
	if !m.available {
		return MarkerPrefix + "provider " + m.name + " is unavailable"
	}

	input := extractInput(messages)
	lower := strings.ToLower(input)

	reply := Verdict{Prompt: input}
	switch {
	case strings.Contains(lower, "tips") || strings.Contains(lower, "safe ways"):
		reply.Result = "Here are 3 tips..."
		reply.ResultCode = int(CodeAdvice)
	case strings.Contains(lower, "bully") || strings.Contains(lower, "revenge"):
		reply.Result = map[string]string{"error": "jailbreak prompt"}
		reply.ResultCode = int(CodeRefusal)
	default:
		reply.Result = "Mock response"
		reply.ResultCode = int(CodeNormal)
	}

	jsonBytes, err := json.Marshal(reply)
	if err != nil {
		return "Mock response"
	}
	return string(jsonBytes)
}

// extractInput returns the quoted input of the last user message.
func extractInput(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleUser {
			continue
		}
		content := strings.TrimPrefix(messages[i].Content, "Input: ")
		return strings.Trim(content, `"`)
	}
	return ""
}

// NewMockProviderWithResponse creates a mock that always returns a specific reply.
func NewMockProviderWithResponse(response string) Provider {
	return &mockProviderFixed{response: response}
}

// NewMockProviderWithCallback creates a mock that calls a function to generate replies.
func NewMockProviderWithCallback(callback func(ctx context.Context, messages []Message) string) Provider {
	return &mockProviderCallback{callback: callback}
}

type mockSession struct {
	generate func([]Message) string
}

func (s mockSession) Send(_ context.Context, messages []Message) string {
	return s.generate(messages)
}

func (mockSession) Close() error {
	return nil
}

// mockProviderFixed always returns a fixed reply.
type mockProviderFixed struct {
	response string
}

func (*mockProviderFixed) Name() string {
	return "mock-fixed"
}

func (m *mockProviderFixed) Open() Session {
	return mockSession{generate: func([]Message) string { return m.response }}
}

// mockProviderCallback uses a callback to generate replies.
type mockProviderCallback struct {
	callback func(context.Context, []Message) string
}

func (*mockProviderCallback) Name() string {
	return "mock-callback"
}

func (m *mockProviderCallback) Open() Session {
	return callbackSession{callback: m.callback}
}

type callbackSession struct {
	callback func(context.Context, []Message) string
}

func (s callbackSession) Send(ctx context.Context, messages []Message) string {
	return s.callback(ctx, messages)
}

func (callbackSession) Close() error {
	return nil
}
