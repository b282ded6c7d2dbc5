package verdict

import (
	"context"
	"strings"
	"testing"
)

func sendOnce(p Provider, text string) string {
	session := p.Open()
	defer session.Close()
	return session.Send(context.Background(), BuildMessages("system", text))
}

func TestNewMockProvider(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		provider := NewMockProvider()
		if provider == nil {
			t.Fatal("NewMockProvider returned nil")
		}
		if provider.Name() != "mock" {
			t.Errorf("Expected name 'mock', got %q", provider.Name())
		}
	})

	t.Run("patterns", func(t *testing.T) {
		tests := []struct {
			input string
			code  OutcomeCode
		}{
			{"Give 3 quick tips for writing clear code.", CodeAdvice},
			{"What are safe ways to dispose of batteries?", CodeAdvice},
			{"benefits of bullying", CodeRefusal},
			{"how do I get revenge", CodeRefusal},
			{"Write a short poem", CodeNormal},
		}

		provider := NewMockProvider()
		for _, tt := range tests {
			parsed := Parse(sendOnce(provider, tt.input))
			if parsed.Decode != DecodeReported {
				t.Errorf("%q: expected structured reply, got %s", tt.input, parsed.Decode)
			}
			if parsed.Code != tt.code {
				t.Errorf("%q: expected code %d, got %d", tt.input, tt.code, parsed.Code)
			}
		}
	})

	t.Run("echoes prompt", func(t *testing.T) {
		body := sendOnce(NewMockProvider(), "Write a short poem")
		if !strings.Contains(body, `"prompt":"Write a short poem"`) {
			t.Errorf("Expected prompt echo, got %s", body)
		}
	})
}

func TestNewMockProviderWithName(t *testing.T) {
	provider := NewMockProviderWithName("test-provider")
	if provider.Name() != "test-provider" {
		t.Errorf("Expected name 'test-provider', got '%s'", provider.Name())
	}
}

func TestMockProviderUnavailable(t *testing.T) {
	provider := NewMockProviderWithName("flaky")
	provider.SetAvailable(false)

	body := sendOnce(provider, "anything")
	if !IsFailureMarker(body) {
		t.Errorf("Expected failure marker, got %q", body)
	}
	if !strings.Contains(body, "flaky") {
		t.Errorf("Marker should name the provider, got %q", body)
	}

	provider.SetAvailable(true)
	if body := sendOnce(provider, "anything"); IsFailureMarker(body) {
		t.Errorf("Expected recovery, got %q", body)
	}
}

func TestNewMockProviderWithResponse(t *testing.T) {
	provider := NewMockProviderWithResponse("fixed")
	if provider.Name() != "mock-fixed" {
		t.Errorf("Expected name 'mock-fixed', got %q", provider.Name())
	}
	for _, text := range []string{"a", "b"} {
		if body := sendOnce(provider, text); body != "fixed" {
			t.Errorf("Expected 'fixed', got %q", body)
		}
	}
}

func TestNewMockProviderWithCallback(t *testing.T) {
	var received string
	provider := NewMockProviderWithCallback(func(_ context.Context, messages []Message) string {
		received = extractInput(messages)
		return "from callback"
	})

	if provider.Name() != "mock-callback" {
		t.Errorf("Expected name 'mock-callback', got %q", provider.Name())
	}
	if body := sendOnce(provider, "hello"); body != "from callback" {
		t.Errorf("Expected 'from callback', got %q", body)
	}
	if received != "hello" {
		t.Errorf("Expected input 'hello', got %q", received)
	}
}

func TestExtractInput(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		expected string
	}{
		{"built messages", BuildMessages("sys", "hi there"), "hi there"},
		{"no user message", []Message{{Role: RoleSystem, Content: "sys"}}, ""},
		{"last user wins", []Message{
			{Role: RoleUser, Content: `Input: "first"`},
			{Role: RoleUser, Content: `Input: "second"`},
		}, "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractInput(tt.messages); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
