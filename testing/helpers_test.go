package testing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/verdict"
)

func send(p verdict.Provider, text string) string {
	s := p.Open()
	defer s.Close()
	return s.Send(context.Background(), verdict.BuildMessages("system", text))
}

func TestResponseBuilder_Structured(t *testing.T) {
	response := NewResponseBuilder().
		WithPrompt("Give tips").
		WithResult("Here are 3 tips...").
		WithResultCode(verdict.CodeAdvice).
		Build()

	var data map[string]any
	if err := json.Unmarshal([]byte(response), &data); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if data["prompt"] != "Give tips" {
		t.Errorf("expected prompt='Give tips', got %v", data["prompt"])
	}
	if data["result_code"] != float64(300) {
		t.Errorf("expected result_code=300, got %v", data["result_code"])
	}

	parsed := verdict.Parse(response)
	if parsed.Code != verdict.CodeAdvice || parsed.Decode != verdict.DecodeReported {
		t.Errorf("expected reported 300, got %d (%s)", parsed.Code, parsed.Decode)
	}
}

func TestResponseBuilder_Jailbreak(t *testing.T) {
	response := NewResponseBuilder().WithJailbreak().WithResultCode(verdict.CodeRefusal).Build()

	parsed := verdict.Parse(response)
	result, ok := parsed.Value.(map[string]any)
	if !ok || result["error"] != "jailbreak prompt" {
		t.Errorf("expected jailbreak object, got %v", parsed.Value)
	}
}

func TestResponseBuilder_MalformedCode(t *testing.T) {
	response := NewResponseBuilder().WithResult("fine").WithField("result_code", "300").Build()

	if parsed := verdict.Parse(response); parsed.Decode != verdict.DecodeDerived {
		t.Errorf("expected derived code for string result_code, got %s", parsed.Decode)
	}
}

func TestChatHandler(t *testing.T) {
	server := httptest.NewServer(ChatHandler(func(messages []verdict.Message) (int, string) {
		if strings.Contains(messages[len(messages)-1].Content, "fail") {
			return http.StatusTooManyRequests, "slow down"
		}
		return http.StatusOK, "hello"
	}))
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body.Choices) != 1 || body.Choices[0].Message.Content != "hello" {
		t.Errorf("unexpected body %+v", body)
	}

	failed, err := http.Post(server.URL, "application/json",
		strings.NewReader(`{"messages":[{"role":"user","content":"fail"}]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	failed.Body.Close()
	if failed.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", failed.StatusCode)
	}
}

func TestSequencedProvider(t *testing.T) {
	provider := NewSequencedProvider("first", "second", "third")

	expected := []string{"first", "second", "third", "third"}
	for i, want := range expected {
		if got := send(provider, "x"); got != want {
			t.Errorf("call %d: expected %q, got %q", i, want, got)
		}
	}

	if provider.CallCount() != 4 {
		t.Errorf("expected 4 calls, got %d", provider.CallCount())
	}

	provider.Reset()
	if got := send(provider, "x"); got != "first" {
		t.Errorf("after reset expected 'first', got %q", got)
	}
}

func TestSequencedProvider_Empty(t *testing.T) {
	provider := NewSequencedProvider()
	if got := send(provider, "x"); !verdict.IsFailureMarker(got) {
		t.Errorf("expected failure marker, got %q", got)
	}
}

func TestFailingProvider(t *testing.T) {
	provider := NewFailingProvider(2).WithFailError(errors.New("connection reset"))

	for i := 0; i < 2; i++ {
		if got := send(provider, "x"); got != "Error: connection reset" {
			t.Errorf("call %d: expected marker, got %q", i, got)
		}
	}
	if got := send(provider, "x"); verdict.IsFailureMarker(got) {
		t.Errorf("expected success after failures, got %q", got)
	}
	if provider.CallCount() != 3 {
		t.Errorf("expected 3 calls, got %d", provider.CallCount())
	}
}

func TestFailingProvider_Timeout(t *testing.T) {
	provider := NewFailingProvider(1).WithFailError(context.DeadlineExceeded)

	if got := send(provider, "x"); got != verdict.TimeoutMarker {
		t.Errorf("expected timeout marker, got %q", got)
	}
}

func TestCallRecorder(t *testing.T) {
	recorder := NewCallRecorder(NewSequencedProvider("ok"))

	if recorder.LastCall() != nil {
		t.Error("expected no last call")
	}

	send(recorder, "hello")
	send(recorder, "world")

	if recorder.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", recorder.CallCount())
	}
	last := recorder.LastCall()
	if last.Messages[1].Content != `Input: "world"` || last.Response != "ok" {
		t.Errorf("unexpected last call %+v", last)
	}
	if opened, closed := recorder.Sessions(); opened != 2 || closed != 2 {
		t.Errorf("expected 2 sessions opened and closed, got %d/%d", opened, closed)
	}
	if recorder.Name() != SequencedProviderName {
		t.Errorf("expected wrapped name, got %q", recorder.Name())
	}

	recorder.Reset()
	if recorder.CallCount() != 0 {
		t.Error("expected reset to clear calls")
	}
}

func TestCallRecorder_Concurrent(t *testing.T) {
	recorder := NewCallRecorder(verdict.NewMockProvider())
	session := recorder.Open()
	defer session.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Send(context.Background(), verdict.BuildMessages("s", "tips"))
		}()
	}
	wg.Wait()

	if recorder.CallCount() != 20 {
		t.Errorf("expected 20 calls, got %d", recorder.CallCount())
	}
}

func TestLatencyProvider(t *testing.T) {
	provider := NewLatencyProvider(NewSequencedProvider("ok"), 20*time.Millisecond)

	start := time.Now()
	if got := send(provider, "x"); got != "ok" {
		t.Errorf("expected 'ok', got %q", got)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected at least 20ms latency, got %v", elapsed)
	}
}

func TestLatencyProvider_Cancellation(t *testing.T) {
	provider := NewLatencyProvider(NewSequencedProvider("ok"), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	s := provider.Open()
	defer s.Close()
	if got := s.Send(ctx, nil); got != verdict.TimeoutMarker {
		t.Errorf("expected timeout marker, got %q", got)
	}
}

func TestConcurrencyMeter(t *testing.T) {
	meter := NewConcurrencyMeter(NewLatencyProvider(NewSequencedProvider("ok"), 10*time.Millisecond))
	session := meter.Open()
	defer session.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Send(context.Background(), nil)
		}()
	}
	wg.Wait()

	if meter.CallCount() != 4 {
		t.Errorf("expected 4 calls, got %d", meter.CallCount())
	}
	if meter.Peak() < 2 {
		t.Errorf("expected overlapping calls, peak was %d", meter.Peak())
	}
	if meter.InFlight() != 0 {
		t.Errorf("expected nothing in flight, got %d", meter.InFlight())
	}
}
