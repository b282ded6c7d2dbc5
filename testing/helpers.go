// Package testing provides utilities for testing verdict pipelines.
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/verdict"
)

// Provider name constants for test helpers.
const (
	SequencedProviderName = "sequenced-mock"
	FailingProviderName   = "failing-mock"
)

// ResponseBuilder provides a fluent interface for constructing structured replies.
type ResponseBuilder struct {
	data map[string]any
}

// NewResponseBuilder creates a new ResponseBuilder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		data: make(map[string]any),
	}
}

// WithPrompt sets the echoed prompt.
func (b *ResponseBuilder) WithPrompt(prompt string) *ResponseBuilder {
	b.data["prompt"] = prompt
	return b
}

// WithResult sets the result text.
func (b *ResponseBuilder) WithResult(result string) *ResponseBuilder {
	b.data["result"] = result
	return b
}

// WithJailbreak sets the result to the jailbreak refusal object.
func (b *ResponseBuilder) WithJailbreak() *ResponseBuilder {
	b.data["result"] = map[string]string{"error": "jailbreak prompt"}
	return b
}

// WithResultCode sets the reported outcome code.
func (b *ResponseBuilder) WithResultCode(code verdict.OutcomeCode) *ResponseBuilder {
	b.data["result_code"] = int(code)
	return b
}

// WithField sets an arbitrary field, including malformed values such as a string code.
func (b *ResponseBuilder) WithField(key string, value any) *ResponseBuilder {
	b.data[key] = value
	return b
}

// Build returns the JSON string representation of the reply.
func (b *ResponseBuilder) Build() string {
	return string(b.BuildBytes())
}

// BuildBytes returns the JSON bytes of the reply.
func (b *ResponseBuilder) BuildBytes() []byte {
	jsonBytes, err := json.Marshal(b.data)
	if err != nil {
		return []byte("{}")
	}
	return jsonBytes
}

// ChatCompletion wraps reply content in a chat-completion response body.
func ChatCompletion(content string) []byte {
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	if err != nil {
		return []byte(`{"choices":[]}`)
	}
	return body
}

// ChatHandler serves chat completions. reply receives the decoded request messages and
// returns the status code and reply content; non-200 statuses send content as the raw body.
func ChatHandler(reply func(messages []verdict.Message) (int, string)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []verdict.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		status, content := reply(req.Messages)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(content))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(ChatCompletion(content))
	})
}

// session adapts a send function to verdict.Session.
type session struct {
	send  func(ctx context.Context, messages []verdict.Message) string
	close func()
}

func (s session) Send(ctx context.Context, messages []verdict.Message) string {
	return s.send(ctx, messages)
}

func (s session) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// SequencedProvider returns replies in sequence across all sessions.
// After all replies are exhausted, it returns the last reply repeatedly.
type SequencedProvider struct {
	responses []string
	index     atomic.Int64
}

// NewSequencedProvider creates a provider that returns replies in order.
func NewSequencedProvider(responses ...string) *SequencedProvider {
	if len(responses) == 0 {
		responses = []string{verdict.MarkerPrefix + "no responses configured"}
	}
	return &SequencedProvider{
		responses: responses,
	}
}

// Open returns a session drawing from the shared sequence.
func (p *SequencedProvider) Open() verdict.Session {
	return session{send: func(context.Context, []verdict.Message) string {
		idx := p.index.Add(1) - 1
		if int(idx) >= len(p.responses) {
			idx = int64(len(p.responses) - 1)
		}
		return p.responses[idx]
	}}
}

// Name returns the provider identifier.
func (*SequencedProvider) Name() string {
	return SequencedProviderName
}

// CallCount returns the number of calls made.
func (p *SequencedProvider) CallCount() int {
	return int(p.index.Load())
}

// Reset resets the call counter.
func (p *SequencedProvider) Reset() {
	p.index.Store(0)
}

// FailingProvider fails a specified number of times before succeeding.
// Failures are reported as failure markers, the way a real provider reports them.
type FailingProvider struct {
	failCount    int
	currentCount atomic.Int64
	successResp  string
	failError    error
}

// NewFailingProvider creates a provider that fails failCount times then succeeds.
func NewFailingProvider(failCount int) *FailingProvider {
	return &FailingProvider{
		failCount: failCount,
		successResp: NewResponseBuilder().
			WithResult("recovered").
			WithResultCode(verdict.CodeNormal).
			Build(),
		failError: errors.New("simulated provider failure"),
	}
}

// WithSuccessResponse sets the reply returned after failures are exhausted.
func (p *FailingProvider) WithSuccessResponse(response string) *FailingProvider {
	p.successResp = response
	return p
}

// WithFailError sets the error rendered into each failure marker.
func (p *FailingProvider) WithFailError(err error) *FailingProvider {
	p.failError = err
	return p
}

// Open returns a session that fails until failCount is reached.
func (p *FailingProvider) Open() verdict.Session {
	return session{send: func(context.Context, []verdict.Message) string {
		count := p.currentCount.Add(1)
		if int(count) <= p.failCount {
			return verdict.FailureMarker(p.failError)
		}
		return p.successResp
	}}
}

// Name returns the provider identifier.
func (*FailingProvider) Name() string {
	return FailingProviderName
}

// CallCount returns the number of calls made.
func (p *FailingProvider) CallCount() int {
	return int(p.currentCount.Load())
}

// Reset resets the call counter.
func (p *FailingProvider) Reset() {
	p.currentCount.Store(0)
}

// RecordedCall represents a single call to a provider.
type RecordedCall struct {
	Messages []verdict.Message
	Response string
}

// CallRecorder wraps a provider and records all calls and sessions.
type CallRecorder struct {
	provider verdict.Provider
	calls    []RecordedCall
	opens    atomic.Int64
	closes   atomic.Int64
	mu       sync.Mutex
}

// NewCallRecorder wraps a provider with call recording.
func NewCallRecorder(provider verdict.Provider) *CallRecorder {
	return &CallRecorder{
		provider: provider,
		calls:    make([]RecordedCall, 0),
	}
}

// Open opens a session on the wrapped provider and records its calls.
func (r *CallRecorder) Open() verdict.Session {
	r.opens.Add(1)
	inner := r.provider.Open()
	return session{
		send: func(ctx context.Context, messages []verdict.Message) string {
			response := inner.Send(ctx, messages)

			// Copy messages to avoid aliasing
			msgCopy := make([]verdict.Message, len(messages))
			copy(msgCopy, messages)

			r.mu.Lock()
			r.calls = append(r.calls, RecordedCall{Messages: msgCopy, Response: response})
			r.mu.Unlock()
			return response
		},
		close: func() {
			r.closes.Add(1)
			_ = inner.Close()
		},
	}
}

// Name returns the wrapped provider's name.
func (r *CallRecorder) Name() string {
	return r.provider.Name()
}

// Calls returns a copy of all recorded calls, in completion order.
func (r *CallRecorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]RecordedCall, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CallCount returns the number of calls recorded.
func (r *CallRecorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// LastCall returns the most recent call, or nil if no calls made.
func (r *CallRecorder) LastCall() *RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return nil
	}
	call := r.calls[len(r.calls)-1]
	return &call
}

// Sessions returns the number of sessions opened and closed.
func (r *CallRecorder) Sessions() (opened, closed int) {
	return int(r.opens.Load()), int(r.closes.Load())
}

// Reset clears all recorded calls and session counts.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make([]RecordedCall, 0)
	r.opens.Store(0)
	r.closes.Store(0)
}

// LatencyProvider wraps a provider and adds artificial latency.
type LatencyProvider struct {
	provider verdict.Provider
	delay    time.Duration
}

// NewLatencyProvider wraps a provider with artificial delay.
// The delay is applied before each call; cancellation during the delay yields a failure marker.
func NewLatencyProvider(provider verdict.Provider, delay time.Duration) *LatencyProvider {
	return &LatencyProvider{
		provider: provider,
		delay:    delay,
	}
}

// Open returns a delayed session over the wrapped provider.
func (p *LatencyProvider) Open() verdict.Session {
	inner := p.provider.Open()
	return session{
		send: func(ctx context.Context, messages []verdict.Message) string {
			if p.delay > 0 {
				select {
				case <-time.After(p.delay):
				case <-ctx.Done():
					return verdict.FailureMarker(ctx.Err())
				}
			}
			return inner.Send(ctx, messages)
		},
		close: func() { _ = inner.Close() },
	}
}

// Name returns the wrapped provider's name.
func (p *LatencyProvider) Name() string {
	return p.provider.Name()
}

// ConcurrencyMeter wraps a provider and tracks how many calls are in flight.
type ConcurrencyMeter struct {
	provider verdict.Provider
	inFlight atomic.Int64
	peak     atomic.Int64
	total    atomic.Int64
}

// NewConcurrencyMeter wraps a provider with in-flight tracking.
func NewConcurrencyMeter(provider verdict.Provider) *ConcurrencyMeter {
	return &ConcurrencyMeter{provider: provider}
}

// Open returns a metered session over the wrapped provider.
func (m *ConcurrencyMeter) Open() verdict.Session {
	inner := m.provider.Open()
	return session{
		send: func(ctx context.Context, messages []verdict.Message) string {
			m.total.Add(1)
			n := m.inFlight.Add(1)
			defer m.inFlight.Add(-1)
			for {
				peak := m.peak.Load()
				if n <= peak || m.peak.CompareAndSwap(peak, n) {
					break
				}
			}
			return inner.Send(ctx, messages)
		},
		close: func() { _ = inner.Close() },
	}
}

// Name returns the wrapped provider's name.
func (m *ConcurrencyMeter) Name() string {
	return m.provider.Name()
}

// Peak returns the highest number of calls observed in flight at once.
func (m *ConcurrencyMeter) Peak() int {
	return int(m.peak.Load())
}

// InFlight returns the number of calls currently in flight.
func (m *ConcurrencyMeter) InFlight() int {
	return int(m.inFlight.Load())
}

// CallCount returns the number of calls made.
func (m *ConcurrencyMeter) CallCount() int {
	return int(m.total.Load())
}

// String summarizes the meter.
func (m *ConcurrencyMeter) String() string {
	return fmt.Sprintf("calls=%d peak=%d in_flight=%d", m.CallCount(), m.Peak(), m.InFlight())
}
