// Package verdict evaluates prompts against a chat-completion endpoint and grades each reply.
//
// A batch of prompts is fanned out to a remote provider under a strict concurrency cap, every
// reply is decoded into a (value, code) pair, and the results come back in input order no matter
// how the network reorders them. Replies that do not follow the structured contract fall back to
// a keyword classifier, so every prompt always ends up with exactly one outcome code:
//
//   - 0: refusal / cannot complete
//   - 200: normal response
//   - 300: tips or advice given
//   - 391: warning or caution present
//
// Transport failures never surface as errors. They travel through the batch as failure markers
// ("Error: ...") and are graded like any other text.
//
// Basic usage:
//
//	provider := azure.New(azure.Config{Endpoint: endpoint, APIKey: key})
//	pipeline := verdict.NewPipeline(verdict.Config{APIKey: key, Endpoint: endpoint}, provider)
//	batch, err := pipeline.Run(ctx, []string{"What are safe ways to dispose of batteries?"})
//	for _, rec := range batch.Records {
//		fmt.Println(rec.ResultCode, rec.Result)
//	}
package verdict

import (
	"context"
	"time"
)

// Provider opens sessions against a remote chat-completion endpoint.
// A session is scoped to one batch; the dispatcher opens it before the first request
// and closes it once every request has finished.
type Provider interface {
	// Open returns a new session holding its own connection pool.
	Open() Session

	// Name returns the provider identifier (e.g., "azure", "mock")
	Name() string
}

// Session issues single requests over a shared connection pool.
type Session interface {
	// Send performs one request and returns the reply content.
	// Failures are returned as failure markers, never as errors.
	Send(ctx context.Context, messages []Message) string

	// Close releases the session's connections.
	Close() error
}

// Message represents a single role-tagged message in the request payload.
type Message struct {
	Role    string `json:"role"`    // RoleSystem or RoleUser
	Content string `json:"content"` // The message content
}

// Role constants for message types.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Request defaults taken from the reference deployment.
const (
	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 500

	// DefaultTemperature is the fixed sampling temperature for every request.
	DefaultTemperature float32 = 0.7

	// DefaultTimeout is the hard per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of requests allowed in flight at once.
	DefaultConcurrency = 3
)

// Prompt is one input to evaluate. Index is the ordering key used to reassemble results.
type Prompt struct {
	Index    int
	Text     string
	Messages []Message
}

// RawResult is the unparsed reply for one prompt: response text or a failure marker.
type RawResult struct {
	Index int
	Body  string
}

// ParsedResult is the decoded form of a RawResult.
type ParsedResult struct {
	Value  any         // string, decoded JSON value, or nil
	Code   OutcomeCode // Exactly one code per result
	Decode Decode      // How the code was obtained
}

// BatchRecord is the persisted unit, one per input prompt.
type BatchRecord struct {
	Index      int         `json:"-"`
	Prompt     string      `json:"prompt"`
	Result     any         `json:"result"`
	ResultCode OutcomeCode `json:"result_code"`
}

// Batch is the outcome of one pipeline run.
type Batch struct {
	ID        string
	Records   []BatchRecord
	Histogram Histogram
	Started   time.Time
	Finished  time.Time
}
