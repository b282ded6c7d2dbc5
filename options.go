package verdict

import (
	"time"

	"github.com/zoobzio/pipz"
)

// Option modifies a request pipeline for reliability features.
type Option func(pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange]

// WithTimeout adds timeout protection to the pipeline.
// Operations exceeding this duration will be canceled.
func WithTimeout(duration time.Duration) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.NewTimeout("timeout", pipeline, duration)
	}
}

// WithRetry adds retry logic to the pipeline.
// Failed requests are retried up to maxAttempts times in total.
func WithRetry(maxAttempts int) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.NewRetry("retry", pipeline, maxAttempts)
	}
}

// WithBackoff adds retry logic with exponential backoff to the pipeline.
// The delay starts at baseDelay and doubles after each failure.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.NewBackoff("backoff", pipeline, maxAttempts, baseDelay)
	}
}

// WithRateLimit adds rate limiting to the pipeline.
// rps = requests per second, burst = burst capacity.
func WithRateLimit(rps float64, burst int) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		rateLimiter := pipz.NewRateLimiter[*Exchange]("rate-limit", rps, burst)
		return pipz.NewSequence("rate-limited", rateLimiter, pipeline)
	}
}

// Apply wraps a terminal processor with the given options, innermost first.
func Apply(terminal pipz.Chainable[*Exchange], opts ...Option) pipz.Chainable[*Exchange] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}
