package verdict

import "github.com/zoobzio/capitan"

// Signals for hook events.
const (
	BatchStarted          = capitan.Signal("verdict.batch.started")
	BatchCompleted        = capitan.Signal("verdict.batch.completed")
	ConfigurationFailed   = capitan.Signal("verdict.config.failed")
	DispatchStarted       = capitan.Signal("verdict.dispatch.started")
	DispatchCompleted     = capitan.Signal("verdict.dispatch.completed")
	ProviderCallStarted   = capitan.Signal("verdict.provider.call.started")
	ProviderCallCompleted = capitan.Signal("verdict.provider.call.completed")
	ProviderCallFailed    = capitan.Signal("verdict.provider.call.failed")
	ResultParsed          = capitan.Signal("verdict.result.parsed")
)

// Signals lists every signal emitted by the package and its providers.
var Signals = []capitan.Signal{
	BatchStarted,
	BatchCompleted,
	ConfigurationFailed,
	DispatchStarted,
	DispatchCompleted,
	ProviderCallStarted,
	ProviderCallCompleted,
	ProviderCallFailed,
	ResultParsed,
}

// Keys for hook event fields.
var (
	// Batch identification.
	BatchIDKey     = capitan.NewStringKey("verdict.batch.id")
	BatchSizeKey   = capitan.NewIntKey("verdict.batch.size")
	ConcurrencyKey = capitan.NewIntKey("verdict.batch.concurrency")

	// Per-prompt data.
	IndexKey    = capitan.NewIntKey("verdict.prompt.index")
	PromptKey   = capitan.NewStringKey("verdict.prompt.text")
	InFlightKey = capitan.NewIntKey("verdict.dispatch.inflight")

	// Parse outcome.
	CodeKey   = capitan.NewIntKey("verdict.result.code")
	DecodeKey = capitan.NewStringKey("verdict.result.decode")

	// Provider information.
	ProviderKey  = capitan.NewStringKey("verdict.provider")
	RequestIDKey = capitan.NewStringKey("verdict.request.id")
	AttemptKey   = capitan.NewIntKey("verdict.request.attempt")

	// HTTP metadata.
	HTTPStatusCodeKey = capitan.NewIntKey("verdict.http.status.code")
	DurationMsKey     = capitan.NewIntKey("verdict.duration.ms")

	// Error information.
	ErrorKey = capitan.NewStringKey("verdict.error")
)
