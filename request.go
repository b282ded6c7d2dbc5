package verdict

// Exchange flows through a provider's pipz pipeline.
// It carries one request payload and, once processed, the reply.
type Exchange struct {
	// Input fields
	Messages    []Message // Fixed two-message payload
	MaxTokens   int       // Completion length bound
	Temperature float32   // Sampling temperature

	// Metadata fields
	RequestID string // Unique identifier for this request
	Attempts  int    // Number of attempts made, including the current one

	// Output fields (populated by pipeline)
	Status   int    // HTTP status of the last attempt
	Response string // Reply content
}
