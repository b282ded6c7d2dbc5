package verdict

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// Pipeline builds prompts, dispatches them, and grades the replies.
type Pipeline struct {
	config     Config
	provider   Provider
	dispatcher *Dispatcher
}

// NewPipeline creates a pipeline for the given configuration and provider.
// The configuration is validated when Run is called.
func NewPipeline(config Config, provider Provider) *Pipeline {
	return &Pipeline{
		config:     config,
		provider:   provider,
		dispatcher: NewDispatcher(provider),
	}
}

// BuildPrompts creates one prompt per text, indexed by position.
func BuildPrompts(systemPrompt string, texts []string) []Prompt {
	prompts := make([]Prompt, len(texts))
	for i, text := range texts {
		prompts[i] = Prompt{
			Index:    i,
			Text:     text,
			Messages: BuildMessages(systemPrompt, text),
		}
	}
	return prompts
}

// Run evaluates every text and returns one record per text, in input order.
//
// The only error Run returns is a *ConfigError, reported before any request is sent.
// Request and parse failures are folded into the records as outcome codes.
func (p *Pipeline) Run(ctx context.Context, texts []string) (*Batch, error) {
	if err := p.config.Validate(); err != nil {
		capitan.Error(ctx, ConfigurationFailed,
			ProviderKey.Field(p.provider.Name()),
			ErrorKey.Field(err.Error()),
		)
		return nil, err
	}

	batch := &Batch{
		ID:      uuid.New().String(),
		Started: time.Now(),
	}
	concurrency := p.config.concurrency()

	capitan.Info(ctx, BatchStarted,
		BatchIDKey.Field(batch.ID),
		BatchSizeKey.Field(len(texts)),
		ConcurrencyKey.Field(concurrency),
		ProviderKey.Field(p.provider.Name()),
	)

	prompts := BuildPrompts(p.config.systemPrompt(), texts)
	raw := p.dispatcher.RunBatch(ctx, prompts, concurrency)

	batch.Records = make([]BatchRecord, len(prompts))
	for i, prompt := range prompts {
		parsed := Parse(raw[i].Body)
		batch.Records[i] = BatchRecord{
			Index:      prompt.Index,
			Prompt:     prompt.Text,
			Result:     parsed.Value,
			ResultCode: parsed.Code,
		}

		capitan.Info(ctx, ResultParsed,
			BatchIDKey.Field(batch.ID),
			IndexKey.Field(prompt.Index),
			CodeKey.Field(int(parsed.Code)),
			DecodeKey.Field(parsed.Decode.String()),
		)
	}

	batch.Histogram = NewHistogram(batch.Records)
	batch.Finished = time.Now()

	capitan.Info(ctx, BatchCompleted,
		BatchIDKey.Field(batch.ID),
		BatchSizeKey.Field(len(batch.Records)),
		DurationMsKey.Field(int(batch.Finished.Sub(batch.Started).Milliseconds())),
	)

	return batch, nil
}
