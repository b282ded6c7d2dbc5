package verdict

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Dispatcher fans a batch of prompts out to a provider under a concurrency cap
// and fans the replies back in, in input order.
type Dispatcher struct {
	provider Provider
}

// NewDispatcher creates a dispatcher bound to a provider.
func NewDispatcher(provider Provider) *Dispatcher {
	return &Dispatcher{provider: provider}
}

// RunBatch sends every prompt exactly once and returns one RawResult per prompt,
// positioned as the prompts were given. At most limit requests are in flight at any
// instant; a limit below one is treated as one.
//
// One session is opened for the batch and closed after every request has finished.
// A failing request never affects its siblings. If ctx is canceled, prompts that were
// not yet admitted receive a failure marker instead of a request.
func (d *Dispatcher) RunBatch(ctx context.Context, prompts []Prompt, limit int) []RawResult {
	results := make([]RawResult, len(prompts))
	if len(prompts) == 0 {
		return results
	}
	if limit < 1 {
		limit = 1
	}

	session := d.provider.Open()
	defer session.Close()

	sem := semaphore.NewWeighted(int64(limit))
	var inFlight atomic.Int64
	var g errgroup.Group

	for i, p := range prompts {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = RawResult{Index: p.Index, Body: FailureMarker(err)}
			continue
		}

		g.Go(func() error {
			defer sem.Release(1)
			n := inFlight.Add(1)
			defer inFlight.Add(-1)

			capitan.Info(ctx, DispatchStarted,
				IndexKey.Field(p.Index),
				InFlightKey.Field(int(n)),
			)
			start := time.Now()

			results[i] = RawResult{Index: p.Index, Body: send(ctx, session, p.Messages)}

			capitan.Info(ctx, DispatchCompleted,
				IndexKey.Field(p.Index),
				DurationMsKey.Field(int(time.Since(start).Milliseconds())),
			)
			return nil
		})
	}

	// Tasks never return errors; Wait only joins them.
	_ = g.Wait()
	return results
}

// send calls the session and converts a panic into a failure marker.
func send(ctx context.Context, session Session, messages []Message) (body string) {
	defer func() {
		if r := recover(); r != nil {
			body = FailureMarker(fmt.Errorf("%v", r))
		}
	}()
	return session.Send(ctx, messages)
}
