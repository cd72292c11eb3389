package scan

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
)

// DefaultReadAheadThreshold is the number of consecutive batches after which the next batch is
// fetched in the background while the current one is consumed.
const DefaultReadAheadThreshold = 3

type fetcher interface {
	Fetch(ctx context.Context, st State) Outcome
}

type submitter interface {
	Submit(task func()) error
}

// ReadAhead schedules the fetches of one scan. It hands results from the pool worker to the
// consumer through a slot holding at most one Outcome, and never has more than one fetch in
// flight, so outcomes are observed in fetch order.
//
// A ReadAhead belongs to a single consumer goroutine.
type ReadAhead struct {
	ctx       context.Context
	fetcher   fetcher
	pool      submitter
	slot      chan Outcome
	inFlight  bool
	state     State
	threshold int
	batches   int
}

func newReadAhead(ctx context.Context, f fetcher, pool submitter, st State, threshold int) *ReadAhead {
	if threshold <= 0 {
		threshold = DefaultReadAheadThreshold
	}
	return &ReadAhead{
		ctx:       ctx,
		fetcher:   f,
		pool:      pool,
		slot:      make(chan Outcome, 1),
		state:     st,
		threshold: threshold,
	}
}

// Next returns the outcome of the next fetch. It takes the prefetched outcome when a prefetch is
// in flight and fetches synchronously otherwise. Once threshold batches have been delivered, the
// following fetch is started before Next returns.
func (r *ReadAhead) Next() Outcome {
	var out Outcome
	if r.inFlight {
		out = r.Take()
	} else {
		out = r.FetchNow()
	}

	r.state = out.State
	if out.Kind != Delivered {
		return out
	}

	r.batches++
	if r.batches >= r.threshold && !r.state.Finished() {
		if err := r.BeginPrefetch(); err != nil {
			log.Debug().Err(err).Str("table", r.state.Table).Msg("prefetch not started")
		}
	}
	return out
}

// FetchNow fetches the next batch on the calling goroutine.
func (r *ReadAhead) FetchNow() Outcome {
	return r.fetch(r.state)
}

// BeginPrefetch starts fetching the next batch on the pool. It does nothing while a prefetch is
// already in flight.
func (r *ReadAhead) BeginPrefetch() error {
	if r.inFlight {
		return nil
	}

	st := r.state
	r.inFlight = true
	err := r.pool.Submit(func() {
		r.slot <- r.fetch(st)
	})
	if err != nil {
		r.inFlight = false
		return err
	}
	return nil
}

// Take waits for the in-flight prefetch and returns its outcome.
func (r *ReadAhead) Take() Outcome {
	out := <-r.slot
	r.inFlight = false
	return out
}

// InFlight reports whether a prefetch has been started and not yet taken.
func (r *ReadAhead) InFlight() bool {
	return r.inFlight
}

// fetch never lets a panic escape the worker; it becomes a failed outcome like any other error.
func (r *ReadAhead) fetch(st State) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("table", st.Table).Msgf("panic during fetch: %v", p)
			out = failed(st, newError(ErrUnclassified, fmt.Errorf("panic: %v", p), "table %s", st.Table))
		}
	}()
	return r.fetcher.Fetch(r.ctx, st)
}
