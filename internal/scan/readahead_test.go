package scan

import (
	"context"
	"errors"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/stretchr/testify/require"
	"testing"
)

// manualPool keeps submitted tasks until the test runs them.
type manualPool struct {
	tasks []func()
	err   error
}

func (p *manualPool) Submit(task func()) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *manualPool) runNext() {
	task := p.tasks[0]
	p.tasks = p.tasks[1:]
	task()
}

type fetchFunc func(ctx context.Context, st State) Outcome

func (f fetchFunc) Fetch(ctx context.Context, st State) Outcome {
	return f(ctx, st)
}

func TestReadAhead_PrefetchAfterThreshold(t *testing.T) {
	req := require.New(t)
	tablet := &fakeTablet{entries: entries("k1", "k2", "k3", "k4", "k5", "k6")}
	pool := &manualPool{}
	it := newIterator(context.Background(), newTestFetcher(t, tablet, fixedLocator("host:1")), pool,
		State{Table: "t1", Range: data.InfiniteRange(), BatchSize: 1}, 3)

	for i, row := range []string{"k1", "k2", "k3"} {
		e, err := it.Next()
		req.NoError(err)
		req.Equal(row, string(e.Key.Row))
		req.Equal(i+1, tablet.calls(), "the first batches are fetched synchronously")
	}

	// the third batch armed a prefetch before the fourth was asked for
	req.True(it.readAhead.InFlight())
	req.Len(pool.tasks, 1)
	pool.runNext()
	req.Equal(4, tablet.calls())

	e, err := it.Next()
	req.NoError(err)
	req.Equal("k4", string(e.Key.Row))
	req.Equal(4, tablet.calls(), "the fourth batch came from the prefetch")

	// delivering it armed the next one
	req.True(it.readAhead.InFlight())
	req.Len(pool.tasks, 1)
}

func TestReadAhead_SingleSlot(t *testing.T) {
	req := require.New(t)
	pool := &manualPool{}
	ra := newReadAhead(context.Background(), fetchFunc(func(_ context.Context, st State) Outcome {
		return delivered(entries("a"), st.advance(entry("a").Key, "", true))
	}), pool, State{Table: "t1"}, 1)

	req.Equal(1, cap(ra.slot))
	req.NoError(ra.BeginPrefetch())
	req.NoError(ra.BeginPrefetch())
	req.Len(pool.tasks, 1, "a second prefetch is never started while one is in flight")

	pool.runNext()
	req.Len(ra.slot, 1)
	out := ra.Take()
	req.Equal(Delivered, out.Kind)
	req.False(ra.InFlight())
	req.Len(ra.slot, 0)
}

func TestReadAhead_NoPrefetchWhenFinished(t *testing.T) {
	req := require.New(t)
	pool := &manualPool{}
	ra := newReadAhead(context.Background(), fetchFunc(func(_ context.Context, st State) Outcome {
		return delivered(entries("a"), st.advance(entry("a").Key, "", false))
	}), pool, State{Table: "t1"}, 1)

	req.Equal(Delivered, ra.Next().Kind)
	req.False(ra.InFlight())
	req.Empty(pool.tasks)
}

func TestReadAhead_SubmitFailureFallsBackToSync(t *testing.T) {
	req := require.New(t)
	calls := 0
	pool := &manualPool{err: ErrPoolStopped}
	ra := newReadAhead(context.Background(), fetchFunc(func(_ context.Context, st State) Outcome {
		calls++
		return delivered(entries("a"), st.advance(entry("a").Key, "", true))
	}), pool, State{Table: "t1"}, 1)

	req.Equal(Delivered, ra.Next().Kind)
	req.False(ra.InFlight())
	req.Equal(Delivered, ra.Next().Kind)
	req.Equal(2, calls)
}

func TestReadAhead_PanicBecomesFailure(t *testing.T) {
	req := require.New(t)
	ra := newReadAhead(context.Background(), fetchFunc(func(context.Context, State) Outcome {
		panic("boom")
	}), &manualPool{}, State{Table: "t1"}, 1)

	out := ra.Next()
	req.Equal(Failed, out.Kind)
	req.ErrorIs(out.Err, ErrUnclassified)
	req.False(errors.Is(out.Err, ErrTimeout))
}
