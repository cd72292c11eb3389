package scan

import (
	"context"
	"github.com/litetable/litetable-scan/internal/data"
	"iter"
)

// Iterator is the lazy sequence of entries a scan produces.
//
// Once a fetch fails the iterator is failed for good: every later HasNext or Next returns the
// same error and no buffered entry is handed out. Close abandons the scan without waiting for a
// background fetch; that fetch still runs to completion and its outcome is dropped.
//
// An Iterator is not safe for concurrent use.
type Iterator struct {
	readAhead *ReadAhead
	cancel    context.CancelFunc
	batch     []data.Entry
	pos       int
	err       error
	exhausted bool
}

func newIterator(ctx context.Context, f fetcher, pool submitter, st State, threshold int) *Iterator {
	ctx, cancel := context.WithCancel(ctx)
	return &Iterator{
		readAhead: newReadAhead(ctx, f, pool, st, threshold),
		cancel:    cancel,
	}
}

// HasNext reports whether another entry is available, fetching the next batch when the current
// one is used up.
func (it *Iterator) HasNext() (bool, error) {
	if it.err != nil {
		return false, it.err
	}
	if it.pos < len(it.batch) {
		return true, nil
	}
	if it.exhausted {
		return false, nil
	}

	out := it.readAhead.Next()
	switch out.Kind {
	case Delivered:
		it.batch = out.Batch
		it.pos = 0
		return true, nil
	case Exhausted:
		it.batch = nil
		it.exhausted = true
		it.cancel()
		return false, nil
	default:
		it.fail(out.Err)
		return false, it.err
	}
}

// Next returns the next entry. It returns ErrNoSuchElement when the scan is exhausted.
func (it *Iterator) Next() (data.Entry, error) {
	ok, err := it.HasNext()
	if err != nil {
		return data.Entry{}, err
	}
	if !ok {
		return data.Entry{}, ErrNoSuchElement
	}
	e := it.batch[it.pos]
	it.pos++
	return e, nil
}

// Remove always fails: a scan is read-only.
func (it *Iterator) Remove() error {
	return ErrUnsupportedOperation
}

// Close ends the scan. It never blocks.
func (it *Iterator) Close() {
	if it.err == nil {
		it.fail(newError(ErrClosed, nil, "table %s", it.readAhead.state.Table))
	}
}

// All returns the remaining entries as a sequence. A failure is yielded once, as the last
// element.
func (it *Iterator) All() iter.Seq2[data.Entry, error] {
	return func(yield func(data.Entry, error) bool) {
		for {
			e, err := it.Next()
			if err == ErrNoSuchElement {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.batch = nil
	it.pos = 0
	it.cancel()
}
