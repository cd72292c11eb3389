package scan

import (
	"github.com/litetable/litetable-scan/internal/data"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/samber/mo"
	"time"
)

// State describes a scan between two round trips. A State is a value: every round trip produces
// a new one and the previous one is never modified, so a fetch running in the background never
// shares it with the consumer.
type State struct {
	Table string
	// Range is the scan range already narrowed to the fetched columns. It never changes while the
	// scan runs; the cursor moves instead.
	Range data.Range
	// LastKey is the last key delivered. The next round trip resumes right after it.
	LastKey        mo.Option[data.Key]
	Columns        []data.Column
	Iterators      []iterators.Setting
	Authorizations data.Authorizations
	BatchSize      int
	Isolated       bool
	// SessionID ties the round trips of an isolated scan to one server snapshot.
	SessionID string
	// Timeout bounds a single round trip. Zero waits forever.
	Timeout time.Duration

	finished bool
}

// Finished reports whether the server has signalled there is nothing after LastKey.
func (s State) Finished() bool {
	return s.finished
}

// Current returns the range the next round trip asks for.
func (s State) Current() data.Range {
	if last, ok := s.LastKey.Get(); ok {
		return s.Range.ResumeAfter(last)
	}
	return s.Range.Clone()
}

func (s State) request() *rpc.ScanRequest {
	return &rpc.ScanRequest{
		Table:          s.Table,
		Range:          s.Current(),
		Columns:        s.Columns,
		Authorizations: s.Authorizations,
		Iterators:      s.Iterators,
		BatchSize:      s.BatchSize,
		Isolated:       s.Isolated,
		SessionID:      s.SessionID,
	}
}

// advance returns the state after a round trip that ended at last.
func (s State) advance(last data.Key, sessionID string, more bool) State {
	next := s
	next.LastKey = mo.Some(last.Clone())
	next.SessionID = sessionID
	next.finished = !more
	return next
}

func (s State) finish() State {
	next := s
	next.finished = true
	return next
}
