package tablet

import (
	"context"
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/rs/zerolog/log"
	"time"
)

// Scan evaluates one round trip of a scan: it authorizes the caller, builds the system and
// user stack over the table (or over the snapshot of an isolated scan) and fills a batch.
//
// A request stops early once it has examined MaxExamined stored entries. If that happens before
// anything was accepted the response has no entries, More set and a Continue key to resume after.
func (m *Manager) Scan(ctx context.Context, creds security.Credentials,
	req *rpc.ScanRequest) (*rpc.ScanResponse, error) {
	start := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[req.Table]
	if !ok {
		return nil, newError(ErrTableNotFound, "%s", req.Table)
	}
	if err := t.state.check(req.Table); err != nil {
		return nil, err
	}

	auths, err := m.auth.Authorize(creds, data.NewAuthorizations(req.Authorizations...))
	if err != nil {
		return nil, err
	}

	var (
		r    reader = t.store.db
		sess *session
	)
	if req.Isolated {
		if req.SessionID == "" {
			sess = m.sessions.open(req.Table, t.store.db, m.now())
		} else if sess, ok = m.sessions.acquire(req.SessionID, req.Table, m.now()); !ok {
			return nil, newError(ErrIsolationConflict, "session %s of table %s is gone",
				req.SessionID, req.Table)
		}
		r = sess.snap
	}

	resp, err := m.fill(ctx, r, req, auths)
	if sess != nil {
		switch {
		case err != nil || !resp.More:
			m.sessions.finish(sess)
		default:
			resp.SessionID = sess.id
			m.sessions.release(sess)
		}
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("table", req.Table).Int("entries", len(resp.Entries)).Bool("more", resp.More).
		Dur("latency", time.Since(start)).Msg("scan batch")
	return resp, nil
}

func (m *Manager) fill(ctx context.Context, r reader, req *rpc.ScanRequest,
	auths data.Authorizations) (*rpc.ScanResponse, error) {
	size := req.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	if size > m.maxBatchSize {
		size = m.maxBatchSize
	}

	b := &budget{limit: m.maxExamined, window: req.Range}
	source := newPebbleSource(r, b)
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn().Err(err).Str("table", req.Table).Msg("failed to close iterator")
		}
	}()

	env := &iterators.Environment{Scope: iterators.ScanScope, Authorizations: auths, Now: m.now}
	stack, err := m.registry.Load(iterators.SystemStack(source, req.Columns, auths), req.Iterators, env)
	if err != nil {
		return nil, err
	}
	if err := stack.Seek(req.Range); err != nil {
		return nil, fmt.Errorf("failed to seek %s: %w", req.Range, err)
	}

	resp := &rpc.ScanResponse{}
	for stack.HasTop() && len(resp.Entries) < size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp.Entries = append(resp.Entries, data.Entry{
			Key:   stack.TopKey().Clone(),
			Value: stack.TopValue(),
		})
		if err := stack.Next(); err != nil {
			return nil, fmt.Errorf("failed to advance scan: %w", err)
		}
	}

	resp.More = stack.HasTop() || b.stopped
	if len(resp.Entries) == 0 && b.stopped {
		last := b.lastSeen.Clone()
		resp.Continue = &last
	}
	return resp, nil
}
