package scan

import (
	"context"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/locator"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"time"
)

//go:generate mockgen -destination=fetcher_mock.go -package=scan -source=fetcher.go

type tabletClient interface {
	Scan(ctx context.Context, address string, req *rpc.ScanRequest,
		creds security.Credentials) (*rpc.ScanResponse, error)
	// Forget drops the connection to a server that could not be reached.
	Forget(address string)
}

type tabletLocator interface {
	LocateTablet(ctx context.Context, table string) (string, error)
	Invalidate(table string)
}

const defaultRetryBackoff = 100 * time.Millisecond

// Fetcher performs the round trips of a scan. It is safe for concurrent use; all per-scan data
// lives in the State it is handed.
type Fetcher struct {
	client       tabletClient
	locator      tabletLocator
	credentials  security.Credentials
	retryBackoff time.Duration
}

type FetcherConfig struct {
	Client      tabletClient
	Locator     tabletLocator
	Credentials security.Credentials
	// RetryBackoff is the pause before asking again for a tablet that is not being served.
	RetryBackoff time.Duration
}

func (c *FetcherConfig) validate() error {
	var errGrp []error
	if c.Client == nil {
		errGrp = append(errGrp, errors.New("client is required"))
	}
	if c.Locator == nil {
		errGrp = append(errGrp, errors.New("locator is required"))
	}
	if c.RetryBackoff < 0 {
		errGrp = append(errGrp, errors.New("retry backoff must not be negative"))
	}
	return errors.Join(errGrp...)
}

func NewFetcher(cfg *FetcherConfig) (*Fetcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	backoff := cfg.RetryBackoff
	if backoff == 0 {
		backoff = defaultRetryBackoff
	}
	return &Fetcher{
		client:       cfg.Client,
		locator:      cfg.Locator,
		credentials:  cfg.Credentials,
		retryBackoff: backoff,
	}, nil
}

// Fetch performs one logical round trip for st.
//
// Routing failures (the tablet moved or is not hosted yet) are retried against a freshly
// located server until the timeout. A server may also answer with no entries and a continue
// key when it stopped early; the fetch resumes from that key without surfacing the empty
// response. Every other failure is returned as-is.
func (f *Fetcher) Fetch(ctx context.Context, st State) Outcome {
	if st.Finished() {
		return exhausted(st)
	}

	if st.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, st.Timeout)
		defer cancel()
	}

	for {
		if err := ctx.Err(); err != nil {
			return failed(st, f.classify(ctx, st, err))
		}

		address, err := f.locator.LocateTablet(ctx, st.Table)
		if errors.Is(err, locator.ErrNoLocation) {
			log.Trace().Str("table", st.Table).Msg("tablet not hosted, waiting")
			f.pause(ctx)
			continue
		}
		if err != nil {
			return failed(st, f.classify(ctx, st, err))
		}

		resp, err := f.client.Scan(ctx, address, st.request(), f.credentials)
		if err != nil {
			if f.routingFailure(err) {
				log.Debug().Err(err).Str("table", st.Table).Str("address", address).
					Msg("tablet server is not serving the tablet, relocating")
				f.locator.Invalidate(st.Table)
				if unreachable(err) {
					f.client.Forget(address)
				}
				f.pause(ctx)
				continue
			}
			return failed(st, f.classify(ctx, st, err))
		}

		if err := checkOrder(st, resp.Entries); err != nil {
			log.Error().Err(err).Str("table", st.Table).Str("address", address).
				Msg("tablet server returned a malformed batch")
			return failed(st, newError(ErrUnclassified, err, "table %s", st.Table))
		}

		if len(resp.Entries) == 0 {
			if resp.More && resp.Continue != nil {
				if last, ok := st.LastKey.Get(); ok && resp.Continue.Compare(last) <= 0 {
					log.Error().Str("table", st.Table).Str("address", address).
						Str("continue", resp.Continue.String()).Str("cursor", last.String()).
						Msg("tablet server returned a continue key that does not advance the scan")
					return failed(st, newError(ErrUnclassified, nil,
						"table %s: continue key %s does not sort after %s", st.Table, resp.Continue, last))
				}
				st = st.advance(*resp.Continue, resp.SessionID, true)
				continue
			}
			if resp.More {
				return failed(st, newError(ErrUnclassified, nil,
					"table %s: server reported more data without a continue key", st.Table))
			}
			return exhausted(st)
		}

		last := resp.Entries[len(resp.Entries)-1].Key
		return delivered(resp.Entries, st.advance(last, resp.SessionID, resp.More))
	}
}

// checkOrder enforces that a batch is strictly increasing and starts after the cursor.
func checkOrder(st State, entries []data.Entry) error {
	prev, ok := st.LastKey.Get()
	for i, e := range entries {
		if ok && e.Key.Compare(prev) <= 0 {
			return fmt.Errorf("entry %d (%s) does not sort after %s", i, e.Key, prev)
		}
		prev, ok = e.Key, true
	}
	return nil
}

func (f *Fetcher) pause(ctx context.Context) {
	t := time.NewTimer(f.retryBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// routingFailure reports whether err means the tablet is not where the locator said it was.
func (f *Fetcher) routingFailure(err error) bool {
	if _, reason := rpc.ReasonOf(err); reason == rpc.ReasonNotServingTablet {
		return true
	}
	return unreachable(err)
}

// unreachable reports whether err is a transport failure rather than an answer from the server.
func unreachable(err error) bool {
	code, reason := rpc.ReasonOf(err)
	return code == codes.Unavailable && reason == ""
}

// classify maps a failure onto the scan error taxonomy and logs it at the level its class
// deserves.
func (f *Fetcher) classify(ctx context.Context, st State, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			log.Debug().Str("table", st.Table).Dur("timeout", st.Timeout).Msg("scan round trip timed out")
			return newError(ErrTimeout, nil, "table %s after %s", st.Table, st.Timeout)
		}
		return newError(ErrClosed, nil, "table %s", st.Table)
	}

	code, reason := rpc.ReasonOf(err)
	var class error
	switch {
	case code == codes.DeadlineExceeded:
		class = ErrTimeout
	case code == codes.Canceled:
		class = ErrClosed
	case reason == rpc.ReasonTableNotFound:
		class = ErrTableNotFound
	case reason == rpc.ReasonTableDeleted:
		class = ErrTableDeleted
	case reason == rpc.ReasonTableOffline:
		class = ErrTableOffline
	case reason == rpc.ReasonIsolationConflict:
		class = ErrIsolationConflict
	case reason == rpc.ReasonInvalidOption, code == codes.InvalidArgument:
		class = ErrInvalidOption
	case reason == rpc.ReasonPermissionDenied, code == codes.PermissionDenied,
		code == codes.Unauthenticated:
		class = ErrSecurityDenied
	default:
		class = ErrUnclassified
	}

	switch class {
	case ErrTableNotFound:
		log.Warn().Err(err).Str("table", st.Table).Msg("scan target does not exist")
	case ErrUnclassified:
		log.Error().Err(err).Str("table", st.Table).Str("range", st.Current().String()).
			Str("code", code.String()).Msg("scan failed")
	default:
		log.Debug().Err(err).Str("table", st.Table).Msg("scan failed")
	}
	return newError(class, err, "table %s", st.Table)
}
