package cli

import (
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/locator"
	"github.com/litetable/litetable-scan/internal/scan"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"strconv"
	"strings"
	"time"
)

type scanFlags struct {
	table     string
	start     string
	end       string
	columns   []string
	auths     []string
	iterators []string
	password  string
	batchSize int
	readAhead int
	limit     int
	timeout   time.Duration
	isolated  bool
}

func newScanCommand(opts *options) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a table and print its entries in key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.table, "table", "t", "", "table to scan")
	flags.StringVar(&f.start, "start", "", "first row, inclusive")
	flags.StringVar(&f.end, "end", "", "last row, inclusive")
	flags.StringSliceVar(&f.columns, "column", nil, "fetch only family or family:qualifier (repeatable)")
	flags.StringSliceVar(&f.auths, "auths", nil, "authorizations to scan with")
	flags.StringArrayVar(&f.iterators, "iterator", nil,
		"iterator as priority,name,type[,option=value...] (repeatable)")
	flags.StringVar(&f.password, "password", "", "password, overriding the configured one")
	flags.IntVar(&f.batchSize, "batch-size", 0, "entries per round trip")
	flags.IntVar(&f.readAhead, "read-ahead", 0, "batches before fetching moves to the background")
	flags.IntVar(&f.limit, "limit", 0, "stop after this many entries")
	flags.DurationVar(&f.timeout, "timeout", 0, "bound on each round trip")
	flags.BoolVar(&f.isolated, "isolated", false, "read the whole scan from one snapshot")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func runScan(cmd *cobra.Command, opts *options, f *scanFlags) error {
	cfg := opts.cfg.Client

	client, err := rpc.NewClient(&rpc.ClientConfig{})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close client")
		}
	}()

	static, err := locator.NewStatic(&locator.Config{
		InstanceID:     cfg.InstanceID,
		DefaultAddress: cfg.DefaultAddress,
		Tables:         cfg.Locations,
	})
	if err != nil {
		return err
	}
	cache, err := locator.NewCache(&locator.CacheConfig{Resolver: static})
	if err != nil {
		return err
	}
	log.Info().Str("instance", static.InstanceID().String()).Str("table", f.table).Msg("scanning")

	password := cfg.Password
	if f.password != "" {
		password = f.password
	}
	fetcher, err := scan.NewFetcher(&scan.FetcherConfig{
		Client:      client,
		Locator:     cache,
		Credentials: security.NewPasswordCredentials(cfg.Principal, password),
	})
	if err != nil {
		return err
	}

	pool, err := scan.NewPool(&scan.PoolConfig{Name: "read-ahead", IdleTimeout: cfg.PoolIdleTimeout})
	if err != nil {
		return err
	}
	if err := pool.Start(); err != nil {
		return err
	}
	defer func() { _ = pool.Stop() }()

	scanner, err := buildScanner(fetcher, pool, cfg.BatchSize, cfg.Timeout, cfg.ReadAheadThreshold, f)
	if err != nil {
		return err
	}

	it := scanner.Iterator(cmd.Context())
	defer it.Close()

	out := cmd.OutOrStdout()
	count := 0
	for e, err := range it.All() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\n", e.Key, e.Value); err != nil {
			return err
		}
		count++
		if f.limit > 0 && count >= f.limit {
			break
		}
	}
	log.Debug().Str("table", f.table).Int("entries", count).Msg("scan complete")
	return nil
}

func buildScanner(fetcher *scan.Fetcher, pool *scan.Pool, batchSize int, timeout time.Duration,
	readAhead int, f *scanFlags) (*scan.Scanner, error) {
	if f.batchSize > 0 {
		batchSize = f.batchSize
	}
	if f.timeout > 0 {
		timeout = f.timeout
	}
	if f.readAhead > 0 {
		readAhead = f.readAhead
	}

	scanner, err := scan.NewScanner(&scan.Config{
		Fetcher:            fetcher,
		Pool:               pool,
		Registry:           iterators.NewRegistry(),
		Table:              f.table,
		Authorizations:     data.NewAuthorizations(f.auths...),
		BatchSize:          batchSize,
		Timeout:            timeout,
		ReadAheadThreshold: readAhead,
	})
	if err != nil {
		return nil, err
	}

	if err := scanner.SetRange(data.NewRowRange(f.start, f.end)); err != nil {
		return nil, err
	}
	for _, c := range f.columns {
		family, qualifier, ok := strings.Cut(c, ":")
		if !ok {
			scanner.FetchColumnFamily([]byte(family))
			continue
		}
		scanner.FetchColumn([]byte(family), []byte(qualifier))
	}
	for _, raw := range f.iterators {
		setting, err := parseIterator(raw)
		if err != nil {
			return nil, err
		}
		if err := scanner.AddIterator(setting); err != nil {
			return nil, err
		}
	}
	scanner.EnableIsolation(f.isolated)
	return scanner, nil
}

// parseIterator reads "priority,name,type[,option=value...]".
func parseIterator(raw string) (iterators.Setting, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 3 {
		return iterators.Setting{}, fmt.Errorf("iterator %q: want priority,name,type[,option=value...]", raw)
	}
	priority, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return iterators.Setting{}, fmt.Errorf("iterator %q: priority: %w", raw, err)
	}

	setting := iterators.Setting{
		Priority: priority,
		Name:     strings.TrimSpace(parts[1]),
		Type:     strings.TrimSpace(parts[2]),
	}
	var errGrp []error
	for _, opt := range parts[3:] {
		k, v, ok := strings.Cut(opt, "=")
		if !ok || strings.TrimSpace(k) == "" {
			errGrp = append(errGrp, fmt.Errorf("iterator %q: option %q is not key=value", raw, opt))
			continue
		}
		if setting.Options == nil {
			setting.Options = make(map[string]string)
		}
		setting.Options[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := errors.Join(errGrp...); err != nil {
		return iterators.Setting{}, err
	}
	return setting, nil
}
