package scan

import (
	"context"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"sort"
	"time"
)

const defaultBatchSize = 1000

// Scanner holds the options of a scan over one table. Each call to Iterator opens an independent
// scan with the options in effect at that moment.
//
// A Scanner is not safe for concurrent configuration.
type Scanner struct {
	fetcher   fetcher
	pool      submitter
	registry  *iterators.Registry
	table     string
	rng       data.Range
	columns   []data.Column
	settings  []iterators.Setting
	auths     data.Authorizations
	batchSize int
	timeout   time.Duration
	isolated  bool
	threshold int
}

type Config struct {
	Fetcher        fetcher
	Pool           submitter
	Registry       *iterators.Registry
	Table          string
	Authorizations data.Authorizations
	// BatchSize is the number of entries asked for per round trip.
	BatchSize int
	// Timeout bounds every round trip. Zero waits forever.
	Timeout time.Duration
	// ReadAheadThreshold is the number of batches after which fetching moves to the background.
	ReadAheadThreshold int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Fetcher == nil {
		errGrp = append(errGrp, errors.New("fetcher is required"))
	}
	if c.Pool == nil {
		errGrp = append(errGrp, errors.New("pool is required"))
	}
	if c.Registry == nil {
		errGrp = append(errGrp, errors.New("registry is required"))
	}
	if c.Table == "" {
		errGrp = append(errGrp, errors.New("table is required"))
	}
	if c.BatchSize < 0 {
		errGrp = append(errGrp, errors.New("batch size must not be negative"))
	}
	if c.Timeout < 0 {
		errGrp = append(errGrp, errors.New("timeout must not be negative"))
	}
	if c.ReadAheadThreshold < 0 {
		errGrp = append(errGrp, errors.New("read ahead threshold must not be negative"))
	}
	return errors.Join(errGrp...)
}

// NewScanner returns a scanner over the whole table.
func NewScanner(cfg *Config) (*Scanner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	threshold := cfg.ReadAheadThreshold
	if threshold == 0 {
		threshold = DefaultReadAheadThreshold
	}

	return &Scanner{
		fetcher:   cfg.Fetcher,
		pool:      cfg.Pool,
		registry:  cfg.Registry,
		table:     cfg.Table,
		rng:       data.InfiniteRange(),
		auths:     cfg.Authorizations,
		batchSize: batchSize,
		timeout:   cfg.Timeout,
		threshold: threshold,
	}, nil
}

// SetRange limits the scan to r.
func (s *Scanner) SetRange(r data.Range) error {
	if r.Empty() {
		return fmt.Errorf("range %s is empty", r)
	}
	s.rng = r.Clone()
	return nil
}

// FetchColumnFamily adds a whole column family to the fetched columns.
func (s *Scanner) FetchColumnFamily(family []byte) {
	s.columns = append(s.columns, data.Column{Family: family})
}

// FetchColumn adds a single column to the fetched columns. A nil qualifier fetches the whole
// family.
func (s *Scanner) FetchColumn(family, qualifier []byte) {
	s.columns = append(s.columns, data.Column{Family: family, Qualifier: qualifier})
}

// ClearColumns goes back to fetching every column.
func (s *Scanner) ClearColumns() {
	s.columns = nil
}

// AddIterator adds an operator to the server-side stack. The setting is validated here, so a
// bad configuration fails before any data is fetched.
func (s *Scanner) AddIterator(setting iterators.Setting) error {
	settings := append(append([]iterators.Setting{}, s.settings...), setting)
	env := &iterators.Environment{Scope: iterators.ScanScope, Authorizations: s.auths}
	if err := s.registry.ValidateStack(settings, env); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// RemoveIterator removes the named operator. It reports whether it was present.
func (s *Scanner) RemoveIterator(name string) bool {
	for i, setting := range s.settings {
		if setting.Name == name {
			s.settings = append(s.settings[:i], s.settings[i+1:]...)
			return true
		}
	}
	return false
}

// EnableIsolation asks the server for a snapshot that stays consistent across the round trips
// of a scan.
func (s *Scanner) EnableIsolation(isolated bool) {
	s.isolated = isolated
}

func (s *Scanner) SetBatchSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("batch size must be greater than 0, got %d", n)
	}
	s.batchSize = n
	return nil
}

func (s *Scanner) SetTimeout(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", d)
	}
	s.timeout = d
	return nil
}

func (s *Scanner) SetReadAheadThreshold(n int) error {
	if n <= 0 {
		return fmt.Errorf("read ahead threshold must be greater than 0, got %d", n)
	}
	s.threshold = n
	return nil
}

// State returns the state a new scan starts from.
func (s *Scanner) State() State {
	columns := make([]data.Column, len(s.columns))
	copy(columns, s.columns)
	sort.Slice(columns, func(i, j int) bool { return columns[i].Compare(columns[j]) < 0 })

	rng := s.rng.Clone()
	if len(columns) > 0 {
		rng = rng.Bound(columns[0], lastColumn(columns))
	}

	return State{
		Table:          s.table,
		Range:          rng,
		Columns:        columns,
		Iterators:      append([]iterators.Setting{}, s.settings...),
		Authorizations: s.auths,
		BatchSize:      s.batchSize,
		Isolated:       s.isolated,
		Timeout:        s.timeout,
	}
}

// Iterator opens a new scan. Nothing is fetched until the first HasNext.
func (s *Scanner) Iterator(ctx context.Context) *Iterator {
	return newIterator(ctx, s.fetcher, s.pool, s.State(), s.threshold)
}

// lastColumn returns the column reaching furthest in key order. A whole family reaches past every
// single column of that family.
func lastColumn(sorted []data.Column) data.Column {
	last := sorted[len(sorted)-1]
	for _, c := range sorted {
		if c.Qualifier == nil && string(c.Family) == string(last.Family) {
			return c
		}
	}
	return last
}
