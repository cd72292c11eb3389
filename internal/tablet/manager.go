package tablet

import (
	"errors"
	"fmt"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/rs/zerolog/log"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

//go:generate mockgen -destination=manager_mock.go -package=tablet -source=manager.go

type authorizer interface {
	Authorize(creds security.Credentials, requested data.Authorizations) (data.Authorizations, error)
}

const (
	defaultSessionTTL   = time.Minute
	defaultMaxExamined  = 100_000
	defaultMaxBatchSize = 10_000
	defaultBatchSize    = 1000
)

// TableConfig declares a table hosted by the manager.
type TableConfig struct {
	Name  string `yaml:"name"`
	State State  `yaml:"state"`
	// Compaction is the stack applied when the table is compacted.
	Compaction []iterators.Setting `yaml:"compaction"`
}

type table struct {
	name       string
	state      State
	store      *store
	compaction []iterators.Setting
}

// TableInfo describes a table for tooling.
type TableInfo struct {
	Name       string              `json:"name"`
	State      State               `json:"state"`
	Compaction []iterators.Setting `json:"compaction,omitempty"`
}

// Manager hosts tables and evaluates scans against them.
//
// Manager implements app.Dependency.
type Manager struct {
	dataDir      string
	fs           vfs.FS
	registry     *iterators.Registry
	auth         authorizer
	sessionTTL   time.Duration
	maxExamined  int
	maxBatchSize int
	now          func() time.Time

	mu     sync.RWMutex
	tables map[string]*table

	sessions *sessions
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type Config struct {
	DataDir string
	// FS defaults to the operating system filesystem.
	FS            vfs.FS
	Registry      *iterators.Registry
	Authenticator authorizer
	Tables        []TableConfig
	// SessionTTL is how long an isolated scan's snapshot survives between round trips.
	SessionTTL time.Duration
	// MaxExamined caps the stored entries one scan request may examine.
	MaxExamined  int
	MaxBatchSize int
	// Now overrides the wall clock, mostly for tests.
	Now func() time.Time
}

func (c *Config) validate() error {
	var errGrp []error
	if c.DataDir == "" {
		errGrp = append(errGrp, errors.New("data directory is required"))
	}
	if c.Registry == nil {
		errGrp = append(errGrp, errors.New("registry is required"))
	}
	if c.Authenticator == nil {
		errGrp = append(errGrp, errors.New("authenticator is required"))
	}
	if c.SessionTTL < 0 || c.MaxExamined < 0 || c.MaxBatchSize < 0 {
		errGrp = append(errGrp, errors.New("limits must not be negative"))
	}

	seen := make(map[string]struct{}, len(c.Tables))
	env := &iterators.Environment{Scope: iterators.CompactionScope}
	for _, t := range c.Tables {
		if t.Name == "" {
			errGrp = append(errGrp, errors.New("table name is required"))
			continue
		}
		if _, dup := seen[t.Name]; dup {
			errGrp = append(errGrp, fmt.Errorf("table %q declared twice", t.Name))
		}
		seen[t.Name] = struct{}{}
		if c.Registry != nil {
			if err := c.Registry.ValidateStack(t.Compaction, env); err != nil {
				errGrp = append(errGrp, fmt.Errorf("table %q compaction: %w", t.Name, err))
			}
		}
	}
	return errors.Join(errGrp...)
}

// New opens the store of every declared table that is not deleted.
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		dataDir:      cfg.DataDir,
		fs:           cfg.FS,
		registry:     cfg.Registry,
		auth:         cfg.Authenticator,
		sessionTTL:   orDefault(cfg.SessionTTL, defaultSessionTTL),
		maxExamined:  orDefault(cfg.MaxExamined, defaultMaxExamined),
		maxBatchSize: orDefault(cfg.MaxBatchSize, defaultMaxBatchSize),
		now:          cfg.Now,
		tables:       make(map[string]*table, len(cfg.Tables)),
		sessions:     newSessions(),
		done:         make(chan struct{}),
	}
	if m.fs == nil {
		m.fs = vfs.Default
	}
	if m.now == nil {
		m.now = time.Now
	}

	for _, tc := range cfg.Tables {
		if err := m.addTable(tc); err != nil {
			_ = m.closeStores()
			return nil, err
		}
	}
	return m, nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

// CreateTable adds an online table with an empty store.
func (m *Manager) CreateTable(name string, compaction []iterators.Setting) error {
	if name == "" {
		return errors.New("table name is required")
	}
	env := &iterators.Environment{Scope: iterators.CompactionScope}
	if err := m.registry.ValidateStack(compaction, env); err != nil {
		return err
	}
	return m.addTable(TableConfig{Name: name, State: Online, Compaction: compaction})
}

func (m *Manager) addTable(tc TableConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[tc.Name]; exists {
		return newError(ErrTableExists, "%s", tc.Name)
	}

	t := &table{name: tc.Name, state: tc.State, compaction: tc.Compaction}
	if tc.State != Deleted {
		s, err := openStore(filepath.Join(m.dataDir, tc.Name), m.fs)
		if err != nil {
			return err
		}
		t.store = s
	}
	m.tables[tc.Name] = t
	log.Debug().Str("table", tc.Name).Str("state", tc.State.String()).Msg("table loaded")
	return nil
}

// SetState moves a table to a new state. Deleting a table closes its store for good.
func (m *Manager) SetState(name string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		return newError(ErrTableNotFound, "%s", name)
	}
	if t.state == Deleted {
		return newError(ErrTableDeleted, "%s", name)
	}
	if state == Deleted {
		m.sessions.dropTable(name)
		if err := t.store.close(); err != nil {
			return fmt.Errorf("failed to close store of %s: %w", name, err)
		}
		t.store = nil
	}
	t.state = state
	log.Info().Str("table", name).Str("state", state.String()).Msg("table state changed")
	return nil
}

// Put writes entries to a table. Entries with Deleted set are deletion markers.
func (m *Manager) Put(name string, entries ...data.Entry) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return newError(ErrTableNotFound, "%s", name)
	}
	if t.store == nil {
		return t.state.check(name)
	}
	return t.store.put(entries)
}

// Tables lists the hosted tables by name.
func (m *Manager) Tables() []TableInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]TableInfo, 0, len(m.tables))
	for _, t := range m.tables {
		infos = append(infos, TableInfo{Name: t.name, State: t.state, Compaction: t.compaction})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (m *Manager) Start() error {
	m.wg.Add(1)
	go m.sweep()
	log.Info().Int("tables", len(m.Tables())).Str("dataDir", m.dataDir).Msg("tablet manager started")
	return nil
}

func (m *Manager) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		m.sessions.closeAll()
		err = m.closeStores()
	})
	return err
}

func (m *Manager) Name() string {
	return "Tablet Manager"
}

// sweep closes isolated sessions that were not used within the session TTL.
func (m *Manager) sweep() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.sessionTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.sessions.expire(m.now().Add(-m.sessionTTL)); n > 0 {
				log.Debug().Int("sessions", n).Msg("expired isolated scan sessions")
			}
		}
	}
}

func (m *Manager) closeStores() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errGrp []error
	for _, t := range m.tables {
		if t.store == nil {
			continue
		}
		if err := t.store.close(); err != nil {
			errGrp = append(errGrp, fmt.Errorf("failed to close store of %s: %w", t.name, err))
		}
		t.store = nil
	}
	return errors.Join(errGrp...)
}
