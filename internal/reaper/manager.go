package reaper

import (
	"context"
	"errors"
	"sync"
	"time"
)

//go:generate mockgen -destination=manager_mock.go -package=reaper -source=manager.go

const (
	defaultInterval = 10 * time.Minute
	queueSize       = 64
)

type compactor interface {
	CompactionTargets() []string
	Compact(table string) (int, error)
}

// Reaper periodically runs every table's compaction stack, deleting what the stack no longer
// emits. Individual tables can be queued with Reap between rounds.
type Reaper struct {
	collector chan string
	compactor compactor

	mutex        sync.Mutex
	reapInterval time.Duration
	wg           sync.WaitGroup
	once         sync.Once

	procCtx context.Context
	cancel  context.CancelFunc
}

type Config struct {
	Compactor compactor
	// Interval between full compaction rounds. Defaults to ten minutes.
	Interval time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Compactor == nil {
		errGrp = append(errGrp, errors.New("compactor cannot be nil"))
	}
	if c.Interval < 0 {
		errGrp = append(errGrp, errors.New("interval must not be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a new Reaper.
func New(cfg *Config) (*Reaper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Reaper{
		collector:    make(chan string, queueSize),
		compactor:    cfg.Compactor,
		reapInterval: interval,
		procCtx:      ctx,
		cancel:       cancel,
	}, nil
}

func (r *Reaper) Start() error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.procCtx.Done():
				return
			case table := <-r.collector:
				r.compact(table)
			case <-ticker.C:
				r.compactAll()
			}
		}
	}()
	return nil
}

func (r *Reaper) Stop() error {
	r.once.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
	return nil
}

func (r *Reaper) Name() string {
	return "Reaper"
}
