package scan

import (
	"errors"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

const defaultIdleTimeout = 3 * time.Second

// Pool is an elastic worker pool shared by every scan of a process. It keeps no idle minimum and
// has no maximum: a task is handed to an idle worker when one is waiting, otherwise a new worker
// is started for it. Workers retire after sitting idle for the idle timeout.
//
// Pool implements app.Dependency.
type Pool struct {
	name        string
	idleTimeout time.Duration
	handoff     chan func()
	done        chan struct{}

	mu      sync.Mutex
	stopped bool
	workers int
	wg      sync.WaitGroup
}

type PoolConfig struct {
	Name        string
	IdleTimeout time.Duration
}

func (c *PoolConfig) validate() error {
	var errGrp []error
	if c.Name == "" {
		errGrp = append(errGrp, errors.New("pool name is required"))
	}
	if c.IdleTimeout < 0 {
		errGrp = append(errGrp, errors.New("idle timeout must not be negative"))
	}
	return errors.Join(errGrp...)
}

func NewPool(cfg *PoolConfig) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	idle := cfg.IdleTimeout
	if idle == 0 {
		idle = defaultIdleTimeout
	}
	return &Pool{
		name:        cfg.Name,
		idleTimeout: idle,
		handoff:     make(chan func()),
		done:        make(chan struct{}),
	}, nil
}

// Submit runs task on a pool worker. It never waits for a worker to become free.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.handoff <- task:
		return nil
	default:
	}

	p.workers++
	p.wg.Add(1)
	go p.work(task)
	return nil
}

// Workers returns the number of live workers, busy or idle.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

func (p *Pool) work(task func()) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.workers--
		p.mu.Unlock()
	}()

	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		p.run(task)
		idle.Reset(p.idleTimeout)

		select {
		case task = <-p.handoff:
		case <-idle.C:
			return
		case <-p.done:
			return
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("pool", p.name).Msgf("panic in pool task: %v", r)
		}
	}()
	task()
}

func (p *Pool) Start() error {
	log.Info().Str("pool", p.name).Dur("idleTimeout", p.idleTimeout).Msg("worker pool ready")
	return nil
}

// Stop refuses new tasks and waits for running tasks to finish.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Pool) Name() string {
	return p.name
}
