package reaper

import (
	"errors"
	"github.com/rs/zerolog/log"
	"time"
)

var (
	ErrStopped   = errors.New("reaper stopped")
	ErrQueueFull = errors.New("reaper queue full")
)

// Reap queues a compaction of table. It does not wait for the compaction to run.
func (r *Reaper) Reap(table string) error {
	if r.procCtx.Err() != nil {
		return ErrStopped
	}
	select {
	case r.collector <- table:
		return nil
	default:
		return ErrQueueFull
	}
}

// compactAll runs one round over every table with a compaction stack.
func (r *Reaper) compactAll() {
	start := time.Now()
	var removed, tables int
	for _, table := range r.compactor.CompactionTargets() {
		if r.procCtx.Err() != nil {
			return
		}
		removed += r.compact(table)
		tables++
	}
	log.Debug().Int("tables", tables).Int("removed", removed).Dur("took", time.Since(start)).
		Msg("compaction round complete")
}

func (r *Reaper) compact(table string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed, err := r.compactor.Compact(table)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("compaction failed")
		return 0
	}
	return removed
}
