package tablet

import (
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/rs/zerolog/log"
)

// CompactionTargets lists the online tables that have a compaction stack.
func (m *Manager) CompactionTargets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for _, t := range m.tables {
		if t.state == Online && len(t.compaction) > 0 {
			names = append(names, t.name)
		}
	}
	return names
}

// Compact runs the table's compaction stack over a snapshot of its store and deletes every stored
// entry the stack does not emit. It returns how many entries were removed.
//
// The stack is walked in lockstep with the raw entries, so compaction operators must only drop
// entries, never rewrite them.
func (m *Manager) Compact(name string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return 0, newError(ErrTableNotFound, "%s", name)
	}
	if err := t.state.check(name); err != nil {
		return 0, err
	}
	if len(t.compaction) == 0 {
		return 0, nil
	}

	snap := t.store.db.NewSnapshot()
	defer func() {
		if err := snap.Close(); err != nil {
			log.Warn().Err(err).Str("table", name).Msg("failed to close compaction snapshot")
		}
	}()

	raw := newPebbleSource(snap, nil)
	defer raw.Close()
	kept := newPebbleSource(snap, nil)
	defer kept.Close()

	env := &iterators.Environment{Scope: iterators.CompactionScope, Now: m.now}
	stack, err := m.registry.Load(kept, t.compaction, env)
	if err != nil {
		return 0, err
	}
	if err := raw.Seek(data.InfiniteRange()); err != nil {
		return 0, err
	}
	if err := stack.Seek(data.InfiniteRange()); err != nil {
		return 0, err
	}

	var doomed []data.Key
	for raw.HasTop() {
		k := raw.TopKey()
		switch {
		case stack.HasTop() && stack.TopKey().Compare(k) == 0:
			if err := stack.Next(); err != nil {
				return 0, err
			}
		case stack.HasTop() && stack.TopKey().Compare(k) < 0:
			return 0, fmt.Errorf("compaction stack of %s emitted %s, which is not stored", name,
				stack.TopKey())
		default:
			doomed = append(doomed, k)
		}
		if err := raw.Next(); err != nil {
			return 0, err
		}
	}

	if err := t.store.remove(doomed); err != nil {
		return 0, err
	}
	if len(doomed) > 0 {
		log.Info().Str("table", name).Int("removed", len(doomed)).Msg("compaction complete")
	}
	return len(doomed), nil
}
