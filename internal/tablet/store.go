package tablet

import (
	"fmt"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
)

// reader is what a scan reads from: the live database or a snapshot of it.
type reader interface {
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// store holds the entries of one table, keyed by data.EncodeKey.
type store struct {
	db *pebble.DB
}

func openStore(dir string, fs vfs.FS) (*store, error) {
	db, err := pebble.Open(dir, &pebble.Options{FS: fs})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dir, err)
	}
	return &store{db: db}, nil
}

func (s *store) put(entries []data.Entry) error {
	b := s.db.NewBatch()
	defer b.Close()
	for _, e := range entries {
		if err := b.Set(data.EncodeKey(e.Key), e.Value, nil); err != nil {
			return fmt.Errorf("failed to stage %s: %w", e.Key, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (s *store) remove(keys []data.Key) error {
	if len(keys) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete(data.EncodeKey(k), nil); err != nil {
			return fmt.Errorf("failed to stage delete of %s: %w", k, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (s *store) close() error {
	return s.db.Close()
}

// budget caps how many keys inside window a scan may examine in one request.
type budget struct {
	limit    int
	window   data.Range
	counted  int
	stopped  bool
	lastSeen data.Key
}

// pebbleSource is the bottom of every stack: a sorted Source over a reader.
type pebbleSource struct {
	reader reader
	iter   *pebble.Iterator
	rng    data.Range
	top    data.Entry
	has    bool
	budget *budget
}

func newPebbleSource(r reader, b *budget) *pebbleSource {
	return &pebbleSource{reader: r, budget: b}
}

func (p *pebbleSource) Seek(r data.Range) error {
	if err := p.Close(); err != nil {
		return err
	}

	opts := &pebble.IterOptions{}
	if r.Start != nil {
		opts.LowerBound = data.EncodeKey(*r.Start)
	}
	if r.End != nil && !r.EndInclusive {
		opts.UpperBound = data.EncodeKey(*r.End)
	}
	iter, err := p.reader.NewIter(opts)
	if err != nil {
		return fmt.Errorf("failed to open iterator: %w", err)
	}
	p.iter = iter
	p.rng = r.Clone()
	p.iter.First()
	return p.load()
}

func (p *pebbleSource) HasTop() bool {
	return p.has
}

func (p *pebbleSource) TopKey() data.Key {
	return p.top.Key
}

func (p *pebbleSource) TopValue() data.Value {
	return p.top.Value
}

func (p *pebbleSource) Next() error {
	if !p.has {
		return nil
	}
	p.iter.Next()
	return p.load()
}

// Clone returns an unbudgeted source over the same reader.
func (p *pebbleSource) Clone(_ *iterators.Environment) iterators.Source {
	return newPebbleSource(p.reader, nil)
}

// Close releases the underlying iterator. The source may be seeked again afterwards.
func (p *pebbleSource) Close() error {
	p.has = false
	if p.iter == nil {
		return nil
	}
	err := p.iter.Close()
	p.iter = nil
	return err
}

func (p *pebbleSource) load() error {
	p.has = false
	for ; p.iter.Valid(); p.iter.Next() {
		k, err := data.DecodeKey(p.iter.Key())
		if err != nil {
			return err
		}
		if p.rng.BeforeStart(k) {
			continue
		}
		if p.rng.AfterEnd(k) {
			return nil
		}
		if p.budget != nil && !p.budget.window.BeforeStart(k) {
			if p.budget.counted >= p.budget.limit {
				p.budget.stopped = true
				return nil
			}
			p.budget.counted++
			p.budget.lastSeen = k
		}

		value := make(data.Value, len(p.iter.Value()))
		copy(value, p.iter.Value())
		p.top = data.Entry{Key: k, Value: value}
		p.has = true
		return nil
	}
	return p.iter.Error()
}
