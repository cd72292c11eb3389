package iterators

import (
	"sort"

	"github.com/litetable/litetable-scan/internal/data"
)

// SliceSource serves entries from memory. Clones share the backing slice, which is never
// modified after construction.
type SliceSource struct {
	entries []data.Entry
	rng     data.Range
	pos     int
}

// NewSliceSource returns a source over a sorted copy of entries. It starts unpositioned.
func NewSliceSource(entries []data.Entry) *SliceSource {
	sorted := make([]data.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key.Compare(sorted[j].Key) < 0
	})
	return &SliceSource{entries: sorted, pos: len(sorted)}
}

// Empty returns a source with no entries.
func Empty() *SliceSource {
	return NewSliceSource(nil)
}

func (s *SliceSource) Seek(r data.Range) error {
	s.rng = r
	s.pos = sort.Search(len(s.entries), func(i int) bool {
		return !r.BeforeStart(s.entries[i].Key)
	})
	return nil
}

func (s *SliceSource) HasTop() bool {
	return s.pos < len(s.entries) && !s.rng.AfterEnd(s.entries[s.pos].Key)
}

func (s *SliceSource) TopKey() data.Key {
	return s.entries[s.pos].Key
}

func (s *SliceSource) TopValue() data.Value {
	return s.entries[s.pos].Value
}

func (s *SliceSource) Next() error {
	if s.pos < len(s.entries) {
		s.pos++
	}
	return nil
}

func (s *SliceSource) Clone(_ *Environment) Source {
	return &SliceSource{entries: s.entries, pos: len(s.entries)}
}

// Drain reads every remaining entry of a positioned source.
func Drain(src Source) ([]data.Entry, error) {
	var out []data.Entry
	for src.HasTop() {
		out = append(out, data.Entry{Key: src.TopKey().Clone(), Value: src.TopValue()})
		if err := src.Next(); err != nil {
			return out, err
		}
	}
	return out, nil
}
