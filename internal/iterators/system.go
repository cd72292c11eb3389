package iterators

import (
	"github.com/litetable/litetable-scan/internal/data"
)

// Deleting hides deletion markers together with every older version of the column they delete.
type Deleting struct {
	source Source
}

// NewDeleting wraps source so deleted data is never visible.
func NewDeleting(source Source) *Deleting {
	return &Deleting{source: source}
}

// Seek starts from the newest version of the start column so a marker sorting before the
// start key still suppresses what it deletes.
func (d *Deleting) Seek(r data.Range) error {
	if err := d.source.Seek(columnStart(r)); err != nil {
		return err
	}
	if err := d.skipDeleted(); err != nil {
		return err
	}
	for d.source.HasTop() && r.BeforeStart(d.source.TopKey()) {
		if err := d.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deleting) HasTop() bool {
	return d.source.HasTop()
}

func (d *Deleting) TopKey() data.Key {
	return d.source.TopKey()
}

func (d *Deleting) TopValue() data.Value {
	return d.source.TopValue()
}

func (d *Deleting) Next() error {
	if err := d.source.Next(); err != nil {
		return err
	}
	return d.skipDeleted()
}

func (d *Deleting) Clone(env *Environment) Source {
	return &Deleting{source: d.source.Clone(env)}
}

func (d *Deleting) skipDeleted() error {
	for d.source.HasTop() && d.source.TopKey().Deleted {
		marker := d.source.TopKey().Clone()
		for d.source.HasTop() && d.source.TopKey().SameColumn(marker) {
			if err := d.source.Next(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ColumnFilter keeps only entries in one of the fetched columns. No columns means all columns.
func ColumnFilter(source Source, columns []data.Column) Source {
	if len(columns) == 0 {
		return source
	}
	cols := make([]data.Column, len(columns))
	copy(cols, columns)
	return Where(source, PredicateFunc(func(k data.Key, _ data.Value) bool {
		for _, c := range cols {
			if c.Matches(k) {
				return true
			}
		}
		return false
	}))
}

// VisibilityFilter keeps only entries whose visibility label auths satisfy.
func VisibilityFilter(source Source, auths data.Authorizations) Source {
	return Where(source, PredicateFunc(func(k data.Key, _ data.Value) bool {
		return auths.CanSee(k.Visibility)
	}))
}

// SystemStack wraps raw storage with the operators every scan gets before any user operator.
func SystemStack(raw Source, columns []data.Column, auths data.Authorizations) Source {
	return VisibilityFilter(ColumnFilter(NewDeleting(raw), columns), auths)
}
