package data

import (
	"bytes"
	"fmt"
	"math"
)

// Key identifies a single cell version in a table.
//
// Keys sort by row, family, qualifier and visibility ascending, then by timestamp descending so
// the newest version of a column is seen first. A deletion marker sorts before a regular entry
// with the same coordinates.
type Key struct {
	Row        []byte `json:"row"`
	Family     []byte `json:"family,omitempty"`
	Qualifier  []byte `json:"qualifier,omitempty"`
	Visibility []byte `json:"visibility,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Deleted    bool   `json:"deleted,omitempty"`
}

// Value is an opaque cell value.
type Value []byte

// Entry is a key and its value, the unit a scan produces.
type Entry struct {
	Key   Key   `json:"key"`
	Value Value `json:"value"`
}

// NewKey returns a key for a row/column at the given timestamp.
func NewKey(row, family, qualifier string, timestamp int64) Key {
	return Key{
		Row:       []byte(row),
		Family:    []byte(family),
		Qualifier: []byte(qualifier),
		Timestamp: timestamp,
	}
}

// RowKey returns the smallest key of the given row.
func RowKey(row []byte) Key {
	return Key{Row: row, Timestamp: math.MaxInt64, Deleted: true}
}

// Compare returns -1, 0 or 1 depending on whether k sorts before, equal to or after o.
func (k Key) Compare(o Key) int {
	if c := k.CompareColumn(o); c != 0 {
		return c
	}
	if c := bytes.Compare(k.Visibility, o.Visibility); c != 0 {
		return c
	}
	switch {
	case k.Timestamp > o.Timestamp:
		return -1
	case k.Timestamp < o.Timestamp:
		return 1
	}
	switch {
	case k.Deleted == o.Deleted:
		return 0
	case k.Deleted:
		return -1
	default:
		return 1
	}
}

// CompareColumn compares only the row, family and qualifier of two keys.
func (k Key) CompareColumn(o Key) int {
	if c := bytes.Compare(k.Row, o.Row); c != 0 {
		return c
	}
	if c := bytes.Compare(k.Family, o.Family); c != 0 {
		return c
	}
	return bytes.Compare(k.Qualifier, o.Qualifier)
}

// SameColumn reports whether both keys address the same row, column and visibility.
func (k Key) SameColumn(o Key) bool {
	return k.CompareColumn(o) == 0 && bytes.Equal(k.Visibility, o.Visibility)
}

// Following returns the key exactly one ordering step after k. No key sorts strictly between k
// and the result.
func (k Key) Following() Key {
	next := k.Clone()
	if k.Deleted {
		next.Deleted = false
		return next
	}
	if k.Timestamp > math.MinInt64 {
		next.Timestamp = k.Timestamp - 1
		next.Deleted = true
		return next
	}

	// the oldest possible version: move on to the next visibility label
	next.Visibility = append(next.Visibility, 0x00)
	next.Timestamp = math.MaxInt64
	next.Deleted = true
	return next
}

// Clone returns a deep copy of k.
func (k Key) Clone() Key {
	return Key{
		Row:        clone(k.Row),
		Family:     clone(k.Family),
		Qualifier:  clone(k.Qualifier),
		Visibility: clone(k.Visibility),
		Timestamp:  k.Timestamp,
		Deleted:    k.Deleted,
	}
}

// Column returns the column k belongs to.
func (k Key) Column() Column {
	return Column{Family: clone(k.Family), Qualifier: clone(k.Qualifier)}
}

func (k Key) String() string {
	s := fmt.Sprintf("%s %s:%s [%s] %d", k.Row, k.Family, k.Qualifier, k.Visibility, k.Timestamp)
	if k.Deleted {
		s += " (deleted)"
	}
	return s
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	return Entry{Key: e.Key.Clone(), Value: Value(clone(e.Value))}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
