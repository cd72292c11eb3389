package data

import (
	"bytes"
	"fmt"
	"math"
)

// Range is an interval over the key space. A nil Start or End leaves that side unbounded.
type Range struct {
	Start          *Key `json:"start,omitempty"`
	StartInclusive bool `json:"startInclusive"`
	End            *Key `json:"end,omitempty"`
	EndInclusive   bool `json:"endInclusive"`
}

// InfiniteRange covers every key.
func InfiniteRange() Range {
	return Range{}
}

// NewRowRange returns the range covering every key from startRow through endRow, both rows
// inclusive. Empty rows leave the corresponding side unbounded.
func NewRowRange(startRow, endRow string) Range {
	var r Range
	if startRow != "" {
		start := RowKey([]byte(startRow))
		r.Start = &start
		r.StartInclusive = true
	}
	if endRow != "" {
		// the first key of the row right after endRow
		end := RowKey(append([]byte(endRow), 0x00))
		r.End = &end
		r.EndInclusive = false
	}
	return r
}

// ExactRow returns the range covering a single row.
func ExactRow(row string) Range {
	return NewRowRange(row, row)
}

// BeforeStart reports whether k sorts before the start of the range.
func (r Range) BeforeStart(k Key) bool {
	if r.Start == nil {
		return false
	}
	c := k.Compare(*r.Start)
	if r.StartInclusive {
		return c < 0
	}
	return c <= 0
}

// AfterEnd reports whether k sorts after the end of the range.
func (r Range) AfterEnd(k Key) bool {
	if r.End == nil {
		return false
	}
	c := k.Compare(*r.End)
	if r.EndInclusive {
		return c > 0
	}
	return c >= 0
}

// Contains reports whether k falls inside the range.
func (r Range) Contains(k Key) bool {
	return !r.BeforeStart(k) && !r.AfterEnd(k)
}

// ResumeAfter returns a copy of the range whose lower bound sits one ordering step after last,
// so a scan continued over it never sees last again.
func (r Range) ResumeAfter(last Key) Range {
	next := last.Following()
	resumed := r.Clone()
	resumed.Start = &next
	resumed.StartInclusive = true
	return resumed
}

// Empty reports whether no key can fall inside the range.
func (r Range) Empty() bool {
	if r.Start == nil || r.End == nil {
		return false
	}
	c := r.Start.Compare(*r.End)
	if c > 0 {
		return true
	}
	return c == 0 && !(r.StartInclusive && r.EndInclusive)
}

// Bound narrows the range to the lexicographic span of the fetched columns. A start addressing
// a whole row moves forward to the first fetched column of that row, and an end produced by
// NewRowRange moves back to just past the last fetched column of the final row.
func (r Range) Bound(first, last Column) Range {
	bounded := r.Clone()
	if r.Start != nil && len(r.Start.Family) == 0 && len(r.Start.Qualifier) == 0 {
		start := Key{
			Row:       clone(r.Start.Row),
			Family:    clone(first.Family),
			Qualifier: clone(first.Qualifier),
			Timestamp: math.MaxInt64,
			Deleted:   true,
		}
		if start.Compare(*r.Start) > 0 {
			bounded.Start = &start
			bounded.StartInclusive = true
		}
	}

	if r.End != nil && !r.EndInclusive && len(r.End.Family) == 0 && len(r.End.Qualifier) == 0 &&
		bytes.HasSuffix(r.End.Row, []byte{0x00}) {
		end := Key{
			Row:       clone(r.End.Row[:len(r.End.Row)-1]),
			Family:    clone(last.Family),
			Timestamp: math.MaxInt64,
			Deleted:   true,
		}
		if last.Qualifier == nil {
			end.Family = append(end.Family, 0x00)
		} else {
			end.Qualifier = append(clone(last.Qualifier), 0x00)
		}
		if end.Compare(*r.End) < 0 {
			bounded.End = &end
			bounded.EndInclusive = false
		}
	}
	return bounded
}

// Clone returns a deep copy of the range.
func (r Range) Clone() Range {
	c := Range{StartInclusive: r.StartInclusive, EndInclusive: r.EndInclusive}
	if r.Start != nil {
		s := r.Start.Clone()
		c.Start = &s
	}
	if r.End != nil {
		e := r.End.Clone()
		c.End = &e
	}
	return c
}

func (r Range) String() string {
	left, right := "(-inf", "+inf)"
	if r.Start != nil {
		left = "(" + r.Start.String()
		if r.StartInclusive {
			left = "[" + r.Start.String()
		}
	}
	if r.End != nil {
		right = r.End.String() + ")"
		if r.EndInclusive {
			right = r.End.String() + "]"
		}
	}
	return fmt.Sprintf("%s, %s", left, right)
}

// Column selects a column family, or a single qualifier within it when Qualifier is set.
//
// A nil Qualifier selects the whole family, an empty one only the empty qualifier. The field is
// always encoded so the distinction survives the wire.
type Column struct {
	Family    []byte `json:"family"`
	Qualifier []byte `json:"qualifier"`
}

// Compare orders columns by family then qualifier.
func (c Column) Compare(o Column) int {
	if v := bytes.Compare(c.Family, o.Family); v != 0 {
		return v
	}
	return bytes.Compare(c.Qualifier, o.Qualifier)
}

// Matches reports whether the key belongs to the column selection.
func (c Column) Matches(k Key) bool {
	if !bytes.Equal(c.Family, k.Family) {
		return false
	}
	return c.Qualifier == nil || bytes.Equal(c.Qualifier, k.Qualifier)
}

func (c Column) String() string {
	if c.Qualifier == nil {
		return string(c.Family)
	}
	return string(c.Family) + ":" + string(c.Qualifier)
}
