package data

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRange_Contains(t *testing.T) {
	r := NewRowRange("b", "d")

	tests := map[string]struct {
		key      Key
		expected bool
	}{
		"before start row":   {key: NewKey("a", "f", "q", 1), expected: false},
		"first row":          {key: NewKey("b", "", "", 1), expected: true},
		"middle row":         {key: NewKey("c", "f", "q", 1), expected: true},
		"last row inclusive": {key: NewKey("d", "zz", "zz", -100), expected: true},
		"row after end":      {key: NewKey("d\x00", "", "", 1), expected: false},
		"next row":           {key: NewKey("e", "", "", 1), expected: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, r.Contains(tc.key))
		})
	}

	t.Run("infinite range contains everything", func(t *testing.T) {
		require.True(t, InfiniteRange().Contains(NewKey("anything", "f", "q", 1)))
	})
}

func TestRange_ResumeAfter(t *testing.T) {
	req := require.New(t)
	r := NewRowRange("a", "z")
	last := NewKey("m", "f", "q", 7)

	resumed := r.ResumeAfter(last)
	req.False(resumed.Contains(last))
	req.True(resumed.Contains(NewKey("m", "f", "q", 6)))
	req.True(resumed.Contains(NewKey("m", "f", "r", 100)))
	req.Equal(0, r.End.Compare(*resumed.End))

	// the original range is untouched
	req.True(r.Contains(last))
}

func TestRange_Empty(t *testing.T) {
	req := require.New(t)
	k := NewKey("a", "", "", 1)

	req.False(InfiniteRange().Empty())
	req.False(Range{Start: &k, StartInclusive: true, End: &k, EndInclusive: true}.Empty())
	req.True(Range{Start: &k, StartInclusive: true, End: &k}.Empty())

	later := NewKey("b", "", "", 1)
	req.True(Range{Start: &later, StartInclusive: true, End: &k, EndInclusive: true}.Empty())
}

func TestRange_Bound(t *testing.T) {
	req := require.New(t)
	r := NewRowRange("r1", "r3")
	first := Column{Family: []byte("b")}
	last := Column{Family: []byte("d"), Qualifier: []byte("q")}

	bounded := r.Bound(first, last)

	req.False(bounded.Contains(NewKey("r1", "a", "x", 1)), "columns before the first fetched are skipped")
	req.True(bounded.Contains(NewKey("r1", "b", "", 1)))
	req.True(bounded.Contains(NewKey("r2", "a", "", 1)), "middle rows are untouched")
	req.True(bounded.Contains(NewKey("r3", "d", "q", 1)))
	req.False(bounded.Contains(NewKey("r3", "d", "r", 1)), "columns after the last fetched are skipped")
	req.False(bounded.Contains(NewKey("r3", "e", "", 1)))

	whole := r.Bound(first, Column{Family: []byte("d")})
	req.True(whole.Contains(NewKey("r3", "d", "zzz", 1)))
	req.False(whole.Contains(NewKey("r3", "d\x00", "", 1)))
}

func TestColumn_Matches(t *testing.T) {
	req := require.New(t)
	family := Column{Family: []byte("f")}
	exact := Column{Family: []byte("f"), Qualifier: []byte("q")}

	req.True(family.Matches(NewKey("r", "f", "anything", 1)))
	req.False(family.Matches(NewKey("r", "g", "q", 1)))
	req.True(exact.Matches(NewKey("r", "f", "q", 1)))
	req.False(exact.Matches(NewKey("r", "f", "p", 1)))
	req.Equal("f:q", exact.String())
}
