package data

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey_Compare(t *testing.T) {
	tests := map[string]struct {
		a, b     Key
		expected int
	}{
		"equal keys": {
			a:        NewKey("r1", "f", "q", 10),
			b:        NewKey("r1", "f", "q", 10),
			expected: 0,
		},
		"row orders first": {
			a:        NewKey("r1", "z", "z", 1),
			b:        NewKey("r2", "a", "a", 100),
			expected: -1,
		},
		"family before qualifier": {
			a:        NewKey("r1", "b", "a", 1),
			b:        NewKey("r1", "a", "z", 1),
			expected: 1,
		},
		"newer timestamp sorts first": {
			a:        NewKey("r1", "f", "q", 20),
			b:        NewKey("r1", "f", "q", 10),
			expected: -1,
		},
		"visibility before timestamp": {
			a:        Key{Row: []byte("r"), Visibility: []byte("A"), Timestamp: 1},
			b:        Key{Row: []byte("r"), Visibility: []byte("B"), Timestamp: 100},
			expected: -1,
		},
		"deletion marker sorts before entry": {
			a:        Key{Row: []byte("r"), Timestamp: 5, Deleted: true},
			b:        Key{Row: []byte("r"), Timestamp: 5},
			expected: -1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tc.expected, tc.a.Compare(tc.b))
			req.Equal(-tc.expected, tc.b.Compare(tc.a))
		})
	}
}

func TestKey_Following(t *testing.T) {
	keys := []Key{
		NewKey("r1", "f", "q", 10),
		{Row: []byte("r1"), Family: []byte("f"), Timestamp: 10, Deleted: true},
		{Row: []byte("r1"), Timestamp: math.MinInt64},
		RowKey([]byte("r2")),
	}

	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			req := require.New(t)
			next := k.Following()
			req.Equal(1, next.Compare(k), "following key must sort after the original")
			req.Equal(-1, k.Compare(next))
		})
	}

	t.Run("following a live version is the next older deletion marker", func(t *testing.T) {
		req := require.New(t)
		next := NewKey("r1", "f", "q", 10).Following()
		req.Equal(int64(9), next.Timestamp)
		req.True(next.Deleted)
	})

	t.Run("does not alias the original", func(t *testing.T) {
		req := require.New(t)
		k := NewKey("r1", "f", "q", math.MinInt64)
		next := k.Following()
		next.Row[0] = 'x'
		req.Equal("r1", string(k.Row))
	})
}

func TestEncodeKey_PreservesOrder(t *testing.T) {
	req := require.New(t)

	keys := []Key{
		NewKey("a", "f", "q", 3),
		NewKey("a", "f", "q", 2),
		{Row: []byte("a"), Family: []byte("f"), Qualifier: []byte("q"), Timestamp: 2, Deleted: true},
		NewKey("a", "f", "q\x00", 9),
		NewKey("a", "f\x00x", "", 1),
		NewKey("a\x00", "", "", 1),
		NewKey("ab", "", "", -5),
		NewKey("ab", "", "", math.MinInt64),
		NewKey("b", "", "", math.MaxInt64),
		{Row: []byte("b"), Visibility: []byte("A&B"), Timestamp: 0},
	}

	byKey := append([]Key(nil), keys...)
	sort.Slice(byKey, func(i, j int) bool { return byKey[i].Compare(byKey[j]) < 0 })

	byBytes := append([]Key(nil), keys...)
	sort.Slice(byBytes, func(i, j int) bool {
		return string(EncodeKey(byBytes[i])) < string(EncodeKey(byBytes[j]))
	})

	for i := range byKey {
		req.Equal(0, byKey[i].Compare(byBytes[i]), "position %d", i)
	}

	for _, k := range keys {
		decoded, err := DecodeKey(EncodeKey(k))
		req.NoError(err)
		req.Equal(0, k.Compare(decoded))
		req.Equal(k.Deleted, decoded.Deleted)
	}
}

func TestDecodeKey_Corrupt(t *testing.T) {
	tests := map[string][]byte{
		"empty":             {},
		"unterminated":      []byte("row"),
		"bad escape":        {'r', 0x00, 0x05},
		"missing timestamp": append(EncodeKey(NewKey("r", "", "", 1))[:12], 0x01),
		"bad deletion flag": func() []byte {
			b := EncodeKey(NewKey("r", "", "", 1))
			b[len(b)-1] = 0x07
			return b
		}(),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeKey(input)
			require.ErrorIs(t, err, ErrCorruptKey)
		})
	}
}
