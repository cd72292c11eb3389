package data

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizations_CanSee(t *testing.T) {
	auths := NewAuthorizations("public", "admin", "admin", " ")

	tests := map[string]struct {
		label    string
		expected bool
	}{
		"empty label":            {label: "", expected: true},
		"single token held":      {label: "public", expected: true},
		"single token missing":   {label: "secret", expected: false},
		"and all held":           {label: "public&admin", expected: true},
		"and one missing":        {label: "public&secret", expected: false},
		"or one held":            {label: "secret|admin", expected: true},
		"nested":                 {label: "(secret|public)&admin", expected: true},
		"nested missing":         {label: "(secret|other)&admin", expected: false},
		"mixed without parens":   {label: "public&admin|secret", expected: false},
		"unbalanced parenthesis": {label: "(public", expected: false},
		"dangling operator":      {label: "public&", expected: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, auths.CanSee([]byte(tc.label)))
		})
	}
}

func TestNewAuthorizations(t *testing.T) {
	req := require.New(t)
	auths := NewAuthorizations("b", "a", "b", "")
	req.Equal(Authorizations{"a", "b"}, auths)
	req.True(Authorizations{"a"}.SubsetOf(auths))
	req.False(Authorizations{"c"}.SubsetOf(auths))
}

func TestValidateVisibility(t *testing.T) {
	req := require.New(t)
	req.NoError(ValidateVisibility(nil))
	req.NoError(ValidateVisibility([]byte("a&(b|c)")))
	req.ErrorIs(ValidateVisibility([]byte("a&&b")), errBadVisibility)
	req.ErrorIs(ValidateVisibility([]byte("a|b&c")), errBadVisibility)
}
