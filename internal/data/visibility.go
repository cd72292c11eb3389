package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var errBadVisibility = errors.New("malformed visibility expression")

// Authorizations is the set of visibility tokens a scan runs with.
type Authorizations []string

// NewAuthorizations returns a sorted, de-duplicated set of tokens.
func NewAuthorizations(tokens ...string) Authorizations {
	seen := make(map[string]struct{}, len(tokens))
	auths := make(Authorizations, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		auths = append(auths, t)
	}
	sort.Strings(auths)
	return auths
}

// Contains reports whether token is part of the set.
func (a Authorizations) Contains(token string) bool {
	for _, t := range a {
		if t == token {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every token of a is also in b.
func (a Authorizations) SubsetOf(b Authorizations) bool {
	for _, t := range a {
		if !b.Contains(t) {
			return false
		}
	}
	return true
}

// CanSee evaluates a visibility label against the authorizations. An empty label is visible to
// everyone. Labels combine tokens with & and |, grouped by parentheses; & and | may not be mixed
// at the same level without parentheses. Malformed labels are never visible.
func (a Authorizations) CanSee(label []byte) bool {
	if len(label) == 0 {
		return true
	}
	ok, err := evaluate(string(label), a)
	return err == nil && ok
}

// ValidateVisibility reports whether the label parses.
func ValidateVisibility(label []byte) error {
	if len(label) == 0 {
		return nil
	}
	_, err := evaluate(string(label), nil)
	return err
}

type visibilityParser struct {
	expr  string
	pos   int
	auths Authorizations
}

func evaluate(expr string, auths Authorizations) (bool, error) {
	p := &visibilityParser{expr: expr, auths: auths}
	ok, err := p.parseExpr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.expr) {
		return false, fmt.Errorf("%w: unexpected %q at %d", errBadVisibility, p.expr[p.pos], p.pos)
	}
	return ok, nil
}

// parseExpr reads a sequence of terms joined by a single operator kind.
func (p *visibilityParser) parseExpr() (bool, error) {
	result, err := p.parseTerm()
	if err != nil {
		return false, err
	}

	var op byte
	for p.pos < len(p.expr) && (p.expr[p.pos] == '&' || p.expr[p.pos] == '|') {
		next := p.expr[p.pos]
		if op != 0 && op != next {
			return false, fmt.Errorf("%w: cannot mix & and | without parentheses", errBadVisibility)
		}
		op = next
		p.pos++

		term, err := p.parseTerm()
		if err != nil {
			return false, err
		}
		if op == '&' {
			result = result && term
		} else {
			result = result || term
		}
	}
	return result, nil
}

func (p *visibilityParser) parseTerm() (bool, error) {
	if p.pos >= len(p.expr) {
		return false, fmt.Errorf("%w: unexpected end of expression", errBadVisibility)
	}

	if p.expr[p.pos] == '(' {
		p.pos++
		ok, err := p.parseExpr()
		if err != nil {
			return false, err
		}
		if p.pos >= len(p.expr) || p.expr[p.pos] != ')' {
			return false, fmt.Errorf("%w: missing closing parenthesis", errBadVisibility)
		}
		p.pos++
		return ok, nil
	}

	start := p.pos
	for p.pos < len(p.expr) && isTokenChar(p.expr[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return false, fmt.Errorf("%w: empty token at %d", errBadVisibility, start)
	}
	return p.auths.Contains(p.expr[start:p.pos]), nil
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == ':', c == '.', c == '/':
		return true
	}
	return false
}
