package tablet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableDeleted  = errors.New("table deleted")
	ErrTableOffline  = errors.New("table offline")
	ErrTableExists   = errors.New("table already exists")
	// ErrNotServing is returned for a table that exists but is not hosted by this server.
	ErrNotServing = errors.New("tablet not served here")
	// ErrIsolationConflict is returned when an isolated scan's snapshot is gone.
	ErrIsolationConflict = errors.New("isolation conflict")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error
	context string
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}

// State is the lifecycle state of a table.
type State int

const (
	Online State = iota
	Offline
	Deleted
	// Unloaded tables exist but are served elsewhere.
	Unloaded
)

var stateNames = map[State]string{
	Online:   "online",
	Offline:  "offline",
	Deleted:  "deleted",
	Unloaded: "unloaded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState parses a state name. The empty string is Online.
func ParseState(name string) (State, error) {
	if name == "" {
		return Online, nil
	}
	for s, n := range stateNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown table state %q", name)
}

// MarshalText lets states appear by name in JSON and YAML.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// check returns the error a scan of a table in state s fails with.
func (s State) check(table string) error {
	switch s {
	case Online:
		return nil
	case Offline:
		return newError(ErrTableOffline, "%s", table)
	case Deleted:
		return newError(ErrTableDeleted, "%s", table)
	default:
		return newError(ErrNotServing, "%s", table)
	}
}
