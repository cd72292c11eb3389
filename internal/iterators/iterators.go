package iterators

import (
	"errors"
	"fmt"
	"time"

	"github.com/litetable/litetable-scan/internal/data"
)

var (
	// ErrInvalidOption is returned when an operator configuration fails validation.
	ErrInvalidOption = errors.New("invalid iterator option")
	// ErrUnknownOperator is returned when a setting names an operator type that is not registered.
	ErrUnknownOperator = errors.New("unknown iterator type")
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

// Source is a sorted stream of entries that can be positioned and copied.
//
// TopKey and TopValue are only meaningful while HasTop reports true. Implementations are not
// safe for concurrent use; use Clone to give another goroutine its own cursor.
type Source interface {
	// Seek positions the source at the first entry inside r.
	Seek(r data.Range) error
	// HasTop reports whether the source is positioned on an entry.
	HasTop() bool
	// TopKey returns the key of the current entry.
	TopKey() data.Key
	// TopValue returns the value of the current entry.
	TopValue() data.Value
	// Next advances to the following entry.
	Next() error
	// Clone returns a source with identical configuration and an independent cursor over its own
	// copy of the upstream source. A clone must be seeked before use.
	Clone(env *Environment) Source
}

// Operator is a configurable stage of an iterator stack.
type Operator interface {
	Source
	// Init binds the operator to its upstream source and validates its options.
	Init(source Source, options map[string]string, env *Environment) error
	// Describe documents the operator and its options without touching any data.
	Describe() Descriptor
}

// Descriptor is the self-documentation of an operator.
type Descriptor struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	NamedOptions   map[string]string `json:"namedOptions,omitempty"`
	UnnamedOptions []string          `json:"unnamedOptions,omitempty"`
}

// Scope is the context a stack is evaluated in.
type Scope int

const (
	ScanScope Scope = iota
	CompactionScope
)

func (s Scope) String() string {
	switch s {
	case ScanScope:
		return "scan"
	case CompactionScope:
		return "compaction"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Environment carries what operators may need from the process evaluating them.
type Environment struct {
	Scope          Scope
	Authorizations data.Authorizations
	// Now overrides the wall clock, mostly for tests.
	Now func() time.Time
}

// Clock returns the environment's notion of the current time.
func (e *Environment) Clock() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
