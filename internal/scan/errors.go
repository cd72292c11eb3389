package scan

import (
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/iterators"
)

// Failure classes a scan can end with. Every failure returned by an Iterator matches exactly one
// of them with errors.Is.
var (
	// ErrTimeout is returned when a round trip did not complete within the scan timeout.
	ErrTimeout = errors.New("scan timed out")
	// ErrIsolationConflict is returned when the server could not keep an isolated scan on its
	// snapshot.
	ErrIsolationConflict = errors.New("isolation conflict")
	// ErrTableUnavailable is matched by every table state that precludes scanning.
	ErrTableUnavailable = errors.New("table unavailable")
	ErrTableDeleted     = fmt.Errorf("%w: table deleted", ErrTableUnavailable)
	ErrTableOffline     = fmt.Errorf("%w: table offline", ErrTableUnavailable)
	ErrTableNotFound    = fmt.Errorf("%w: table not found", ErrTableUnavailable)
	// ErrSecurityDenied is returned when the credentials may not scan the table.
	ErrSecurityDenied = errors.New("security denied")
	// ErrInvalidOption is returned when an iterator setting fails validation.
	ErrInvalidOption = iterators.ErrInvalidOption
	// ErrUnclassified covers every other remote failure.
	ErrUnclassified = errors.New("scan failed")
)

var (
	// ErrNoSuchElement is returned by Next when the scan has nothing left.
	ErrNoSuchElement = errors.New("no such element")
	// ErrUnsupportedOperation is returned by Remove.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrClosed is returned by an iterator used after Close.
	ErrClosed = errors.New("scan closed")
)

// Error wraps a failure class with the remote cause and additional context
type Error struct {
	err     error
	cause   error
	context string
}

// Error satisfies the error interface
func (e *Error) Error() string {
	msg := e.err.Error()
	if e.context != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.context)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap exposes both the failure class and the cause to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

func newError(err, cause error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		cause:   cause,
		context: fmt.Sprintf(format, args...),
	}
}
