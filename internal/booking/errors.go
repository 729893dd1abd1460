package booking

import (
	"errors"
	"fmt"
)

// Error categories.  Every error returned by Service wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("service unavailable")
)

// Error carries a category, a message meant for the guest or the front desk
// and, for store failures, the underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidf(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

// unavailable wraps a store or broker failure.  The driver message is kept
// verbatim; the front desk uses it to tell a misconfigured database from a
// network blip.
func unavailable(err error) error {
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Kind: ErrUnavailable, Err: err}
}

// KindOf returns the category sentinel of err, or nil when err did not come
// from this package.
func KindOf(err error) error {
	for _, k := range []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
