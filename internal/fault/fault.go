// Package fault classifies errors crossing package boundaries so callers
// can map them to user-facing behavior without string matching.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// InvalidSelection: a submitted command carries an addon id or quantity
	// outside the meal's configuration.
	InvalidSelection Kind = "invalid_selection"
	// IllegalTransition: the action is not permitted in the current
	// meal/order state.
	IllegalTransition Kind = "illegal_transition"
	// Unaffordable: the grand total exceeds the wallet balance at
	// submission time.
	Unaffordable Kind = "unaffordable"
	// Upstream: opaque failure from the remote service, not classified
	// further.
	Upstream Kind = "upstream"
)

// Error carries a Kind through wrapping.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the innermost classification of err, or "" when err is
// not classified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
