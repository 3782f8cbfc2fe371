package geoquiz

import (
	"errors"
	"fmt"
)

// Kind is the closed set of domain failure modes callers branch on.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindInvalidState
	KindValidation
	KindDuplicateGuess
	KindDeadlineExpired
	KindNameConflict
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindUnauthenticated: "unauthenticated",
	KindUnauthorized:    "unauthorized",
	KindNotFound:        "not_found",
	KindInvalidState:    "invalid_state",
	KindValidation:      "validation_error",
	KindDuplicateGuess:  "duplicate_guess",
	KindDeadlineExpired: "deadline_expired",
	KindNameConflict:    "name_conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a domain failure. Two Errors match under errors.Is when their
// kinds match, so the sentinels below work for any message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrDuplicateGuess  = &Error{Kind: KindDuplicateGuess, Msg: "team already guessed this round"}
	ErrDeadlineExpired = &Error{Kind: KindDeadlineExpired, Msg: "guessing deadline has passed"}
	ErrNameConflict    = &Error{Kind: KindNameConflict, Msg: "team name already taken"}
)

// Errorf builds a domain error of the given kind.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or KindUnknown for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
