package ewkt

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a parse failed.
type ErrorKind int

const (
	KindLexical ErrorKind = iota + 1
	KindSyntax
	KindValidation
	KindLimit
)

func (k ErrorKind) String() string {
	switch k {
	case KindLexical:
		return "lexical error"
	case KindSyntax:
		return "syntax error"
	case KindValidation:
		return "invalid geometry"
	case KindLimit:
		return "limit exceeded"
	default:
		return "error"
	}
}

// Sentinels for errors.Is.
var (
	ErrLexical    = errors.New("ewkt: lexical error")
	ErrSyntax     = errors.New("ewkt: syntax error")
	ErrValidation = errors.New("ewkt: invalid geometry")
	ErrLimit      = errors.New("ewkt: limit exceeded")
)

// Error is returned by every failed parse. Line and Column are 1-based and
// only set for lexical and syntax errors; validation errors are found after
// scanning has finished and carry no position.
type Error struct {
	Kind   ErrorKind
	Line   int
	Column int
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	if e.HasPosition() {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// HasPosition reports whether Line/Column are meaningful.
func (e *Error) HasPosition() bool {
	return e.Line > 0
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLexical:
		return e.Kind == KindLexical
	case ErrSyntax:
		return e.Kind == KindSyntax
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrLimit:
		return e.Kind == KindLimit
	}
	return false
}

// KindOf extracts the kind from err, or 0 when err is not a parse error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func limitError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLimit, Msg: fmt.Sprintf(format, args...)}
}
