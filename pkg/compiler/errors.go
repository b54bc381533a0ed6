package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compile failure. Every kind is fatal.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	UnboundNameError
	ArityError
	InternalError
)

var errorKindNames = [...]string{
	LexicalError:     "lexical error",
	SyntaxError:      "syntax error",
	UnboundNameError: "unbound name",
	ArityError:       "arity error",
	InternalError:    "internal error",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

const (
	msgUnexpectedEOF      = "unexpected 'end of input'"
	msgUnterminatedString = "unterminated string literal"
)

// Error is the single diagnostic a failed compilation produces.
type Error struct {
	Kind ErrorKind
	Line int // 1-based; 0 when the failure has no source position
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of a compile error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// sourceError decorates an *Error with the offending source line.
type sourceError struct {
	err     *Error
	snippet string
}

func (e *sourceError) Error() string {
	return fmt.Sprintf("%s\n  |> %s", e.err, e.snippet)
}

func (e *sourceError) Unwrap() error { return e.err }

// WithSource attaches the source line an error points at. Errors without a
// line, and errors that are not compile errors, are returned unchanged.
func WithSource(err error, src string) error {
	var ce *Error
	if !errors.As(err, &ce) || ce.Line <= 0 {
		return err
	}
	lines := strings.Split(src, "\n")
	if ce.Line > len(lines) {
		return err
	}
	snippet := strings.TrimSpace(lines[ce.Line-1])
	if snippet == "" {
		return err
	}
	return &sourceError{err: ce, snippet: snippet}
}

// IsIncomplete reports whether err was caused by the input ending in the
// middle of a form, so more input could still make it valid.
func IsIncomplete(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Kind {
	case SyntaxError:
		return ce.Msg == msgUnexpectedEOF
	case LexicalError:
		return ce.Msg == msgUnterminatedString
	}
	return false
}
