package expr

import (
	"errors"
	"fmt"
)

// Kind classifies a [ParseError].
type Kind int

const (
	InvalidToken Kind = iota
	UnexpectedEOF
	Syntax
)

func (k Kind) String() string {
	switch k {
	case InvalidToken:
		return "invalid token"
	case UnexpectedEOF:
		return "unexpected end of input"
	case Syntax:
		return "syntax error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against a *ParseError of the same kind.
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	ErrSyntax        = errors.New("syntax error")
)

// ParseError reports why an expression could not be evaluated.
// Pos is the byte offset in the input where the problem was found.
type ParseError struct {
	Kind Kind
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Kind == UnexpectedEOF {
		return fmt.Sprintf("unexpected end of input at offset %d", e.Pos)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
}

// Unwrap returns the sentinel for e.Kind.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case InvalidToken:
		return ErrInvalidToken
	case UnexpectedEOF:
		return ErrUnexpectedEOF
	default:
		return ErrSyntax
	}
}

func errorf(kind Kind, pos int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
