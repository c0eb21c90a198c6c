// Package cqlerr defines the failure taxonomy surfaced by the statement
// engine. Every failure is synchronous and final; the engine performs no I/O
// and therefore has no transient error modes.
package cqlerr

import (
	"errors"
	"fmt"
)

// Kind classifies a statement failure.
type Kind int

const (
	// KindInvalidRequest covers semantically invalid statements: unknown
	// keyspaces/tables/columns, duplicate definitions, malformed clause
	// shapes, unsupported SELECT combinations, out-of-range TTL.
	KindInvalidRequest Kind = iota

	// KindSyntax covers statements that matched a known statement shape but
	// whose clause structure could not be parsed.
	KindSyntax

	// KindBind covers placeholder/parameter mismatches: wrong positional
	// count, missing or extra named parameters.
	KindBind

	// KindUnsupported covers statements that match no recognized shape.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindSyntax:
		return "syntax error"
	case KindBind:
		return "bind error"
	case KindUnsupported:
		return "unsupported query"
	default:
		return "unknown"
	}
}

// Error is a kinded statement failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Invalidf returns a KindInvalidRequest error.
func Invalidf(format string, args ...any) error {
	return newf(KindInvalidRequest, format, args...)
}

// Syntaxf returns a KindSyntax error.
func Syntaxf(format string, args ...any) error {
	return newf(KindSyntax, format, args...)
}

// Bindf returns a KindBind error.
func Bindf(format string, args ...any) error {
	return newf(KindBind, format, args...)
}

// Unsupportedf returns a KindUnsupported error.
func Unsupportedf(format string, args ...any) error {
	return newf(KindUnsupported, format, args...)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsInvalidRequest reports whether err is a KindInvalidRequest failure.
func IsInvalidRequest(err error) bool { return isKind(err, KindInvalidRequest) }

// IsSyntax reports whether err is a KindSyntax failure.
func IsSyntax(err error) bool { return isKind(err, KindSyntax) }

// IsBind reports whether err is a KindBind failure.
func IsBind(err error) bool { return isKind(err, KindBind) }

// IsUnsupported reports whether err is a KindUnsupported failure.
func IsUnsupported(err error) bool { return isKind(err, KindUnsupported) }
