// Copyright © 2024 Galvanized Logic Inc.

// Package kernelerr defines the stable error kinds shared by every kernel
// package (entity, index, physics, media, controllable, space). It follows
// the teacher's fmt.Errorf-wrapping idiom (see gazed/vu asset.go) rather
// than panics or sentinel strings, with one addition: every error carries
// a Kind so callers can switch on failure category without parsing text.
package kernelerr

import (
	"errors"
	"fmt"
)

// Kind names a stable error category. Kind strings are part of the
// external contract (spec §7) — tests and callers may match on them.
type Kind string

const (
	KindParseError        Kind = "ParseError"
	KindMissingAttribute  Kind = "MissingAttribute"
	KindUnknownElement    Kind = "UnknownElement"
	KindNotFound          Kind = "NotFound"
	KindAmbiguousLookup   Kind = "AmbiguousLookup"
	KindIndexOutOfBounds  Kind = "IndexOutOfBounds"
	KindSyntaxError       Kind = "SyntaxError"
	KindUnsimulableEntity Kind = "UnsimulableEntity"
	KindInvalidHandle     Kind = "InvalidHandle"
	KindCancelled         Kind = "Cancelled"
	KindControllerFailure Kind = "ControllerFailure"
	KindMediumFailure     Kind = "MediumFailure"
	KindEngineFailure     Kind = "EngineFailure"
)

// Error is a kernel error: a stable Kind plus a message and an optional
// wrapped cause, so errors.Is/errors.As keep working through the chain.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, kernelerr.New(KindNotFound, "")) style kind
// comparisons without requiring the message or cause to match.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New builds a kernel error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a kernel error that chains a lower-level cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err, walking the Unwrap chain. It returns
// ("", false) if neither err nor anything in its chain is a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinel instances for use with errors.Is when only the kind matters.
var (
	ErrNotFound          = New(KindNotFound, "")
	ErrAmbiguousLookup   = New(KindAmbiguousLookup, "")
	ErrIndexOutOfBounds  = New(KindIndexOutOfBounds, "")
	ErrSyntaxError       = New(KindSyntaxError, "")
	ErrUnsimulableEntity = New(KindUnsimulableEntity, "")
	ErrInvalidHandle     = New(KindInvalidHandle, "")
	ErrCancelled         = New(KindCancelled, "")
)
