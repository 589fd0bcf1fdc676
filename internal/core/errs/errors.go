// Package errs defines the typed error conditions raised by the engine core.
//
// Every error carries the source location where it was raised (file, line,
// function), a short description and an optional free-text detail.
//
// Example output:
//
//	object/runtime.go:118: object.New: out of memory: budget of 4096 bytes exhausted (requested 64)
//
// Errors are matched by kind with errors.Is against the exported sentinels:
//
//	if errors.Is(err, errs.ErrOutOfMemory) {
//	    // release something and retry
//	}
package errs

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies an engine error.
type Kind int

const (
	// KindGeneric is the unclassified escape hatch.
	KindGeneric Kind = iota
	// KindOutOfMemory indicates that requested memory could not be obtained.
	KindOutOfMemory
	// KindInvalidDereference indicates a dereference of an empty handle.
	KindInvalidDereference
	// KindOutOfRange indicates a value outside its documented domain.
	KindOutOfRange
)

// String returns the human-readable name of a Kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "engine error"
	case KindOutOfMemory:
		return "out of memory"
	case KindInvalidDereference:
		return "invalid dereference"
	case KindOutOfRange:
		return "out of range"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching. They carry no location.
var (
	ErrGeneric            = &Error{Kind: KindGeneric}
	ErrOutOfMemory        = &Error{Kind: KindOutOfMemory}
	ErrInvalidDereference = &Error{Kind: KindInvalidDereference}
	ErrOutOfRange         = &Error{Kind: KindOutOfRange}
)

// Error is a typed engine error with source location.
//
// Fields:
//   - Kind: Error classification
//   - File: Source file (base directory + file name) where the error was raised
//   - Line: Line number (1-indexed)
//   - Function: Short function name, e.g. "object.New"
//   - Description: One-line description of the failure
//   - Detail: Optional free text (empty if none)
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type Error struct {
	Kind        Kind
	File        string
	Line        int
	Function    string
	Description string
	Detail      string
}

// Error implements the error interface.
//
// Format: file:line: function: kind: description[: detail]
func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
	}
	if e.Function != "" {
		b.WriteString(e.Function)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates an error of the given kind located at the caller.
func New(kind Kind, description string) *Error {
	return newAt(2, kind, description, "")
}

// Newf creates an error of the given kind located at the caller, with a
// formatted detail string.
func Newf(kind Kind, description, format string, args ...any) *Error {
	return newAt(2, kind, description, fmt.Sprintf(format, args...))
}

// OutOfMemory is shorthand for Newf(KindOutOfMemory, ...).
func OutOfMemory(format string, args ...any) *Error {
	return newAt(2, KindOutOfMemory, "allocation failed", fmt.Sprintf(format, args...))
}

// InvalidDereference is shorthand for an empty-handle dereference error.
func InvalidDereference(what string) *Error {
	return newAt(2, KindInvalidDereference, "dereference of empty handle", what)
}

// OutOfRange is shorthand for Newf(KindOutOfRange, ...).
func OutOfRange(format string, args ...any) *Error {
	return newAt(2, KindOutOfRange, "value outside documented domain", fmt.Sprintf(format, args...))
}

func newAt(skip int, kind Kind, description, detail string) *Error {
	e := &Error{Kind: kind, Description: description, Detail: detail}
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return e
	}
	e.File = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
	e.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.Function = shortFuncName(fn.Name())
	}
	return e
}

// shortFuncName trims the import path from a fully qualified function name:
// "github.com/kolkov/enginecore/internal/core/object.New[...]" becomes "object.New".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
