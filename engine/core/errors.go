package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure surfaced by an engine.
type ErrorKind string

const (
	// KindArgument marks invalid caller input detected before any engine is touched.
	KindArgument ErrorKind = "argument"
	// KindEngineLoad marks construction or one-time initialization failures.
	KindEngineLoad ErrorKind = "engine_load"
	// KindCompilation marks syntax errors reported before execution begins.
	KindCompilation ErrorKind = "compilation"
	// KindRuntime marks errors thrown while a script runs.
	KindRuntime ErrorKind = "runtime"
	// KindInterrupted marks executions stopped by an interrupt request.
	KindInterrupted ErrorKind = "interrupted"
	// KindFatal marks an engine that is no longer safely usable.
	KindFatal ErrorKind = "fatal"
	// KindTypeConversion marks results that cannot be converted to the requested type.
	KindTypeConversion ErrorKind = "type_conversion"
	// KindGeneric marks engine errors whose message carries no recognizable type.
	KindGeneric ErrorKind = "generic"
	// KindDisposed marks operations attempted on a disposed engine.
	KindDisposed ErrorKind = "disposed"
)

func (k ErrorKind) String() string {
	return string(k)
}

// Error is the engine-independent error record returned by every engine operation.
type Error struct {
	Kind          ErrorKind
	EngineName    string
	EngineVersion string
	// Message is the composed, display-ready text.
	Message string
	// Description is the message without type prefix or location.
	Description    string
	Type           string
	DocumentName   string
	LineNumber     int
	ColumnNumber   int
	SourceFragment string
	CallStack      string
	Cause          error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.EngineName == "" {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" (engine: ")
	b.WriteString(e.EngineName)
	if e.EngineVersion != "" {
		b.WriteByte(' ')
		b.WriteString(e.EngineVersion)
	}
	b.WriteByte(')')
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// HasLocation reports whether the error points to a known line.
func (e *Error) HasLocation() bool {
	return e != nil && e.LineNumber > 0
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

func NewArgumentError(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: KindArgument, Message: msg, Description: msg}
}

// NewEmptyParameterError reports a missing string parameter.
func NewEmptyParameterError(param string) *Error {
	return NewArgumentError(MsgParameterEmpty, param)
}

// NewNilParameterError reports a missing non-string parameter.
func NewNilParameterError(param string) *Error {
	return NewArgumentError(MsgParameterNil, param)
}

func NewTypeConversionError(from, to string, cause error) *Error {
	msg := fmt.Sprintf(MsgTypeConversionFailed, from, to)
	return &Error{Kind: KindTypeConversion, Message: msg, Description: msg, Cause: cause}
}

func NewDisposedError(engineName string) *Error {
	msg := fmt.Sprintf(MsgEngineDisposed, engineName)
	return &Error{Kind: KindDisposed, EngineName: engineName, Message: msg, Description: msg}
}
