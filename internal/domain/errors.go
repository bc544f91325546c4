package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the pipeline can report.
type ErrorKind string

const (
	// Extraction and literal decoding.
	NoLiteralArray      ErrorKind = "NoLiteralArray"
	UnbalancedArray     ErrorKind = "UnbalancedArray"
	EmptyArray          ErrorKind = "EmptyArray"
	NonLiteralArgument  ErrorKind = "NonLiteralArgument"
	UnterminatedLiteral ErrorKind = "UnterminatedLiteral"
	InvalidEscape       ErrorKind = "InvalidEscape"
	NoEnclosingFunction ErrorKind = "NoEnclosingFunction"

	// Invocation parsing.
	MissingOptionValue ErrorKind = "MissingOptionValue"

	// Translation.
	UnsupportedFlag ErrorKind = "UnsupportedFlag"
	MissingPattern  ErrorKind = "MissingPattern"

	// Ambient.
	ReadFailure ErrorKind = "ReadFailure"
	ConfigError ErrorKind = "Config"
	Execution   ErrorKind = "Execution"
)

// CompatError is the base error type with context.
type CompatError struct {
	Phase      string // "config", "scan", "extract", "parse", "translate", "run", "template", "write"
	Kind       ErrorKind
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *CompatError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (%s)", e.Suggestion)
	}
	return s
}

func (e *CompatError) Unwrap() error {
	return e.Cause
}

// NewError creates a new CompatError.
func NewError(phase string, kind ErrorKind, file string, line int, message string, cause error) *CompatError {
	return &CompatError{
		Phase:      phase,
		Kind:       kind,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a CompatError carrying a hint for the user.
func NewErrorWithSuggestion(phase string, kind ErrorKind, file string, line int, message, suggestion string, cause error) *CompatError {
	e := NewError(phase, kind, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}

// KindOf returns the kind of the outermost CompatError in err's chain, or ""
// when there is none.
func KindOf(err error) ErrorKind {
	var ce *CompatError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func formatLocation(file string, line int, reason string) string {
	if file == "" {
		return fmt.Sprintf("line %d: %s", line, reason)
	}
	return fmt.Sprintf("%s:%d: %s", file, line, reason)
}
