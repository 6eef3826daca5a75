// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// Kind identifies the class of compiler failure a CompileError represents.
type Kind string

const (
	ManifestParse       Kind = "ManifestParse"
	GraphParse          Kind = "GraphParse"
	UnknownReference    Kind = "UnknownReference"
	CycleDetected       Kind = "CycleDetected"
	ShapeMismatch       Kind = "ShapeMismatch"
	UnresolvedDimension Kind = "UnresolvedDimension"
	OperatorMisuse      Kind = "OperatorMisuse"
	IoError             Kind = "IoError"
	ToolchainFailure    Kind = "ToolchainFailure"
)

// CompileError is the single error type returned by every pipeline stage.
// Subject is the offending identifier (node id, program id, import prefix,
// source name, ...). Detail carries auxiliary lines, such as the two shapes
// that failed to unify.
type CompileError struct {
	Kind    Kind
	Message string
	Subject string
	Detail  []string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Subject != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", e.Subject))
	}
	for _, d := range e.Detail {
		sb.WriteString("\n  ")
		sb.WriteString(d)
	}

	return sb.String()
}

// New builds a CompileError with no detail lines.
func New(kind Kind, subject, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	}
}

// WithDetail returns a copy of e with additional detail lines appended.
func (e *CompileError) WithDetail(detail ...string) *CompileError {
	out := *e
	out.Detail = append(append([]string{}, e.Detail...), detail...)
	return &out
}

// Is reports whether err is a *CompileError of the given kind.
func Is(err error, kind Kind) bool {
	ce, ok := err.(*CompileError)
	if !ok {
		return false
	}
	return ce.Kind == kind
}
