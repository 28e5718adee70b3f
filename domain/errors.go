package domain

import (
	"fmt"
	"sync"
)

// ErrorKind distinguishes the taxonomy from §7: a single sum type with
// original-cause chains. ParseError and ResolveError are file/function
// local and non-fatal; IoError is boundary and usually non-fatal;
// ConfigError is fatal and accumulating; InternalInvariantViolation is
// fatal and indicates a bug.
type ErrorKind string

const (
	ErrorKindParse                     ErrorKind = "parse_error"
	ErrorKindResolve                   ErrorKind = "resolve_error"
	ErrorKindIO                        ErrorKind = "io_error"
	ErrorKindConfig                    ErrorKind = "config_error"
	ErrorKindInternalInvariantViolation ErrorKind = "internal_invariant_violation"
)

// AnalysisError is the single error sum type used across the core. It
// preserves the original cause rather than replacing it with a generic
// label, per §7's propagation policy.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Context string // file path, function name, or config key, depending on Kind
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Context != "" {
		if e.Cause != nil {
			return fmt.Sprintf("[%s] %s (%s): %v", e.Kind, e.Message, e.Context, e.Cause)
		}
		return fmt.Sprintf("[%s] %s (%s)", e.Kind, e.Message, e.Context)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// NewParseError builds a file-local, non-fatal ParseError.
func NewParseError(file, message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindParse, Message: message, Context: file, Cause: cause}
}

// NewResolveError builds a function-local, non-fatal ResolveError.
func NewResolveError(functionContext, message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindResolve, Message: message, Context: functionContext, Cause: cause}
}

// NewIoError builds a boundary IoError.
func NewIoError(path, message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindIO, Message: message, Context: path, Cause: cause}
}

// NewConfigError builds a fatal, accumulating ConfigError with a source
// label naming where the bad value came from (default/file/env/cli).
func NewConfigError(sourceLabel, message string) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindConfig, Message: message, Context: sourceLabel}
}

// NewInternalInvariantViolation builds a fatal bug-indicating error.
func NewInternalInvariantViolation(context, message string) *AnalysisError {
	return &AnalysisError{Kind: ErrorKindInternalInvariantViolation, Message: message, Context: context}
}

// Diagnostic is a single accumulated, user-visible record of a dropped
// file, skipped entry, or fallback (§7: "never silently swallows an error").
type Diagnostic struct {
	Operation string
	Path      string
	Message   string
	Kind      ErrorKind
}

// DiagnosticCollector accumulates diagnostics across a run without aborting
// it. It is safe for concurrent Add calls from multiple analysis workers.
type DiagnosticCollector struct {
	mu   sync.Mutex
	list []Diagnostic
}

// NewDiagnosticCollector allocates an empty collector.
func NewDiagnosticCollector() *DiagnosticCollector {
	return &DiagnosticCollector{}
}

// Add appends a diagnostic; safe for concurrent use.
func (c *DiagnosticCollector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, d)
}

// AddError converts an *AnalysisError into a Diagnostic and appends it.
func (c *DiagnosticCollector) AddError(operation string, err *AnalysisError) {
	c.Add(Diagnostic{Operation: operation, Path: err.Context, Message: err.Error(), Kind: err.Kind})
}

// All returns every diagnostic, sorted by (Path, Operation, Message) for
// deterministic emission (§5: "diagnostics ... sorted before emission").
func (c *DiagnosticCollector) All() []Diagnostic {
	c.mu.Lock()
	out := append([]Diagnostic{}, c.list...)
	c.mu.Unlock()
	sortDiagnostics(out)
	return out
}

func sortDiagnostics(d []Diagnostic) {
	for i := 1; i < len(d); i++ {
		for j := i; j > 0; j-- {
			if lessDiagnostic(d[j], d[j-1]) {
				d[j], d[j-1] = d[j-1], d[j]
			} else {
				break
			}
		}
	}
}

func lessDiagnostic(a, b Diagnostic) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Operation != b.Operation {
		return a.Operation < b.Operation
	}
	return a.Message < b.Message
}
