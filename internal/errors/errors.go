// Package errors defines the typed errors the refactor engines surface.
// Detection misses (nothing at the cursor, no base class, no members) are
// never errors; engines return nil results for those. Only resolution
// failures, file I/O failures and edit application failures reach callers
// as errors.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for diagnostics and user messaging.
type ErrorType string

const (
	ErrorTypeResolution ErrorType = "resolution"
	ErrorTypeFile       ErrorType = "file"
	ErrorTypeEdit       ErrorType = "edit"
	ErrorTypeProvider   ErrorType = "provider"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeInternal   ErrorType = "internal"
)

// ResolutionError reports that a named class, interface or base class could
// not be resolved when an action was explicitly invoked. Suggestion, when
// non-empty, names the closest candidate found by fuzzy matching.
type ResolutionError struct {
	Type       ErrorType
	TargetKind string // "class", "interface", "base class"
	Name       string
	Suggestion string
	Timestamp  time.Time
}

// NewResolutionError creates a resolution failure for the named target.
func NewResolutionError(targetKind, name string) *ResolutionError {
	return &ResolutionError{
		Type:       ErrorTypeResolution,
		TargetKind: targetKind,
		Name:       name,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion attaches a "did you mean" candidate.
func (e *ResolutionError) WithSuggestion(name string) *ResolutionError {
	e.Suggestion = name
	return e
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s %q not found (did you mean %q?)", e.TargetKind, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%s %q not found", e.TargetKind, e.Name)
}

// FileError reports a failed file system operation.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a file error with context.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeFile,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// EditError reports that an edit batch could not be applied.
type EditError struct {
	Type       ErrorType
	URI        string
	Underlying error
	Timestamp  time.Time
}

// NewEditError creates an edit application error.
func NewEditError(uri string, err error) *EditError {
	return &EditError{
		Type:       ErrorTypeEdit,
		URI:        uri,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *EditError) Error() string {
	return fmt.Sprintf("applying edits to %s failed: %v", e.URI, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *EditError) Unwrap() error {
	return e.Underlying
}

// ProviderError reports a symbol provider failure. Callers treat it as a
// signal to fall back to the text scanning path, not as a user-facing error.
type ProviderError struct {
	Type       ErrorType
	URI        string
	Underlying error
	Timestamp  time.Time
}

// NewProviderError creates a provider failure for the given document.
func NewProviderError(uri string, err error) *ProviderError {
	return &ProviderError{
		Type:       ErrorTypeProvider,
		URI:        uri,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("symbol provider failed for %s: %v", e.URI, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}
