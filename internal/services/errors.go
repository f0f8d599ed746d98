package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by collaborators for lookups of unknown
// identifiers. Callers treat it as a stale reference, not a crash.
var ErrNotFound = errors.New("not found")

// StageError is a failure raised by one of the pipeline collaborators.
// Kind identifies the failing stage so callers can branch on it instead
// of matching message strings.
type StageError struct {
	Kind  ErrorKind
	Cause error
}

// ErrorKind tags a StageError with its originating stage.
type ErrorKind string

const (
	KindIngest          ErrorKind = "ingest"
	KindExtraction      ErrorKind = "extraction"
	KindValidationInput ErrorKind = "validation_input"
	KindExecution       ErrorKind = "execution"
)

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }

// NewIngestError wraps a failure from the file ingestion service.
func NewIngestError(cause error) *StageError {
	return &StageError{Kind: KindIngest, Cause: cause}
}

// NewExtractionError wraps a failure from the record extraction service.
func NewExtractionError(cause error) *StageError {
	return &StageError{Kind: KindExtraction, Cause: cause}
}

// NewValidationInputError wraps malformed extraction output. This is
// distinct from per-record invalidity, which is normal partition output.
func NewValidationInputError(cause error) *StageError {
	return &StageError{Kind: KindValidationInput, Cause: cause}
}

// NewExecutionError wraps a failure from the batch execution service.
func NewExecutionError(cause error) *StageError {
	return &StageError{Kind: KindExecution, Cause: cause}
}
