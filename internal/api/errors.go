// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/services"
	"github.com/onboard-hub/backend/internal/upload"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(code, message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromPipelineError maps the pipeline error taxonomy onto API errors.
// The rejection reason is always preserved in the message so the client
// can show it.
func FromPipelineError(err error) *APIError {
	var unsupported *upload.UnsupportedFileError
	if errors.As(err, &unsupported) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "UNSUPPORTED_FILE",
			Message: unsupported.Error(),
		}
	}

	switch {
	case errors.Is(err, upload.ErrSessionNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "upload session not found"}
	case errors.Is(err, upload.ErrNotValidated):
		return NewConflictError("NOT_VALIDATED", "session has no validation result to confirm")
	case errors.Is(err, upload.ErrConfirmPending):
		return NewConflictError("CONFIRM_PENDING", "a confirmation is already in flight for this session")
	case errors.Is(err, upload.ErrEmptySubmission):
		return &APIError{Status: http.StatusBadRequest, Code: "EMPTY_SUBMISSION", Message: "no valid employees to onboard"}
	case errors.Is(err, services.ErrNotFound), errors.Is(err, batch.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	}

	var stage *services.StageError
	if errors.As(err, &stage) {
		switch stage.Kind {
		case services.KindIngest:
			return &APIError{Status: http.StatusInternalServerError, Code: "INGEST_ERROR", Message: stage.Error()}
		case services.KindExtraction:
			return &APIError{Status: http.StatusUnprocessableEntity, Code: "EXTRACTION_ERROR", Message: stage.Error()}
		case services.KindValidationInput:
			return &APIError{Status: http.StatusUnprocessableEntity, Code: "VALIDATION_INPUT_ERROR", Message: stage.Error()}
		case services.KindExecution:
			return &APIError{Status: http.StatusBadGateway, Code: "EXECUTION_ERROR", Message: stage.Error()}
		}
	}

	return NewInternalError("request failed", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = FromPipelineError(err)
	}

	// Send JSON response
	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
