// handlers_upload.go - Upload session lifecycle handlers
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/orchestrator"
	"github.com/onboard-hub/backend/internal/upload"
)

// identity resolves the audit principal for a request context.
type identity interface {
	PrincipalOrAnonymous(ctx context.Context) models.Principal
}

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	orch    *orchestrator.Orchestrator
	uploads *upload.Manager
	ident   identity
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(orch *orchestrator.Orchestrator, uploads *upload.Manager, ident identity) UploadHandler {
	return &UploadHandlerImpl{
		orch:    orch,
		uploads: uploads,
		ident:   ident,
	}
}

// HandleUploadFile accepts a multipart spreadsheet upload, creates an
// upload session and starts the processing chain. Validation continues
// in the background; clients follow it via the session status or the
// SSE progress stream.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	actor := h.ident.PrincipalOrAnonymous(c.Request().Context())
	sess := h.uploads.Create()

	out, err := h.orch.Run(c.Request().Context(), sess.ID, file.Filename, file.Size, src, actor)
	if err != nil {
		// The guard rejection leaves the session idle; drop it so the
		// client retries with a fresh upload.
		h.uploads.Delete(sess.ID)
		return FromPipelineError(err)
	}

	return c.JSON(http.StatusAccepted, out)
}

// HandleGetSession returns the session status including the validation
// result once the chain has finished.
func (h *UploadHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.uploads.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleProgressStream streams session state via SSE until the chain
// settles in validated, completed or error.
func (h *UploadHandlerImpl) HandleProgressStream(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	sess, ok := h.uploads.Get(id)
	if !ok {
		h.sendSSEError(c, "session not found")
		return nil
	}
	h.sendSSEData(c, sess)
	if settled(sess.Status) {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil

		case <-ticker.C:
			sess, ok := h.uploads.Get(id)
			if !ok {
				h.sendSSEError(c, "session not found")
				return nil
			}
			h.sendSSEData(c, sess)
			if settled(sess.Status) {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		}
	}
}

// HandleConfirm submits the session's valid records for onboarding and
// returns the created batch.
func (h *UploadHandlerImpl) HandleConfirm(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	actor := h.ident.PrincipalOrAnonymous(c.Request().Context())
	b, err := h.orch.Confirm(c.Request().Context(), id, actor)
	if err != nil {
		return FromPipelineError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// HandleResetSession returns the session to idle, discarding the file
// handle and any validation result.
func (h *UploadHandlerImpl) HandleResetSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if err := h.uploads.Reset(id); err != nil {
		return NewNotFoundError("session", id)
	}
	sess, _ := h.uploads.Get(id)
	return c.JSON(http.StatusOK, sess)
}

// HandleDeleteSession removes the session entirely.
func (h *UploadHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if err := h.uploads.Delete(id); err != nil {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// settled reports whether the background chain has stopped moving the
// session: the user's next action (confirm or reset) is required.
func settled(s models.SessionStatus) bool {
	switch s {
	case models.SessionStatusValidated, models.SessionStatusCompleted, models.SessionStatusError, models.SessionStatusIdle:
		return true
	}
	return false
}

// SSE helpers

func (h *UploadHandlerImpl) sendSSEData(c echo.Context, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "data: %s\n\n", data)
	c.Response().Flush()
}

func (h *UploadHandlerImpl) sendSSEError(c echo.Context, message string) {
	fmt.Fprintf(c.Response(), "event: error\ndata: %q\n\n", message)
	c.Response().Flush()
}
