// handlers_batch.go - Tracked batch view handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
)

// BatchHandlerImpl implements the BatchHandler interface
type BatchHandlerImpl struct {
	tracker *batch.Tracker
}

// NewBatchHandler creates a new batch handler instance
func NewBatchHandler(tracker *batch.Tracker) BatchHandler {
	return &BatchHandlerImpl{tracker: tracker}
}

// HandleListBatches returns all tracked batches in creation order.
func (h *BatchHandlerImpl) HandleListBatches(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.List())
}

// HandleGetBatch returns one batch snapshot.
func (h *BatchHandlerImpl) HandleGetBatch(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	b, err := h.tracker.Get(id)
	if err != nil {
		return NewNotFoundError("batch", id)
	}
	return c.JSON(http.StatusOK, b)
}

// HandleBatchEmployees returns the per-record outcomes of a batch.
func (h *BatchHandlerImpl) HandleBatchEmployees(c echo.Context) error {
	employees, apiErr := h.batchEmployees(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, employees)
}

// HandleBatchEmployeesMsgpack returns the per-record outcomes in
// MessagePack format for large batches.
func (h *BatchHandlerImpl) HandleBatchEmployeesMsgpack(c echo.Context) error {
	employees, apiErr := h.batchEmployees(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := msgpack.Marshal(employees)
	if err != nil {
		return NewInternalError("failed to encode employees", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

func (h *BatchHandlerImpl) batchEmployees(c echo.Context) ([]models.Employee, *APIError) {
	id := c.Param("id")
	if id == "" {
		return nil, NewValidationError("id")
	}

	b, err := h.tracker.Get(id)
	if err != nil {
		return nil, NewNotFoundError("batch", id)
	}
	return b.Employees, nil
}
