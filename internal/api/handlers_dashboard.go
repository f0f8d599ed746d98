// handlers_dashboard.go - Aggregate stats and audit log handlers
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
)

// DirectoryCounter is the directory view the stats endpoint needs.
// Implemented by directory.EmployeeStore.
type DirectoryCounter interface {
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	tracker   *batch.Tracker
	directory DirectoryCounter
	auditor   *audit.Log
	ident     identity
}

// NewDashboardHandler creates a new dashboard handler instance
func NewDashboardHandler(tracker *batch.Tracker, directory DirectoryCounter, auditor *audit.Log, ident identity) DashboardHandler {
	return &DashboardHandlerImpl{
		tracker:   tracker,
		directory: directory,
		auditor:   auditor,
		ident:     ident,
	}
}

// HandleDashboardStats returns the aggregate onboarding view.
func (h *DashboardHandlerImpl) HandleDashboardStats(c echo.Context) error {
	ctx := c.Request().Context()

	total, err := h.directory.Count(ctx)
	if err != nil {
		return NewInternalError("failed to count employees", err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completedToday, err := h.directory.CountCreatedSince(ctx, midnight)
	if err != nil {
		return NewInternalError("failed to count recent employees", err)
	}

	stats := models.DashboardStats{
		TotalEmployees:   total,
		ActiveOnboarding: h.tracker.ActiveCount(),
		CompletedToday:   completedToday,
		RecentActivity:   h.auditor.Recent(10),
	}

	// Failure count and average duration come from the tracked batches.
	var durations []float64
	for _, b := range h.tracker.List() {
		stats.FailedProcesses += b.FailedEmployees
		if b.CompletedAt != nil {
			durations = append(durations, b.CompletedAt.Sub(b.CreatedAt).Seconds())
		}
	}
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		stats.AverageProcessingTime = sum / float64(len(durations))
	}

	return c.JSON(http.StatusOK, stats)
}

// HandleAuditLogs returns recent audit entries, newest first.
func (h *DashboardHandlerImpl) HandleAuditLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return c.JSON(http.StatusOK, h.auditor.Recent(limit))
}

// HandleAppendAuditLog records a client-side action in the audit log.
func (h *DashboardHandlerImpl) HandleAppendAuditLog(c echo.Context) error {
	var req appendAuditRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Action == "" {
		return NewValidationError("action")
	}

	status := models.AuditStatus(req.Status)
	switch status {
	case models.AuditStatusSuccess, models.AuditStatusError, models.AuditStatusWarning:
	case "":
		status = models.AuditStatusSuccess
	default:
		return NewValidationError("status")
	}

	actor := h.ident.PrincipalOrAnonymous(c.Request().Context())
	entry := h.auditor.Append(req.Action, actor, status, req.Details)
	return c.JSON(http.StatusCreated, entry)
}

// Request/Response types

type appendAuditRequest struct {
	Action  string `json:"action"`
	Status  string `json:"status"`
	Details string `json:"details"`
}
