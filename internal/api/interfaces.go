// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// UploadHandler handles the upload session lifecycle
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleProgressStream(c echo.Context) error
	HandleConfirm(c echo.Context) error
	HandleResetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
}

// BatchHandler serves tracked batch views
type BatchHandler interface {
	HandleListBatches(c echo.Context) error
	HandleGetBatch(c echo.Context) error
	HandleBatchEmployees(c echo.Context) error
	HandleBatchEmployeesMsgpack(c echo.Context) error
}

// DirectoryHandler serves the employee directory and its reference data
type DirectoryHandler interface {
	HandleListEmployees(c echo.Context) error
	HandleListDepartments(c echo.Context) error
	HandleUpdateDepartment(c echo.Context) error
	HandleListGroups(c echo.Context) error
	HandleListTemplates(c echo.Context) error
	HandleGetTemplate(c echo.Context) error
	HandleCreateTemplate(c echo.Context) error
	HandleUpdateTemplate(c echo.Context) error
	HandleSendWelcome(c echo.Context) error
}

// DashboardHandler serves aggregate stats and the audit log
type DashboardHandler interface {
	HandleDashboardStats(c echo.Context) error
	HandleAuditLogs(c echo.Context) error
	HandleAppendAuditLog(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
