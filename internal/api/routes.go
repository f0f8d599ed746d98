// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/directory"
	"github.com/onboard-hub/backend/internal/orchestrator"
	"github.com/onboard-hub/backend/internal/services"
	"github.com/onboard-hub/backend/internal/upload"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	UploadMgr    *upload.Manager
	Tracker      *batch.Tracker
	Employees    *directory.EmployeeStore
	Departments  *directory.Departments
	Templates    *directory.Templates
	Mailer       services.Mailer
	Auditor      *audit.Log
	Identity     identity
	Hub          *BatchHub
	Version      string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Upload    UploadHandler
	Batch     BatchHandler
	Directory DirectoryHandler
	Dashboard DashboardHandler
	Hub       *BatchHub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version),
		Upload:    NewUploadHandler(deps.Orchestrator, deps.UploadMgr, deps.Identity),
		Batch:     NewBatchHandler(deps.Tracker),
		Directory: NewDirectoryHandler(deps.Employees, deps.Departments, deps.Templates, deps.Mailer),
		Dashboard: NewDashboardHandler(deps.Tracker, deps.Employees, deps.Auditor, deps.Identity),
		Hub:       deps.Hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Upload session routes
	uploadGroup := e.Group("/api/uploads")
	uploadGroup.POST("", handlers.Upload.HandleUploadFile)
	uploadGroup.GET("/:sessionId", handlers.Upload.HandleGetSession)
	uploadGroup.GET("/:sessionId/progress", handlers.Upload.HandleProgressStream)
	uploadGroup.POST("/:sessionId/confirm", handlers.Upload.HandleConfirm)
	uploadGroup.POST("/:sessionId/reset", handlers.Upload.HandleResetSession)
	uploadGroup.DELETE("/:sessionId", handlers.Upload.HandleDeleteSession)

	// Batch tracking routes
	batchGroup := e.Group("/api/batches")
	batchGroup.GET("", handlers.Batch.HandleListBatches)
	batchGroup.GET("/:id", handlers.Batch.HandleGetBatch)
	batchGroup.GET("/:id/employees", handlers.Batch.HandleBatchEmployees)
	batchGroup.GET("/:id/employees/msgpack", handlers.Batch.HandleBatchEmployeesMsgpack)

	// Employee directory routes
	e.GET("/api/employees", handlers.Directory.HandleListEmployees)
	e.GET("/api/departments", handlers.Directory.HandleListDepartments)
	e.GET("/api/departments/groups", handlers.Directory.HandleListGroups)
	e.PUT("/api/departments/:id", handlers.Directory.HandleUpdateDepartment)

	// Email template routes
	templateGroup := e.Group("/api/templates")
	templateGroup.GET("", handlers.Directory.HandleListTemplates)
	templateGroup.POST("", handlers.Directory.HandleCreateTemplate)
	templateGroup.GET("/:id", handlers.Directory.HandleGetTemplate)
	templateGroup.PUT("/:id", handlers.Directory.HandleUpdateTemplate)
	templateGroup.POST("/send", handlers.Directory.HandleSendWelcome)

	// Dashboard and audit routes
	e.GET("/api/dashboard/stats", handlers.Dashboard.HandleDashboardStats)
	e.GET("/api/audit/logs", handlers.Dashboard.HandleAuditLogs)
	e.POST("/api/audit/log", handlers.Dashboard.HandleAppendAuditLog)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	if handlers.Hub != nil {
		e.GET("/api/ws/batches", handlers.Hub.HandleWebSocket)
	}
}
