package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onboard-hub/backend/internal/api"
	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/auth"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/config"
	"github.com/onboard-hub/backend/internal/directory"
	"github.com/onboard-hub/backend/internal/executor"
	"github.com/onboard-hub/backend/internal/extract"
	"github.com/onboard-hub/backend/internal/orchestrator"
	"github.com/onboard-hub/backend/internal/poller"
	"github.com/onboard-hub/backend/internal/storage"
	"github.com/onboard-hub/backend/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Local secrets (AUTH_SECRET etc.) come from .env in development
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "onboardhub.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize spreadsheet storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize the employee directory
	employees, err := directory.NewEmployeeStore(cfg.Directory.EmployeeDB)
	if err != nil {
		fmt.Printf("Failed to open employee directory: %v\n", err)
		os.Exit(1)
	}
	defer employees.Close()

	departments, err := directory.LoadOrSeedDepartments(cfg.Directory.DepartmentsFile)
	if err != nil {
		fmt.Printf("Failed to load department registry: %v\n", err)
		os.Exit(1)
	}

	templates, err := directory.LoadTemplates(cfg.Directory.TemplatesFile)
	if err != nil {
		fmt.Printf("Failed to load email templates: %v\n", err)
		os.Exit(1)
	}

	// Pipeline services
	auditor := audit.NewLog()
	tracker := batch.NewTracker(auditor)
	uploadMgr := upload.NewManager(cfg.AllowedExtensions(), cfg.MaxUploadBytes())
	extractor := extract.NewCSVExtractor(fileStore)
	execService := executor.New(employees)
	hub := api.NewBatchHub()
	batchPoller := poller.New(execService, tracker, hub,
		time.Duration(cfg.Processing.PollIntervalSeconds)*time.Second)
	defer batchPoller.StopAll()

	verifier := auth.NewVerifier(cfg.Security.AuthSecret, cfg.Security.RequireAuth)

	orch := orchestrator.New(uploadMgr, fileStore, extractor, execService,
		tracker, departments, batchPoller, auditor)

	// Background cleanup of aged sessions and terminal batches
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			uploadMgr.CleanupOldSessions(time.Duration(cfg.Processing.SessionTimeoutMinutes) * time.Minute)
			execService.CleanupOldBatches(time.Duration(cfg.Processing.BatchRetentionMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Configure middleware
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/progress") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Accept") == "text/event-stream" ||
				strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	// Bearer-token identity
	e.Use(verifier.Middleware())

	// API routes
	handlers := api.NewHandlers(&api.Dependencies{
		Orchestrator: orch,
		UploadMgr:    uploadMgr,
		Tracker:      tracker,
		Employees:    employees,
		Departments:  departments,
		Templates:    templates,
		Mailer:       directory.LogMailer{},
		Auditor:      auditor,
		Identity:     verifier,
		Hub:          hub,
		Version:      Version,
	})
	api.RegisterRoutes(e, handlers)
	api.RegisterWebSocketRoutes(e, handlers)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	authMode := "optional"
	if cfg.Security.RequireAuth {
		authMode = "required"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Onboard Hub Server                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Auth:       %-45s║\n", authMode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
