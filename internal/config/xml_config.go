// Package config provides XML-based configuration management for the
// onboarding backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"OnboardHub"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Processing configuration
	Processing ProcessingConfig `xml:"Processing"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Directory (departments, templates, employee DB) configuration
	Directory DirectoryConfig `xml:"Directory"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	MaxUploadSizeMB  int    `xml:"MaxUploadSizeMB"`
}

// ProcessingConfig contains pipeline and polling settings
type ProcessingConfig struct {
	AllowedFileTypes       string `xml:"AllowedFileTypes"`
	PollIntervalSeconds    int    `xml:"PollIntervalSeconds"`
	SessionTimeoutMinutes  int    `xml:"SessionTimeoutMinutes"`
	BatchRetentionMinutes  int    `xml:"BatchRetentionMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	RequireAuth bool   `xml:"RequireAuthentication"`
	AuthSecret  string `xml:"AuthSecret"`
}

// DirectoryConfig locates the employee directory and its reference data
type DirectoryConfig struct {
	DepartmentsFile string `xml:"DepartmentsFile"`
	TemplatesFile   string `xml:"TemplatesFile"`
	EmployeeDB      string `xml:"EmployeeDB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "12M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			MaxUploadSizeMB:  10,
		},
		Processing: ProcessingConfig{
			AllowedFileTypes:       ".xlsx,.xls,.csv",
			PollIntervalSeconds:    2,
			SessionTimeoutMinutes:  30,
			BatchRetentionMinutes:  60,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			RequireAuth: false,
			AuthSecret:  "",
		},
		Directory: DirectoryConfig{
			DepartmentsFile: "./data/departments.yaml",
			TemplatesFile:   "./data/templates.yaml",
			EmployeeDB:      "./data/employees.db",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Onboard Hub Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	// AUTH_SECRET override keeps the signing key out of the config file
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		c.Security.AuthSecret = secret
	}
	if v := os.Getenv("REQUIRE_AUTH"); v != "" {
		c.Security.RequireAuth = v == "1" || strings.EqualFold(v, "true")
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.UploadsDirectory)
	resolve(&c.Directory.DepartmentsFile)
	resolve(&c.Directory.TemplatesFile)
	resolve(&c.Directory.EmployeeDB)
}

// AllowedExtensions returns the configured spreadsheet extensions.
func (c *AppConfig) AllowedExtensions() []string {
	parts := strings.Split(c.Processing.AllowedFileTypes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaxUploadBytes returns the upload size ceiling in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadSizeMB) << 20
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
