// Package services defines the boundary contracts the onboarding
// pipeline consumes. The orchestrator and HTTP handlers depend only on
// these interfaces so every collaborator can be swapped or mocked.
package services

import (
	"context"
	"io"

	"github.com/onboard-hub/backend/internal/models"
)

// Ingestor accepts a raw spreadsheet and returns a stored-file handle.
type Ingestor interface {
	Ingest(ctx context.Context, name string, size int64, r io.Reader) (*models.FileInfo, error)
}

// Extractor turns a stored-file handle into candidate employee records.
type Extractor interface {
	Extract(ctx context.Context, fileID string) ([]models.Employee, error)
}

// Executor is the batch execution service. It is the source of truth
// for batch state; the tracker only caches what PollBatch reports.
type Executor interface {
	Execute(ctx context.Context, fileName string, employees []models.Employee) (*models.Batch, error)
	PollBatch(ctx context.Context, batchID string) (*models.Batch, error)
}

// DepartmentSource supplies the configured department whitelist.
type DepartmentSource interface {
	ListDepartments() []models.Department
	KnownDepartments() map[string]struct{}
}

// Identity resolves the authenticated principal for a request context.
// The second return is false when the request is unauthenticated.
type Identity interface {
	CurrentPrincipal(ctx context.Context) (models.Principal, bool)
}

// Mailer delivers welcome emails. Delivery is owned by an external
// service; implementations here only hand the message off.
type Mailer interface {
	SendWelcome(ctx context.Context, employee models.Employee, template models.EmailTemplate) error
}
