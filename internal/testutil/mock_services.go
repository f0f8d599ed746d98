// mock_services.go - Mock pipeline collaborators for testing
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// MockIngestor implements services.Ingestor, keeping uploaded content
// in memory.
type MockIngestor struct {
	mu    sync.Mutex
	files map[string][]byte
	Err   error
}

func NewMockIngestor() *MockIngestor {
	return &MockIngestor{files: make(map[string][]byte)}
}

func (m *MockIngestor) Ingest(_ context.Context, name string, _ int64, r io.Reader) (*models.FileInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := generateTestID()
	m.files[id] = data
	return &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
	}, nil
}

// FileData returns the stored content for a file handle.
func (m *MockIngestor) FileData(id string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[id]
	return data, ok
}

// MockExtractor implements services.Extractor, returning a fixed record
// set regardless of the file handle.
type MockExtractor struct {
	mu      sync.Mutex
	Records []models.Employee
	Err     error
	calls   int
}

func (m *MockExtractor) Extract(context.Context, string) ([]models.Employee, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Employee, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

// Calls returns how many extractions were requested.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockExecutor implements services.Executor. Each Execute call creates
// a batch that is immediately terminal: all records processed unless
// FailRecords marks their email as failing.
type MockExecutor struct {
	mu          sync.Mutex
	batches     map[string]*models.Batch
	Err         error
	FailRecords map[string]bool

	// Submissions holds every record list handed to Execute, in order.
	Submissions [][]models.Employee
}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		batches:     make(map[string]*models.Batch),
		FailRecords: make(map[string]bool),
	}
}

func (m *MockExecutor) Execute(_ context.Context, fileName string, employees []models.Employee) (*models.Batch, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	submitted := make([]models.Employee, len(employees))
	copy(submitted, employees)
	m.Submissions = append(m.Submissions, submitted)

	b := models.NewBatch(generateTestID(), fileName, submitted)
	for i := range b.Employees {
		if m.FailRecords[b.Employees[i].Email] {
			b.Employees[i].Status = models.EmployeeStatusFailed
			b.FailedEmployees++
		} else {
			b.Employees[i].Status = models.EmployeeStatusCompleted
			b.ProcessedEmployees++
		}
	}
	if b.FailedEmployees > 0 {
		b.Status = models.BatchStatusFailed
	} else {
		b.Status = models.BatchStatusCompleted
	}
	now := time.Now()
	b.CompletedAt = &now

	m.batches[b.ID] = b
	return b.Clone(), nil
}

func (m *MockExecutor) PollBatch(_ context.Context, batchID string) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", services.ErrNotFound, batchID)
	}
	return b.Clone(), nil
}

// MockDepartments implements services.DepartmentSource over a fixed
// name list.
type MockDepartments struct {
	Names []string
}

func (m *MockDepartments) ListDepartments() []models.Department {
	out := make([]models.Department, len(m.Names))
	for i, n := range m.Names {
		out[i] = models.Department{ID: fmt.Sprintf("dept-%d", i), Name: n}
	}
	return out
}

func (m *MockDepartments) KnownDepartments() map[string]struct{} {
	out := make(map[string]struct{}, len(m.Names))
	for _, n := range m.Names {
		out[n] = struct{}{}
	}
	return out
}

// MockWatcher records which batches were handed to the poller.
type MockWatcher struct {
	mu      sync.Mutex
	watched []string
}

func (m *MockWatcher) Watch(batchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watched = append(m.watched, batchID)
}

func (m *MockWatcher) Watched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.watched))
	copy(out, m.watched)
	return out
}

// Interface conformance checks.
var (
	_ services.Ingestor         = (*MockIngestor)(nil)
	_ services.Extractor        = (*MockExtractor)(nil)
	_ services.Executor         = (*MockExecutor)(nil)
	_ services.DepartmentSource = (*MockDepartments)(nil)
)

// generateTestID generates a simple sequential test ID.
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
