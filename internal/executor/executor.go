// Package executor implements the batch execution service: it accepts
// confirmed employee records, creates them in the employee directory
// asynchronously and exposes authoritative batch state for polling.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// DirectoryWriter receives successfully created employees. Implemented
// by directory.EmployeeStore.
type DirectoryWriter interface {
	Insert(ctx context.Context, e models.Employee) error
}

// job wraps one executing batch with its own lock; the worker goroutine
// and pollers serialize on it.
type job struct {
	mu    sync.Mutex
	batch *models.Batch
}

// Service runs onboarding batches. Once accepted, a batch runs to
// completion or failure on its own terms; there is no cancellation.
type Service struct {
	mu        sync.RWMutex
	jobs      map[string]*job
	directory DirectoryWriter
}

// New creates an execution service writing into the given directory.
func New(directory DirectoryWriter) *Service {
	return &Service{
		jobs:      make(map[string]*job),
		directory: directory,
	}
}

// Execute accepts a submission and starts processing it in the
// background. The returned batch descriptor has TotalEmployees equal to
// the submission size and counters at zero.
func (s *Service) Execute(ctx context.Context, fileName string, employees []models.Employee) (*models.Batch, error) {
	if len(employees) == 0 {
		return nil, services.NewExecutionError(fmt.Errorf("no records submitted"))
	}
	if err := ctx.Err(); err != nil {
		return nil, services.NewExecutionError(err)
	}

	submitted := make([]models.Employee, len(employees))
	copy(submitted, employees)
	for i := range submitted {
		submitted[i].Status = models.EmployeeStatusPending
	}

	b := models.NewBatch(uuid.New().String(), fileName, submitted)

	j := &job{batch: b}
	s.mu.Lock()
	s.jobs[b.ID] = j
	s.mu.Unlock()

	go s.run(j)

	return b.Clone(), nil
}

// run processes the batch's records one by one. Detached from the
// submitting request's context: a confirmed batch is never cancelled.
func (s *Service) run(j *job) {
	j.mu.Lock()
	id := j.batch.ID
	total := j.batch.TotalEmployees
	j.batch.Status = models.BatchStatusProcessing
	j.mu.Unlock()

	fmt.Printf("[Executor %s] Starting batch: %d employees\n", id[:8], total)

	for i := 0; i < total; i++ {
		j.mu.Lock()
		record := j.batch.Employees[i]
		j.batch.Employees[i].Status = models.EmployeeStatusProcessing
		j.mu.Unlock()

		created, err := s.createEmployee(record)

		j.mu.Lock()
		if err != nil {
			j.batch.Employees[i].Status = models.EmployeeStatusFailed
			j.batch.FailedEmployees++
			fmt.Printf("[Executor %s] Record %d failed: %v\n", id[:8], i, err)
		} else {
			j.batch.Employees[i] = created
			j.batch.ProcessedEmployees++
		}
		j.mu.Unlock()
	}

	j.mu.Lock()
	if j.batch.FailedEmployees > 0 {
		j.batch.Status = models.BatchStatusFailed
	} else {
		j.batch.Status = models.BatchStatusCompleted
	}
	now := time.Now()
	j.batch.CompletedAt = &now
	fmt.Printf("[Executor %s] Batch done: %d processed, %d failed\n",
		id[:8], j.batch.ProcessedEmployees, j.batch.FailedEmployees)
	j.mu.Unlock()
}

// createEmployee writes one record into the directory, assigning its
// identifier and timestamps.
func (s *Service) createEmployee(record models.Employee) (models.Employee, error) {
	now := time.Now()
	record.ID = uuid.New().String()
	record.Status = models.EmployeeStatusCompleted
	record.CreatedAt = &now
	record.UpdatedAt = &now

	if err := s.directory.Insert(context.Background(), record); err != nil {
		return models.Employee{}, err
	}
	return record, nil
}

// PollBatch returns the authoritative state of a batch.
func (s *Service) PollBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	j, ok := s.jobs[batchID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", services.ErrNotFound, batchID)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.batch.Clone(), nil
}

// CleanupOldBatches drops terminal batches older than maxAge. The
// tracker keeps its own history, so the executor only needs recent
// state for polling.
func (s *Service) CleanupOldBatches(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, j := range s.jobs {
		j.mu.Lock()
		done := j.batch.Status.Terminal() && j.batch.CompletedAt != nil && j.batch.CompletedAt.Before(cutoff)
		j.mu.Unlock()
		if done {
			delete(s.jobs, id)
		}
	}
}
