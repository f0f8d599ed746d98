// Package batch tracks in-flight and historical onboarding batches for
// the client session. The execution service remains the source of
// truth; the tracker is a cache refreshed by polling.
package batch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/models"
)

// ErrNotFound is returned for lookups of unknown batch identifiers.
// This is a caller-handled condition, not a crash.
var ErrNotFound = errors.New("batch not found")

// entry wraps a tracked batch with its own lock so progress updates for
// different batches can proceed in parallel while updates to the same
// batch serialize.
type entry struct {
	mu    sync.Mutex
	batch *models.Batch
}

// Tracker owns the batch collection. Identifiers are never reused.
type Tracker struct {
	mu      sync.RWMutex
	batches map[string]*entry
	order   []string
	auditor *audit.Log
}

// NewTracker creates an empty tracker appending to the given audit log.
func NewTracker(auditor *audit.Log) *Tracker {
	return &Tracker{
		batches: make(map[string]*entry),
		auditor: auditor,
	}
}

// Track registers a batch acknowledged by the execution service. The
// total is fixed at registration; counters start from what the service
// already reported.
func (t *Tracker) Track(b *models.Batch, actor models.Principal) *models.Batch {
	t.mu.Lock()
	if _, exists := t.batches[b.ID]; exists {
		t.mu.Unlock()
		return t.snapshot(b.ID)
	}
	t.batches[b.ID] = &entry{batch: b.Clone()}
	t.order = append(t.order, b.ID)
	t.mu.Unlock()

	t.auditor.Append("batch_started", actor, models.AuditStatusSuccess,
		fmt.Sprintf("batch %s created from %s with %d employees", b.ID, b.FileName, b.TotalEmployees))

	return b.Clone()
}

// CreateBatch registers a fresh pending batch for a submission. Used
// when the execution service acknowledges without its own descriptor.
func (t *Tracker) CreateBatch(fileName string, submitted []models.Employee, id string, actor models.Principal) *models.Batch {
	return t.Track(models.NewBatch(id, fileName, submitted), actor)
}

// ApplyProgress applies monotone counter deltas to a batch and
// recomputes its status. Counters are clamped so their sum never
// exceeds the fixed total. Negative deltas are ignored.
func (t *Tracker) ApplyProgress(batchID string, processedDelta, failedDelta int) (*models.Batch, error) {
	t.mu.RLock()
	e, ok := t.batches[batchID]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, batchID)
	}

	e.mu.Lock()
	b := e.batch

	// Cap each delta by the remaining capacity so the counters stay
	// monotone and their sum never exceeds the fixed total.
	remaining := b.TotalEmployees - b.ProcessedEmployees - b.FailedEmployees
	if processedDelta < 0 {
		processedDelta = 0
	}
	if processedDelta > remaining {
		processedDelta = remaining
	}
	remaining -= processedDelta
	if failedDelta < 0 {
		failedDelta = 0
	}
	if failedDelta > remaining {
		failedDelta = remaining
	}
	b.ProcessedEmployees += processedDelta
	b.FailedEmployees += failedDelta

	prev := b.Status
	recomputeStatus(b)
	snap := b.Clone()
	e.mu.Unlock()

	if processedDelta > 0 || failedDelta > 0 {
		t.auditEvent(snap, prev, processedDelta, failedDelta)
	}

	return snap, nil
}

// SyncEmployees replaces the cached embedded record list with the
// authoritative outcome reported by the execution service.
func (t *Tracker) SyncEmployees(batchID string, employees []models.Employee) error {
	t.mu.RLock()
	e, ok := t.batches[batchID]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, batchID)
	}

	e.mu.Lock()
	e.batch.Employees = make([]models.Employee, len(employees))
	copy(e.batch.Employees, employees)
	e.mu.Unlock()
	return nil
}

// Get returns a snapshot of one batch.
func (t *Tracker) Get(batchID string) (*models.Batch, error) {
	t.mu.RLock()
	_, ok := t.batches[batchID]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, batchID)
	}
	return t.snapshot(batchID), nil
}

// List returns snapshots of all batches in creation order.
func (t *Tracker) List() []*models.Batch {
	t.mu.RLock()
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	t.mu.RUnlock()

	out := make([]*models.Batch, 0, len(ids))
	for _, id := range ids {
		if b := t.snapshot(id); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// ActiveCount returns the number of non-terminal batches.
func (t *Tracker) ActiveCount() int {
	n := 0
	for _, b := range t.List() {
		if !b.Status.Terminal() {
			n++
		}
	}
	return n
}

func (t *Tracker) snapshot(id string) *models.Batch {
	t.mu.RLock()
	e, ok := t.batches[id]
	t.mu.RUnlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batch.Clone()
}

// recomputeStatus derives the batch status from its counters. Any
// failure at completion marks the whole batch failed; partial progress
// is processing.
func recomputeStatus(b *models.Batch) {
	if b.Status.Terminal() {
		return
	}
	if b.Done() {
		if b.FailedEmployees > 0 {
			b.Status = models.BatchStatusFailed
		} else {
			b.Status = models.BatchStatusCompleted
		}
		now := time.Now()
		b.CompletedAt = &now
		return
	}
	if b.ProcessedEmployees+b.FailedEmployees > 0 {
		b.Status = models.BatchStatusProcessing
	}
}

func (t *Tracker) auditEvent(b *models.Batch, prev models.BatchStatus, processedDelta, failedDelta int) {
	details := fmt.Sprintf("batch %s progress +%d processed, +%d failed (%d/%d done)",
		b.ID, processedDelta, failedDelta, b.ProcessedEmployees+b.FailedEmployees, b.TotalEmployees)

	status := models.AuditStatusSuccess
	action := "batch_progress"
	if prev != b.Status && b.Status.Terminal() {
		if b.Status == models.BatchStatusFailed {
			action = "batch_failed"
			status = models.AuditStatusError
		} else {
			action = "batch_completed"
		}
	} else if failedDelta > 0 {
		status = models.AuditStatusWarning
	}

	t.auditor.Append(action, models.Anonymous, status, details)
}
