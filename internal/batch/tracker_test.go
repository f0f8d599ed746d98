package batch

import (
	"errors"
	"sync"
	"testing"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/models"
)

func newTestTracker() (*Tracker, *audit.Log) {
	log := audit.NewLog()
	return NewTracker(log), log
}

func submitted(n int) []models.Employee {
	out := make([]models.Employee, n)
	for i := range out {
		out[i] = models.Employee{Name: "E", Email: "e@x.com"}
	}
	return out
}

func TestCreateBatch(t *testing.T) {
	tracker, log := newTestTracker()

	b := tracker.CreateBatch("roster.csv", submitted(5), "batch-1", models.Anonymous)

	if b.TotalEmployees != 5 {
		t.Errorf("total = %d, want 5", b.TotalEmployees)
	}
	if b.ProcessedEmployees != 0 || b.FailedEmployees != 0 {
		t.Errorf("counters should start at zero, got %d/%d", b.ProcessedEmployees, b.FailedEmployees)
	}
	if b.Status != models.BatchStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 audit entry after create, got %d", log.Len())
	}
}

func TestApplyProgressNotFound(t *testing.T) {
	tracker, _ := newTestTracker()

	_, err := tracker.ApplyProgress("nope", 1, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = tracker.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Get, got %v", err)
	}
}

func TestApplyProgressMonotoneAndClamped(t *testing.T) {
	tracker, _ := newTestTracker()
	tracker.CreateBatch("roster.csv", submitted(10), "batch-1", models.Anonymous)

	deltas := []struct{ p, f int }{
		{3, 0}, {0, 1}, {4, 0}, {-5, 0}, {10, 10}, {1, 1},
	}

	prevSum := 0
	for _, d := range deltas {
		b, err := tracker.ApplyProgress("batch-1", d.p, d.f)
		if err != nil {
			t.Fatalf("ApplyProgress: %v", err)
		}
		sum := b.ProcessedEmployees + b.FailedEmployees
		if sum > b.TotalEmployees {
			t.Errorf("counters exceed total: %d > %d", sum, b.TotalEmployees)
		}
		if sum < prevSum {
			t.Errorf("counters decreased: %d < %d", sum, prevSum)
		}
		prevSum = sum
	}
}

func TestStatusPolicy(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		processed  int
		failed     int
		wantStatus models.BatchStatus
		wantDoneAt bool
	}{
		{"untouched stays pending", 4, 0, 0, models.BatchStatusPending, false},
		{"partial progress is processing", 4, 2, 0, models.BatchStatusProcessing, false},
		{"all processed completes", 4, 4, 0, models.BatchStatusCompleted, true},
		{"any failure at completion fails the batch", 4, 3, 1, models.BatchStatusFailed, true},
		{"all failed fails the batch", 4, 0, 4, models.BatchStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTestTracker()
			tracker.CreateBatch("roster.csv", submitted(tt.total), "b", models.Anonymous)

			b, err := tracker.ApplyProgress("b", tt.processed, tt.failed)
			if err != nil {
				t.Fatalf("ApplyProgress: %v", err)
			}
			if b.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", b.Status, tt.wantStatus)
			}
			if (b.CompletedAt != nil) != tt.wantDoneAt {
				t.Errorf("completedAt set = %v, want %v", b.CompletedAt != nil, tt.wantDoneAt)
			}
		})
	}
}

func TestTerminalStatusSticks(t *testing.T) {
	tracker, _ := newTestTracker()
	tracker.CreateBatch("roster.csv", submitted(2), "b", models.Anonymous)

	tracker.ApplyProgress("b", 1, 1)
	b, _ := tracker.ApplyProgress("b", 5, 0)
	if b.Status != models.BatchStatusFailed {
		t.Errorf("terminal status changed to %s after further progress", b.Status)
	}
}

func TestListCreationOrder(t *testing.T) {
	tracker, _ := newTestTracker()
	tracker.CreateBatch("a.csv", submitted(1), "b1", models.Anonymous)
	tracker.CreateBatch("b.csv", submitted(1), "b2", models.Anonymous)
	tracker.CreateBatch("c.csv", submitted(1), "b3", models.Anonymous)

	list := tracker.List()
	want := []string{"b1", "b2", "b3"}
	if len(list) != len(want) {
		t.Fatalf("len = %d, want %d", len(list), len(want))
	}
	for i, b := range list {
		if b.ID != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, b.ID, want[i])
		}
	}
}

func TestConcurrentProgressSerializes(t *testing.T) {
	tracker, _ := newTestTracker()
	tracker.CreateBatch("roster.csv", submitted(100), "b", models.Anonymous)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.ApplyProgress("b", 1, 0)
		}()
	}
	wg.Wait()

	b, err := tracker.Get("b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.ProcessedEmployees != 100 {
		t.Errorf("processed = %d, want 100", b.ProcessedEmployees)
	}
	if b.Status != models.BatchStatusCompleted {
		t.Errorf("status = %s, want completed", b.Status)
	}
}

func TestAuditPerMutation(t *testing.T) {
	tracker, log := newTestTracker()
	tracker.CreateBatch("roster.csv", submitted(3), "b", models.Anonymous)

	before := log.Len()
	tracker.ApplyProgress("b", 1, 0)
	tracker.ApplyProgress("b", 1, 0)
	tracker.ApplyProgress("b", 0, 1)
	if got := log.Len() - before; got != 3 {
		t.Errorf("expected 3 audit entries for 3 mutations, got %d", got)
	}

	entries := log.Recent(1)
	if entries[0].Action != "batch_failed" {
		t.Errorf("last action = %s, want batch_failed", entries[0].Action)
	}
}
