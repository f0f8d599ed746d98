package models

import "time"

// BatchStatus represents the status of an onboarding batch.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// Batch is one confirmed submission of valid employee records to the
// execution service. TotalEmployees is fixed at creation; the two
// counters only ever grow and their sum never exceeds TotalEmployees.
type Batch struct {
	ID                 string      `json:"id"`
	FileName           string      `json:"fileName"`
	TotalEmployees     int         `json:"totalEmployees"`
	ProcessedEmployees int         `json:"processedEmployees"`
	FailedEmployees    int         `json:"failedEmployees"`
	Status             BatchStatus `json:"status"`
	CreatedAt          time.Time   `json:"createdAt"`
	CompletedAt        *time.Time  `json:"completedAt,omitempty"`
	Employees          []Employee  `json:"employees"`
}

// NewBatch creates a pending batch for the given submission.
func NewBatch(id, fileName string, employees []Employee) *Batch {
	return &Batch{
		ID:             id,
		FileName:       fileName,
		TotalEmployees: len(employees),
		Status:         BatchStatusPending,
		CreatedAt:      time.Now(),
		Employees:      employees,
	}
}

// Done reports whether every submitted record has been accounted for.
func (b *Batch) Done() bool {
	return b.ProcessedEmployees+b.FailedEmployees >= b.TotalEmployees
}

// Clone returns a deep copy safe to hand to callers while the original
// keeps mutating under its owner's lock.
func (b *Batch) Clone() *Batch {
	out := *b
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		out.CompletedAt = &t
	}
	out.Employees = make([]Employee, len(b.Employees))
	copy(out.Employees, b.Employees)
	return &out
}
