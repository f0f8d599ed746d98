package models

import "time"

// EmployeeStatus represents the processing status of an employee record
// once it has been submitted for batch execution.
type EmployeeStatus string

const (
	EmployeeStatusPending    EmployeeStatus = "pending"
	EmployeeStatusProcessing EmployeeStatus = "processing"
	EmployeeStatusCompleted  EmployeeStatus = "completed"
	EmployeeStatusFailed     EmployeeStatus = "failed"
)

// Employee is a candidate employee record extracted from a spreadsheet.
// ID, Status and the timestamps are assigned by the execution service,
// never by the client side of the pipeline.
type Employee struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	Role       string         `json:"role"`
	Manager    string         `json:"manager,omitempty"`
	StartDate  string         `json:"startDate"` // MM/DD/YYYY
	Status     EmployeeStatus `json:"status,omitempty"`
	CreatedAt  *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
}
