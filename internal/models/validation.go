package models

// InvalidReason identifies why a candidate record failed validation.
type InvalidReason string

const (
	ReasonEmailFormat       InvalidReason = "email_format"
	ReasonDuplicateEmail    InvalidReason = "duplicate_email"
	ReasonUnknownDepartment InvalidReason = "unknown_department"
	ReasonBadStartDate      InvalidReason = "bad_start_date"
)

// InvalidEmployee pairs a rejected record with its reason codes.
type InvalidEmployee struct {
	Employee Employee        `json:"employee"`
	Reasons  []InvalidReason `json:"reasons"`
}

// ValidationResult is a stable two-way partition of the extracted record
// set. Every extracted record appears in exactly one of the two slices,
// in its original extraction order.
type ValidationResult struct {
	Valid   []Employee        `json:"valid"`
	Invalid []InvalidEmployee `json:"invalid"`
}

// Total returns the number of records on both sides of the partition.
func (r *ValidationResult) Total() int {
	return len(r.Valid) + len(r.Invalid)
}
