package models

import "time"

// AuditStatus classifies an audit entry.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
	AuditStatusWarning AuditStatus = "warning"
)

// AuditEntry records one pipeline event: file accepted, validation
// completed, batch started, batch completed or failed. Entries are
// append-only and never mutated.
type AuditEntry struct {
	ID        string      `json:"id"`
	Action    string      `json:"action"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	Details   string      `json:"details"`
	Timestamp time.Time   `json:"timestamp"`
	Status    AuditStatus `json:"status"`
}
