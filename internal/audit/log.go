// Package audit keeps the append-only activity log for the onboarding
// pipeline.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onboard-hub/backend/internal/models"
)

// Log is an in-memory append-only audit log. Entries are never mutated
// or deleted once appended.
type Log struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
}

// NewLog creates an empty audit log.
func NewLog() *Log {
	return &Log{entries: make([]models.AuditEntry, 0)}
}

// Append records one event and returns the stored entry.
func (l *Log) Append(action string, actor models.Principal, status models.AuditStatus, details string) models.AuditEntry {
	entry := models.AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		UserID:    actor.ID,
		UserName:  actor.DisplayName,
		Details:   details,
		Timestamp: time.Now(),
		Status:    status,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return entry
}

// List returns entries in append order, newest last. A limit of 0
// returns everything.
func (l *Log) List(limit int) []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if limit > 0 && len(l.entries) > limit {
		start = len(l.entries) - limit
	}

	out := make([]models.AuditEntry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) []models.AuditEntry {
	tail := l.List(limit)
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}
	return tail
}

// Len returns the number of entries appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
