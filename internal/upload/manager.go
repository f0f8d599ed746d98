// Package upload owns the per-file upload session state machine:
// idle → uploading → processing → validated → completed, with error
// reachable from the three middle states and idle reachable from
// anywhere via explicit reset.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onboard-hub/backend/internal/models"
)

// Lookup and transition errors.
var (
	ErrSessionNotFound = errors.New("upload session not found")
	ErrNotValidated    = errors.New("session is not in validated state")
	ErrConfirmPending  = errors.New("confirmation already in flight")
	ErrEmptySubmission = errors.New("no valid records to submit")
)

// UnsupportedFileError is the pre-flight rejection: the session never
// leaves idle when it is raised.
type UnsupportedFileError struct {
	Name   string
	Reason string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("unsupported file %q: %s", e.Name, e.Reason)
}

// state is the internal record for one session. The generation counter
// tags every async outcome; a reset bumps it so delayed results from
// the previous chain are recognized as stale and dropped.
type state struct {
	sess         *models.UploadSession
	generation   int
	confirming   bool
	createdAt    time.Time
	lastActivity time.Time
}

// Manager holds all live upload sessions. Sessions are independent of
// one another; all mutations go through the manager lock.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*state
	allowedExts map[string]struct{}
	maxFileSize int64
}

// NewManager creates a session manager enforcing the given pre-flight
// guard: recognized spreadsheet extensions and a size ceiling in bytes.
func NewManager(allowedExts []string, maxFileSize int64) *Manager {
	exts := make(map[string]struct{}, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Manager{
		sessions:    make(map[string]*state),
		allowedExts: exts,
		maxFileSize: maxFileSize,
	}
}

// Create registers a fresh idle session.
func (m *Manager) Create() *models.UploadSession {
	sess := &models.UploadSession{
		ID:     uuid.New().String(),
		Status: models.SessionStatusIdle,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = &state{
		sess:         sess,
		createdAt:    time.Now(),
		lastActivity: time.Now(),
	}
	m.mu.Unlock()

	return snapshot(sess)
}

// SelectFile runs the pre-flight guard and, if it passes, moves the
// session from idle to uploading. On guard failure the session stays in
// idle and an UnsupportedFileError is returned. The returned generation
// must tag every subsequent async transition for this chain.
func (m *Manager) SelectFile(sessionID, fileName string, size int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if st.sess.Status != models.SessionStatusIdle {
		return 0, fmt.Errorf("cannot select file in state %s", st.sess.Status)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := m.allowedExts[ext]; !ok {
		return 0, &UnsupportedFileError{Name: fileName, Reason: fmt.Sprintf("extension %q is not a recognized spreadsheet type", ext)}
	}
	if m.maxFileSize > 0 && size > m.maxFileSize {
		return 0, &UnsupportedFileError{Name: fileName, Reason: fmt.Sprintf("size %d exceeds the %d byte ceiling", size, m.maxFileSize)}
	}

	st.sess.Status = models.SessionStatusUploading
	st.sess.FileName = fileName
	st.sess.FileSize = size
	st.lastActivity = time.Now()
	return st.generation, nil
}

// MarkProcessing records a successful ingest: uploading → processing.
// Returns false if the result is stale or the session has moved on.
func (m *Manager) MarkProcessing(sessionID string, gen int, fileID string) bool {
	return m.transition(sessionID, gen, models.SessionStatusUploading, func(s *models.UploadSession) {
		s.Status = models.SessionStatusProcessing
		s.FileID = fileID
	})
}

// MarkValidated records a successful extract+partition: processing →
// validated, carrying the partition result.
func (m *Manager) MarkValidated(sessionID string, gen int, result *models.ValidationResult) bool {
	return m.transition(sessionID, gen, models.SessionStatusProcessing, func(s *models.UploadSession) {
		s.Status = models.SessionStatusValidated
		s.Validation = result
	})
}

// MarkError drives the session to the error state with a terminal
// message. Allowed from uploading, processing and validated; stale or
// out-of-sequence failures are discarded.
func (m *Manager) MarkError(sessionID string, gen int, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok || st.generation != gen {
		return false
	}
	switch st.sess.Status {
	case models.SessionStatusUploading, models.SessionStatusProcessing, models.SessionStatusValidated:
	default:
		return false
	}

	st.sess.Status = models.SessionStatusError
	st.sess.ErrorMessage = message
	st.sess.FileID = ""
	st.confirming = false
	st.lastActivity = time.Now()
	return true
}

// BeginConfirm claims the session for batch execution. It requires the
// validated state with at least one valid record and at most one
// confirmation in flight, so the same ValidationResult can never be
// submitted twice.
func (m *Manager) BeginConfirm(sessionID string) ([]models.Employee, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return nil, 0, ErrSessionNotFound
	}
	if st.sess.Status != models.SessionStatusValidated {
		return nil, 0, ErrNotValidated
	}
	if st.confirming {
		return nil, 0, ErrConfirmPending
	}
	if st.sess.Validation == nil || len(st.sess.Validation.Valid) == 0 {
		return nil, 0, ErrEmptySubmission
	}

	st.confirming = true
	st.lastActivity = time.Now()

	records := make([]models.Employee, len(st.sess.Validation.Valid))
	copy(records, st.sess.Validation.Valid)
	return records, st.generation, nil
}

// CompleteConfirm finishes a confirmation: validated → completed.
func (m *Manager) CompleteConfirm(sessionID string, gen int, batchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok || st.generation != gen || !st.confirming {
		return false
	}
	st.sess.Status = models.SessionStatusCompleted
	st.sess.BatchID = batchID
	st.confirming = false
	st.lastActivity = time.Now()
	return true
}

// FailConfirm aborts a confirmation, driving validated → error.
func (m *Manager) FailConfirm(sessionID string, gen int, message string) bool {
	m.mu.Lock()
	st, ok := m.sessions[sessionID]
	if ok && st.generation == gen {
		st.confirming = false
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	return m.MarkError(sessionID, gen, message)
}

// Reset returns the session to idle from any state, clearing the file
// handle, error and validation payload. The generation bump orphans any
// async chain still running for the previous file.
func (m *Manager) Reset(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	id := st.sess.ID
	st.sess = &models.UploadSession{ID: id, Status: models.SessionStatusIdle}
	st.generation++
	st.confirming = false
	st.lastActivity = time.Now()
	return nil
}

// Delete removes a session entirely.
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(sessionID string) (*models.UploadSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return snapshot(st.sess), true
}

// CleanupOldSessions removes terminal sessions idle for longer than
// maxAge. Called from a background ticker in main.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, st := range m.sessions {
		if !st.sess.Status.Terminal() && st.sess.Status != models.SessionStatusIdle {
			continue
		}
		if st.lastActivity.Before(cutoff) {
			delete(m.sessions, id)
			fmt.Printf("[UploadMgr] Cleaned up aged session %s\n", id[:8])
		}
	}
}

// transition applies fn when the session exists, the generation
// matches and the session is in the expected source state. Anything
// else means the result is stale and is dropped.
func (m *Manager) transition(sessionID string, gen int, from models.SessionStatus, fn func(*models.UploadSession)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok || st.generation != gen || st.sess.Status != from {
		return false
	}
	fn(st.sess)
	st.lastActivity = time.Now()
	return true
}

func snapshot(s *models.UploadSession) *models.UploadSession {
	out := *s
	if s.Validation != nil {
		v := *s.Validation
		out.Validation = &v
	}
	return &out
}
