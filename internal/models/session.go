package models

// SessionStatus represents where an upload session sits in its state
// machine: idle → uploading → processing → validated → completed, with
// error reachable from uploading, processing and validated, and idle
// reachable from anywhere via explicit reset.
type SessionStatus string

const (
	SessionStatusIdle       SessionStatus = "idle"
	SessionStatusUploading  SessionStatus = "uploading"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusValidated  SessionStatus = "validated"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusError      SessionStatus = "error"
)

// Terminal reports whether the session will not advance on its own.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusError
}

// UploadSession is the externally visible snapshot of one file's journey
// through the pipeline. ErrorMessage is non-empty iff Status is error;
// FileID is set once ingestion has succeeded.
type UploadSession struct {
	ID           string            `json:"id"`
	FileName     string            `json:"fileName"`
	FileSize     int64             `json:"fileSize"`
	FileID       string            `json:"fileId,omitempty"`
	Status       SessionStatus     `json:"status"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Validation   *ValidationResult `json:"validation,omitempty"`
	BatchID      string            `json:"batchId,omitempty"`
}
