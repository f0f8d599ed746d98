// Package orchestrator drives the onboarding pipeline: ingest the
// uploaded spreadsheet, extract candidate records, partition them into
// valid and invalid, and on confirmation hand the valid records to the
// execution service.
package orchestrator

import (
	"context"
	"fmt"
	"io"

	"github.com/onboard-hub/backend/internal/audit"
	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
	"github.com/onboard-hub/backend/internal/upload"
	"github.com/onboard-hub/backend/internal/validation"
)

// Watcher starts progress polling for a confirmed batch. Implemented by
// the poller.
type Watcher interface {
	Watch(batchID string)
}

// Orchestrator coordinates one upload session's journey through the
// pipeline stages.
type Orchestrator struct {
	uploads     *upload.Manager
	ingestor    services.Ingestor
	extractor   services.Extractor
	executor    services.Executor
	tracker     *batch.Tracker
	departments services.DepartmentSource
	watcher     Watcher
	auditor     *audit.Log
}

// New wires the pipeline stages together. watcher may be nil when no
// background polling is wanted (tests).
func New(
	uploads *upload.Manager,
	ingestor services.Ingestor,
	extractor services.Extractor,
	executor services.Executor,
	tracker *batch.Tracker,
	departments services.DepartmentSource,
	watcher Watcher,
	auditor *audit.Log,
) *Orchestrator {
	return &Orchestrator{
		uploads:     uploads,
		ingestor:    ingestor,
		extractor:   extractor,
		executor:    executor,
		tracker:     tracker,
		departments: departments,
		watcher:     watcher,
		auditor:     auditor,
	}
}

// Run processes an uploaded spreadsheet for the given session. The
// ingest stage runs synchronously while the request body is available;
// extraction and partitioning continue in the background. The returned
// session snapshot reflects the state after ingest.
func (o *Orchestrator) Run(ctx context.Context, sessionID, fileName string, size int64, r io.Reader, actor models.Principal) (*models.UploadSession, error) {
	gen, err := o.uploads.SelectFile(sessionID, fileName, size)
	if err != nil {
		o.auditor.Append("file_rejected", actor, models.AuditStatusWarning,
			fmt.Sprintf("session %s rejected %s: %v", sessionID, fileName, err))
		return nil, err
	}

	info, err := o.ingestor.Ingest(ctx, fileName, size, r)
	if err != nil {
		wrapped := services.NewIngestError(err)
		o.uploads.MarkError(sessionID, gen, wrapped.Error())
		o.auditor.Append("file_upload", actor, models.AuditStatusError,
			fmt.Sprintf("session %s failed to store %s: %v", sessionID, fileName, err))
		return nil, wrapped
	}

	if !o.uploads.MarkProcessing(sessionID, gen, info.ID) {
		// The session was reset mid-upload; the stored file stays
		// orphaned until the session cleanup sweep.
		return nil, upload.ErrSessionNotFound
	}

	o.auditor.Append("file_upload", actor, models.AuditStatusSuccess,
		fmt.Sprintf("session %s stored %s (%d bytes)", sessionID, fileName, size))

	sess, ok := o.uploads.Get(sessionID)
	if !ok {
		return nil, upload.ErrSessionNotFound
	}

	go o.validate(sessionID, gen, info.ID, actor)

	return sess, nil
}

// validate runs the extract and partition stages. Every outcome is
// tagged with the generation captured at upload time, so results for a
// session that has since been reset are dropped.
func (o *Orchestrator) validate(sessionID string, gen int, fileID string, actor models.Principal) {
	ctx := context.Background()

	records, err := o.extractor.Extract(ctx, fileID)
	if err != nil {
		o.uploads.MarkError(sessionID, gen, err.Error())
		o.auditor.Append("file_validation", actor, models.AuditStatusError,
			fmt.Sprintf("session %s extraction failed: %v", sessionID, err))
		return
	}
	if len(records) == 0 {
		err := services.NewValidationInputError(fmt.Errorf("file contains no employee rows"))
		o.uploads.MarkError(sessionID, gen, err.Error())
		o.auditor.Append("file_validation", actor, models.AuditStatusError,
			fmt.Sprintf("session %s: %v", sessionID, err))
		return
	}

	result := validation.Partition(records, o.departments.KnownDepartments())

	if !o.uploads.MarkValidated(sessionID, gen, &result) {
		fmt.Printf("[Orchestrator] Dropping stale validation result for session %s\n", sessionID[:8])
		return
	}

	o.auditor.Append("file_validation", actor, models.AuditStatusSuccess,
		fmt.Sprintf("session %s validated: %d valid, %d invalid of %d",
			sessionID, len(result.Valid), len(result.Invalid), result.Total()))
}

// Confirm submits the session's valid records to the execution service
// and registers the resulting batch with the tracker. The session's
// single-flight guard makes repeated confirmations of the same result
// impossible: concurrent calls get ErrConfirmPending, later calls
// ErrNotValidated.
func (o *Orchestrator) Confirm(ctx context.Context, sessionID string, actor models.Principal) (*models.Batch, error) {
	records, gen, err := o.uploads.BeginConfirm(sessionID)
	if err != nil {
		return nil, err
	}

	sess, ok := o.uploads.Get(sessionID)
	if !ok {
		return nil, upload.ErrSessionNotFound
	}

	b, err := o.executor.Execute(ctx, sess.FileName, records)
	if err != nil {
		wrapped := services.NewExecutionError(err)
		o.uploads.FailConfirm(sessionID, gen, wrapped.Error())
		o.auditor.Append("batch_confirm", actor, models.AuditStatusError,
			fmt.Sprintf("session %s submission failed: %v", sessionID, err))
		return nil, wrapped
	}

	tracked := o.tracker.Track(b, actor)
	o.uploads.CompleteConfirm(sessionID, gen, b.ID)

	if o.watcher != nil {
		o.watcher.Watch(b.ID)
	}

	o.auditor.Append("batch_confirm", actor, models.AuditStatusSuccess,
		fmt.Sprintf("session %s confirmed %d employees as batch %s", sessionID, len(records), b.ID))

	return tracked, nil
}
