// Package poller keeps the batch tracker synchronized with the
// execution service by polling each in-flight batch until it reaches a
// terminal status.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onboard-hub/backend/internal/batch"
	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// Broadcaster pushes tracker snapshots to connected clients. Implemented
// by the websocket hub; a nil broadcaster disables pushes.
type Broadcaster interface {
	BroadcastBatch(b *models.Batch)
}

// Poller manages one polling goroutine per in-flight batch.
type Poller struct {
	executor services.Executor
	tracker  *batch.Tracker
	hub      Broadcaster
	interval time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates a poller refreshing the tracker at the given interval.
func New(executor services.Executor, tracker *batch.Tracker, hub Broadcaster, interval time.Duration) *Poller {
	return &Poller{
		executor: executor,
		tracker:  tracker,
		hub:      hub,
		interval: interval,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Watch starts polling a batch. Calling Watch twice for the same batch
// is a no-op; the first goroutine keeps running.
func (p *Poller) Watch(batchID string) {
	p.mu.Lock()
	if _, running := p.cancels[batchID]; running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancels[batchID] = cancel
	p.mu.Unlock()

	go p.loop(ctx, batchID)
}

// Stop cancels the polling goroutine for one batch, if any.
func (p *Poller) Stop(batchID string) {
	p.mu.Lock()
	cancel, ok := p.cancels[batchID]
	delete(p.cancels, batchID)
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

// StopAll cancels every polling goroutine. Used on shutdown.
func (p *Poller) StopAll() {
	p.mu.Lock()
	cancels := p.cancels
	p.cancels = make(map[string]context.CancelFunc)
	p.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (p *Poller) loop(ctx context.Context, batchID string) {
	defer p.Stop(batchID)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastProcessed, lastFailed int

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := p.refresh(ctx, batchID, &lastProcessed, &lastFailed)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) || errors.Is(err, batch.ErrNotFound) {
					fmt.Printf("[Poller] Batch %s gone, stopping\n", batchID)
					return
				}
				fmt.Printf("[Poller] Poll failed for %s: %v\n", batchID, err)
				continue
			}
			if done {
				return
			}
		}
	}
}

// refresh polls the execution service once and applies the counter
// deltas to the tracker. Returns true when the batch is terminal.
func (p *Poller) refresh(ctx context.Context, batchID string, lastProcessed, lastFailed *int) (bool, error) {
	remote, err := p.executor.PollBatch(ctx, batchID)
	if err != nil {
		return false, err
	}

	processedDelta := remote.ProcessedEmployees - *lastProcessed
	failedDelta := remote.FailedEmployees - *lastFailed

	snap, err := p.tracker.ApplyProgress(batchID, processedDelta, failedDelta)
	if err != nil {
		return false, err
	}
	*lastProcessed = remote.ProcessedEmployees
	*lastFailed = remote.FailedEmployees

	if remote.Status.Terminal() {
		if err := p.tracker.SyncEmployees(batchID, remote.Employees); err != nil {
			return false, err
		}
		snap, err = p.tracker.Get(batchID)
		if err != nil {
			return false, err
		}
	}

	if p.hub != nil {
		p.hub.BroadcastBatch(snap)
	}

	return remote.Status.Terminal(), nil
}
