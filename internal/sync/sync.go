// Package sync periodically exports the event log as JSONL to one or more
// backup destinations.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Destination is the interface for a sync target (S3 and similar).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic syncs to one or more destinations. It cursors on
// the event log head: a tick that finds no event past the last uploaded ID
// uploads nothing.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	// lastID is the head event ID of the last snapshot every destination
	// accepted. Only the run goroutine touches it.
	lastID int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		// -1 so the startup sync always runs, even against an empty log.
		lastID: -1,
	}
}

// Start begins periodic sync. It runs an initial sync immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Scheduler) syncOnce(ctx context.Context) {
	head, err := s.store.LastEvent(ctx, model.EventFilter{})
	if err != nil {
		s.logger.Error("sync head check failed", "err", err)
		return
	}
	var headID int64
	if head != nil {
		headID = head.ID
	}
	if headID == s.lastID {
		s.logger.Debug("sync skipped, log unchanged", "last_id", headID)
		return
	}

	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	data := buf.Bytes()

	allOK := true
	for i, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			allOK = false
			s.logger.Error("sync destination write failed", "destination", fmt.Sprintf("%d", i), "err", err)
		}
	}
	// Advance the cursor only when every destination took the snapshot, so
	// a failed write is retried on the next tick.
	if allOK {
		s.lastID = headID
	}

	s.logger.Info("sync completed", "destinations", len(s.destinations), "bytes", len(data), "last_id", headID)
}
