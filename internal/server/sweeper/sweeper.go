// Package sweeper runs the periodic cleanup pass reconciling object
// storage and metadata: every interval it scans all rows and deletes the
// ones whose policy says they are no longer active.
package sweeper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/guardianbox/internal/logging"
	"github.com/dmitrijs2005/guardianbox/internal/server/lifecycle"
	"github.com/dmitrijs2005/guardianbox/internal/server/repositories/files"
)

// Reaper deletes a single object if it is no longer active, under the same
// per-id serialization the read path uses, and reports whether this call
// performed the deletion. Implemented by transfer.Service.
type Reaper interface {
	DeleteIfInactive(ctx context.Context, id string) (bool, error)
}

// Sweeper owns the background cleanup loop. Construct with New, then
// Start/Stop; the zero value is not usable.
type Sweeper struct {
	repo     files.Repository
	reaper   Reaper
	interval time.Duration
	logger   logging.Logger

	running atomic.Bool
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Sweeper scanning repo every interval.
func New(repo files.Repository, reaper Reaper, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		reaper:   reaper,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the loop. The first pass runs after one full interval.
// Stop (or cancelling ctx) terminates the loop; Start must not be called
// twice without an intervening Stop.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce executes a single cleanup pass. A pass that is still executing
// when the next invocation arrives is not run concurrently: the overlap
// is detected and the new invocation returns immediately.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn(ctx, "cleanup pass still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "cleanup scan failed", "error", err)
		return
	}

	now := s.now().Unix()
	var reaped int
	for _, obj := range rows {
		if ctx.Err() != nil {
			return
		}
		// cheap pre-filter on the snapshot; the reaper re-checks under
		// the per-id lock before actually deleting
		if lifecycle.Evaluate(obj, now) == lifecycle.Active {
			continue
		}
		done, err := s.reaper.DeleteIfInactive(ctx, obj.ID)
		if err != nil {
			// transient failures are retried on the next pass and must
			// not block cleanup of the remaining objects
			s.logger.Warn(ctx, "cleanup delete failed", "id", obj.ID, "error", err)
			continue
		}
		if done {
			reaped++
		}
	}

	if reaped > 0 {
		s.logger.Info(ctx, "cleanup pass finished", "deleted", reaped, "scanned", len(rows))
	}
}
