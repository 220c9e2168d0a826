// Package refresh drives the polling side of the usage store: a fixed
// cadence plus an immediate pass after every recorded call.
package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
	"github.com/kailas-cloud/tokenmeter/internal/metrics"
)

// Tracker is the refresher's view of the usage store.
type Tracker interface {
	Snapshot() domusage.Snapshot
	Events() <-chan struct{}
}

// SnapshotSaver persists a snapshot. Implementations must tolerate
// repeated saves of identical state.
type SnapshotSaver interface {
	Save(ctx context.Context, snap domusage.Snapshot) error
}

const saveTimeout = 2 * time.Second

// Refresher periodically reads the tracker, which rolls stale windows
// over even when no calls arrive, then republishes metrics and
// write-behinds the snapshot to storage.
type Refresher struct {
	tracker  Tracker
	saver    SnapshotSaver
	interval time.Duration
	logger   *zap.Logger
}

// New creates a refresher with the given poll interval.
func New(tracker Tracker, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		tracker:  tracker,
		interval: interval,
		logger:   logger,
	}
}

// WithStore attaches snapshot persistence.
func (r *Refresher) WithStore(saver SnapshotSaver) *Refresher {
	r.saver = saver
	return r
}

// Run blocks until ctx is canceled. One pass runs immediately, then on
// every tick and on every tracker change notification.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.tracker.Events():
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	snap := r.tracker.Snapshot()
	metrics.PublishUsage(snap)

	if r.saver == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := r.saver.Save(saveCtx, snap); err != nil {
		r.logger.Warn("Failed to persist usage snapshot", zap.Error(err))
	}
}
