// Package usage owns the in-memory usage aggregate store: lifetime and
// windowed request/token counters with automatic period rollover.
package usage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
)

// Tracker is the single-writer usage aggregate store. All mutation goes
// through Record and Snapshot, serialized by one mutex so a reader never
// observes a half-applied reconcile-then-update sequence.
type Tracker struct {
	mu     sync.Mutex
	data   domusage.Snapshot
	now    func() time.Time
	events chan struct{}
	logger *zap.Logger
}

// NewTracker creates a tracker with window boundaries initialized from
// the current clock.
func NewTracker(logger *zap.Logger) *Tracker {
	t := &Tracker{
		now:    time.Now,
		events: make(chan struct{}, 1),
		logger: logger,
	}
	t.data = domusage.NewSnapshot(t.now().UTC())
	return t
}

// Events returns the change-notification channel. A value is available
// after each Record so the refresh loop can run ahead of its cadence.
// The channel is buffered; notifications coalesce rather than queue.
func (t *Tracker) Events() <-chan struct{} {
	return t.events
}

// Restore replaces tracker state with a previously persisted snapshot.
// Stale windows are not reset here; the next Record or Snapshot call
// reconciles them against the current clock.
func (t *Tracker) Restore(snap domusage.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Models == nil {
		snap.Models = make(map[string]domusage.ModelStats)
	}
	t.data = snap.Clone()
	t.logger.Info("Usage snapshot restored",
		zap.Int64("total_requests", snap.TotalRequests),
		zap.Int("models", len(snap.Models)),
	)
}

// Record registers one completed API call. Rollovers are applied first
// so the new counts land in the correct window, then every lifetime and
// periodic counter is incremented. The model entry is created lazily,
// zero-initialized, on first report. Inputs are trusted non-negative
// values extracted by the caller from the call's usage metadata.
func (t *Tracker) Record(model string, inputTokens, outputTokens, totalTokens int64) {
	t.mu.Lock()
	t.reconcile(t.now().UTC())

	t.data.TotalRequests++
	t.data.DailyRequests++
	t.data.WeeklyRequests++
	t.data.MonthlyRequests++

	stats, ok := t.data.Models[model]
	if !ok {
		stats = domusage.ModelStats{}
	}
	stats.AddTokens(inputTokens, outputTokens, totalTokens)
	t.data.Models[model] = stats
	t.mu.Unlock()

	t.notify()
}

// Snapshot reconciles rollovers against the current clock and returns a
// deep copy of the store. This is the only path that advances windows
// during long idle stretches with no calls.
func (t *Tracker) Snapshot() domusage.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reconcile(t.now().UTC())
	return t.data.Clone()
}

// ModelStats returns the stats for one model, reconciling first.
// The second return is false when the model has never been reported.
func (t *Tracker) ModelStats(model string) (domusage.ModelStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reconcile(t.now().UTC())
	stats, ok := t.data.Models[model]
	return stats, ok
}

// reconcile checks each window independently and resets the ones whose
// boundary has been crossed. All three may fire in one call; after a
// long gap each resets once to a boundary derived from now, with no
// intermediate catch-up steps. A call with no crossing is a no-op.
// Caller must hold mu.
func (t *Tracker) reconcile(now time.Time) {
	if !now.Before(t.data.LastResetDaily.Add(24 * time.Hour)) {
		t.resetPeriod(domusage.PeriodDaily, now)
	}
	if !now.Before(t.data.LastResetWeekly.Add(7 * 24 * time.Hour)) {
		t.resetPeriod(domusage.PeriodWeekly, now)
	}
	// Calendar comparison, not elapsed duration: months are 28-31 days.
	// Year is included so a 12-month gap still fires.
	last := t.data.LastResetMonthly
	if now.Month() != last.Month() || now.Year() != last.Year() {
		t.resetPeriod(domusage.PeriodMonthly, now)
	}
}

func (t *Tracker) resetPeriod(p domusage.Period, now time.Time) {
	start := domusage.PeriodStart(p, now)

	switch p {
	case domusage.PeriodDaily:
		t.data.LastResetDaily = start
		t.data.DailyRequests = 0
	case domusage.PeriodWeekly:
		t.data.LastResetWeekly = start
		t.data.WeeklyRequests = 0
	case domusage.PeriodMonthly:
		t.data.LastResetMonthly = start
		t.data.MonthlyRequests = 0
	}

	for name, stats := range t.data.Models {
		stats.ResetPeriod(p)
		t.data.Models[name] = stats
	}

	t.logger.Info("Usage window rolled over",
		zap.String("period", string(p)),
		zap.Time("window_start", start),
	)
}

// notify signals the refresh loop without blocking. If a notification
// is already pending the new one coalesces into it.
func (t *Tracker) notify() {
	select {
	case t.events <- struct{}{}:
	default:
	}
}
