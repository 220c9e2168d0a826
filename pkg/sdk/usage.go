package tokenmeter

import (
	"time"

	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
)

// Record reports one completed API call for the given model. Pass the
// token counts from the provider's usage metadata; calls that returned
// no usage metadata should not be recorded. Expired windows roll over
// before the new counts are applied.
func (c *Client) Record(model string, inputTokens, outputTokens, totalTokens int64) {
	start := time.Now()
	defer func() { c.obs.observe("record", start, nil) }()

	c.tracker.Record(model, inputTokens, outputTokens, totalTokens)
}

// Usage returns the current usage report. Windows whose boundary has
// passed since the last report are rolled over first, so the returned
// counters never include stale periods.
func (c *Client) Usage() UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	return toReport(c.tracker.Snapshot())
}

// Model returns the counters for a single model and whether it has
// been seen.
func (c *Client) Model(model string) (ModelUsage, bool) {
	start := time.Now()
	defer func() { c.obs.observe("model_usage", start, nil) }()

	stats, ok := c.tracker.ModelStats(model)
	if !ok {
		return ModelUsage{}, false
	}
	return toModelUsage(stats), true
}

func toReport(snap domusage.Snapshot) UsageReport {
	models := make(map[string]ModelUsage, len(snap.Models))
	for name, stats := range snap.Models {
		models[name] = toModelUsage(stats)
	}
	return UsageReport{
		TotalRequests:    snap.TotalRequests,
		DailyRequests:    snap.DailyRequests,
		WeeklyRequests:   snap.WeeklyRequests,
		MonthlyRequests:  snap.MonthlyRequests,
		LastResetDaily:   snap.LastResetDaily,
		LastResetWeekly:  snap.LastResetWeekly,
		LastResetMonthly: snap.LastResetMonthly,
		Models:           models,
	}
}

func toModelUsage(s domusage.ModelStats) ModelUsage {
	return ModelUsage{
		InputTokens:         s.InputTokens,
		OutputTokens:        s.OutputTokens,
		TotalTokens:         s.TotalTokens,
		DailyInputTokens:    s.DailyInputTokens,
		DailyOutputTokens:   s.DailyOutputTokens,
		DailyTotalTokens:    s.DailyTotalTokens,
		WeeklyInputTokens:   s.WeeklyInputTokens,
		WeeklyOutputTokens:  s.WeeklyOutputTokens,
		WeeklyTotalTokens:   s.WeeklyTotalTokens,
		MonthlyInputTokens:  s.MonthlyInputTokens,
		MonthlyOutputTokens: s.MonthlyOutputTokens,
		MonthlyTotalTokens:  s.MonthlyTotalTokens,
	}
}
