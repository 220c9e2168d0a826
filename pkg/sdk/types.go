package tokenmeter

import "time"

// ModelUsage holds per-model token counters across all windows.
type ModelUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64

	DailyInputTokens  int64
	DailyOutputTokens int64
	DailyTotalTokens  int64

	WeeklyInputTokens  int64
	WeeklyOutputTokens int64
	WeeklyTotalTokens  int64

	MonthlyInputTokens  int64
	MonthlyOutputTokens int64
	MonthlyTotalTokens  int64
}

// UsageReport is a point-in-time view of all usage counters.
type UsageReport struct {
	TotalRequests   int64
	DailyRequests   int64
	WeeklyRequests  int64
	MonthlyRequests int64

	LastResetDaily   time.Time
	LastResetWeekly  time.Time
	LastResetMonthly time.Time

	Models map[string]ModelUsage
}
