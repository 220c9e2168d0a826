package usage

import "time"

// ModelStats holds token counters for a single model. The unprefixed
// fields are lifetime totals and survive every rollover; the prefixed
// fields belong to their window and are zeroed when it rolls over.
type ModelStats struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`

	DailyInputTokens  int64 `json:"daily_input_tokens"`
	DailyOutputTokens int64 `json:"daily_output_tokens"`
	DailyTotalTokens  int64 `json:"daily_total_tokens"`

	WeeklyInputTokens  int64 `json:"weekly_input_tokens"`
	WeeklyOutputTokens int64 `json:"weekly_output_tokens"`
	WeeklyTotalTokens  int64 `json:"weekly_total_tokens"`

	MonthlyInputTokens  int64 `json:"monthly_input_tokens"`
	MonthlyOutputTokens int64 `json:"monthly_output_tokens"`
	MonthlyTotalTokens  int64 `json:"monthly_total_tokens"`
}

// AddTokens adds a report's token counts to the lifetime fields and to
// every window. Values are stored as reported; the model does not
// recompute total from input+output.
func (m *ModelStats) AddTokens(input, output, total int64) {
	m.InputTokens += input
	m.OutputTokens += output
	m.TotalTokens += total

	m.DailyInputTokens += input
	m.DailyOutputTokens += output
	m.DailyTotalTokens += total

	m.WeeklyInputTokens += input
	m.WeeklyOutputTokens += output
	m.WeeklyTotalTokens += total

	m.MonthlyInputTokens += input
	m.MonthlyOutputTokens += output
	m.MonthlyTotalTokens += total
}

// ResetPeriod zeroes the token fields of one window. Lifetime fields
// and the other windows are untouched.
func (m *ModelStats) ResetPeriod(p Period) {
	switch p {
	case PeriodDaily:
		m.DailyInputTokens = 0
		m.DailyOutputTokens = 0
		m.DailyTotalTokens = 0
	case PeriodWeekly:
		m.WeeklyInputTokens = 0
		m.WeeklyOutputTokens = 0
		m.WeeklyTotalTokens = 0
	case PeriodMonthly:
		m.MonthlyInputTokens = 0
		m.MonthlyOutputTokens = 0
		m.MonthlyTotalTokens = 0
	}
}

// Snapshot is the full state of the usage store at one instant.
// Consumers always receive a copy, never tracker-owned memory.
type Snapshot struct {
	TotalRequests   int64 `json:"total_requests"`
	DailyRequests   int64 `json:"daily_requests"`
	WeeklyRequests  int64 `json:"weekly_requests"`
	MonthlyRequests int64 `json:"monthly_requests"`

	LastResetDaily   time.Time `json:"last_reset_daily"`
	LastResetWeekly  time.Time `json:"last_reset_weekly"`
	LastResetMonthly time.Time `json:"last_reset_monthly"`

	Models map[string]ModelStats `json:"models"`
}

// NewSnapshot returns a zeroed snapshot with window boundaries
// initialized from now.
func NewSnapshot(now time.Time) Snapshot {
	return Snapshot{
		LastResetDaily:   PeriodStart(PeriodDaily, now),
		LastResetWeekly:  PeriodStart(PeriodWeekly, now),
		LastResetMonthly: PeriodStart(PeriodMonthly, now),
		Models:           make(map[string]ModelStats),
	}
}

// Clone returns a deep copy. The models map is re-allocated so the
// copy shares no mutable state with the original.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Models = make(map[string]ModelStats, len(s.Models))
	for name, stats := range s.Models {
		out.Models[name] = stats
	}
	return out
}
