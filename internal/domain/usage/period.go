// Package usage defines the accounting model for generative-AI API
// usage: rolling daily/weekly/monthly windows plus lifetime totals.
package usage

import "time"

// Period is a rolling accounting window.
type Period string

// Accounting window constants.
const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Periods lists all windows in reset-check order.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}

// PeriodStart returns the UTC start instant of the window containing now.
// Weeks begin on Monday. An unknown period returns now unchanged.
func PeriodStart(p Period, now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		// Go weekdays index Sunday=0; shift so Monday=0.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return now
	}
}
