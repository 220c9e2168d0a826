package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
)

// Usage Prometheus metrics.
var (
	UsageReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenmeter",
			Name:      "usage_reports_total",
			Help:      "Total number of accepted usage reports",
		},
		[]string{"model"},
	)

	UsageRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tokenmeter",
			Name:      "usage_requests",
			Help:      "API request count per accounting window",
		},
		[]string{"period"},
	)

	UsageModelTokens = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tokenmeter",
			Name:      "usage_model_tokens",
			Help:      "Token consumption per model and accounting window",
		},
		[]string{"model", "period", "type"},
	)
)

var usageMetricsRegistered bool

// RegisterUsageMetrics registers Prometheus usage metrics. Must be called once from main.
func RegisterUsageMetrics() {
	if usageMetricsRegistered {
		return
	}
	prometheus.MustRegister(UsageReportsTotal)
	prometheus.MustRegister(UsageRequests)
	prometheus.MustRegister(UsageModelTokens)
	usageMetricsRegistered = true
}

// PublishUsage republishes a snapshot's counters as gauge values.
// Called on every refresh pass; gauges (not counters) because windowed
// values go down on rollover.
func PublishUsage(snap domusage.Snapshot) {
	UsageRequests.WithLabelValues("total").Set(float64(snap.TotalRequests))
	UsageRequests.WithLabelValues(string(domusage.PeriodDaily)).Set(float64(snap.DailyRequests))
	UsageRequests.WithLabelValues(string(domusage.PeriodWeekly)).Set(float64(snap.WeeklyRequests))
	UsageRequests.WithLabelValues(string(domusage.PeriodMonthly)).Set(float64(snap.MonthlyRequests))

	for model, stats := range snap.Models {
		publishModelTokens(model, "total", stats.InputTokens, stats.OutputTokens, stats.TotalTokens)
		publishModelTokens(model, string(domusage.PeriodDaily),
			stats.DailyInputTokens, stats.DailyOutputTokens, stats.DailyTotalTokens)
		publishModelTokens(model, string(domusage.PeriodWeekly),
			stats.WeeklyInputTokens, stats.WeeklyOutputTokens, stats.WeeklyTotalTokens)
		publishModelTokens(model, string(domusage.PeriodMonthly),
			stats.MonthlyInputTokens, stats.MonthlyOutputTokens, stats.MonthlyTotalTokens)
	}
}

func publishModelTokens(model, period string, input, output, total int64) {
	UsageModelTokens.WithLabelValues(model, period, "input").Set(float64(input))
	UsageModelTokens.WithLabelValues(model, period, "output").Set(float64(output))
	UsageModelTokens.WithLabelValues(model, period, "total").Set(float64(total))
}
