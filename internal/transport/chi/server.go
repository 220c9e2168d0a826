// Package chi implements the HTTP API: inbound usage records and
// aggregated snapshot views.
package chi

import (
	"encoding/json"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
	"github.com/kailas-cloud/tokenmeter/internal/metrics"
	healthuc "github.com/kailas-cloud/tokenmeter/internal/usecase/health"
	usageuc "github.com/kailas-cloud/tokenmeter/internal/usecase/usage"
)

// Server exposes the usage store over HTTP.
type Server struct {
	tracker *usageuc.Tracker
	health  *healthuc.Service
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(tracker *usageuc.Tracker, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		tracker: tracker,
		health:  health,
		logger:  logger,
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/usage", func(r chirouter.Router) {
		r.Get("/", s.GetUsage)
		r.Post("/records", s.RecordUsage)
		r.Get("/models/{model}", s.GetModelUsage)
	})
}

// RecordUsage handles POST /api/v1/usage/records.
func (s *Server) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Model == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "model is required")
		return
	}
	if req.InputTokens == nil || req.OutputTokens == nil || req.TotalTokens == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			"input_tokens, output_tokens and total_tokens are required")
		return
	}
	if *req.InputTokens < 0 || *req.OutputTokens < 0 || *req.TotalTokens < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "token counts must be non-negative")
		return
	}

	s.tracker.Record(req.Model, *req.InputTokens, *req.OutputTokens, *req.TotalTokens)
	metrics.UsageReportsTotal.WithLabelValues(req.Model).Inc()

	w.WriteHeader(http.StatusAccepted)
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

// GetModelUsage handles GET /api/v1/usage/models/{model}.
func (s *Server) GetModelUsage(w http.ResponseWriter, r *http.Request) {
	model := chirouter.URLParam(r, "model")

	snap := s.tracker.Snapshot()
	stats, ok := snap.Models[model]
	if !ok {
		writeError(w, http.StatusNotFound, ErrorCodeModelNotFound, "no usage recorded for model")
		return
	}

	writeJSON(w, http.StatusOK, modelUsageResponse(model, snap, stats))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func modelUsageResponse(model string, snap domusage.Snapshot, stats domusage.ModelStats) ModelUsageResponse {
	return ModelUsageResponse{
		Model:            model,
		LastResetDaily:   snap.LastResetDaily,
		LastResetWeekly:  snap.LastResetWeekly,
		LastResetMonthly: snap.LastResetMonthly,

		InputTokens:  stats.InputTokens,
		OutputTokens: stats.OutputTokens,
		TotalTokens:  stats.TotalTokens,

		DailyInputTokens:  stats.DailyInputTokens,
		DailyOutputTokens: stats.DailyOutputTokens,
		DailyTotalTokens:  stats.DailyTotalTokens,

		WeeklyInputTokens:  stats.WeeklyInputTokens,
		WeeklyOutputTokens: stats.WeeklyOutputTokens,
		WeeklyTotalTokens:  stats.WeeklyTotalTokens,

		MonthlyInputTokens:  stats.MonthlyInputTokens,
		MonthlyOutputTokens: stats.MonthlyOutputTokens,
		MonthlyTotalTokens:  stats.MonthlyTotalTokens,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
