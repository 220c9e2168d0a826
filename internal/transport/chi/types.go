package chi

import "time"

// ErrorCode identifies a machine-readable error class.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeModelNotFound    ErrorCode = "model_not_found"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecordRequest is the usage report submitted after a completed
// generative-AI API call. Pointer fields distinguish absent values
// from explicit zeros: a call whose response carried no usage metadata
// must not be reported at all, so an absent field is rejected.
type RecordRequest struct {
	Model        string `json:"model"`
	InputTokens  *int64 `json:"input_tokens"`
	OutputTokens *int64 `json:"output_tokens"`
	TotalTokens  *int64 `json:"total_tokens"`
}

// HealthResponse is the health report envelope.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ModelUsageResponse wraps one model's stats with its identifier and
// the window boundaries of the snapshot it came from.
type ModelUsageResponse struct {
	Model            string    `json:"model"`
	LastResetDaily   time.Time `json:"last_reset_daily"`
	LastResetWeekly  time.Time `json:"last_reset_weekly"`
	LastResetMonthly time.Time `json:"last_reset_monthly"`

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
