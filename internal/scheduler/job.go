package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds first
	// e.g. "0 30 16 * * 1-5" (weekdays 16:30), "@daily"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest N results, oldest first
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	n = min(n, len(h.Results))
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Summary counts outcomes and finds the latest success and failure
func (h *JobHistory) Summary() (succeeded, failed int, lastSuccess, lastFailure *time.Time) {
	for i := len(h.Results) - 1; i >= 0; i-- {
		r := h.Results[i]
		if r.Success {
			succeeded++
			if lastSuccess == nil {
				t := r.StartTime
				lastSuccess = &t
			}
			continue
		}
		failed++
		if lastFailure == nil {
			t := r.StartTime
			lastFailure = &t
		}
	}
	return succeeded, failed, lastSuccess, lastFailure
}

// SuccessRate returns succeeded / total (0 when the job never ran)
func (h *JobHistory) SuccessRate() float64 {
	succeeded, failed, _, _ := h.Summary()
	if succeeded+failed == 0 {
		return 0
	}
	return float64(succeeded) / float64(succeeded+failed)
}
