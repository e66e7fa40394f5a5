package handlers

import (
	"net/http"

	"github.com/wonny/valuequant/backend/internal/scheduler"
)

// JobLister exposes scheduler statistics
type JobLister interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SchedulerHandler reports scheduled ranking jobs
type SchedulerHandler struct {
	scheduler JobLister
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(s JobLister) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// ListJobs returns per-job statistics
// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}
