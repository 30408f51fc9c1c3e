// Package api defines the JSON payloads shared by the daemon's HTTP
// endpoints and the CLI client.
package api

import (
	"time"

	"autopost/internal/orchestrator"
	"autopost/internal/tracker"
)

// RunResult is the recorded outcome of the most recent run.
type RunResult struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// StatusResponse reports the publishing task state: whether a run is in
// flight, when the last one finished, when the next is scheduled, and
// how the last one ended.
type StatusResponse struct {
	Running          bool       `json:"running"`
	LastRun          *time.Time `json:"last_run,omitempty"`
	NextScheduledRun *time.Time `json:"next_scheduled_run,omitempty"`
	Result           *RunResult `json:"result,omitempty"`
}

// TriggerResponse reports the outcome of a manual run request.
type TriggerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RunRecord describes one historical run.
type RunRecord struct {
	ID         string     `json:"id"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	StatusCode *int       `json:"status_code,omitempty"`
	Summary    string     `json:"summary,omitempty"`
}

// RunsResponse wraps the run history listing.
type RunsResponse struct {
	Runs []RunRecord `json:"runs"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FromSnapshot converts an orchestrator snapshot into the transport shape.
func FromSnapshot(s orchestrator.Snapshot) StatusResponse {
	resp := StatusResponse{
		Running:          s.Running,
		LastRun:          s.LastRun,
		NextScheduledRun: s.NextRun,
	}
	if s.LastResult != nil {
		resp.Result = &RunResult{StatusCode: s.LastResult.Code, Body: s.LastResult.Body}
	}
	return resp
}

// FromTrackerRuns converts stored run history into the transport shape.
func FromTrackerRuns(runs []tracker.Run) []RunRecord {
	if len(runs) == 0 {
		return nil
	}
	out := make([]RunRecord, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunRecord{
			ID:         run.ID,
			Trigger:    run.Trigger,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			StatusCode: run.StatusCode,
			Summary:    run.Summary,
		})
	}
	return out
}
