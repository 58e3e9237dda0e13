package model

import (
	"time"
)

const (
	// StatusPending indicates a phase has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a phase is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful phase.
	StatusSuccess = "success"
	// StatusSkipped indicates the phase was skipped by configuration.
	StatusSkipped = "skipped"
	// StatusWarning marks a best-effort phase that failed without aborting
	// the run.
	StatusWarning = "warning"
	// StatusFailed marks a fatal failure.
	StatusFailed = "failed"
)

// StepResult captures the outcome of one deployment phase.
type StepResult struct {
	ID        string
	Status    string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Terminal reports whether the status is a completed one.
func Terminal(status string) bool {
	switch status {
	case StatusSuccess, StatusSkipped, StatusWarning, StatusFailed:
		return true
	default:
		return false
	}
}
