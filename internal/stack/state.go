// Package stack classifies raw control-plane status strings into the
// closed set of semantic states the reconciler branches on.
package stack

import "strings"

// State is the semantic classification of a stack's raw status.
type State int

const (
	// StateUnknown means the status was empty or unparseable; callers
	// proceed best-effort.
	StateUnknown State = iota
	// StateAbsent means the stack does not exist. Expected on a first
	// deployment.
	StateAbsent
	// StateHealthy means the stack can be updated in place.
	StateHealthy
	// StateRollbackComplete is the terminal rollback status. The stack
	// cannot be redeployed in place and must be deleted first.
	StateRollbackComplete
	// StateFailed covers every other failure or rollback status. Such a
	// stack may still be redeployable, so deployment proceeds with a
	// warning.
	StateFailed
)

// statusRollbackComplete is the one rollback status that blocks in-place
// redeployment.
const statusRollbackComplete = "ROLLBACK_COMPLETE"

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateHealthy:
		return "healthy"
	case StateRollbackComplete:
		return "rollback-complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps a raw status string to a State. The mapping is total:
// every input yields exactly one state, and equal inputs always yield the
// same state.
func ClassifyStatus(raw string) State {
	status := strings.TrimSpace(raw)
	if status == "" {
		return StateUnknown
	}
	if status == statusRollbackComplete {
		return StateRollbackComplete
	}
	if strings.Contains(status, "FAILED") || strings.Contains(status, "ROLLBACK") {
		return StateFailed
	}
	return StateHealthy
}
