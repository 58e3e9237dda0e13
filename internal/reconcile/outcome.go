package reconcile

import (
	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/reclaim"
)

// FinalState is the terminal verdict of a reconciliation run.
type FinalState int

const (
	// Succeeded means the stack reached a deployed state.
	Succeeded FinalState = iota
	// FailedNeedsManualIntervention means the retry was spent and the
	// operator must follow the remediation checklist.
	FailedNeedsManualIntervention
)

func (s FinalState) String() string {
	if s == Succeeded {
		return "succeeded"
	}
	return "failed-needs-manual-intervention"
}

// Attempt records one deployment attempt. Immutable once recorded.
type Attempt struct {
	Succeeded bool
	RawOutput string
	ExitCode  int
}

func newAttempt(res cloud.DeployResult) Attempt {
	return Attempt{Succeeded: res.Succeeded(), RawOutput: res.Output, ExitCode: res.ExitCode}
}

// Outcome is the record of a full reconciliation run. The reconciler owns
// it exclusively for the duration of the run and never mutates it after
// returning.
type Outcome struct {
	FinalState FinalState
	Attempts   []Attempt
	PreDeleted bool
	Reclaimed  []reclaim.Result
}

// LastOutput returns the raw output of the most recent attempt.
func (o *Outcome) LastOutput() string {
	if len(o.Attempts) == 0 {
		return ""
	}
	return o.Attempts[len(o.Attempts)-1].RawOutput
}
