// Package reconcile drives the target stack from unknown or partially
// failed state to deployed. The flow is a bounded state machine: inspect,
// optional pre-delete, deploy, and at most one reclaim-and-retry cycle.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/model"
	"github.com/montysim/simdeploy/internal/reclaim"
	"github.com/montysim/simdeploy/internal/stack"
	simerrors "github.com/montysim/simdeploy/pkg/errors"
)

// Phase identifiers reported to the progress view.
const (
	PhaseInspect     = "inspect"
	PhasePreDelete   = "pre_delete"
	PhaseDeploy      = "deploy"
	PhaseReclaim     = "reclaim"
	PhaseRetryDeploy = "retry_deploy"
)

const (
	defaultDeleteTimeout = 30 * time.Minute
	defaultSettleDelay   = 30 * time.Second
)

// ControlPlane is the slice of the cloud contract the reconciler drives.
type ControlPlane interface {
	DeleteStack(ctx context.Context, id cloud.StackIdentity) error
	WaitForStackDeletion(ctx context.Context, id cloud.StackIdentity, timeout time.Duration) error
	DeployStack(ctx context.Context, id cloud.StackIdentity) cloud.DeployResult
}

// StateInspector classifies the current stack state.
type StateInspector interface {
	Inspect(ctx context.Context, id cloud.StackIdentity) (stack.State, error)
}

// ResourceReclaimer deletes the fixed blocking-resource list.
type ResourceReclaimer interface {
	Reclaim(ctx context.Context, resources []reclaim.Resource) []reclaim.Result
}

// Reconciler is the top-level state machine. Callers must not run two
// reconciliations concurrently against the same stack identity; execution
// is strictly sequential and nothing here locks.
type Reconciler struct {
	Identity  cloud.StackIdentity
	Cloud     ControlPlane
	Inspector StateInspector
	Reclaimer ResourceReclaimer
	Resources []reclaim.Resource
	Log       *logger.Logger

	// DeleteTimeout bounds the blocking wait after a stack deletion.
	DeleteTimeout time.Duration
	// SettleDelay sleeps between reclaim and retry so control-plane
	// eventual-consistency windows can close.
	SettleDelay time.Duration
	// Notify, when set, receives phase progress for the TUI.
	Notify func(model.StepResult)
}

// Run executes the reconciliation state machine. On terminal failure the
// returned error is a *errors.ReconcileError carrying the last attempt's
// raw output and the manual remediation checklist; the Outcome is always
// returned for reporting.
func (r *Reconciler) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}

	r.start(PhaseInspect, "inspecting stack "+r.Identity.String())
	state, err := r.Inspector.Inspect(ctx, r.Identity)
	if err != nil {
		// The status query itself failed. Proceed best-effort, as for an
		// unparseable status: the deployment attempt will surface any
		// real problem with full output attached.
		r.Log.Error(err, "stack status query failed, proceeding best-effort")
		state = stack.StateUnknown
	}
	r.finish(PhaseInspect, model.StatusSuccess, "stack state: "+state.String())

	switch state {
	case stack.StateRollbackComplete:
		// A rollback-complete stack cannot be redeployed in place.
		if err := r.preDelete(ctx, outcome); err != nil {
			return r.fail(outcome, "", err)
		}
	case stack.StateFailed:
		r.Log.Warnf("stack %s is in a failed state; attempting deployment anyway", r.Identity.Name)
	case stack.StateUnknown:
		r.Log.Warn("stack state unknown; attempting deployment best-effort")
	}

	r.start(PhaseDeploy, "deploying stack "+r.Identity.Name)
	attempt := newAttempt(r.Cloud.DeployStack(ctx, r.Identity))
	outcome.Attempts = append(outcome.Attempts, attempt)

	if attempt.Succeeded {
		r.finish(PhaseDeploy, model.StatusSuccess, "stack deployed")
		outcome.FinalState = Succeeded
		return outcome, nil
	}

	classification := stack.ClassifyFailure(attempt.RawOutput)
	r.Log.WithFields(map[string]any{
		"exit_code":      attempt.ExitCode,
		"classification": classification.String(),
	}).Warn("deployment attempt failed")

	if classification != stack.ResourceConflict {
		r.finish(PhaseDeploy, model.StatusFailed, "deployment failed: "+classification.String())
		return r.fail(outcome, attempt.RawOutput, fmt.Errorf("deployment failed and the failure is not a resource conflict"))
	}
	r.finish(PhaseDeploy, model.StatusFailed, "deployment blocked by pre-existing resources")

	// Conflict path: if the failed attempt left the stack in a failed or
	// rollback state it must be deleted before resources are reclaimed.
	if err := r.deleteIfWrecked(ctx, outcome); err != nil {
		return r.fail(outcome, attempt.RawOutput, err)
	}

	r.start(PhaseReclaim, "reclaiming blocking resources")
	outcome.Reclaimed = r.Reclaimer.Reclaim(ctx, r.Resources)
	if reclaim.DeletedAny(outcome.Reclaimed) {
		r.finish(PhaseReclaim, model.StatusSuccess, "blocking resources reclaimed")
	} else {
		// Reclamation removed nothing; the retry is still attempted since
		// per-resource outcomes are best-effort.
		r.finish(PhaseReclaim, model.StatusWarning, "no blocking resources were removed")
	}

	if err := r.settle(ctx); err != nil {
		return r.fail(outcome, attempt.RawOutput, err)
	}

	r.start(PhaseRetryDeploy, "retrying deployment")
	retry := newAttempt(r.Cloud.DeployStack(ctx, r.Identity))
	outcome.Attempts = append(outcome.Attempts, retry)

	if retry.Succeeded {
		r.finish(PhaseRetryDeploy, model.StatusSuccess, "stack deployed on retry")
		outcome.FinalState = Succeeded
		return outcome, nil
	}

	// Exactly one retry: any failure here is terminal regardless of its
	// classification, to bound cost and avoid destructive loops.
	r.finish(PhaseRetryDeploy, model.StatusFailed, "retry deployment failed")
	return r.fail(outcome, retry.RawOutput, fmt.Errorf("deployment failed again after reclaiming resources"))
}

func (r *Reconciler) preDelete(ctx context.Context, outcome *Outcome) error {
	r.start(PhasePreDelete, "deleting rolled-back stack before redeployment")

	if err := r.Cloud.DeleteStack(ctx, r.Identity); err != nil {
		r.finish(PhasePreDelete, model.StatusFailed, "stack deletion request failed")
		return err
	}
	// A deploy issued against a stack mid-deletion fails, so block until
	// deletion is confirmed.
	if err := r.Cloud.WaitForStackDeletion(ctx, r.Identity, r.deleteTimeout()); err != nil {
		r.finish(PhasePreDelete, model.StatusFailed, "stack deletion did not complete")
		return err
	}

	outcome.PreDeleted = true
	r.finish(PhasePreDelete, model.StatusSuccess, "stack deleted")
	return nil
}

func (r *Reconciler) deleteIfWrecked(ctx context.Context, outcome *Outcome) error {
	state, err := r.Inspector.Inspect(ctx, r.Identity)
	if err != nil {
		r.Log.Error(err, "re-inspection failed; skipping stack deletion before reclaim")
		return nil
	}

	if state != stack.StateFailed && state != stack.StateRollbackComplete {
		return nil
	}

	r.Log.Infof("stack is %s after failed attempt, deleting before reclaim", state)
	return r.preDelete(ctx, outcome)
}

func (r *Reconciler) settle(ctx context.Context) error {
	delay := r.SettleDelay
	if delay <= 0 {
		delay = defaultSettleDelay
	}
	r.Log.Infof("waiting %s for the control plane to settle", delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (r *Reconciler) fail(outcome *Outcome, rawOutput string, cause error) (*Outcome, error) {
	outcome.FinalState = FailedNeedsManualIntervention
	if rawOutput == "" {
		rawOutput = outcome.LastOutput()
	}
	if rawOutput == "" && cause != nil {
		rawOutput = cause.Error()
	}

	err := simerrors.NewReconcileError(r.Identity.Name, rawOutput, reclaim.RemediationChecklist(r.Resources), cause)
	r.Log.Error(cause, "reconciliation is terminal; manual intervention required")
	return outcome, err
}

func (r *Reconciler) deleteTimeout() time.Duration {
	if r.DeleteTimeout > 0 {
		return r.DeleteTimeout
	}
	return defaultDeleteTimeout
}

func (r *Reconciler) start(id, msg string) {
	r.Log.Info(msg)
	r.notify(model.StepResult{ID: id, Status: model.StatusRunning, Message: msg, Timestamp: time.Now()})
}

func (r *Reconciler) finish(id, status, msg string) {
	r.notify(model.StepResult{ID: id, Status: status, Message: msg, Timestamp: time.Now()})
}

func (r *Reconciler) notify(res model.StepResult) {
	if r.Notify != nil {
		r.Notify(res)
	}
}
