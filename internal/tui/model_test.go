package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montysim/simdeploy/internal/model"
)

func deployPhases() []Phase {
	return []Phase{
		{ID: "inspect", Title: "Inspect stack"},
		{ID: "deploy", Title: "Deploy stack"},
		{ID: "smoke_check", Title: "Smoke check"},
	}
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func TestModelTracksPhaseCompletion(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	assert.Zero(t, m.CompletedPhases())

	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "inspect", Status: model.StatusRunning}})
	assert.Zero(t, m.CompletedPhases())

	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "inspect", Status: model.StatusSuccess, Message: "stack state: absent"}})
	assert.Equal(t, 1, m.CompletedPhases())

	// A repeated terminal update does not double-count.
	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "inspect", Status: model.StatusSuccess}})
	assert.Equal(t, 1, m.CompletedPhases())
}

func TestModelIgnoresEmptyPhaseID(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	m = apply(t, m, PhaseMsg{Result: model.StepResult{Status: model.StatusSuccess}})
	assert.Zero(t, m.CompletedPhases())
}

func TestModelAddsUnknownPhases(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "reclaim", Status: model.StatusSuccess}})
	assert.Equal(t, 1, m.CompletedPhases())
	assert.Contains(t, m.View(), "reclaim")
}

func TestModelFinishesOnDone(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	require.False(t, m.IsFinished())

	m = apply(t, m, DoneMsg{})
	assert.True(t, m.IsFinished())
}

func TestModelCancelsOnCtrlC(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, m.IsCancelled())
	assert.True(t, m.IsFinished())
}

func TestViewShowsRemediationChecklist(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "deploy", Status: model.StatusFailed, Message: "deployment blocked"}})
	m = apply(t, m, FailureMsg{
		Cause:       "repository 'monty' already exists",
		Remediation: []string{"delete ECR repository \"monty\""},
	})

	view := m.View()
	assert.Contains(t, view, "Manual intervention required")
	assert.Contains(t, view, "already exists")
	assert.Contains(t, view, "delete ECR repository")
}

func TestViewRendersStatuses(t *testing.T) {
	t.Parallel()

	m := NewModel("monty-sim", deployPhases())
	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "inspect", Status: model.StatusSuccess, Message: "stack state: healthy"}})
	m = apply(t, m, PhaseMsg{Result: model.StepResult{ID: "deploy", Status: model.StatusWarning, Message: "best effort"}})

	view := m.View()
	assert.Contains(t, view, "Inspect stack")
	assert.Contains(t, view, "stack state: healthy")
	assert.Contains(t, view, "best effort")
	assert.Contains(t, view, "2/3")
}
