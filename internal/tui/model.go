package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/montysim/simdeploy/internal/model"
)

// Phase describes one tracked deployment phase.
type Phase struct {
	ID    string
	Title string
}

// PhaseMsg carries a phase progress update.
type PhaseMsg struct {
	Result model.StepResult
}

// FailureMsg reports a terminal reconciliation failure with the manual
// remediation checklist.
type FailureMsg struct {
	Cause       string
	Remediation []string
}

// DoneMsg signals that the run has finished.
type DoneMsg struct{}

// Model contains the Bubbletea state for the deploy progress view.
type Model struct {
	title     string
	order     []string
	titles    map[string]string
	steps     map[string]model.StepResult
	spin      spinner.Model
	bar       progress.Model
	total     int
	completed int
	finished  bool
	cancelled bool
	failure   *FailureMsg
}

// NewModel constructs the progress view for the given phases.
func NewModel(title string, phases []Phase) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	m := Model{
		title:  title,
		titles: make(map[string]string, len(phases)),
		steps:  make(map[string]model.StepResult, len(phases)),
		spin:   spin,
		bar:    bar,
	}

	for _, phase := range phases {
		if _, exists := m.steps[phase.ID]; exists {
			continue
		}
		m.steps[phase.ID] = model.StepResult{ID: phase.ID, Status: model.StatusPending}
		m.titles[phase.ID] = phase.Title
		m.order = append(m.order, phase.ID)
		m.total++
	}

	return m
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// CompletedPhases returns the number of phases in a terminal status.
func (m Model) CompletedPhases() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// IsCancelled reports whether the operator interrupted the run.
func (m Model) IsCancelled() bool {
	return m.cancelled
}
