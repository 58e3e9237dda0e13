package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/montysim/simdeploy/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PhaseMsg:
		id := msg.Result.ID
		if id == "" {
			return m, nil
		}
		m.ensurePhase(id)
		previous := m.steps[id]
		m.steps[id] = msg.Result
		if model.Terminal(msg.Result.Status) && !model.Terminal(previous.Status) {
			m.completed++
		}
		return m, nil
	case FailureMsg:
		failure := msg
		m.failure = &failure
		return m, nil
	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *Model) ensurePhase(id string) {
	if _, ok := m.steps[id]; ok {
		return
	}
	m.steps[id] = model.StepResult{ID: id, Status: model.StatusPending}
	m.titles[id] = id
	m.order = append(m.order, id)
	m.total++
}
