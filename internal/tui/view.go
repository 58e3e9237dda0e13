package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/montysim/simdeploy/internal/model"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("simdeploy • "+m.title))

	ratio := 0.0
	if m.total > 0 {
		ratio = math.Min(1.0, float64(m.completed)/float64(m.total))
	}
	count := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", m.completed, m.total))
	sections = append(sections, sectionStyle.Render("Progress"),
		lipgloss.JoinHorizontal(lipgloss.Left, count, " ", m.bar.ViewAs(ratio)))

	sections = append(sections, sectionStyle.Render("Phases"), m.renderPhases())

	if m.failure != nil {
		sections = append(sections, sectionStyle.Render("Manual intervention required"), m.renderFailure())
	}

	if m.cancelled {
		sections = append(sections, failureStyle.Render("cancelled"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderPhases() string {
	var lines []string
	for _, id := range m.order {
		res := m.steps[id]
		line := fmt.Sprintf(" %s %s", m.statusIcon(res.Status), m.titles[id])
		if strings.TrimSpace(res.Message) != "" {
			line = fmt.Sprintf("%s: %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFailure() string {
	var lines []string
	if cause := strings.TrimSpace(m.failure.Cause); cause != "" {
		lines = append(lines, failureStyle.Render(cause))
	}
	for _, item := range m.failure.Remediation {
		lines = append(lines, "  • "+item)
	}
	return checklistStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) statusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render(m.spin.View())
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusWarning:
		return warningStyle.Render("!")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
