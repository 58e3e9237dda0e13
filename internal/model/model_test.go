package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStepResultFields(t *testing.T) {
	t.Parallel()

	now := time.Now()
	result := StepResult{
		ID:        "deploy_stack",
		Status:    StatusSuccess,
		Message:   "stack deployed",
		Duration:  2 * time.Second,
		Timestamp: now,
	}

	require.Equal(t, "deploy_stack", result.ID)
	require.Equal(t, StatusSuccess, result.Status)
	require.Equal(t, 2*time.Second, result.Duration)
	require.Equal(t, now, result.Timestamp)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		want   bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusSuccess, true},
		{StatusSkipped, true},
		{StatusWarning, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Terminal(tt.status))
		})
	}
}
