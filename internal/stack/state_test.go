package stack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want State
	}{
		{"empty status is unknown", "", StateUnknown},
		{"whitespace status is unknown", "  \n", StateUnknown},
		{"terminal rollback", "ROLLBACK_COMPLETE", StateRollbackComplete},
		{"rollback in progress", "ROLLBACK_IN_PROGRESS", StateFailed},
		{"update rollback complete", "UPDATE_ROLLBACK_COMPLETE", StateFailed},
		{"create failed", "CREATE_FAILED", StateFailed},
		{"delete failed", "DELETE_FAILED", StateFailed},
		{"create complete", "CREATE_COMPLETE", StateHealthy},
		{"update complete", "UPDATE_COMPLETE", StateHealthy},
		{"update in progress", "UPDATE_IN_PROGRESS", StateHealthy},
		{"trims whitespace", " CREATE_COMPLETE\n", StateHealthy},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ClassifyStatus(tt.raw))
		})
	}
}

func TestClassifyStatusIsStable(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ROLLBACK_COMPLETE", "CREATE_FAILED", "UPDATE_COMPLETE"} {
		first := ClassifyStatus(raw)
		for i := 0; i < 3; i++ {
			require.Equal(t, first, ClassifyStatus(raw))
		}
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "absent", StateAbsent.String())
	require.Equal(t, "healthy", StateHealthy.String())
	require.Equal(t, "rollback-complete", StateRollbackComplete.String())
	require.Equal(t, "failed", StateFailed.String())
	require.Equal(t, "unknown", StateUnknown.String())
}
