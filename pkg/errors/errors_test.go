package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorFormatting(t *testing.T) {
	t.Parallel()

	underlying := stderrors.New("unexpected node")

	withLine := NewParseError("deploy.yaml", 12, underlying)
	require.EqualError(t, withLine, "parse error: deploy.yaml:12: unexpected node")

	withoutLine := NewParseError("deploy.yaml", 0, underlying)
	require.EqualError(t, withoutLine, "parse error: deploy.yaml: unexpected node")

	require.ErrorIs(t, withLine, underlying)
}

func TestValidationErrorFormatting(t *testing.T) {
	t.Parallel()

	err := NewValidationError("stack.region", "must not be empty", nil)
	require.EqualError(t, err, "validation error: stack.region: must not be empty")

	noField := NewValidationError("", "configuration is nil", nil)
	require.EqualError(t, noField, "validation error: configuration is nil")
}

func TestCommandErrorIncludesOutput(t *testing.T) {
	t.Parallel()

	underlying := stderrors.New("exit status 254")
	err := NewCommandError("aws cloudformation describe-stacks", 254, "Stack with id MontySimStack does not exist\n", underlying)

	require.EqualError(t, err, `command "aws cloudformation describe-stacks" exited with code 254: Stack with id MontySimStack does not exist`)
	require.ErrorIs(t, err, underlying)

	var cmdErr *CommandError
	require.True(t, stderrors.As(err, &cmdErr))
	require.Equal(t, 254, cmdErr.ExitCode)
}

func TestCommandErrorWithoutOutput(t *testing.T) {
	t.Parallel()

	err := NewCommandError("kubectl apply", 1, "   ", nil)
	require.EqualError(t, err, `command "kubectl apply" exited with code 1`)
}

func TestReconcileErrorCarriesRemediation(t *testing.T) {
	t.Parallel()

	remediation := []string{
		"delete ECR repository monty",
		"delete S3 bucket sim-artifacts-dev",
	}
	underlying := fmt.Errorf("deployment failed after retry")
	err := NewReconcileError("MontySimStack", "monty already exists", remediation, underlying)

	require.EqualError(t, err, "reconciliation of stack MontySimStack failed: deployment failed after retry")

	var recErr *ReconcileError
	require.True(t, stderrors.As(err, &recErr))
	require.Equal(t, remediation, recErr.Remediation)
	require.Equal(t, "monty already exists", recErr.RawOutput)
}
