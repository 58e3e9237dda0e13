package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montysim/simdeploy/internal/shellexec"
	simerrors "github.com/montysim/simdeploy/pkg/errors"
)

// scriptedRunner answers each command through a single respond function and
// records every invocation in order.
type scriptedRunner struct {
	calls   []shellexec.Command
	respond func(cmd shellexec.Command) (shellexec.Result, error)
}

func (r *scriptedRunner) Run(_ context.Context, cmd shellexec.Command) (shellexec.Result, error) {
	r.calls = append(r.calls, cmd)
	if r.respond == nil {
		return shellexec.Result{}, nil
	}
	return r.respond(cmd)
}

func failure(cmd shellexec.Command, code int, output string) (shellexec.Result, error) {
	res := shellexec.Result{Stderr: output, ExitCode: code}
	return res, simerrors.NewCommandError(cmd.Display(), code, output, nil)
}

func testIdentity() StackIdentity {
	return StackIdentity{Name: "MontySimStack", Region: "us-east-1"}
}

func TestDescribeStackStatusTrimsOutput(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "UPDATE_COMPLETE\n"}, nil
	}}
	cli := NewCLI(runner, nil, "")

	status, err := cli.DescribeStackStatus(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.Equal(t, "UPDATE_COMPLETE", status)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "aws", runner.calls[0].Name)
	assert.Contains(t, runner.calls[0].Args, "describe-stacks")
	assert.Contains(t, runner.calls[0].Args, "us-east-1")
}

func TestDescribeStackStatusMapsAbsence(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return failure(cmd, 254, "An error occurred (ValidationError): Stack with id MontySimStack does not exist")
	}}
	cli := NewCLI(runner, nil, "")

	_, err := cli.DescribeStackStatus(context.Background(), testIdentity())
	require.ErrorIs(t, err, ErrStackNotFound)
}

func TestWaitForStackDeletionPollsUntilGone(t *testing.T) {
	t.Parallel()

	describes := 0
	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		describes++
		if describes < 3 {
			return shellexec.Result{Stdout: "DELETE_IN_PROGRESS"}, nil
		}
		return failure(cmd, 254, "Stack with id MontySimStack does not exist")
	}}
	cli := NewCLI(runner, nil, "")
	cli.PollInterval = time.Millisecond

	err := cli.WaitForStackDeletion(context.Background(), testIdentity(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, describes)
}

func TestWaitForStackDeletionTimesOut(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "DELETE_IN_PROGRESS"}, nil
	}}
	cli := NewCLI(runner, nil, "")
	cli.PollInterval = time.Millisecond

	err := cli.WaitForStackDeletion(context.Background(), testIdentity(), 0)
	require.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitForStackDeletionReportsExplicitFailure(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "DELETE_FAILED"}, nil
	}}
	cli := NewCLI(runner, nil, "")
	cli.PollInterval = time.Millisecond

	err := cli.WaitForStackDeletion(context.Background(), testIdentity(), time.Second)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrWaitTimeout)
	assert.Contains(t, err.Error(), "DELETE_FAILED")
}

func TestDeployStackRunsDeployCommand(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "MontySimStack: deploying..."}, nil
	}}
	cli := NewCLI(runner, nil, "infra")

	result := cli.DeployStack(context.Background(), testIdentity())
	require.True(t, result.Succeeded())
	assert.Contains(t, result.Output, "deploying")

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "npx", call.Name)
	assert.Equal(t, []string{"cdk", "deploy", "--require-approval", "never", "MontySimStack"}, call.Args)
	assert.Equal(t, "infra", call.Dir)
	assert.Equal(t, "us-east-1", call.Env["AWS_DEFAULT_REGION"])
}

func TestDeployStackCapturesFailureOutput(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return failure(cmd, 1, "monty already exists in stack")
	}}
	cli := NewCLI(runner, nil, "infra")

	result := cli.DeployStack(context.Background(), testIdentity())
	require.False(t, result.Succeeded())
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Output, "already exists")
}

func TestResourceExistsLogGroupRequiresExactName(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "/monty-sim/dev/backend-archive\t/monty-sim/dev/backend"}, nil
	}}
	cli := NewCLI(runner, nil, "")

	exists, err := cli.ResourceExists(context.Background(), KindLogGroup, "/monty-sim/dev/backend", "us-east-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cli.ResourceExists(context.Background(), KindLogGroup, "/monty-sim/dev/back", "us-east-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestResourceExistsRepoAbsentOnNonZeroExit(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return failure(cmd, 254, "RepositoryNotFoundException")
	}}
	cli := NewCLI(runner, nil, "")

	exists, err := cli.ResourceExists(context.Background(), KindRegistryRepo, "monty", "us-east-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteResourceBucketEmptiesBeforeRemoval(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	cli := NewCLI(runner, nil, "")

	err := cli.DeleteResource(context.Background(), KindBucket, "sim-artifacts-dev", "us-east-1")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"s3", "rm", "s3://sim-artifacts-dev", "--recursive", "--region", "us-east-1"}, runner.calls[0].Args)
	assert.Equal(t, []string{"s3api", "delete-bucket", "--bucket", "sim-artifacts-dev", "--region", "us-east-1"}, runner.calls[1].Args)
}

func TestDeleteResourceBucketFailsLoudlyWhenEmptyFails(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		if cmd.Args[0] == "s3" {
			return failure(cmd, 1, "AccessDenied")
		}
		return shellexec.Result{}, nil
	}}
	cli := NewCLI(runner, nil, "")

	err := cli.DeleteResource(context.Background(), KindBucket, "sim-artifacts-dev", "us-east-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty bucket sim-artifacts-dev")
	// The delete-bucket call must not run after a failed empty.
	require.Len(t, runner.calls, 1)
}

func TestDeleteResourceUnknownKind(t *testing.T) {
	t.Parallel()

	cli := NewCLI(&scriptedRunner{}, nil, "")
	err := cli.DeleteResource(context.Background(), ResourceKind("queue"), "q", "us-east-1")
	require.Error(t, err)
}

func TestGetStackOutputMapsMissingKey(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "None"}, nil
	}}
	cli := NewCLI(runner, nil, "")

	_, err := cli.GetStackOutput(context.Background(), testIdentity(), "ClusterName")
	require.ErrorIs(t, err, ErrOutputNotFound)
	assert.Contains(t, err.Error(), "ClusterName")
}

func TestGetStackOutputReturnsValue(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return shellexec.Result{Stdout: "monty-sim-cluster\n"}, nil
	}}
	cli := NewCLI(runner, nil, "")

	value, err := cli.GetStackOutput(context.Background(), testIdentity(), "ClusterName")
	require.NoError(t, err)
	assert.Equal(t, "monty-sim-cluster", value)
}

func TestWaitForWorkloadAvailableMapsTimeout(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd shellexec.Command) (shellexec.Result, error) {
		return failure(cmd, 1, "error: timed out waiting for the condition")
	}}
	cli := NewCLI(runner, nil, "")

	err := cli.WaitForWorkloadAvailable(context.Background(), "sim-backend", "monty-sim", time.Minute)
	require.ErrorIs(t, err, ErrWaitTimeout)
}

func TestApplyManifestPipesRenderedContent(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	cli := NewCLI(runner, nil, "")

	require.NoError(t, cli.ApplyManifest(context.Background(), "kind: Deployment\n"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "kubectl", runner.calls[0].Name)
	assert.Equal(t, "kind: Deployment\n", runner.calls[0].Stdin)
}

func TestHTTPGetReturnsStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/health") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cli := NewCLI(&scriptedRunner{}, nil, "")

	status, err := cli.HTTPGet(context.Background(), srv.URL+"/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = cli.HTTPGet(context.Background(), srv.URL+"/other")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
