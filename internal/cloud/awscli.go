package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/shellexec"
)

const (
	defaultPollInterval = 15 * time.Second
	statusDeleteFailed  = "DELETE_FAILED"
)

// CLI implements API by shelling out to the aws, cdk and kubectl binaries.
type CLI struct {
	Runner shellexec.Runner
	Log    *logger.Logger

	// InfraDir is the CDK application directory deployments run from.
	InfraDir string

	// DeployCommand overrides the deployment command line. The stack name
	// is appended as the final argument.
	DeployCommand []string

	// PollInterval controls the describe cadence of blocking waits.
	PollInterval time.Duration
}

var _ API = (*CLI)(nil)

// NewCLI builds a CLI contract implementation around the given runner.
func NewCLI(runner shellexec.Runner, log *logger.Logger, infraDir string) *CLI {
	return &CLI{Runner: runner, Log: log, InfraDir: infraDir}
}

// DescribeStackStatus queries the raw stack status string. An absent stack
// maps to ErrStackNotFound rather than an error result.
func (c *CLI) DescribeStackStatus(ctx context.Context, id StackIdentity) (string, error) {
	res, err := c.Runner.Run(ctx, shellexec.Command{
		Name: "aws",
		Args: []string{
			"cloudformation", "describe-stacks",
			"--stack-name", id.Name,
			"--region", id.Region,
			"--query", "Stacks[0].StackStatus",
			"--output", "text",
		},
	})
	if err != nil {
		if strings.Contains(res.Combined(), "does not exist") {
			return "", ErrStackNotFound
		}
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// DeleteStack requests stack deletion. The control plane processes this
// asynchronously; callers pair it with WaitForStackDeletion.
func (c *CLI) DeleteStack(ctx context.Context, id StackIdentity) error {
	_, err := c.Runner.Run(ctx, shellexec.Command{
		Name: "aws",
		Args: []string{
			"cloudformation", "delete-stack",
			"--stack-name", id.Name,
			"--region", id.Region,
		},
	})
	return err
}

// WaitForStackDeletion blocks, polling the stack status until the stack is
// gone, deletion fails explicitly, or the timeout elapses.
func (c *CLI) WaitForStackDeletion(ctx context.Context, id StackIdentity, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		status, err := c.DescribeStackStatus(ctx, id)
		if errors.Is(err, ErrStackNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if status == statusDeleteFailed {
			return fmt.Errorf("stack %s reported %s", id.Name, statusDeleteFailed)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s waiting for deletion of stack %s", ErrWaitTimeout, timeout, id.Name)
		}

		c.Log.Debugf("stack %s still %s, polling again", id.Name, status)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval()):
		}
	}
}

// DeployStack runs the deployment command and returns the captured output
// and exit status. Classification of failures is the caller's concern, so
// no error is returned here.
func (c *CLI) DeployStack(ctx context.Context, id StackIdentity) DeployResult {
	args := c.deployCommand()
	cmd := shellexec.Command{
		Name: args[0],
		Args: append(append([]string{}, args[1:]...), id.Name),
		Dir:  c.InfraDir,
		Env: map[string]string{
			"AWS_REGION":         id.Region,
			"AWS_DEFAULT_REGION": id.Region,
		},
	}

	res, err := c.Runner.Run(ctx, cmd)
	output := res.Combined()
	if err != nil && output == "" {
		output = err.Error()
	}
	return DeployResult{Output: output, ExitCode: res.ExitCode}
}

func (c *CLI) deployCommand() []string {
	if len(c.DeployCommand) > 0 {
		return c.DeployCommand
	}
	return []string{"npx", "cdk", "deploy", "--require-approval", "never"}
}

// ResourceExists checks for a named resource by kind. A non-zero exit from
// the existence probe is treated as absence.
func (c *CLI) ResourceExists(ctx context.Context, kind ResourceKind, identifier, region string) (bool, error) {
	switch kind {
	case KindRegistryRepo:
		_, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"ecr", "describe-repositories", "--repository-names", identifier, "--region", region},
		})
		return err == nil, nil
	case KindBucket:
		_, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"s3api", "head-bucket", "--bucket", identifier, "--region", region},
		})
		return err == nil, nil
	case KindLogGroup:
		res, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{
				"logs", "describe-log-groups",
				"--log-group-name-prefix", identifier,
				"--region", region,
				"--query", "logGroups[].logGroupName",
				"--output", "text",
			},
		})
		if err != nil {
			return false, nil
		}
		// Prefix matching can return siblings; require the exact name.
		for _, name := range strings.Fields(res.Stdout) {
			if name == identifier {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown resource kind %q", kind)
	}
}

// DeleteResource removes a named resource. Buckets are emptied first; a
// failed empty aborts the bucket removal so a non-empty store never gets
// silently skipped.
func (c *CLI) DeleteResource(ctx context.Context, kind ResourceKind, identifier, region string) error {
	switch kind {
	case KindRegistryRepo:
		_, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"ecr", "delete-repository", "--repository-name", identifier, "--region", region, "--force"},
		})
		return err
	case KindBucket:
		if _, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"s3", "rm", "s3://" + identifier, "--recursive", "--region", region},
		}); err != nil {
			return fmt.Errorf("empty bucket %s: %w", identifier, err)
		}
		_, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"s3api", "delete-bucket", "--bucket", identifier, "--region", region},
		})
		return err
	case KindLogGroup:
		_, err := c.Runner.Run(ctx, shellexec.Command{
			Name: "aws",
			Args: []string{"logs", "delete-log-group", "--log-group-name", identifier, "--region", region},
		})
		return err
	default:
		return fmt.Errorf("unknown resource kind %q", kind)
	}
}

// GetStackOutput fetches one output value by key from a healthy stack.
func (c *CLI) GetStackOutput(ctx context.Context, id StackIdentity, key string) (string, error) {
	res, err := c.Runner.Run(ctx, shellexec.Command{
		Name: "aws",
		Args: []string{
			"cloudformation", "describe-stacks",
			"--stack-name", id.Name,
			"--region", id.Region,
			"--query", fmt.Sprintf("Stacks[0].Outputs[?OutputKey=='%s'].OutputValue", key),
			"--output", "text",
		},
	})
	if err != nil {
		return "", err
	}

	value := strings.TrimSpace(res.Stdout)
	if value == "" || value == "None" {
		return "", fmt.Errorf("%w: %s", ErrOutputNotFound, key)
	}
	return value, nil
}

func (c *CLI) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}
