package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/montysim/simdeploy/internal/shellexec"
)

// ConfigureClusterCredentials writes local kubeconfig credentials for the
// named cluster.
func (c *CLI) ConfigureClusterCredentials(ctx context.Context, cluster, region string) error {
	_, err := c.Runner.Run(ctx, shellexec.Command{
		Name: "aws",
		Args: []string{"eks", "update-kubeconfig", "--name", cluster, "--region", region},
	})
	return err
}

// ApplyManifest pipes a rendered manifest into the cluster applier.
func (c *CLI) ApplyManifest(ctx context.Context, rendered string) error {
	_, err := c.Runner.Run(ctx, shellexec.Command{
		Name:  "kubectl",
		Args:  []string{"apply", "-f", "-"},
		Stdin: rendered,
	})
	return err
}

// WaitForWorkloadAvailable blocks until the named deployment reports
// available or the timeout elapses. A timeout maps to ErrWaitTimeout so
// callers can distinguish it from an explicit rollout failure.
func (c *CLI) WaitForWorkloadAvailable(ctx context.Context, name, namespace string, timeout time.Duration) error {
	res, err := c.Runner.Run(ctx, shellexec.Command{
		Name: "kubectl",
		Args: []string{
			"rollout", "status", "deployment/" + name,
			"--namespace", namespace,
			"--timeout", timeout.String(),
		},
	})
	if err != nil {
		if strings.Contains(res.Combined(), "timed out") {
			return fmt.Errorf("%w after %s waiting for deployment %s/%s", ErrWaitTimeout, timeout, namespace, name)
		}
		return err
	}
	return nil
}

// CreateExposureObject applies the rendered ingress manifest. Kept separate
// from ApplyManifest so exposure failures are reported as their own step.
func (c *CLI) CreateExposureObject(ctx context.Context, rendered string) error {
	_, err := c.Runner.Run(ctx, shellexec.Command{
		Name:  "kubectl",
		Args:  []string{"apply", "-f", "-"},
		Stdin: rendered,
	})
	return err
}
