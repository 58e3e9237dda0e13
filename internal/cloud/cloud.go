// Package cloud defines the narrow command contract the reconciler uses to
// talk to the control plane, the registry and the cluster. The production
// implementation shells out to the aws/cdk/kubectl binaries; tests swap in
// scripted fakes.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StackIdentity names the target stack for the lifetime of a run.
type StackIdentity struct {
	Name   string
	Region string
}

func (id StackIdentity) String() string {
	return fmt.Sprintf("%s (%s)", id.Name, id.Region)
}

// ResourceKind enumerates the reclaimable resource types.
type ResourceKind string

const (
	KindRegistryRepo ResourceKind = "registry-repo"
	KindBucket       ResourceKind = "object-store-bucket"
	KindLogGroup     ResourceKind = "log-group"
)

// DeployResult captures one deployment attempt's raw output and exit status.
type DeployResult struct {
	Output   string
	ExitCode int
}

// Succeeded reports whether the deployment attempt completed cleanly.
func (r DeployResult) Succeeded() bool {
	return r.ExitCode == 0
}

var (
	// ErrStackNotFound marks a describe call against an absent stack. This
	// is the expected state on a first deployment, not a failure.
	ErrStackNotFound = errors.New("stack does not exist")

	// ErrOutputNotFound marks a missing stack output key.
	ErrOutputNotFound = errors.New("stack output not found")

	// ErrWaitTimeout marks a blocking wait that exhausted its deadline. It
	// is distinct from an explicit failure status reported by the control
	// plane and must be surfaced as its own failure mode.
	ErrWaitTimeout = errors.New("wait timed out")
)

// API is the full command contract consumed by the reconciler and the
// post-deploy pipeline.
type API interface {
	DescribeStackStatus(ctx context.Context, id StackIdentity) (string, error)
	DeleteStack(ctx context.Context, id StackIdentity) error
	WaitForStackDeletion(ctx context.Context, id StackIdentity, timeout time.Duration) error
	DeployStack(ctx context.Context, id StackIdentity) DeployResult

	ResourceExists(ctx context.Context, kind ResourceKind, identifier, region string) (bool, error)
	DeleteResource(ctx context.Context, kind ResourceKind, identifier, region string) error

	GetStackOutput(ctx context.Context, id StackIdentity, key string) (string, error)
	ConfigureClusterCredentials(ctx context.Context, cluster, region string) error
	ApplyManifest(ctx context.Context, rendered string) error
	WaitForWorkloadAvailable(ctx context.Context, name, namespace string, timeout time.Duration) error
	CreateExposureObject(ctx context.Context, rendered string) error
	HTTPGet(ctx context.Context, url string) (int, error)
}
