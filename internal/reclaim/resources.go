// Package reclaim deletes the fixed set of named cloud resources that block
// a fresh deployment: the image repositories, the storage buckets and the
// backend log group.
package reclaim

import (
	"fmt"

	"github.com/montysim/simdeploy/internal/cloud"
)

// Resource is one statically known deletable resource.
type Resource struct {
	Kind       cloud.ResourceKind
	Identifier string
}

func (r Resource) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Identifier)
}

// DefaultResources returns the fixed resource list for an environment
// suffix. The set is static configuration, not discovered.
func DefaultResources(env string) []Resource {
	return []Resource{
		{Kind: cloud.KindRegistryRepo, Identifier: "monty"},
		{Kind: cloud.KindRegistryRepo, Identifier: "unitree-sim"},
		{Kind: cloud.KindRegistryRepo, Identifier: "glue-base"},
		{Kind: cloud.KindBucket, Identifier: "monty-checkpoints-" + env},
		{Kind: cloud.KindBucket, Identifier: "sim-artifacts-" + env},
		{Kind: cloud.KindLogGroup, Identifier: "/monty-sim/" + env + "/backend"},
	}
}

// RemediationChecklist renders the manual cleanup instructions printed on
// terminal failure. It names the same identities Reclaim targets.
func RemediationChecklist(resources []Resource) []string {
	lines := make([]string, 0, len(resources))
	for _, res := range resources {
		switch res.Kind {
		case cloud.KindRegistryRepo:
			lines = append(lines, fmt.Sprintf("delete ECR repository %q (aws ecr delete-repository --repository-name %s --force)", res.Identifier, res.Identifier))
		case cloud.KindBucket:
			lines = append(lines, fmt.Sprintf("empty and delete S3 bucket %q (aws s3 rb s3://%s --force)", res.Identifier, res.Identifier))
		case cloud.KindLogGroup:
			lines = append(lines, fmt.Sprintf("delete log group %q (aws logs delete-log-group --log-group-name %s)", res.Identifier, res.Identifier))
		default:
			lines = append(lines, fmt.Sprintf("delete %s %q", res.Kind, res.Identifier))
		}
	}
	return lines
}
