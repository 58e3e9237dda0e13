package reclaim

import (
	"context"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/logger"
)

// Client is the slice of the cloud contract the reclaimer needs.
type Client interface {
	ResourceExists(ctx context.Context, kind cloud.ResourceKind, identifier, region string) (bool, error)
	DeleteResource(ctx context.Context, kind cloud.ResourceKind, identifier, region string) error
}

// Result records the outcome for one resource.
type Result struct {
	Resource Resource
	Existed  bool
	Deleted  bool
	Err      error
}

// Reclaimer deletes blocking resources. Destructive: it must only be
// reached through the reconciler's controlled retry path or an explicit
// operator flag.
type Reclaimer struct {
	Client Client
	Region string
	Log    *logger.Logger
}

// Reclaim checks and deletes each resource in turn. Absent resources are
// no-ops, which makes repeated reclaims idempotent. A failure on one
// resource does not stop the rest; callers inspect the per-resource
// results.
func (r *Reclaimer) Reclaim(ctx context.Context, resources []Resource) []Result {
	results := make([]Result, 0, len(resources))

	for _, res := range resources {
		outcome := Result{Resource: res}

		exists, err := r.Client.ResourceExists(ctx, res.Kind, res.Identifier, r.Region)
		if err != nil {
			outcome.Err = err
			r.Log.Error(err, "existence check failed for "+res.String())
			results = append(results, outcome)
			continue
		}
		if !exists {
			r.Log.Debugf("%s absent, nothing to reclaim", res)
			results = append(results, outcome)
			continue
		}

		outcome.Existed = true
		if err := r.Client.DeleteResource(ctx, res.Kind, res.Identifier, r.Region); err != nil {
			outcome.Err = err
			r.Log.Error(err, "failed to delete "+res.String())
		} else {
			outcome.Deleted = true
			r.Log.Infof("reclaimed %s", res)
		}
		results = append(results, outcome)
	}

	return results
}

// DeletedAny reports whether reclamation removed at least one resource,
// which is what makes a retry worthwhile.
func DeletedAny(results []Result) bool {
	for _, res := range results {
		if res.Deleted {
			return true
		}
	}
	return false
}
