package stack

import (
	"context"
	"errors"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/logger"
)

// StatusClient is the slice of the cloud contract the inspector needs.
type StatusClient interface {
	DescribeStackStatus(ctx context.Context, id cloud.StackIdentity) (string, error)
}

// Inspector queries and classifies the current deployment state. Read-only.
type Inspector struct {
	Client StatusClient
	Log    *logger.Logger
}

// Inspect returns the classified state of the stack. An absent stack is a
// normal state, not an error; only a failed status query is returned as an
// error.
func (i *Inspector) Inspect(ctx context.Context, id cloud.StackIdentity) (State, error) {
	raw, err := i.Client.DescribeStackStatus(ctx, id)
	if errors.Is(err, cloud.ErrStackNotFound) {
		i.Log.Debugf("stack %s not found", id.Name)
		return StateAbsent, nil
	}
	if err != nil {
		return StateUnknown, err
	}

	state := ClassifyStatus(raw)
	i.Log.WithFields(map[string]any{"stack": id.Name, "status": raw, "state": state.String()}).Debug("classified stack status")
	return state, nil
}
