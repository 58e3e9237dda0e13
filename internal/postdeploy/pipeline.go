// Package postdeploy sequences the dependent steps that follow a healthy
// stack: credential wiring, add-on installation, image publish, manifest
// apply, exposure and smoke verification. Every step except the initial
// output retrieval is best-effort; failures are reported as warnings and
// never roll back the stack.
package postdeploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/config"
	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/model"
	"github.com/montysim/simdeploy/internal/shellexec"
)

// Stack output keys published by the infrastructure stack.
const (
	OutputClusterName       = "ClusterName"
	OutputEcrRegistry       = "EcrRegistry"
	OutputArtifactsBucket   = "ArtifactsBucket"
	OutputCheckpointsBucket = "CheckpointsBucket"
)

// Step identifiers reported to the progress view.
const (
	StepOutputs    = "stack_outputs"
	StepKubeconfig = "kubeconfig"
	StepAddons     = "addons"
	StepImage      = "image_publish"
	StepManifest   = "manifest_apply"
	StepIngress    = "ingress"
	StepSmoke      = "smoke_check"
)

// Cluster is the slice of the cloud contract the pipeline consumes.
type Cluster interface {
	GetStackOutput(ctx context.Context, id cloud.StackIdentity, key string) (string, error)
	ConfigureClusterCredentials(ctx context.Context, cluster, region string) error
	ApplyManifest(ctx context.Context, rendered string) error
	WaitForWorkloadAvailable(ctx context.Context, name, namespace string, timeout time.Duration) error
	CreateExposureObject(ctx context.Context, rendered string) error
	HTTPGet(ctx context.Context, url string) (int, error)
}

// StackOutputs are the identifiers retrieved from the healthy stack.
type StackOutputs struct {
	ClusterName       string
	Registry          string
	ArtifactsBucket   string
	CheckpointsBucket string
}

// Options toggles individual pipeline phases.
type Options struct {
	SkipAddons   bool
	SkipImage    bool
	SkipManifest bool
}

// Pipeline runs the post-deploy sequence against a healthy stack.
type Pipeline struct {
	Cloud   Cluster
	Runner  shellexec.Runner
	Config  *config.Config
	Options Options
	Log     *logger.Logger
	Notify  func(model.StepResult)
}

// Run executes the pipeline. The returned error is non-nil only for the
// fatal precondition: the primary cluster identity output being absent.
// All other failures are recorded as warnings in the results.
func (p *Pipeline) Run(ctx context.Context) ([]model.StepResult, error) {
	var results []model.StepResult
	record := func(res model.StepResult) {
		results = append(results, res)
		if p.Notify != nil {
			p.Notify(res)
		}
	}

	p.announce(StepOutputs, "retrieving stack outputs")
	outputs, err := p.fetchOutputs(ctx)
	if err != nil {
		record(p.step(StepOutputs, model.StatusFailed, "cluster identity output missing", err))
		return results, err
	}
	record(p.step(StepOutputs, model.StatusSuccess, "cluster "+outputs.ClusterName, nil))

	p.announce(StepKubeconfig, "configuring cluster credentials")
	if err := p.Cloud.ConfigureClusterCredentials(ctx, outputs.ClusterName, p.Config.Stack.Region); err != nil {
		record(p.step(StepKubeconfig, model.StatusWarning, "kubeconfig update failed", err))
	} else {
		record(p.step(StepKubeconfig, model.StatusSuccess, "kubeconfig updated", nil))
	}

	record(p.installAddons(ctx))

	imageTag := "latest"
	if p.Options.SkipImage {
		record(p.step(StepImage, model.StatusSkipped, "image publish skipped", nil))
	} else if outputs.Registry == "" {
		record(p.step(StepImage, model.StatusWarning, "registry output missing, image not published", nil))
	} else {
		p.announce(StepImage, "building and publishing application image")
		tag, err := p.publishImage(ctx, outputs.Registry)
		if err != nil {
			record(p.step(StepImage, model.StatusWarning, "image publish failed", err))
		} else {
			imageTag = tag
			record(p.step(StepImage, model.StatusSuccess, "pushed "+p.Config.Image.Repository+":"+tag, nil))
		}
	}

	values := TokenValues(outputs, p.Config.Cluster.Namespace, imageTag)
	record(p.applyWorkload(ctx, values))
	record(p.applyIngress(ctx, values))
	record(p.smokeCheck(ctx))

	return results, nil
}

// fetchOutputs retrieves the structured stack outputs. Only the cluster
// identity is required; the rest degrade to warnings downstream.
func (p *Pipeline) fetchOutputs(ctx context.Context) (StackOutputs, error) {
	id := p.Config.Stack.Identity()

	cluster, err := p.Cloud.GetStackOutput(ctx, id, OutputClusterName)
	if err != nil {
		return StackOutputs{}, fmt.Errorf("required stack output %s: %w", OutputClusterName, err)
	}

	outputs := StackOutputs{ClusterName: cluster}
	optional := []struct {
		key  string
		dest *string
	}{
		{OutputEcrRegistry, &outputs.Registry},
		{OutputArtifactsBucket, &outputs.ArtifactsBucket},
		{OutputCheckpointsBucket, &outputs.CheckpointsBucket},
	}
	for _, out := range optional {
		value, err := p.Cloud.GetStackOutput(ctx, id, out.key)
		if err != nil {
			if !errors.Is(err, cloud.ErrOutputNotFound) {
				p.Log.Error(err, "failed to read stack output "+out.key)
			}
			p.Log.Warnf("stack output %s unavailable", out.key)
			continue
		}
		*out.dest = value
	}

	return outputs, nil
}

func (p *Pipeline) installAddons(ctx context.Context) model.StepResult {
	if p.Options.SkipAddons {
		return p.step(StepAddons, model.StatusSkipped, "add-on installation skipped", nil)
	}

	addons := p.Config.Addons
	if len(addons) == 0 {
		addons = DefaultAddons()
	}

	p.announce(StepAddons, fmt.Sprintf("installing %d cluster add-ons", len(addons)))

	var failed []string
	for _, addon := range addons {
		if err := installAddon(ctx, p.Runner, addon); err != nil {
			p.Log.Error(err, "add-on installation failed: "+addon.Name)
			failed = append(failed, addon.Name)
		} else {
			p.Log.Infof("installed add-on %s", addon.Name)
		}
	}

	if len(failed) > 0 {
		return p.step(StepAddons, model.StatusWarning, "failed add-ons: "+strings.Join(failed, ", "), nil)
	}
	return p.step(StepAddons, model.StatusSuccess, "all add-ons installed", nil)
}

func (p *Pipeline) applyWorkload(ctx context.Context, values map[string]string) model.StepResult {
	if p.Options.SkipManifest {
		return p.step(StepManifest, model.StatusSkipped, "manifest phase skipped", nil)
	}
	if p.Config.Manifests.Backend == "" {
		return p.step(StepManifest, model.StatusSkipped, "no backend manifest configured", nil)
	}

	p.announce(StepManifest, "applying backend manifest")

	template, err := os.ReadFile(p.Config.Manifests.Backend)
	if err != nil {
		return p.step(StepManifest, model.StatusWarning, "manifest template unreadable", err)
	}

	if err := p.Cloud.ApplyManifest(ctx, RenderManifest(string(template), values)); err != nil {
		return p.step(StepManifest, model.StatusWarning, "manifest apply failed", err)
	}

	timeout := p.Config.Timeouts.RolloutTimeout()
	if err := p.Cloud.WaitForWorkloadAvailable(ctx, p.Config.Cluster.BackendDeployment, p.Config.Cluster.Namespace, timeout); err != nil {
		return p.step(StepManifest, model.StatusWarning, "workload did not become available", err)
	}

	return p.step(StepManifest, model.StatusSuccess, "workload available", nil)
}

func (p *Pipeline) applyIngress(ctx context.Context, values map[string]string) model.StepResult {
	if p.Options.SkipManifest {
		return p.step(StepIngress, model.StatusSkipped, "manifest phase skipped", nil)
	}
	if p.Config.Manifests.Ingress == "" {
		return p.step(StepIngress, model.StatusSkipped, "no ingress manifest configured", nil)
	}

	p.announce(StepIngress, "creating exposure object")

	template, err := os.ReadFile(p.Config.Manifests.Ingress)
	if err != nil {
		return p.step(StepIngress, model.StatusWarning, "ingress template unreadable", err)
	}

	if err := p.Cloud.CreateExposureObject(ctx, RenderManifest(string(template), values)); err != nil {
		return p.step(StepIngress, model.StatusWarning, "exposure creation failed", err)
	}

	return p.step(StepIngress, model.StatusSuccess, "exposure created", nil)
}

// smokeCheck probes the well-known health path through the exposure
// address. Failure is a warning only: external exposure may still be
// propagating when the pipeline finishes.
func (p *Pipeline) smokeCheck(ctx context.Context) model.StepResult {
	if p.Options.SkipManifest || p.Config.Manifests.Ingress == "" {
		return p.step(StepSmoke, model.StatusSkipped, "no exposure to verify", nil)
	}

	p.announce(StepSmoke, "running smoke check")

	host, err := p.exposureAddress(ctx)
	if err != nil || host == "" {
		return p.step(StepSmoke, model.StatusWarning, "exposure address not yet assigned", err)
	}

	url := "http://" + host + p.Config.Cluster.HealthPath
	status, err := p.Cloud.HTTPGet(ctx, url)
	if err != nil {
		return p.step(StepSmoke, model.StatusWarning, "health endpoint unreachable", err)
	}
	if status != 200 {
		return p.step(StepSmoke, model.StatusWarning, fmt.Sprintf("health endpoint returned %d", status), nil)
	}

	return p.step(StepSmoke, model.StatusSuccess, "health endpoint responded 200", nil)
}

func (p *Pipeline) exposureAddress(ctx context.Context) (string, error) {
	res, err := p.Runner.Run(ctx, shellexec.Command{
		Name: "kubectl",
		Args: []string{
			"get", "ingress", p.Config.Cluster.BackendDeployment,
			"--namespace", p.Config.Cluster.Namespace,
			"-o", "jsonpath={.status.loadBalancer.ingress[0].hostname}",
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (p *Pipeline) announce(id, msg string) {
	p.Log.Info(msg)
	if p.Notify != nil {
		p.Notify(model.StepResult{ID: id, Status: model.StatusRunning, Message: msg, Timestamp: time.Now()})
	}
}

func (p *Pipeline) step(id, status, msg string, err error) model.StepResult {
	if err != nil {
		p.Log.Error(err, msg)
	}
	return model.StepResult{ID: id, Status: status, Message: msg, Error: err, Timestamp: time.Now()}
}
