package config

import (
	"time"

	"github.com/montysim/simdeploy/internal/cloud"
)

// Config is the full deployment configuration document.
type Config struct {
	Version     string `yaml:"version" validate:"required"`
	Name        string `yaml:"name" validate:"required,min=1,max=100"`
	Environment string `yaml:"environment" validate:"required,env_suffix"`

	Stack     StackConfig    `yaml:"stack"`
	Cluster   ClusterConfig  `yaml:"cluster"`
	Image     ImageConfig    `yaml:"image"`
	Manifests ManifestConfig `yaml:"manifests"`
	Addons    []Addon        `yaml:"addons,omitempty" validate:"omitempty,dive"`
	Timeouts  Timeouts       `yaml:"timeouts"`
}

// StackConfig identifies the target stack and where deployments run from.
type StackConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Region   string `yaml:"region" validate:"required,aws_region"`
	InfraDir string `yaml:"infra_dir"`
}

// Identity returns the immutable stack identity for a reconciliation run.
func (s StackConfig) Identity() cloud.StackIdentity {
	return cloud.StackIdentity{Name: s.Name, Region: s.Region}
}

// ClusterConfig holds cluster-side names used by the post-deploy pipeline.
type ClusterConfig struct {
	Namespace         string `yaml:"namespace"`
	BackendDeployment string `yaml:"backend_deployment"`
	HealthPath        string `yaml:"health_path"`
}

// ImageConfig describes the application image build.
type ImageConfig struct {
	ContextDir string `yaml:"context_dir"`
	Dockerfile string `yaml:"dockerfile"`
	Repository string `yaml:"repository"`
}

// ManifestConfig points at the manifest templates rendered during the
// post-deploy pipeline.
type ManifestConfig struct {
	Backend string `yaml:"backend"`
	Ingress string `yaml:"ingress"`
}

// Addon is one cluster add-on chart installation.
type Addon struct {
	Name      string            `yaml:"name" validate:"required"`
	Repo      string            `yaml:"repo" validate:"required,url"`
	Chart     string            `yaml:"chart" validate:"required"`
	Namespace string            `yaml:"namespace,omitempty"`
	Values    map[string]string `yaml:"values,omitempty"`
}

// Timeouts bounds the blocking waits. Values are seconds.
type Timeouts struct {
	StackDelete int `yaml:"stack_delete,omitempty" validate:"omitempty,min=1,max=7200"`
	Rollout     int `yaml:"rollout,omitempty" validate:"omitempty,min=1,max=3600"`
	Settle      int `yaml:"settle,omitempty" validate:"omitempty,min=1,max=600"`
}

// StackDeleteTimeout returns the stack deletion wait bound.
func (t Timeouts) StackDeleteTimeout() time.Duration {
	return time.Duration(t.StackDelete) * time.Second
}

// RolloutTimeout returns the workload availability wait bound.
func (t Timeouts) RolloutTimeout() time.Duration {
	return time.Duration(t.Rollout) * time.Second
}

// SettleDelay returns the delay between reclaim and retry.
func (t Timeouts) SettleDelay() time.Duration {
	return time.Duration(t.Settle) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.Stack.InfraDir == "" {
		cfg.Stack.InfraDir = "infra"
	}
	if cfg.Cluster.Namespace == "" {
		cfg.Cluster.Namespace = "monty-sim"
	}
	if cfg.Cluster.BackendDeployment == "" {
		cfg.Cluster.BackendDeployment = "sim-backend"
	}
	if cfg.Cluster.HealthPath == "" {
		cfg.Cluster.HealthPath = "/health"
	}
	if cfg.Image.ContextDir == "" {
		cfg.Image.ContextDir = "backend"
	}
	if cfg.Image.Dockerfile == "" {
		cfg.Image.Dockerfile = "Dockerfile"
	}
	if cfg.Image.Repository == "" {
		cfg.Image.Repository = "sim-backend"
	}
	if cfg.Timeouts.StackDelete == 0 {
		cfg.Timeouts.StackDelete = 1800
	}
	if cfg.Timeouts.Rollout == 0 {
		cfg.Timeouts.Rollout = 600
	}
	if cfg.Timeouts.Settle == 0 {
		cfg.Timeouts.Settle = 30
	}
}
