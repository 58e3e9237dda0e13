package postdeploy

import (
	"context"
	"fmt"
	"sort"

	"github.com/montysim/simdeploy/internal/config"
	"github.com/montysim/simdeploy/internal/shellexec"
)

// DefaultAddons is the fixed add-on set the cluster needs before simulation
// workloads can schedule: node autoscaling, GPU exposure, metrics for the
// autoscaler, and ingress.
func DefaultAddons() []config.Addon {
	return []config.Addon{
		{
			Name:      "cluster-autoscaler",
			Repo:      "https://kubernetes.github.io/autoscaler",
			Chart:     "cluster-autoscaler",
			Namespace: "kube-system",
		},
		{
			Name:      "nvidia-device-plugin",
			Repo:      "https://nvidia.github.io/k8s-device-plugin",
			Chart:     "nvidia-device-plugin",
			Namespace: "kube-system",
		},
		{
			Name:      "metrics-server",
			Repo:      "https://kubernetes-sigs.github.io/metrics-server/",
			Chart:     "metrics-server",
			Namespace: "kube-system",
		},
		{
			Name:      "ingress-nginx",
			Repo:      "https://kubernetes.github.io/ingress-nginx",
			Chart:     "ingress-nginx",
			Namespace: "ingress-nginx",
		},
	}
}

// installAddon installs or upgrades one chart. Each installation is
// independent of the others.
func installAddon(ctx context.Context, runner shellexec.Runner, addon config.Addon) error {
	namespace := addon.Namespace
	if namespace == "" {
		namespace = "kube-system"
	}

	args := []string{
		"upgrade", "--install", addon.Name, addon.Chart,
		"--repo", addon.Repo,
		"--namespace", namespace,
		"--create-namespace",
	}

	keys := make([]string, 0, len(addon.Values))
	for k := range addon.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--set", fmt.Sprintf("%s=%s", k, addon.Values[k]))
	}

	_, err := runner.Run(ctx, shellexec.Command{Name: "helm", Args: args})
	return err
}
