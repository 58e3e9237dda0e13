package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/config"
	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/reclaim"
	"github.com/montysim/simdeploy/internal/shellexec"
)

func newCleanupCmd(root *rootFlags) *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete orphaned environment resources that block redeployment",
		Long: `Cleanup deletes the fixed set of environment-scoped resources (container
registries, buckets, log group) that a wrecked stack can leave behind.
This is destructive and irreversible, so it requires --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(configPath); err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("cleanup deletes resources permanently; re-run with --force to confirm")
			}
			return runCleanup(cmd, configPath, root.verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().BoolVar(&force, "force", false, "Confirm permanent deletion of environment resources")

	return cmd
}

func runCleanup(cmd *cobra.Command, configPath string, verbose bool) error {
	cfg, err := config.ParseConfig(configPath)
	if err != nil {
		return err
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		return err
	}

	runner := &shellexec.Local{Stream: verbose}
	cli := cloud.NewCLI(runner, log, cfg.Stack.InfraDir)
	reclaimer := &reclaim.Reclaimer{Client: cli, Region: cfg.Stack.Region, Log: log}

	resources := reclaim.DefaultResources(cfg.Environment)
	results := reclaimer.Reclaim(cmd.Context(), resources)

	var failed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", res.Resource, res.Err)
		case res.Deleted:
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: deleted\n", res.Resource)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: not present\n", res.Resource)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to delete %d of %d resources", failed, len(resources))
	}
	return nil
}
