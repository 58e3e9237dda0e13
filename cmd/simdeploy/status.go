package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/config"
	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/shellexec"
	"github.com/montysim/simdeploy/internal/stack"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current state of the deployment stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(configPath); err != nil {
				return err
			}
			return runStatus(cmd, configPath, root.verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to deployment configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runStatus(cmd *cobra.Command, configPath string, verbose bool) error {
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

	runner := &shellexec.Local{}
	cli := cloud.NewCLI(runner, log, cfg.Stack.InfraDir)

	id := cfg.Stack.Identity()
	raw, err := cli.DescribeStackStatus(cmd.Context(), id)
	if errors.Is(err, cloud.ErrStackNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "Stack:  %s (%s)\n", id.Name, id.Region)
		fmt.Fprintf(cmd.OutOrStdout(), "State:  %s\n", stack.StateAbsent)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query stack %s: %w", id.Name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stack:  %s (%s)\n", id.Name, id.Region)
	fmt.Fprintf(cmd.OutOrStdout(), "State:  %s\n", stack.ClassifyStatus(raw))
	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", raw)
	return nil
}
