package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	noInput bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "simdeploy",
		Short:         "simdeploy reconciles the simulation platform stack and wires up the cluster",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging and stream command output")
	cmd.PersistentFlags().BoolVar(&flags.noInput, "no-input", false, "Disable the interactive progress view")

	cmd.AddCommand(newDeployCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newCleanupCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
