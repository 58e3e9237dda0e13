package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/montysim/simdeploy/internal/cloud"
	"github.com/montysim/simdeploy/internal/config"
	"github.com/montysim/simdeploy/internal/logger"
	"github.com/montysim/simdeploy/internal/model"
	"github.com/montysim/simdeploy/internal/postdeploy"
	"github.com/montysim/simdeploy/internal/reclaim"
	"github.com/montysim/simdeploy/internal/reconcile"
	"github.com/montysim/simdeploy/internal/shellexec"
	"github.com/montysim/simdeploy/internal/stack"
	"github.com/montysim/simdeploy/internal/tui"
	simerrors "github.com/montysim/simdeploy/pkg/errors"
)

type deployOptions struct {
	ConfigPath     string
	SkipInfra      bool
	SkipAddons     bool
	SkipImage      bool
	SkipManifest   bool
	Verbose        bool
	NonInteractive bool
}

var deployCmdRunner = runDeploy

func newDeployCmd(root *rootFlags) *cobra.Command {
	opts := deployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Reconcile the stack to a deployed state and run the post-deploy pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NonInteractive = root.noInput || !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			return deployCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to deployment configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().BoolVar(&opts.SkipInfra, "skip-infra", false, "Skip stack reconciliation, run only the post-deploy pipeline")
	cmd.Flags().BoolVar(&opts.SkipAddons, "skip-addons", false, "Skip cluster add-on installation")
	cmd.Flags().BoolVar(&opts.SkipImage, "skip-image", false, "Skip application image build and publish")
	cmd.Flags().BoolVar(&opts.SkipManifest, "skip-manifest", false, "Skip manifest apply, exposure and smoke check")

	return cmd
}

func runDeploy(opts deployOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &shellexec.Local{Stream: opts.Verbose}
	cli := cloud.NewCLI(runner, log, cfg.Stack.InfraDir)
	resources := reclaim.DefaultResources(cfg.Environment)

	reconciler := &reconcile.Reconciler{
		Identity:      cfg.Stack.Identity(),
		Cloud:         cli,
		Inspector:     &stack.Inspector{Client: cli, Log: log},
		Reclaimer:     &reclaim.Reclaimer{Client: cli, Region: cfg.Stack.Region, Log: log},
		Resources:     resources,
		Log:           log,
		DeleteTimeout: cfg.Timeouts.StackDeleteTimeout(),
		SettleDelay:   cfg.Timeouts.SettleDelay(),
	}

	pipeline := &postdeploy.Pipeline{
		Cloud:  cli,
		Runner: runner,
		Config: cfg,
		Options: postdeploy.Options{
			SkipAddons:   opts.SkipAddons,
			SkipImage:    opts.SkipImage,
			SkipManifest: opts.SkipManifest,
		},
		Log: log,
	}

	modelState := tui.NewModel(cfg.Name, deployPhases(opts))
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	notify := func(res model.StepResult) {
		dispatchTuiMessage(interactive, program, &modelState, tui.PhaseMsg{Result: res})
	}
	reconciler.Notify = notify
	pipeline.Notify = notify

	var reconcileErr error
	if opts.SkipInfra {
		log.Warn("skipping stack reconciliation by request")
	} else {
		_, reconcileErr = reconciler.Run(ctx)
	}

	var pipelineErr error
	if reconcileErr == nil {
		_, pipelineErr = pipeline.Run(ctx)
	}

	var recErr *simerrors.ReconcileError
	if errors.As(reconcileErr, &recErr) {
		dispatchTuiMessage(interactive, program, &modelState, tui.FailureMsg{
			Cause:       recErr.RawOutput,
			Remediation: recErr.Remediation,
		})
	}

	if interactive {
		if program != nil {
			program.Send(tui.DoneMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		updated, _ := modelState.Update(tui.DoneMsg{})
		if m, ok := updated.(tui.Model); ok {
			modelState = m
		}
		fmt.Fprintln(os.Stdout, modelState.View())
	}

	if reconcileErr != nil {
		return reconcileErr
	}
	return pipelineErr
}

// deployPhases lists the phases shown up front. Conflict-path phases
// (pre-delete, reclaim, retry) appear dynamically when they run.
func deployPhases(opts deployOptions) []tui.Phase {
	var phases []tui.Phase
	if !opts.SkipInfra {
		phases = append(phases,
			tui.Phase{ID: reconcile.PhaseInspect, Title: "Inspect stack"},
			tui.Phase{ID: reconcile.PhaseDeploy, Title: "Deploy stack"},
		)
	}
	phases = append(phases,
		tui.Phase{ID: postdeploy.StepOutputs, Title: "Retrieve stack outputs"},
		tui.Phase{ID: postdeploy.StepKubeconfig, Title: "Configure cluster credentials"},
		tui.Phase{ID: postdeploy.StepAddons, Title: "Install cluster add-ons"},
		tui.Phase{ID: postdeploy.StepImage, Title: "Publish application image"},
		tui.Phase{ID: postdeploy.StepManifest, Title: "Apply backend manifest"},
		tui.Phase{ID: postdeploy.StepIngress, Title: "Create ingress"},
		tui.Phase{ID: postdeploy.StepSmoke, Title: "Smoke check"},
	)
	return phases
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
