package controllers

import (
	"context"
	"errors"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
)

// RunController handles the root command: runref <reference> [args...].
type RunController struct {
	command commands.Run
	exit    func(code int)
}

// NewRunController creates a new RunController.
func NewRunController(command commands.Run) *RunController {
	return &RunController{command: command, exit: os.Exit}
}

// GetBind returns the Cobra command metadata for the run controller.
func (it *RunController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "runref <reference> [args...]",
		Short: "Run a program straight from a repository archive",
		Long: `Download a repository archive, extract it, and run its entry file.

The reference has the form ` + entities.ReferenceFormat + `, for example:
  runref kzu/sandbox
  runref kzu/sandbox@v1.0.0:src/program.cs -- --flag
  runref gitlab.com/kzu/sandbox@main

Archives are cached per reference and revalidated with ETags, so unchanged
references are not downloaded again. Arguments after the reference are
passed to the program.`,
	}
}

// Execute runs the reference given as the first argument.
func (it *RunController) Execute(cmd *cobra.Command, args []string) {
	runReference(cmd, args, commands.ToolRun, "", it.command, it.exit)
}

// AddFlags adds the run-specific flags to the given Cobra command.
func (it *RunController) AddFlags(cmd *cobra.Command) {
	// everything after the reference belongs to the program
	cmd.Flags().SetInterspersed(false)
}

func runReference(
	cmd *cobra.Command,
	args []string,
	tool string,
	defaultHost string,
	command commands.Run,
	exit func(code int),
) {
	ctx := commandContext(cmd)

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if len(args) == 0 {
		logger.Errorf("a reference is required (%s)", entities.ReferenceFormat)
		exit(1)
		return
	}

	ref, err := entities.ParseReference(args[0])
	if err != nil {
		logger.Errorf("%v", err)
		exit(1)
		return
	}
	if ref.Host == "" && defaultHost != "" {
		ref.Host = defaultHost
	}

	result, err := command.Execute(ctx, commands.RunOptions{
		Reference: ref,
		ToolName:  tool,
		Args:      programArgs(args[1:]),
	})
	if err != nil {
		logger.Errorf("%s", describeFailure(ref, err))
		exit(1)
		return
	}
	if result.ExitCode != 0 {
		exit(result.ExitCode)
	}
}

// programArgs drops the "--" separating the reference from the program's
// arguments; the runner adds its own.
func programArgs(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}

// commandContext returns the context cobra was executed with, so an interrupt
// cancels in-flight requests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// describeFailure keeps user-facing messages short; denials never say why
// credentials were missing.
func describeFailure(ref entities.Reference, err error) string {
	switch {
	case errors.Is(err, entities.ErrReferenceNotFound):
		return "Reference " + ref.String() + " not found"
	default:
		return err.Error()
	}
}
