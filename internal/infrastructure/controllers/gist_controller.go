package controllers

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
	ghRepo "github.com/rios0rios0/runref/internal/infrastructure/repositories/github"
)

// GistController handles "runref gist <owner/id> [args...]".
type GistController struct {
	command commands.Run
	exit    func(code int)
}

// NewGistController creates a new GistController.
func NewGistController(command commands.Run) *GistController {
	return &GistController{command: command, exit: os.Exit}
}

// GetBind returns the Cobra command metadata for the gist controller.
func (it *GistController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "gist <owner/id[@revision][:file]> [args...]",
		Short: "Run a program from a GitHub gist",
		Long: `Download a gist archive from gist.github.com, extract it, and run
its entry file. Arguments after the reference are passed to the program.`,
	}
}

// Execute runs the gist given as the first argument.
func (it *GistController) Execute(cmd *cobra.Command, args []string) {
	runReference(cmd, args, commands.ToolGist, ghRepo.GistHost, it.command, it.exit)
}

// AddFlags adds the gist-specific flags to the given Cobra command.
func (it *GistController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().SetInterspersed(false)
}
