package controllers

import (
	"context"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
)

// CacheController handles "runref cache", listing or clearing cached references.
type CacheController struct {
	command commands.Cache
	exit    func(code int)
}

// NewCacheController creates a new CacheController.
func NewCacheController(command commands.Cache) *CacheController {
	return &CacheController{command: command, exit: os.Exit}
}

// GetBind returns the Cobra command metadata for the cache controller.
func (it *CacheController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "cache [reference]",
		Short: "List or clear cached references",
		Long: `Without flags, list every cached reference with its ETag and archive URI.
With --clear, remove the given reference (or everything) from the cache
together with its extracted files.`,
	}
}

// Execute lists or clears the cache.
func (it *CacheController) Execute(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)

	clearCache, _ := cmd.Flags().GetBool("clear")
	tool, _ := cmd.Flags().GetString("tool")

	if !clearCache {
		if err := it.list(ctx, cmd.OutOrStdout()); err != nil {
			logger.Errorf("Failed to list cache: %v", err)
			it.exit(1)
		}
		return
	}

	opts := commands.CacheClearOptions{Tool: tool}
	if len(args) > 0 {
		ref, err := entities.ParseReference(args[0])
		if err != nil {
			logger.Errorf("%v", err)
			it.exit(1)
			return
		}
		opts.Reference = ref.String()
	}

	removed, err := it.command.Clear(ctx, opts)
	if err != nil {
		logger.Errorf("Failed to clear cache: %v", err)
		it.exit(1)
		return
	}
	logger.Infof("Removed %d cached reference(s)", removed)
}

func (it *CacheController) list(ctx context.Context, out io.Writer) error {
	cached, err := it.command.List(ctx)
	if err != nil {
		return err
	}
	if len(cached) == 0 {
		_, _ = fmt.Fprintln(out, "No cached references")
		return nil
	}
	for _, item := range cached {
		_, _ = fmt.Fprintf(out, "%s\t%s\tetag=%s\turi=%s\n",
			item.Tool, item.Reference, item.Entry.ETag, item.Entry.URI)
	}
	return nil
}

// AddFlags adds the cache-specific flags to the given Cobra command.
func (it *CacheController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clear", false, "Remove cached references and their extracted files")
	cmd.Flags().String("tool", "", "Only clear entries of this tool (runref, gist)")
}
