//go:build unit

package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/test/domain/commanddoubles"
)

type exitRecorder struct {
	codes []int
}

func (r *exitRecorder) exit(code int) {
	r.codes = append(r.codes, code)
}

func TestRunController(t *testing.T) {
	t.Parallel()

	t.Run("should pass the parsed reference, tool and program arguments", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		recorder := &exitRecorder{}
		controller := &RunController{command: stub, exit: recorder.exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"kzu/sandbox@v1.0.0:src/program.cs", "--name", "world"})

		// then
		require.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, "kzu/sandbox@v1.0.0:src/program.cs", stub.LastOpts.Reference.String())
		assert.Equal(t, commands.ToolRun, stub.LastOpts.ToolName)
		assert.Equal(t, []string{"--name", "world"}, stub.LastOpts.Args)
		assert.Empty(t, recorder.codes)
	})

	t.Run("should exit with the program's exit code", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{Result: &commands.RunResult{ExitCode: 42}}
		recorder := &exitRecorder{}
		controller := &RunController{command: stub, exit: recorder.exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"kzu/sandbox"})

		// then
		assert.Equal(t, []int{42}, recorder.codes)
	})

	t.Run("should exit with 1 for an invalid reference without running anything", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		recorder := &exitRecorder{}
		controller := &RunController{command: stub, exit: recorder.exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"not a reference"})

		// then
		assert.Equal(t, []int{1}, recorder.codes)
		assert.Zero(t, stub.ExecuteCallCount)
	})

	t.Run("should exit with 1 when no reference is given", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		recorder := &exitRecorder{}
		controller := &RunController{command: stub, exit: recorder.exit}

		// when
		controller.Execute(&cobra.Command{}, nil)

		// then
		assert.Equal(t, []int{1}, recorder.codes)
		assert.Zero(t, stub.ExecuteCallCount)
	})

	t.Run("should exit with 1 when the command fails", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{ExecuteErr: entities.ErrReferenceNotFound}
		recorder := &exitRecorder{}
		controller := &RunController{command: stub, exit: recorder.exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"kzu/private"})

		// then
		assert.Equal(t, []int{1}, recorder.codes)
	})

	t.Run("should drop the separator between the reference and the program arguments", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		controller := &RunController{command: stub, exit: (&exitRecorder{}).exit}
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		cmd := &cobra.Command{Use: "runref", Args: cobra.ArbitraryArgs, Run: controller.Execute}
		controller.AddFlags(cmd)
		cmd.SetArgs([]string{"kzu/sandbox@v1.0.0:src/program.cs", "--", "--flag"})

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		require.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, []string{"--flag"}, stub.LastOpts.Args)
	})

	t.Run("should keep a later separator meant for the program", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		controller := &RunController{command: stub, exit: (&exitRecorder{}).exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"kzu/sandbox", "build", "--", "--flag"})

		// then
		assert.Equal(t, []string{"build", "--", "--flag"}, stub.LastOpts.Args)
	})

	t.Run("should hand the command context to the run", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		controller := &RunController{command: stub, exit: (&exitRecorder{}).exit}
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		cmd := &cobra.Command{Use: "runref", Args: cobra.ArbitraryArgs, Run: controller.Execute}
		cmd.SetArgs([]string{"kzu/sandbox"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		err := cmd.ExecuteContext(ctx)

		// then
		require.NoError(t, err)
		require.NotNil(t, stub.LastCtx)
		require.ErrorIs(t, stub.LastCtx.Err(), context.Canceled)
	})

	t.Run("should stop parsing flags at the reference", func(t *testing.T) {
		t.Parallel()

		// given
		controller := NewRunController(&commanddoubles.StubRunCommand{})
		cmd := &cobra.Command{}
		controller.AddFlags(cmd)

		// when
		err := cmd.Flags().Parse([]string{"kzu/sandbox", "--unknown", "value"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"kzu/sandbox", "--unknown", "value"}, cmd.Flags().Args())
	})
}

func TestGistController(t *testing.T) {
	t.Parallel()

	t.Run("should default the host to the gist host and use the gist tool", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		controller := &GistController{command: stub, exit: (&exitRecorder{}).exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"kzu/0123abcd"})

		// then
		require.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, "gist.github.com", stub.LastOpts.Reference.Host)
		assert.Equal(t, commands.ToolGist, stub.LastOpts.ToolName)
	})

	t.Run("should keep an explicit host", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubRunCommand{}
		controller := &GistController{command: stub, exit: (&exitRecorder{}).exit}

		// when
		controller.Execute(&cobra.Command{}, []string{"github.com/kzu/0123abcd"})

		// then
		assert.Equal(t, "github.com", stub.LastOpts.Reference.Host)
	})
}

func TestDescribeFailure(t *testing.T) {
	t.Parallel()

	t.Run("should hide the reason of a denial", func(t *testing.T) {
		t.Parallel()

		// given
		ref := entities.Reference{Owner: "kzu", Repo: "private"}
		err := fmt.Errorf("%w: kzu/private (status 404)", entities.ErrReferenceNotFound)

		// when
		message := describeFailure(ref, err)

		// then
		assert.Equal(t, "Reference kzu/private not found", message)
	})

	t.Run("should keep other errors verbatim", func(t *testing.T) {
		t.Parallel()

		// given
		err := errors.New("boom")

		// when
		message := describeFailure(entities.Reference{Owner: "kzu", Repo: "sandbox"}, err)

		// then
		assert.Equal(t, "boom", message)
	})
}

func TestCacheController(t *testing.T) {
	t.Parallel()

	newCommand := func(controller *CacheController) (*cobra.Command, *bytes.Buffer) {
		cmd := &cobra.Command{}
		controller.AddFlags(cmd)
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		return cmd, out
	}

	t.Run("should list cached references", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCacheCommand{Cached: []entities.CachedReference{{
			Tool:      commands.ToolRun,
			Reference: "kzu/sandbox",
			Entry:     entities.CacheEntry{ETag: `"v1"`, URI: "https://github.com/kzu/sandbox/archive/main.zip"},
		}}}
		controller := NewCacheController(stub)
		cmd, out := newCommand(controller)

		// when
		controller.Execute(cmd, nil)

		// then
		assert.Equal(t,
			"runref\tkzu/sandbox\tetag=\"v1\"\turi=https://github.com/kzu/sandbox/archive/main.zip\n",
			out.String())
		assert.Zero(t, stub.ClearCallCount)
	})

	t.Run("should say when nothing is cached", func(t *testing.T) {
		t.Parallel()

		// given
		controller := NewCacheController(&commanddoubles.StubCacheCommand{})
		cmd, out := newCommand(controller)

		// when
		controller.Execute(cmd, nil)

		// then
		assert.Equal(t, "No cached references\n", out.String())
	})

	t.Run("should clear a canonicalized reference for one tool", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCacheCommand{Removed: 1}
		controller := NewCacheController(stub)
		cmd, _ := newCommand(controller)
		require.NoError(t, cmd.Flags().Parse([]string{"--clear", "--tool", "gist"}))

		// when
		controller.Execute(cmd, []string{"kzu/sandbox@main"})

		// then
		require.Equal(t, 1, stub.ClearCallCount)
		assert.Equal(t, commands.CacheClearOptions{Tool: "gist", Reference: "kzu/sandbox@main"}, stub.LastClearOpts)
	})

	t.Run("should exit with 1 without clearing anything for an invalid reference", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCacheCommand{}
		recorder := &exitRecorder{}
		controller := &CacheController{command: stub, exit: recorder.exit}
		cmd, _ := newCommand(controller)
		require.NoError(t, cmd.Flags().Parse([]string{"--clear"}))

		// when
		controller.Execute(cmd, []string{"invalid"})

		// then
		assert.Zero(t, stub.ClearCallCount)
		assert.Equal(t, []int{1}, recorder.codes)
	})

	t.Run("should exit with 1 when clearing fails", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCacheCommand{ClearErr: errors.New("permission denied")}
		recorder := &exitRecorder{}
		controller := &CacheController{command: stub, exit: recorder.exit}
		cmd, _ := newCommand(controller)
		require.NoError(t, cmd.Flags().Parse([]string{"--clear"}))

		// when
		controller.Execute(cmd, nil)

		// then
		assert.Equal(t, 1, stub.ClearCallCount)
		assert.Equal(t, []int{1}, recorder.codes)
	})

	t.Run("should exit with 1 when listing fails", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCacheCommand{ListErr: errors.New("corrupt cache")}
		recorder := &exitRecorder{}
		controller := &CacheController{command: stub, exit: recorder.exit}
		cmd, _ := newCommand(controller)

		// when
		controller.Execute(cmd, nil)

		// then
		assert.Equal(t, []int{1}, recorder.codes)
	})
}
