package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/app"
	ticli "github.com/thenoetrevino/ticks/internal/cli"
)

// ExecuteCLICommand runs cmd with args against testApp and returns what it
// wrote to stdout and stderr, in that order.
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithInput(t, testApp, cmd, args, "")
}

// ExecuteCLICommandWithInput is ExecuteCLICommand with stdin set to input
func ExecuteCLICommandWithInput(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string, input string) (string, error) {
	t.Helper()
	stdout, stderr, err := run(t, testApp, cmd, args, strings.NewReader(input))
	return stdout + stderr, err
}

// ExecuteCLICommandStdout runs cmd like ExecuteCLICommand but returns stdout
// only, for output that is parsed.
func ExecuteCLICommandStdout(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	stdout, _, err := run(t, testApp, cmd, args, strings.NewReader(""))
	return stdout, err
}

func run(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string, stdin io.Reader) (string, string, error) {
	t.Helper()
	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(stdin)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ticli.WithApp(context.Background(), testApp))
	return stdout.String(), stderr.String(), err
}
