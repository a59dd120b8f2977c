// Package commands provides the cobra command tree for the modeltools CLI.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/erraggy/modeltools"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/spf13/cobra"
)

// Exit codes. Successful runs exit with the status derived from the worst
// reported severity: 0 for none or info, 1 for warnings, 2 for errors.
const (
	// ExitCodeSuccess indicates nothing worse than info was reported.
	ExitCodeSuccess = 0
	// ExitCodeFailure indicates the command itself failed (bad arguments,
	// unreadable input, session failure).
	ExitCodeFailure = 3
)

// ExitError carries a non-zero exit status for a run that completed but
// reported warnings or errors. It prints nothing of its own.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath    string
	targetVersion string
	targetMode    string
	logLevel      string
	format        string
}

// NewRootCmd builds the modeltools command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "modeltools",
		Short: "Validate, compare, deploy and discover domain models",
		Long: `modeltools works with declarative domain models: nested YAML documents
describing topology, resources and deployments. Every command resolves the
model against a registry of folder and attribute metadata for one target
version and mode (offline or online).`,
		Version: modeltools.Version(),
		// SilenceUsage keeps usage text out of runtime failures.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cliutil.ValidateOutputFormat(g.format)
		},
	}
	root.SetVersionTemplate(`{{printf "modeltools version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (YAML); MODELTOOLS_* variables override it")
	pf.StringVar(&g.targetVersion, "target-version", "", "target product version, e.g. 14.1.2")
	pf.StringVar(&g.targetMode, "target-mode", "", "target mode: offline or online")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVarP(&g.format, "format", "f", cliutil.FormatText, "output format: text, json, or yaml")

	root.AddCommand(
		newValidateCmd(g),
		newCompareCmd(g),
		newDeployCmd(g),
		newDiscoverCmd(g),
		newResolveCmd(g),
		newMCPCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	cliutil.Writef(root.ErrOrStderr(), "Error: %v\n", err)
	return ExitCodeFailure
}
