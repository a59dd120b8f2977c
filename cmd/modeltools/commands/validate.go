package commands

import (
	"fmt"
	"time"

	"github.com/erraggy/modeltools"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/validator"
	"github.com/spf13/cobra"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Strict     bool
	NoWarnings bool
	Quiet      bool
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	flags := &ValidateFlags{}
	cmd := &cobra.Command{
		Use:   "validate [flags] <model|->",
		Short: "Check a model against the registry",
		Long: `Validate a model file, or stdin, against the registry for the target
version and mode. Unknown folders and attributes, type mismatches, dangling
references and missing companion attributes are errors. Keys that exist only
in other versions are warnings unless --strict is set.

Exit Codes:
  0    no issues, or infos only
  1    warnings
  2    errors`,
		Example: `  modeltools validate model.yaml
  modeltools validate --target-version 12.2.1.4 --target-mode online model.yaml
  modeltools validate --no-warnings --format json model.yaml | jq '.Valid'
  cat model.yaml | modeltools validate -q -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, flags, args[0])
		},
	}
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "report version-gated keys as errors")
	cmd.Flags().BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warnings and infos (only show errors)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet mode: only set the exit status")
	return cmd
}

func runValidate(cmd *cobra.Command, g *globalFlags, flags *ValidateFlags, path string) error {
	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	startTime := time.Now()
	doc, err := loadModel(cmd, path)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	result, err := validator.ValidateWithOptions(
		validator.WithDocument(doc),
		validator.WithResolver(env.resolver),
		validator.WithStrictMode(flags.Strict),
		validator.WithIncludeWarnings(!flags.NoWarnings),
		validator.WithLogger(env.logger),
	)
	if err != nil {
		return err
	}
	result.SourcePath = path
	all := result.All()

	if g.structured() {
		if err := cliutil.OutputStructured(cmd.OutOrStdout(), result, g.format); err != nil {
			return err
		}
		return exitFor(issues.Severities(all))
	}
	if flags.Quiet {
		return exitFor(issues.Severities(all))
	}

	w := cmd.ErrOrStderr()
	cliutil.Writef(w, "Model Validator\n")
	cliutil.Writef(w, "===============\n\n")
	cliutil.Writef(w, "modeltools version: %s\n", modeltools.Version())
	cliutil.Writef(w, "Model: %s\n", path)
	cliutil.Writef(w, "Target: %s (%s)\n", result.TargetVersion, result.Mode)
	cliutil.Writef(w, "Total Time: %v\n\n", time.Since(startTime))
	cliutil.IssueTable(w, all)
	cliutil.Summary(w, all)
	if result.Valid {
		cliutil.Writef(w, "\n✓ Validation passed\n")
	} else {
		cliutil.Writef(w, "\n✗ Validation failed: %d error(s), %d warning(s)\n", result.ErrorCount, result.WarningCount)
	}
	return exitFor(issues.Severities(all))
}
