package commands

import (
	"fmt"
	"os"

	"github.com/erraggy/modeltools/differ"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/erraggy/modeltools/internal/fileutil"
	"github.com/erraggy/modeltools/model"
	"github.com/spf13/cobra"
)

// CompareFlags contains flags for the compare command
type CompareFlags struct {
	Output string
	Quiet  bool
}

func newCompareCmd(g *globalFlags) *cobra.Command {
	flags := &CompareFlags{}
	cmd := &cobra.Command{
		Use:   "compare [flags] <current> <past>",
		Short: "Produce the change document between two models",
		Long: `Compare a current model with a past model and print the change document:
the model that, applied to the past model, yields the current one. Instances
and attributes that only the past model has appear as '!name' deletions.

The change document goes to stdout (or --output); the change list goes to
stderr. With --format json or yaml the whole result is printed instead.`,
		Example: `  modeltools compare model-v2.yaml model-v1.yaml
  modeltools compare -o changes.yaml model-v2.yaml model-v1.yaml
  modeltools compare --format json model-v2.yaml model-v1.yaml | jq '.Changes'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, g, flags, args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "write the change document to this file")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "do not print the change list")
	return cmd
}

func runCompare(cmd *cobra.Command, g *globalFlags, flags *CompareFlags, currentPath, pastPath string) error {
	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	result, err := differ.DiffWithOptions(
		differ.WithCurrentPath(currentPath),
		differ.WithPastPath(pastPath),
		differ.WithResolver(env.resolver),
		differ.WithLogger(env.logger),
	)
	if err != nil {
		return err
	}

	if g.structured() {
		return cliutil.OutputStructured(cmd.OutOrStdout(), result, g.format)
	}

	if result.HasChanges() {
		data, err := model.Marshal(result.Model, model.FormatFromPath(flags.Output))
		if err != nil {
			return err
		}
		if flags.Output != "" {
			if err := os.WriteFile(flags.Output, data, fileutil.OwnerReadWrite); err != nil {
				return fmt.Errorf("writing change document: %w", err)
			}
		} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
	}

	if !flags.Quiet {
		w := cmd.ErrOrStderr()
		cliutil.ChangeTable(w, result.Changes)
		if len(result.Messages) > 0 {
			cliutil.Writef(w, "\nNotes:\n")
			for _, m := range result.Messages {
				cliutil.Writef(w, "  %s\n", m.String())
			}
		}
		if flags.Output != "" && result.HasChanges() {
			cliutil.Writef(w, "\nChange document written to %s\n", flags.Output)
		}
	}
	return nil
}
