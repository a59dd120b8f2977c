package commands

import (
	"github.com/erraggy/modeltools"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of modeltools",
		Long:  `Print the version, and with --verbose the commit, build time and platform.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if verbose {
				cliutil.Writef(cmd.OutOrStdout(), "modeltools\n%s\n", modeltools.BuildInfo())
				return
			}
			cliutil.Writef(cmd.OutOrStdout(), "modeltools version %s\n", modeltools.Version())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include build details")
	return cmd
}
