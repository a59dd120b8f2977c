package commands

import (
	"strings"

	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/spf13/cobra"
)

func newResolveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [flags] <section> [folder/path...]",
		Short: "Explain a registry location",
		Long: `Resolve a location for the target version and mode and print its session
paths, admin type, cardinality, name token, attributes and child folders.
Path segments alternate folder names and instance names for named folders;
they may be given as separate arguments or joined with '/'.`,
		Example: `  modeltools resolve topology Server/ms1
  modeltools resolve topology Server ms1 SSL
  modeltools resolve --target-mode online topology SecurityConfiguration/Realm/myrealm/AuthenticationProvider
  modeltools resolve --format json resources JDBCSystemResource/ds1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, g, args[0], args[1:])
		},
	}
}

func runResolve(cmd *cobra.Command, g *globalFlags, section string, segments []string) error {
	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	loc, err := env.resolver.ParseModelPath(section + ":/" + strings.Join(segments, "/"))
	if err != nil {
		return err
	}
	desc, err := env.resolver.Describe(loc)
	if err != nil {
		return err
	}
	if g.structured() {
		return cliutil.OutputStructured(cmd.OutOrStdout(), desc, g.format)
	}

	w := cmd.OutOrStdout()
	pairs := [][2]string{
		{"Model path", desc.ModelPath},
		{"Cardinality", desc.Cardinality},
	}
	for _, p := range [][2]string{
		{"Admin type", desc.AdminType},
		{"Name token", desc.Token},
		{"Attributes path", desc.AttributesPath},
		{"List path", desc.ListPath},
		{"Versions", desc.Version},
	} {
		if p[1] != "" {
			pairs = append(pairs, p)
		}
	}
	cliutil.KeyValueTable(w, pairs)
	if len(desc.Attributes) > 0 {
		cliutil.AttributeTable(w, desc.Attributes)
	}
	if len(desc.ChildFolders) > 0 {
		cliutil.Writef(w, "Folders: %s\n", strings.Join(desc.ChildFolders, ", "))
	}
	if len(desc.Types) > 0 {
		cliutil.Writef(w, "Types: %s\n", strings.Join(desc.Types, ", "))
	}
	return nil
}
