package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/modeltools/discoverer"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/erraggy/modeltools/internal/fileutil"
	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/session/sqlstore"
	"github.com/spf13/cobra"
)

// DiscoverFlags contains flags for the discover command
type DiscoverFlags struct {
	Store    string
	Output   string
	Sections []string
	Defaults bool
}

func newDiscoverCmd(g *globalFlags) *cobra.Command {
	flags := &DiscoverFlags{}
	cmd := &cobra.Command{
		Use:   "discover [flags]",
		Short: "Read a configuration store back into a model",
		Long: `Walk the configuration store with the registry for the target version and
write the model it describes. Password attributes are written as a
placeholder, read-only attributes are skipped unless the registry marks them
discoverable, and values equal to the registry default are omitted unless
--defaults is set.`,
		Example: `  modeltools discover --store domain.db
  modeltools discover --store domain.db --section topology -o topology.yaml
  modeltools discover --store domain.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd, g, flags)
		},
	}
	cmd.Flags().StringVar(&flags.Store, "store", "", "configuration store (SQLite file); defaults to the store setting")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "write the model to this file instead of stdout")
	cmd.Flags().StringSliceVar(&flags.Sections, "section", nil, "discover only these sections (repeatable)")
	cmd.Flags().BoolVar(&flags.Defaults, "defaults", false, "keep attribute values equal to the registry default")
	return cmd
}

func runDiscover(cmd *cobra.Command, g *globalFlags, flags *DiscoverFlags) (err error) {
	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	store := flags.Store
	if store == "" {
		store = env.cfg.Store
	}
	if _, statErr := os.Stat(store); statErr != nil {
		return fmt.Errorf("configuration store: %w", statErr)
	}
	s, err := sqlstore.Open(cmd.Context(), store,
		sqlstore.WithLockTimeout(env.cfg.LockTimeout),
		sqlstore.WithLogger(env.logger))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close(cmd.Context()))
	}()

	opts := []discoverer.Option{discoverer.WithLogger(env.logger)}
	if len(flags.Sections) > 0 {
		opts = append(opts, discoverer.WithSections(flags.Sections...))
	}
	if flags.Defaults {
		opts = append(opts, discoverer.WithDefaults())
	}
	res, err := discoverer.New(env.resolver, s, opts...).Discover(cmd.Context())
	if err != nil {
		return err
	}

	format := modelFormat(g.format)
	if flags.Output != "" {
		format = model.FormatFromPath(flags.Output)
	}
	data, err := model.Marshal(res.Model, format)
	if err != nil {
		return err
	}
	if flags.Output != "" {
		if err := os.WriteFile(flags.Output, data, fileutil.OwnerReadWrite); err != nil {
			return fmt.Errorf("writing model: %w", err)
		}
	} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if len(res.Issues) > 0 {
		w := cmd.ErrOrStderr()
		cliutil.IssueTable(w, res.Issues)
		cliutil.Summary(w, res.Issues)
	}
	return exitFor(issues.Severities(res.Issues))
}
