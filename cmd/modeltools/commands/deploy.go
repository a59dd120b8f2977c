package commands

import (
	"fmt"
	"strconv"

	"github.com/erraggy/modeltools/deployer"
	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/session/sqlstore"
	"github.com/erraggy/modeltools/validator"
	"github.com/spf13/cobra"
)

// DeployFlags contains flags for the deploy command
type DeployFlags struct {
	Store      string
	Sections   []string
	SkipChecks bool
}

// deployReport is the structured output of the deploy command.
type deployReport struct {
	RunID   string         `json:"run_id"           yaml:"run_id"`
	Store   string         `json:"store"            yaml:"store"`
	Created int            `json:"created"          yaml:"created"`
	Deleted int            `json:"deleted"          yaml:"deleted"`
	Set     int            `json:"set"              yaml:"set"`
	Issues  []issues.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

func newDeployCmd(g *globalFlags) *cobra.Command {
	flags := &DeployFlags{}
	cmd := &cobra.Command{
		Use:   "deploy [flags] <model|->",
		Short: "Apply a model to a configuration store",
		Long: `Apply a model to the SQLite configuration store named by --store (or the
store setting). The model is validated first and nothing is applied when
validation reports errors. Folders are created before the attributes that
reference them, and '!name' keys delete instances.`,
		Example: `  modeltools deploy --store domain.db model.yaml
  modeltools deploy --store domain.db --section resources changes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, g, flags, args[0])
		},
	}
	cmd.Flags().StringVar(&flags.Store, "store", "", "configuration store (SQLite file); defaults to the store setting")
	cmd.Flags().StringSliceVar(&flags.Sections, "section", nil, "deploy only these sections (repeatable)")
	cmd.Flags().BoolVar(&flags.SkipChecks, "skip-validation", false, "apply without validating first")
	return cmd
}

func runDeploy(cmd *cobra.Command, g *globalFlags, flags *DeployFlags, path string) error {
	env, err := g.setup(cmd)
	if err != nil {
		return err
	}
	doc, err := loadModel(cmd, path)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	w := cmd.ErrOrStderr()

	if !flags.SkipChecks {
		v := validator.New(env.resolver)
		v.IncludeWarnings = false
		v.Logger = env.logger
		checked, err := v.Validate(doc)
		if err != nil {
			return err
		}
		if !checked.Valid {
			cliutil.IssueTable(w, checked.Errors)
			cliutil.Writef(w, "\n✗ Model has %d error(s); nothing was deployed\n", checked.ErrorCount)
			return exitFor(issues.Severities(checked.Errors))
		}
	}

	store := flags.Store
	if store == "" {
		store = env.cfg.Store
	}
	s, err := sqlstore.Open(cmd.Context(), store,
		sqlstore.WithLockTimeout(env.cfg.LockTimeout),
		sqlstore.WithLogger(env.logger))
	if err != nil {
		return err
	}

	opts := []deployer.Option{deployer.WithLogger(env.logger)}
	if len(flags.Sections) > 0 {
		opts = append(opts, deployer.WithSections(flags.Sections...))
	}
	res, deployErr := deployer.New(env.resolver, s, opts...).Deploy(cmd.Context(), doc)
	if deployErr != nil {
		// The deployer has already released the store.
		cliutil.IssueTable(w, res.Issues)
		return deployErr
	}
	if err := s.Close(cmd.Context()); err != nil {
		return err
	}

	report := deployReport{
		RunID:   res.RunID,
		Store:   store,
		Created: res.Created,
		Deleted: res.Deleted,
		Set:     res.Set,
		Issues:  res.Issues,
	}
	if g.structured() {
		if err := cliutil.OutputStructured(cmd.OutOrStdout(), report, g.format); err != nil {
			return err
		}
		return exitFor(issues.Severities(res.Issues))
	}

	cliutil.KeyValueTable(w, [][2]string{
		{"Run", report.RunID},
		{"Store", report.Store},
		{"Created", strconv.Itoa(report.Created)},
		{"Deleted", strconv.Itoa(report.Deleted)},
		{"Attributes set", strconv.Itoa(report.Set)},
	})
	if len(res.Issues) > 0 {
		cliutil.IssueTable(w, res.Issues)
		cliutil.Summary(w, res.Issues)
	}
	if worst, ok := severity.Worst(issues.Severities(res.Issues)...); !ok || worst < severity.SeverityError {
		cliutil.Writef(w, "\n✓ Deploy finished\n")
	}
	return exitFor(issues.Severities(res.Issues))
}
