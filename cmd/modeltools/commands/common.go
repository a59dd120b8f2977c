package commands

import (
	"fmt"
	"io"

	"github.com/erraggy/modeltools/internal/cliutil"
	"github.com/erraggy/modeltools/internal/config"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/spf13/cobra"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// runEnv is what every command needs after flags are parsed.
type runEnv struct {
	cfg      *config.Config
	logger   model.Logger
	resolver *resolver.Resolver
}

// setup loads the config file and environment, applies the global flags on
// top and builds the logger and resolver.
func (g *globalFlags) setup(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	logger := model.NewSlogAdapter(cfg.Logger(cmd.ErrOrStderr()))

	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	r, err := resolver.New(reg, cfg.TargetVersion, cfg.Mode(), resolver.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("resolver ready", "target_version", cfg.TargetVersion, "mode", cfg.TargetMode)
	return &runEnv{cfg: cfg, logger: logger, resolver: r}, nil
}

// config returns the effective configuration: defaults, then the config
// file, then MODELTOOLS_* variables, then flags.
func (g *globalFlags) config() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.targetVersion != "" {
		cfg.TargetVersion = g.targetVersion
	}
	if g.targetMode != "" {
		cfg.TargetMode = g.targetMode
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *globalFlags) structured() bool {
	return g.format == cliutil.FormatJSON || g.format == cliutil.FormatYAML
}

// loadModel reads a model from path, or from stdin when path is "-".
func loadModel(cmd *cobra.Command, path string) (*model.Dict, error) {
	if path != StdinFilePath {
		return model.Load(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return model.Parse(data)
}

// modelFormat picks the serialization for a model written to stdout.
func modelFormat(format string) model.Format {
	if format == cliutil.FormatJSON {
		return model.FormatJSON
	}
	return model.FormatYAML
}

// exitFor turns the reported severities into an ExitError, or nil when the
// run exits with 0.
func exitFor(levels []severity.Severity) error {
	if code := severity.ExitCode(levels...); code != ExitCodeSuccess {
		return &ExitError{Code: code}
	}
	return nil
}
