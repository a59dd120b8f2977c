package differ

import (
	"github.com/erraggy/modeltools/internal/options"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
)

// Option is a function that configures a diff operation
type Option func(*diffConfig) error

// diffConfig holds configuration for a diff operation
type diffConfig struct {
	// Current model (exactly one must be set)
	currentPath *string
	current     *model.Dict

	// Past model (exactly one must be set)
	pastPath *string
	past     *model.Dict

	resolver *resolver.Resolver
	logger   model.Logger
}

// DiffWithOptions compares two models using functional options
func DiffWithOptions(opts ...Option) (*DiffResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	d := New(cfg.resolver)
	d.Logger = cfg.logger

	current := cfg.current
	if cfg.currentPath != nil {
		if current, err = model.Load(*cfg.currentPath); err != nil {
			return nil, err
		}
	}
	past := cfg.past
	if cfg.pastPath != nil {
		if past, err = model.Load(*cfg.pastPath); err != nil {
			return nil, err
		}
	}
	result, err := d.Diff(current, past)
	if err != nil {
		return nil, err
	}
	if cfg.currentPath != nil {
		result.CurrentPath = *cfg.currentPath
	}
	if cfg.pastPath != nil {
		result.PastPath = *cfg.pastPath
	}
	return result, nil
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*diffConfig, error) {
	cfg := &diffConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := options.ValidateSingleInputSource(
		"must specify a current model (use WithCurrentPath or WithCurrent)",
		"must specify exactly one current model",
		cfg.currentPath != nil, cfg.current != nil,
	); err != nil {
		return nil, err
	}
	if err := options.ValidateSingleInputSource(
		"must specify a past model (use WithPastPath or WithPast)",
		"must specify exactly one past model",
		cfg.pastPath != nil, cfg.past != nil,
	); err != nil {
		return nil, err
	}
	if err := options.RequireSet("must specify a resolver (use WithResolver)", cfg.resolver != nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithCurrentPath specifies the current model file
func WithCurrentPath(path string) Option {
	return func(cfg *diffConfig) error {
		cfg.currentPath = &path
		return nil
	}
}

// WithCurrent specifies an already parsed current model
func WithCurrent(doc *model.Dict) Option {
	return func(cfg *diffConfig) error {
		cfg.current = doc
		return nil
	}
}

// WithPastPath specifies the past model file
func WithPastPath(path string) Option {
	return func(cfg *diffConfig) error {
		cfg.pastPath = &path
		return nil
	}
}

// WithPast specifies an already parsed past model
func WithPast(doc *model.Dict) Option {
	return func(cfg *diffConfig) error {
		cfg.past = doc
		return nil
	}
}

// WithResolver sets the resolver, which fixes the target version and mode
func WithResolver(r *resolver.Resolver) Option {
	return func(cfg *diffConfig) error {
		cfg.resolver = r
		return nil
	}
}

// WithLogger sets the logger for the comparison summary
func WithLogger(l model.Logger) Option {
	return func(cfg *diffConfig) error {
		cfg.logger = l
		return nil
	}
}
