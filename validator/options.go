package validator

import (
	"github.com/erraggy/modeltools/internal/options"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
)

// Option is a function that configures a validation operation
type Option func(*validateConfig) error

// validateConfig holds configuration for a validation operation
type validateConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	document *model.Dict

	resolver        *resolver.Resolver
	includeWarnings bool
	strictMode      bool
	logger          model.Logger
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*validateConfig, error) {
	cfg := &validateConfig{includeWarnings: true}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := options.ValidateSingleInputSource(
		"must specify an input source (use WithFilePath or WithDocument)",
		"must specify exactly one input source",
		cfg.filePath != nil, cfg.document != nil,
	); err != nil {
		return nil, err
	}
	if err := options.RequireSet("must specify a resolver (use WithResolver)", cfg.resolver != nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithFilePath specifies a model file as the input source
func WithFilePath(path string) Option {
	return func(cfg *validateConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithDocument specifies an already parsed model as the input source
func WithDocument(doc *model.Dict) Option {
	return func(cfg *validateConfig) error {
		cfg.document = doc
		return nil
	}
}

// WithResolver sets the resolver, which fixes the target version and mode
func WithResolver(r *resolver.Resolver) Option {
	return func(cfg *validateConfig) error {
		cfg.resolver = r
		return nil
	}
}

// WithIncludeWarnings enables or disables warnings and infos
// Default: true
func WithIncludeWarnings(enabled bool) Option {
	return func(cfg *validateConfig) error {
		cfg.includeWarnings = enabled
		return nil
	}
}

// WithStrictMode reports version-gated keys as errors
// Default: false
func WithStrictMode(enabled bool) Option {
	return func(cfg *validateConfig) error {
		cfg.strictMode = enabled
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(l model.Logger) Option {
	return func(cfg *validateConfig) error {
		cfg.logger = l
		return nil
	}
}
