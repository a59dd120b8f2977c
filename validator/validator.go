package validator

import (
	"errors"
	"fmt"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/erraggy/modeltools/walker"
)

// Severity indicates the severity level of a validation issue
type Severity = severity.Severity

const (
	// SeverityError indicates a model that cannot be applied as written
	SeverityError = severity.SeverityError
	// SeverityWarning indicates a key that will be skipped
	SeverityWarning = severity.SeverityWarning
	// SeverityInfo indicates informational messages
	SeverityInfo = severity.SeverityInfo
	// SeverityCritical indicates critical issues
	SeverityCritical = severity.SeverityCritical
)

// ValidationError represents a single validation issue
type ValidationError = issues.Issue

// ValidationResult contains the results of validating a model
type ValidationResult struct {
	// Valid is true if no errors were found (warnings are allowed)
	Valid bool
	// TargetVersion is the version the model was checked against
	TargetVersion string
	// Mode is the target mode
	Mode registry.Mode
	// Errors contains all validation errors
	Errors []ValidationError
	// Warnings contains all validation warnings
	Warnings []ValidationError
	// Infos contains informational messages
	Infos []ValidationError
	// ErrorCount is the total number of errors
	ErrorCount int
	// WarningCount is the total number of warnings
	WarningCount int
	// SourcePath is the model file path, if the model was loaded from one
	SourcePath string
}

// All returns every issue: errors, then warnings, then infos.
func (r *ValidationResult) All() []ValidationError {
	out := make([]ValidationError, 0, len(r.Errors)+len(r.Warnings)+len(r.Infos))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return append(out, r.Infos...)
}

// Validator checks model documents.
type Validator struct {
	// IncludeWarnings determines whether warnings and infos are reported
	IncludeWarnings bool
	// StrictMode reports version-gated keys as errors
	StrictMode bool
	// Logger receives debug output; nil disables logging
	Logger model.Logger

	r *resolver.Resolver
}

// New creates a Validator with default settings.
func New(r *resolver.Resolver) *Validator {
	return &Validator{IncludeWarnings: true, r: r}
}

// ValidateWithOptions validates a model using functional options.
//
// Example:
//
//	result, err := validator.ValidateWithOptions(
//	    validator.WithFilePath("model.yaml"),
//	    validator.WithResolver(r),
//	    validator.WithStrictMode(true),
//	)
func ValidateWithOptions(opts ...Option) (*ValidationResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("validator: invalid options: %w", err)
	}
	v := &Validator{
		IncludeWarnings: cfg.includeWarnings,
		StrictMode:      cfg.strictMode,
		Logger:          cfg.logger,
		r:               cfg.resolver,
	}
	if cfg.document != nil {
		return v.Validate(cfg.document)
	}
	return v.ValidateFile(*cfg.filePath)
}

// ValidateFile loads and validates the model at path.
func (v *Validator) ValidateFile(path string) (*ValidationResult, error) {
	doc, err := model.Load(path)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	result, err := v.Validate(doc)
	if err != nil {
		return nil, err
	}
	result.SourcePath = path
	return result, nil
}

// Validate checks doc. The error is non-nil only when validation could not
// run; problems with the model are reported in the result.
func (v *Validator) Validate(doc *model.Dict) (*ValidationResult, error) {
	if v.r == nil {
		return nil, fmt.Errorf("validator: no resolver configured")
	}
	result := &ValidationResult{
		TargetVersion: v.r.TargetVersion(),
		Mode:          v.r.Mode(),
	}
	h := &checker{v: v, result: result, refs: newRefIndex(doc, v.r)}
	w := walker.New(v.r, h, walker.WithLogger(v.Logger))
	if err := w.Walk(doc); err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	result.ErrorCount = len(result.Errors)
	result.WarningCount = len(result.Warnings)
	result.Valid = result.ErrorCount == 0
	return result, nil
}

func (v *Validator) add(result *ValidationResult, issue ValidationError) {
	switch issue.Severity {
	case SeverityError, SeverityCritical:
		result.Errors = append(result.Errors, issue)
	case SeverityWarning:
		if v.IncludeWarnings {
			result.Warnings = append(result.Warnings, issue)
		}
	default:
		if v.IncludeWarnings {
			result.Infos = append(result.Infos, issue)
		}
	}
}

// checker reports walker events as validation issues.
type checker struct {
	walker.NopHooks
	v      *Validator
	result *ValidationResult
	refs   *refIndex
}

var _ walker.Hooks = (*checker)(nil)

func (c *checker) report(wc *walker.Context, sev Severity, field, msg string, value any, err error) {
	c.v.add(c.result, ValidationError{
		Path:     wc.ModelPath(),
		Field:    field,
		Message:  msg,
		Severity: sev,
		Value:    value,
		Err:      err,
	})
}

// Attribute checks the value shape, access, companions and references.
func (c *checker) Attribute(wc *walker.Context, attr *resolver.AttributeFacts, key string, value any) walker.Action {
	shown := attr.Display(value)
	if err := attr.Check(value); err != nil {
		c.report(wc, SeverityError, key, fmt.Sprintf("value %s is not a valid %s", shown, attr.Type), shown, err)
		return walker.Continue
	}
	if !attr.Access.Writable() {
		c.report(wc, SeverityWarning, key, fmt.Sprintf("%s attribute is ignored when deploying", attr.Access), shown, nil)
	}
	for _, companion := range attr.Requires {
		if !wc.Node.Has(companion) {
			err := &modelerrors.UnsupportedCombinationError{
				Path:      wc.ModelPath(),
				Attribute: key,
				Message:   fmt.Sprintf("requires %s", companion),
			}
			c.report(wc, SeverityError, key, err.Error(), nil, err)
		}
	}
	if len(attr.RefersTo) > 0 {
		c.references(wc, attr, key, value)
	}
	return walker.Continue
}

func (c *checker) references(wc *walker.Context, attr *resolver.AttributeFacts, key string, value any) {
	sev := SeverityError
	if c.v.r.Mode() == registry.Online {
		sev = SeverityWarning
	}
	for _, name := range model.SplitList(value) {
		if model.IsDeletion(name) || c.refs.contains(attr.RefersTo, name) {
			continue
		}
		err := &modelerrors.UnsupportedCombinationError{
			Path:      wc.ModelPath(),
			Attribute: key,
			Message:   fmt.Sprintf("references %q, which is not defined in %v", name, attr.RefersTo),
		}
		c.report(wc, sev, key, err.Error(), name, err)
	}
}

// Unrecognized classifies keys the walker could not place.
func (c *checker) Unrecognized(wc *walker.Context, key string, value any, outcome resolver.KeyOutcome) walker.Action {
	if outcome.CustomType {
		c.report(wc, SeverityInfo, key, "custom type is not checked against the registry", nil, nil)
		return walker.Continue
	}
	err := outcome.Err
	if err == nil {
		err = &modelerrors.UnknownLocationError{Section: wc.Section(), Path: wc.ModelPath(), Attribute: key}
	}
	var unknown *modelerrors.UnknownLocationError
	if errors.As(err, &unknown) && unknown.VersionGated {
		sev := SeverityWarning
		if c.v.StrictMode {
			sev = SeverityError
		}
		c.report(wc, sev, key, err.Error(), nil, err)
		return walker.Continue
	}
	c.report(wc, SeverityError, key, err.Error(), nil, err)
	return walker.Continue
}
