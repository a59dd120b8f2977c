package deployer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/erraggy/modeltools/session"
	"github.com/erraggy/modeltools/walker"
)

// DefaultSections are the model sections applied to the session, in order.
// domainInfo is consumed by domain creation tooling, not by the session.
var DefaultSections = []string{"topology", "resources", "appDeployments"}

// Deployer applies model documents through one session.
type Deployer struct {
	r        *resolver.Resolver
	s        session.Session
	logger   model.Logger
	sections []string
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithLogger sets the logger.
func WithLogger(l model.Logger) Option {
	return func(d *Deployer) { d.logger = l }
}

// WithSections overrides DefaultSections.
func WithSections(names ...string) Option {
	return func(d *Deployer) { d.sections = names }
}

// New creates a Deployer that drives s with facts from r.
func New(r *resolver.Resolver, s session.Session, opts ...Option) *Deployer {
	d := &Deployer{r: r, s: s, sections: DefaultSections}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = model.LoggerOrNop(d.logger)
	return d
}

// Result summarizes a deploy run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string
	// Created counts instances created, placeholders included.
	Created int
	// Deleted counts instances deleted.
	Deleted int
	// Set counts attribute writes, unsets included.
	Set int
	// Issues are the non-fatal conditions the run skipped over.
	Issues []issues.Issue
}

// Deploy applies doc. Online runs are wrapped in an edit that is committed
// on success. On failure the session is recovered (open edit discarded,
// session closed) and the returned error wraps the cause.
func (d *Deployer) Deploy(ctx context.Context, doc *model.Dict) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	run := &run{
		d:      d,
		ctx:    ctx,
		res:    res,
		logger: d.logger.With("run", res.RunID),
	}
	run.logger.Info("deploy started",
		"target_version", d.r.TargetVersion(), "mode", d.r.Mode().String())

	if err := run.apply(doc); err != nil {
		run.logger.Error("deploy failed", "error", err.Error())
		return res, run.recover(err)
	}
	run.logger.Info("deploy finished",
		"created", res.Created, "deleted", res.Deleted, "set", res.Set, "issues", len(res.Issues))
	return res, nil
}

// run holds the state of one Deploy call.
type run struct {
	d       *Deployer
	ctx     context.Context
	res     *Result
	logger  model.Logger
	editing bool
}

func (r *run) apply(doc *model.Dict) error {
	online := r.d.r.Mode() == registry.Online
	if online {
		if err := r.d.s.BeginEdit(r.ctx); err != nil {
			return err
		}
		r.editing = true
	}
	for _, section := range r.d.sections {
		value, ok := doc.Get(section)
		if !ok || value == nil {
			continue
		}
		node, ok := model.AsDict(value)
		if !ok {
			return &modelerrors.AttributeTypeMismatchError{Path: section + ":/", Attribute: section, Expected: "section", Value: value}
		}
		// An unknown section is left to the walk, which reports it.
		root := location.New(section)
		if facts, err := r.d.r.Resolve(root); err == nil {
			if err := r.placeholders(root, facts, node, r.d.sectionOrder(section, node.Keys())); err != nil {
				return err
			}
		}
		if err := r.walk(section, node); err != nil {
			return err
		}
	}
	if online {
		if err := r.d.s.Commit(r.ctx); err != nil {
			return err
		}
		r.editing = false
	}
	return nil
}

func (r *run) walk(section string, node *model.Dict) error {
	h := &applier{run: r}
	w := walker.New(r.d.r, h,
		walker.WithAttributesFirst(),
		walker.WithSectionOrder(r.d.sectionOrder),
		walker.WithLogger(r.logger),
		walker.WithUserContext(r.ctx),
	)
	if err := w.WalkSection(section, node); err != nil {
		return err
	}
	return h.err
}

// placeholders creates the missing instances of every placeholder folder
// directly below loc before any attribute there is applied. keys are the
// keys of node in the order to visit.
func (r *run) placeholders(loc *location.Location, facts *resolver.FolderFacts, node *model.Dict, keys []string) error {
	for _, key := range keys {
		if model.IsDeletion(key) || !facts.HasFolder(key) {
			continue
		}
		folderLoc := loc.Copy().Append(key)
		child, err := r.d.r.Resolve(folderLoc)
		if err != nil || !child.Placeholder || !child.IsNamed() {
			continue
		}
		folder, ok := node.Dict(key)
		if !ok {
			continue
		}
		list, err := r.d.r.ListPath(folderLoc)
		if err != nil {
			return err
		}
		existing, err := r.d.s.ListInstances(r.ctx, list)
		if err != nil {
			return err
		}
		for _, name := range model.ResultingNames(nil, folder) {
			if slices.Contains(existing, name) {
				continue
			}
			if err := r.navigate(list); err != nil {
				return err
			}
			if err := r.d.s.Create(r.ctx, name, child.AdminType, list); err != nil {
				return err
			}
			r.res.Created++
			r.logger.Debug("created placeholder", "path", session.Join(list, name), "type", child.AdminType)
		}
	}
	return nil
}

// navigate always issues a navigation; callers never rely on the cursor
// left behind by earlier calls.
func (r *run) navigate(p string) error {
	return r.d.s.Navigate(r.ctx, p)
}

// recover releases the session after a failed run.
func (r *run) recover(cause error) error {
	ctx := context.WithoutCancel(r.ctx)
	errs := []error{fmt.Errorf("deployer: %w", cause)}
	if r.editing {
		if err := r.d.s.Discard(ctx); err != nil {
			errs = append(errs, err)
		}
		r.editing = false
	}
	if err := r.d.s.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	r.res.Issues = append(r.res.Issues, issues.Issue{
		Message:  cause.Error(),
		Severity: severity.SeverityCritical,
		Err:      cause,
	})
	return errors.Join(errs...)
}

// sectionOrder sorts section keys by the registry's category order. Keys
// the order does not name keep document order after the ordered ones.
// Bootstrap folders move to the front offline and to the back online.
func (d *Deployer) sectionOrder(section string, keys []string) []string {
	sec, ok := d.r.Registry().Section(section)
	if !ok {
		return keys
	}
	rank := func(key string) int {
		if i := slices.Index(sec.Order, model.DeletionTarget(key)); i >= 0 {
			return i
		}
		return len(sec.Order)
	}
	ordered := slices.Clone(keys)
	slices.SortStableFunc(ordered, func(a, b string) int { return cmp.Compare(rank(a), rank(b)) })

	var boot, main []string
	for _, key := range ordered {
		if f, ok := sec.Folder(model.DeletionTarget(key)); ok && f.Bootstrap {
			boot = append(boot, key)
		} else {
			main = append(main, key)
		}
	}
	if d.r.Mode() == registry.Online {
		return append(main, boot...)
	}
	return append(boot, main...)
}
