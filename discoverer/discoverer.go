// Package discoverer reads an administrative session back into a model
// document, using the same registry facts the deployer applies.
//
// Read-only attributes are skipped unless they are discoverable (rod),
// values equal to the registry default are omitted unless WithDefaults is
// set, and password values are replaced by [PasswordPlaceholder].
package discoverer

import (
	"context"
	"fmt"
	"slices"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/erraggy/modeltools/session"
)

// PasswordPlaceholder replaces discovered password values.
const PasswordPlaceholder = "--FIX ME--"

// DefaultSections are the sections read from the session.
var DefaultSections = []string{"topology", "resources", "appDeployments"}

// Discoverer builds model documents from a session.
type Discoverer struct {
	r        *resolver.Resolver
	s        session.Session
	logger   model.Logger
	sections []string
	defaults bool
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the logger.
func WithLogger(l model.Logger) Option {
	return func(d *Discoverer) { d.logger = l }
}

// WithSections overrides DefaultSections.
func WithSections(names ...string) Option {
	return func(d *Discoverer) { d.sections = names }
}

// WithDefaults keeps attribute values equal to the registry default.
func WithDefaults() Option {
	return func(d *Discoverer) { d.defaults = true }
}

// New creates a Discoverer.
func New(r *resolver.Resolver, s session.Session, opts ...Option) *Discoverer {
	d := &Discoverer{r: r, s: s, sections: DefaultSections}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = model.LoggerOrNop(d.logger)
	return d
}

// Result is a discovered model and the conditions met while reading it.
type Result struct {
	Model  *model.Dict
	Issues []issues.Issue
}

// Discover reads every configured section. Empty sections are omitted.
func (d *Discoverer) Discover(ctx context.Context) (*Result, error) {
	res := &Result{Model: model.NewDict()}
	for _, section := range d.sections {
		loc := location.New(section)
		facts, err := d.r.Resolve(loc)
		if err != nil {
			return res, fmt.Errorf("discoverer: %w", err)
		}
		node, err := d.node(ctx, res, loc, facts, true)
		if err != nil {
			return res, fmt.Errorf("discoverer: %s: %w", section, err)
		}
		if node.Len() > 0 {
			res.Model.Set(section, node)
		}
	}
	d.logger.Info("discovery finished", "sections", res.Model.Len(), "issues", len(res.Issues))
	return res, nil
}

// node reads the attributes and child folders of one folder instance.
// backed reports whether a session object holds its attributes.
func (d *Discoverer) node(ctx context.Context, res *Result, loc *location.Location, facts *resolver.FolderFacts, backed bool) (*model.Dict, error) {
	node := model.NewDict()
	if backed {
		if err := d.attributes(ctx, loc, facts, node); err != nil {
			return nil, err
		}
	}
	names := facts.FolderNames()
	children := make([]*resolver.FolderFacts, len(names))
	lists := make(map[string]int)
	for i, name := range names {
		child, err := d.r.Resolve(loc.Copy().Append(name))
		if err != nil {
			return nil, err
		}
		children[i] = child
		if child.IsNamed() {
			lists[child.ListTemplate]++
		}
	}
	for i, name := range names {
		childLoc := loc.Copy().Append(name)
		child := children[i]
		var value *model.Dict
		var err error
		switch {
		case child.IsNamed():
			value, err = d.named(ctx, res, childLoc, child, lists[child.ListTemplate] > 1)
		case child.Cardinality == registry.CardinalitySingle && child.Token != "":
			value, err = d.single(ctx, res, childLoc, child)
		default:
			value, err = d.node(ctx, res, childLoc, child, false)
			if value != nil && value.Len() == 0 {
				value = nil
			}
		}
		if err != nil {
			return nil, err
		}
		if value != nil {
			node.Set(name, value)
		}
	}
	return node, nil
}

// named reads every instance listed for a MULTIPLE folder, or nil if none.
// When sibling folders share the list path, only instances of the folder's
// own admin type are read.
func (d *Discoverer) named(ctx context.Context, res *Result, loc *location.Location, facts *resolver.FolderFacts, shared bool) (*model.Dict, error) {
	list, err := d.r.ListPath(loc)
	if err != nil {
		return nil, err
	}
	names, err := d.s.ListInstances(ctx, list)
	if err != nil {
		return nil, err
	}
	if shared {
		names, err = d.ofType(ctx, list, names, facts.AdminType)
		if err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	folder := model.NewDict()
	for _, name := range names {
		instLoc := loc.Copy().AddNameToken(facts.Token, name)
		var inst *model.Dict
		if facts.HasTypes() {
			inst, err = d.typed(ctx, res, instLoc, facts, session.Join(list, name))
		} else {
			inst, err = d.node(ctx, res, instLoc, facts, true)
		}
		if err != nil {
			return nil, err
		}
		folder.Set(name, inst)
	}
	return folder, nil
}

// ofType keeps the names under list whose admin type is adminType.
func (d *Discoverer) ofType(ctx context.Context, list string, names []string, adminType string) ([]string, error) {
	kept := names[:0:0]
	for _, name := range names {
		typ, err := d.s.AdminType(ctx, session.Join(list, name))
		if err != nil {
			return nil, err
		}
		if typ == adminType {
			kept = append(kept, name)
		}
	}
	return kept, nil
}

// single reads a token-bearing SINGLE folder if its instance exists.
func (d *Discoverer) single(ctx context.Context, res *Result, loc *location.Location, facts *resolver.FolderFacts) (*model.Dict, error) {
	loc = loc.Copy()
	name, ok := loc.NameToken(facts.Token)
	if !ok {
		name = facts.SingleName
		loc.AddNameToken(facts.Token, name)
	}
	list, err := d.r.ListPath(loc)
	if err != nil {
		return nil, err
	}
	names, err := d.s.ListInstances(ctx, list)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, name) {
		return nil, nil
	}
	return d.node(ctx, res, loc, facts, true)
}

// typed reads a typed instance under the key of its artificial type.
// Types the registry does not know are reported and emitted empty.
func (d *Discoverer) typed(ctx context.Context, res *Result, loc *location.Location, facts *resolver.FolderFacts, instPath string) (*model.Dict, error) {
	adminType, err := d.s.AdminType(ctx, instPath)
	if err != nil {
		return nil, err
	}
	inst := model.NewDict()
	for _, typeName := range facts.TypeNames() {
		typeLoc := loc.Copy().Append(typeName)
		typeFacts, err := d.r.Resolve(typeLoc)
		if err != nil {
			return nil, err
		}
		if typeFacts.AdminType != adminType {
			continue
		}
		node, err := d.node(ctx, res, typeLoc, typeFacts, true)
		if err != nil {
			return nil, err
		}
		inst.Set(typeName, node)
		return inst, nil
	}
	res.Issues = append(res.Issues, issues.Issue{
		Path:     d.r.ModelPath(loc),
		Field:    adminType,
		Message:  "custom type discovered without attributes",
		Severity: severity.SeverityInfo,
	})
	inst.Set(adminType, model.NewDict())
	return inst, nil
}

// attributes copies the discoverable attributes of loc into node.
func (d *Discoverer) attributes(ctx context.Context, loc *location.Location, facts *resolver.FolderFacts, node *model.Dict) error {
	attrs := facts.Attributes()
	if len(attrs) == 0 {
		return nil
	}
	paths, err := d.r.Paths(loc)
	if err != nil {
		return err
	}
	if err := d.s.Navigate(ctx, paths.Attributes); err != nil {
		return err
	}
	for _, attr := range attrs {
		if attr.Access == registry.AccessRO {
			continue
		}
		value, err := d.s.GetAttribute(ctx, paths.Attributes, attr.AdminName)
		if err != nil {
			return err
		}
		if value == nil {
			continue
		}
		if attr.Password {
			node.Set(attr.Name, PasswordPlaceholder)
			continue
		}
		if !d.defaults && attr.Default != nil && model.Equal(value, attr.Default) {
			continue
		}
		node.Set(attr.Name, value)
	}
	return nil
}
