package walker

import (
	"context"
	"fmt"
	"slices"

	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
)

// Walker traverses model documents with one set of hooks.
// A Walker is not safe for concurrent use.
type Walker struct {
	r               *resolver.Resolver
	hooks           Hooks
	attributesFirst bool
	sectionOrder    func(section string, keys []string) []string
	sections        []string
	logger          model.Logger
	userCtx         context.Context
	err             error
}

// New creates a Walker.
func New(r *resolver.Resolver, hooks Hooks, opts ...Option) *Walker {
	w := &Walker{r: r, hooks: hooks, logger: model.NopLogger{}}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = model.LoggerOrNop(w.logger)
	if w.userCtx == nil {
		w.userCtx = context.Background()
	}
	return w
}

// Walk visits every section of doc in document order. Sections the
// registry does not know are reported to Hooks.Unrecognized. The returned
// error is non-nil only when the user context is done.
func (w *Walker) Walk(doc *model.Dict) error {
	w.err = nil
	root := w.context(location.New(""), nil, doc, "")
	for _, key := range doc.Keys() {
		if len(w.sections) > 0 && !slices.Contains(w.sections, key) {
			continue
		}
		value, _ := doc.Get(key)
		if _, ok := w.r.Registry().Section(key); !ok {
			outcome := resolver.KeyOutcome{Key: key, Name: key, Err: &modelerrors.UnknownLocationError{Section: key, Message: "unknown section"}}
			if w.hooks.Unrecognized(root, key, value, outcome) == Stop {
				return w.err
			}
			continue
		}
		node, ok := model.AsDict(value)
		if !ok {
			if w.hooks.Unrecognized(root, key, value, mismatch(key, "section", value)) == Stop {
				return w.err
			}
			continue
		}
		if w.walkSection(key, node) == Stop {
			return w.err
		}
	}
	return w.err
}

// WalkSection visits one section mapping.
func (w *Walker) WalkSection(section string, node *model.Dict) error {
	w.err = nil
	w.walkSection(section, node)
	return w.err
}

func (w *Walker) walkSection(section string, node *model.Dict) Action {
	loc := location.New(section)
	facts, err := w.r.Resolve(loc)
	if err != nil {
		wc := w.context(loc, nil, node, "")
		return w.hooks.Unrecognized(wc, section, node, resolver.KeyOutcome{Key: section, Name: section, Err: err})
	}
	w.logger.Debug("walking section", "section", section)
	wc := w.context(loc, facts, node, "")
	switch w.hooks.EnterSection(wc) {
	case Stop:
		return Stop
	case SkipChildren:
		w.hooks.ExitSection(wc)
		return Continue
	}
	keys := node.Keys()
	if w.sectionOrder != nil {
		keys = w.sectionOrder(section, keys)
	}
	if w.walkKeys(loc, facts, node, keys, "") == Stop {
		return Stop
	}
	w.hooks.ExitSection(wc)
	return Continue
}

// walkKeys dispatches the keys of one instance node.
func (w *Walker) walkKeys(loc *location.Location, facts *resolver.FolderFacts, node *model.Dict, keys []string, instance string) Action {
	if w.attributesFirst {
		keys = w.partition(loc, facts, keys)
	}
	for _, key := range keys {
		if w.cancelled() {
			return Stop
		}
		value, ok := node.Get(key)
		if !ok {
			continue
		}
		outcome := w.r.ClassifyIn(loc, facts, key)
		var act Action
		switch outcome.Kind {
		case resolver.KeyAttribute:
			wc := w.context(loc, facts, node, instance)
			if outcome.Deleted {
				act = w.hooks.DeleteAttribute(wc, outcome.Attribute)
			} else {
				act = w.hooks.Attribute(wc, outcome.Attribute, key, value)
			}
		case resolver.KeyFolder:
			if outcome.Deleted {
				act = w.deleteFolder(loc, outcome, node, instance)
			} else {
				act = w.walkFolder(loc, outcome.Name, value, node, instance)
			}
		case resolver.KeyArtificialType:
			if outcome.Deleted {
				act = w.hooks.DeleteInstance(w.context(loc, facts, node, instance), instance)
			} else {
				act = w.walkType(loc, outcome.Name, value, node, instance)
			}
		default:
			act = w.hooks.Unrecognized(w.context(loc, facts, node, instance), key, value, outcome)
		}
		if act == Stop {
			return Stop
		}
	}
	return Continue
}

func (w *Walker) walkFolder(loc *location.Location, name string, value any, parent *model.Dict, parentInstance string) Action {
	loc.Append(name)
	defer loc.Pop()

	facts, err := w.r.Resolve(loc)
	if err != nil {
		return w.unrecognizedAt(loc, parent, parentInstance, name, value, err)
	}
	node, ok := model.AsDict(value)
	if !ok {
		loc.Pop()
		act := w.hooks.Unrecognized(w.parentContext(loc, parent, parentInstance), name, value, mismatch(name, "folder", value))
		loc.Append(name)
		return act
	}

	wc := w.context(loc, facts, node, "")
	switch w.hooks.EnterFolder(wc) {
	case Stop:
		return Stop
	case SkipChildren:
		w.hooks.ExitFolder(wc)
		return Continue
	}

	switch {
	case facts.IsNamed():
		for _, key := range node.Keys() {
			if w.cancelled() {
				return Stop
			}
			instValue, _ := node.Get(key)
			if model.IsDeletion(key) {
				if w.hooks.DeleteInstance(wc, model.DeletionTarget(key)) == Stop {
					return Stop
				}
				continue
			}
			instNode, ok := model.AsDict(instValue)
			if !ok {
				if w.hooks.Unrecognized(wc, key, instValue, mismatch(key, "instance", instValue)) == Stop {
					return Stop
				}
				continue
			}
			instLoc := loc.Copy().AddNameToken(facts.Token, key)
			if w.walkInstance(instLoc, facts, instNode, key) == Stop {
				return Stop
			}
		}
	case facts.Cardinality == registry.CardinalitySingle:
		instLoc := loc.Copy()
		name := singleName(instLoc, facts)
		if w.walkInstance(instLoc, facts, node, name) == Stop {
			return Stop
		}
	default:
		if w.walkKeys(loc, facts, node, node.Keys(), "") == Stop {
			return Stop
		}
	}
	w.hooks.ExitFolder(wc)
	return Continue
}

func (w *Walker) walkInstance(loc *location.Location, facts *resolver.FolderFacts, node *model.Dict, name string) Action {
	wc := w.context(loc, facts, node, name)
	switch w.hooks.EnterInstance(wc, name) {
	case Stop:
		return Stop
	case SkipChildren:
		w.hooks.ExitInstance(wc, name)
		return Continue
	}
	if w.walkKeys(loc, facts, node, node.Keys(), name) == Stop {
		return Stop
	}
	w.hooks.ExitInstance(wc, name)
	return Continue
}

func (w *Walker) walkType(loc *location.Location, typeName string, value any, parent *model.Dict, instance string) Action {
	loc.Append(typeName)
	defer loc.Pop()

	facts, err := w.r.Resolve(loc)
	if err != nil {
		return w.unrecognizedAt(loc, parent, instance, typeName, value, err)
	}
	node, ok := model.AsDict(value)
	if !ok {
		loc.Pop()
		act := w.hooks.Unrecognized(w.parentContext(loc, parent, instance), typeName, value, mismatch(typeName, "type", value))
		loc.Append(typeName)
		return act
	}
	wc := w.context(loc, facts, node, instance)
	switch w.hooks.ArtificialType(wc, typeName) {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}
	return w.walkKeys(loc, facts, node, node.Keys(), instance)
}

func (w *Walker) deleteFolder(loc *location.Location, outcome resolver.KeyOutcome, parent *model.Dict, instance string) Action {
	loc.Append(outcome.Name)
	defer loc.Pop()

	facts, err := w.r.Resolve(loc)
	if err != nil {
		return w.unrecognizedAt(loc, parent, instance, outcome.Key, nil, err)
	}
	if !facts.HasInstance() || facts.IsNamed() {
		loc.Pop()
		outcome.Err = &modelerrors.UnsupportedCombinationError{
			Path:    w.r.ModelPath(loc),
			Message: fmt.Sprintf("folder %s cannot be deleted as a whole; delete its instances", outcome.Name),
		}
		act := w.hooks.Unrecognized(w.parentContext(loc, parent, instance), outcome.Key, nil, outcome)
		loc.Append(outcome.Name)
		return act
	}
	delLoc := loc.Copy()
	name := singleName(delLoc, facts)
	return w.hooks.DeleteInstance(w.context(delLoc, facts, nil, ""), name)
}

// unrecognizedAt reports key to the hooks from the parent's point of view.
// loc has key appended on entry and on return.
func (w *Walker) unrecognizedAt(loc *location.Location, parent *model.Dict, instance, key string, value any, err error) Action {
	loc.Pop()
	defer loc.Append(key)
	return w.hooks.Unrecognized(w.parentContext(loc, parent, instance), key, value, resolver.KeyOutcome{Key: key, Name: model.DeletionTarget(key), Err: err})
}

func (w *Walker) parentContext(loc *location.Location, node *model.Dict, instance string) *Context {
	facts, _ := w.r.Resolve(loc)
	return w.context(loc, facts, node, instance)
}

// partition moves attribute keys ahead of everything else, keeping order.
func (w *Walker) partition(loc *location.Location, facts *resolver.FolderFacts, keys []string) []string {
	attrs := make([]string, 0, len(keys))
	rest := make([]string, 0, len(keys))
	for _, key := range keys {
		if w.r.ClassifyIn(loc, facts, key).Kind == resolver.KeyAttribute {
			attrs = append(attrs, key)
		} else {
			rest = append(rest, key)
		}
	}
	return append(attrs, rest...)
}

func (w *Walker) context(loc *location.Location, facts *resolver.FolderFacts, node *model.Dict, instance string) *Context {
	return &Context{
		Location: loc,
		Facts:    facts,
		Node:     node,
		Instance: instance,
		resolver: w.r,
		ctx:      w.userCtx,
	}
}

func (w *Walker) cancelled() bool {
	if w.err != nil {
		return true
	}
	if err := w.userCtx.Err(); err != nil {
		w.err = err
		return true
	}
	return false
}

// singleName binds and returns the instance name of a SINGLE folder: the
// ancestor's binding when the token is already bound, the synthetic name
// otherwise. Token-less folders have no name.
func singleName(loc *location.Location, facts *resolver.FolderFacts) string {
	if facts.Token == "" {
		return ""
	}
	if name, ok := loc.NameToken(facts.Token); ok {
		return name
	}
	loc.AddNameToken(facts.Token, facts.SingleName)
	return facts.SingleName
}

func mismatch(key, expected string, value any) resolver.KeyOutcome {
	return resolver.KeyOutcome{
		Key:  key,
		Name: model.DeletionTarget(key),
		Err:  &modelerrors.AttributeTypeMismatchError{Attribute: key, Expected: expected, Value: value},
	}
}
