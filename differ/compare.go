package differ

import (
	"fmt"
	"slices"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
)

// comparison holds the state of one Diff call.
type comparison struct {
	r   *resolver.Resolver
	res *DiffResult
}

// side is one key looked up in both documents.
type side struct {
	cur, past     any
	inCur, inPast bool
}

func lookup(cur, past *model.Dict, key string) side {
	var s side
	s.cur, s.inCur = cur.Get(key)
	s.past, s.inPast = past.Get(key)
	return s
}

func (s side) equal() bool {
	return s.inCur && s.inPast && model.Equal(s.cur, s.past)
}

// unionKeys returns the keys of cur followed by the keys only past holds.
// Deletion markers are skipped in both: the compared documents are states.
func unionKeys(cur, past *model.Dict) []string {
	keys := make([]string, 0, cur.Len()+past.Len())
	for _, k := range cur.Keys() {
		if !model.IsDeletion(k) {
			keys = append(keys, k)
		}
	}
	for _, k := range past.Keys() {
		if !model.IsDeletion(k) && !cur.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *comparison) sections(current, past *model.Dict) error {
	for _, section := range unionKeys(current, past) {
		s := lookup(current, past, section)
		if s.equal() {
			continue
		}
		loc := location.New(section)
		facts, err := c.r.Resolve(loc)
		if err != nil {
			c.opaque(loc, section, s, c.res.Model, err)
			continue
		}
		node, err := c.node(loc, facts, asDict(s.cur), asDict(s.past))
		if err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
		if node.Len() > 0 {
			c.res.Model.Set(section, node)
		}
	}
	return nil
}

// node diffs one instance node: its attributes and child folders.
func (c *comparison) node(loc *location.Location, facts *resolver.FolderFacts, cur, past *model.Dict) (*model.Dict, error) {
	out := model.NewDict()
	for _, key := range unionKeys(cur, past) {
		s := lookup(cur, past, key)
		if s.equal() {
			continue
		}
		outcome := c.r.ClassifyIn(loc, facts, key)
		var err error
		switch outcome.Kind {
		case resolver.KeyAttribute:
			c.attribute(loc, outcome.Attribute, key, s, out)
		case resolver.KeyFolder:
			err = c.folder(loc.Copy().Append(key), key, s, out)
		case resolver.KeyArtificialType:
			err = c.artificialType(loc.Copy().Append(key), key, s, out)
		default:
			c.opaque(loc, key, s, out, outcome.Err)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *comparison) attribute(loc *location.Location, attr *resolver.AttributeFacts, key string, s side, out *model.Dict) {
	path := c.r.ModelPath(loc)
	// Changes carry values for reports, so passwords are masked there.
	oldValue, newValue := masked(attr, s.past), masked(attr, s.cur)
	switch {
	case !s.inPast:
		out.Set(key, model.CloneValue(s.cur))
		c.change(Change{Path: path, Type: ChangeAttributeAdded, Name: key, NewValue: newValue})
	case !s.inCur:
		out.Set(model.DeletionKey(key), nil)
		c.change(Change{Path: path, Type: ChangeAttributeDeleted, Name: key, OldValue: oldValue})
	case attr.Type.IsList():
		if delta := listDelta(s.cur, s.past); len(delta) > 0 {
			out.Set(key, delta)
			c.change(Change{Path: path, Type: ChangeAttributeChanged, Name: key, OldValue: oldValue, NewValue: newValue})
		}
	case attr.Type == registry.TypeProperties:
		c.properties(path, key, s, out)
	default:
		out.Set(key, model.CloneValue(s.cur))
		c.change(Change{Path: path, Type: ChangeAttributeChanged, Name: key, OldValue: oldValue, NewValue: newValue})
	}
}

func masked(attr *resolver.AttributeFacts, v any) any {
	if attr.Password && v != nil {
		return resolver.MaskedValue
	}
	return v
}

// listDelta lists the elements added to cur followed by the elements
// removed from past, marked for deletion. A reordering yields nothing.
func listDelta(cur, past any) []any {
	curElems := model.SplitList(cur)
	pastElems := model.SplitList(past)
	var delta []any
	for _, e := range curElems {
		if !slices.Contains(pastElems, e) {
			delta = append(delta, e)
		}
	}
	for _, e := range pastElems {
		if !slices.Contains(curElems, e) {
			delta = append(delta, model.DeletionKey(e))
		}
	}
	return delta
}

// properties diffs a map-typed attribute key by key. Removed keys have no
// deletion form and are only reported.
func (c *comparison) properties(path, key string, s side, out *model.Dict) {
	cur, curOK := s.cur.(*model.Dict)
	past, pastOK := s.past.(*model.Dict)
	if !curOK || !pastOK {
		out.Set(key, model.CloneValue(s.cur))
		c.change(Change{Path: path, Type: ChangeAttributeChanged, Name: key, OldValue: s.past, NewValue: s.cur})
		return
	}
	delta := model.NewDict()
	cur.Range(func(k string, v any) bool {
		if pv, ok := past.Get(k); !ok || !model.Equal(v, pv) {
			delta.Set(k, model.CloneValue(v))
		}
		return true
	})
	for _, k := range past.Keys() {
		if !cur.Has(k) {
			c.note(path, key, fmt.Sprintf("property %q was removed; remove it from the target by hand", k))
		}
	}
	if delta.Len() > 0 {
		out.Set(key, delta)
		c.change(Change{Path: path, Type: ChangeAttributeChanged, Name: key, OldValue: s.past, NewValue: s.cur})
	}
}

// folder diffs a child folder; loc already ends with it.
func (c *comparison) folder(loc *location.Location, key string, s side, out *model.Dict) error {
	facts, err := c.r.Resolve(loc)
	if err != nil {
		return err
	}
	parent := loc.Copy()
	parent.Pop()
	parentPath := c.r.ModelPath(parent)

	switch {
	case !s.inPast:
		if asDict(s.cur).Len() == 0 && (facts.IsNamed() || !facts.HasInstance()) {
			return nil
		}
		out.Set(key, model.CloneValue(s.cur))
		c.added(loc, facts, parentPath, key, asDict(s.cur))
		return nil
	case !s.inCur:
		return c.vanishedFolder(loc, facts, parentPath, key, asDict(s.past), out)
	}

	cur, past := asDict(s.cur), asDict(s.past)
	if !facts.IsNamed() {
		sub, err := c.node(loc, facts, cur, past)
		if err != nil {
			return err
		}
		if sub.Len() > 0 {
			out.Set(key, sub)
		}
		return nil
	}

	folder := model.NewDict()
	folderPath := c.r.ModelPath(loc)
	for _, name := range unionKeys(cur, past) {
		inst := lookup(cur, past, name)
		if inst.equal() {
			continue
		}
		instLoc := loc.Copy().AddNameToken(facts.Token, name)
		switch {
		case !inst.inPast:
			folder.Set(name, model.CloneValue(inst.cur))
			c.change(Change{Path: folderPath, Type: ChangeFolderAdded, Name: name})
		case !inst.inCur:
			folder.Set(model.DeletionKey(name), c.deletions(instLoc, facts, asDict(inst.past)))
			c.change(Change{Path: folderPath, Type: ChangeFolderDeleted, Name: name})
		default:
			sub, err := c.node(instLoc, facts, asDict(inst.cur), asDict(inst.past))
			if err != nil {
				return err
			}
			if sub.Len() > 0 {
				folder.Set(name, sub)
			}
		}
	}
	if folder.Len() > 0 {
		out.Set(key, folder)
	}
	return nil
}

// added records a folder copied whole from the current model.
func (c *comparison) added(loc *location.Location, facts *resolver.FolderFacts, parentPath, key string, cur *model.Dict) {
	if !facts.IsNamed() {
		c.change(Change{Path: parentPath, Type: ChangeFolderAdded, Name: key})
		return
	}
	folderPath := c.r.ModelPath(loc)
	for _, name := range cur.Keys() {
		if !model.IsDeletion(name) {
			c.change(Change{Path: folderPath, Type: ChangeFolderAdded, Name: name})
		}
	}
}

// vanishedFolder handles a folder only the past model holds.
func (c *comparison) vanishedFolder(loc *location.Location, facts *resolver.FolderFacts, parentPath, key string, past *model.Dict, out *model.Dict) error {
	switch {
	case facts.IsNamed():
		folder := model.NewDict()
		folderPath := c.r.ModelPath(loc)
		for _, name := range past.Keys() {
			if model.IsDeletion(name) {
				continue
			}
			inst, _ := past.Get(name)
			instLoc := loc.Copy().AddNameToken(facts.Token, name)
			folder.Set(model.DeletionKey(name), c.deletions(instLoc, facts, asDict(inst)))
			c.change(Change{Path: folderPath, Type: ChangeFolderDeleted, Name: name})
		}
		if folder.Len() > 0 {
			out.Set(key, folder)
		}
	case facts.HasInstance():
		out.Set(model.DeletionKey(key), c.deletions(loc, facts, past))
		c.change(Change{Path: parentPath, Type: ChangeFolderDeleted, Name: key})
	default:
		// A grouping folder has no session object: unset its contents.
		sub, err := c.node(loc, facts, nil, past)
		if err != nil {
			return err
		}
		if sub.Len() > 0 {
			out.Set(key, sub)
		}
	}
	return nil
}

// deletions returns the deletion markers for the named instances below a
// vanished instance, or nil when it has none.
func (c *comparison) deletions(loc *location.Location, facts *resolver.FolderFacts, inst *model.Dict) any {
	tree := model.NewDict()
	for _, key := range inst.Keys() {
		if model.IsDeletion(key) {
			continue
		}
		value, _ := inst.Get(key)
		outcome := c.r.ClassifyIn(loc, facts, key)
		if outcome.Kind != resolver.KeyFolder && outcome.Kind != resolver.KeyArtificialType {
			continue
		}
		childLoc := loc.Copy().Append(key)
		childFacts, err := c.r.Resolve(childLoc)
		if err != nil {
			continue
		}
		child := asDict(value)
		if !childFacts.IsNamed() {
			if sub := c.deletions(childLoc, childFacts, child); sub != nil {
				tree.Set(key, sub)
			}
			continue
		}
		folder := model.NewDict()
		folderPath := c.r.ModelPath(childLoc)
		for _, name := range child.Keys() {
			if model.IsDeletion(name) {
				continue
			}
			grandchild, _ := child.Get(name)
			instLoc := childLoc.Copy().AddNameToken(childFacts.Token, name)
			folder.Set(model.DeletionKey(name), c.deletions(instLoc, childFacts, asDict(grandchild)))
			c.change(Change{Path: folderPath, Type: ChangeFolderDeleted, Name: name})
		}
		if folder.Len() > 0 {
			tree.Set(key, folder)
		}
	}
	if tree.Len() == 0 {
		return nil
	}
	return tree
}

// artificialType diffs the type key of a typed instance. A changed type
// appears as a new key in the current model; the past key is left out
// because the deployer retypes the instance on its own.
func (c *comparison) artificialType(loc *location.Location, key string, s side, out *model.Dict) error {
	parent := loc.Copy()
	parent.Pop()
	path := c.r.ModelPath(parent)
	switch {
	case !s.inPast:
		out.Set(key, model.CloneValue(s.cur))
		c.change(Change{Path: path, Type: ChangeFolderAdded, Name: key})
		return nil
	case !s.inCur:
		c.change(Change{Path: path, Type: ChangeFolderDeleted, Name: key, Message: "replaced by another type"})
		return nil
	}
	facts, err := c.r.Resolve(loc)
	if err != nil {
		return err
	}
	sub, err := c.node(loc, facts, asDict(s.cur), asDict(s.past))
	if err != nil {
		return err
	}
	if sub.Len() > 0 {
		out.Set(key, sub)
	}
	return nil
}

// opaque handles keys the registry does not recognize at loc. They are
// copied without checks when present in the current model.
func (c *comparison) opaque(loc *location.Location, key string, s side, out *model.Dict, cause error) {
	path := c.r.ModelPath(loc)
	if !s.inCur {
		c.note(path, key, "removed key is not known to the registry and was not marked for deletion")
		return
	}
	out.Set(key, model.CloneValue(s.cur))
	typ := ChangeAttributeChanged
	if !s.inPast {
		typ = ChangeAttributeAdded
	}
	msg := "copied without registry checks"
	if cause != nil {
		msg = cause.Error()
	}
	c.change(Change{Path: path, Type: typ, Name: key, OldValue: s.past, NewValue: s.cur, Message: msg})
}

func (c *comparison) change(ch Change) {
	c.res.Changes = append(c.res.Changes, ch)
}

func (c *comparison) note(path, field, msg string) {
	c.res.Messages = append(c.res.Messages, issues.Issue{
		Path:     path,
		Field:    field,
		Message:  msg,
		Severity: severity.SeverityInfo,
	})
}

// asDict converts v to a mapping. Scalars give nil, which reads as empty.
func asDict(v any) *model.Dict {
	if d, ok := model.AsDict(v); ok {
		return d
	}
	return nil
}
