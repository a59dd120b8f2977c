package deployer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/resolver"
	"github.com/erraggy/modeltools/session"
	"github.com/erraggy/modeltools/walker"
)

// applier turns walker events into session calls. The first failure is
// kept in err and stops the walk.
type applier struct {
	walker.NopHooks
	run *run
	err error
}

var _ walker.Hooks = (*applier)(nil)

func (a *applier) fail(err error) walker.Action {
	a.err = err
	return walker.Stop
}

func (a *applier) note(wc *walker.Context, sev severity.Severity, field, msg string, err error) {
	a.run.res.Issues = append(a.run.res.Issues, issues.Issue{
		Path:     wc.ModelPath(),
		Field:    field,
		Message:  msg,
		Severity: sev,
		Err:      err,
	})
	if sev == severity.SeverityInfo {
		a.run.logger.Info(msg, "path", wc.ModelPath(), "key", field)
		return
	}
	a.run.logger.Warn(msg, "path", wc.ModelPath(), "key", field)
}

// exists reports whether instance name is listed under list.
func (a *applier) exists(list, name string) (bool, error) {
	names, err := a.run.d.s.ListInstances(a.run.ctx, list)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// ensure creates list/name with adminType unless it exists. An existing
// instance of another type is replaced when replace is set.
func (a *applier) ensure(list, name, adminType string, replace bool) error {
	s, ctx := a.run.d.s, a.run.ctx
	ok, err := a.exists(list, name)
	if err != nil {
		return err
	}
	if ok {
		if !replace {
			return nil
		}
		current, err := s.AdminType(ctx, session.Join(list, name))
		if err != nil {
			return err
		}
		if current == adminType {
			return nil
		}
		a.run.logger.Info("replacing instance of another type",
			"path", session.Join(list, name), "from", current, "to", adminType)
		if err := a.run.navigate(list); err != nil {
			return err
		}
		if err := s.Delete(ctx, name, list); err != nil {
			return err
		}
		a.run.res.Deleted++
	}
	if err := a.run.navigate(list); err != nil {
		return err
	}
	if err := s.Create(ctx, name, adminType, list); err != nil {
		return err
	}
	a.run.res.Created++
	return nil
}

// EnterInstance creates the instance backing a named or token-bearing
// SINGLE folder, then the placeholders of its child folders. Typed
// instances are created by ArtificialType.
func (a *applier) EnterInstance(wc *walker.Context, name string) walker.Action {
	if wc.Facts.HasTypes() {
		return walker.Continue
	}
	if wc.Facts.HasInstance() {
		list, err := wc.ListPath()
		if err != nil {
			return a.fail(err)
		}
		if err := a.ensure(list, name, wc.Facts.AdminType, false); err != nil {
			return a.fail(err)
		}
	}
	if err := a.run.placeholders(wc.Location, wc.Facts, wc.Node, wc.Node.Keys()); err != nil {
		return a.fail(err)
	}
	return walker.Continue
}

// ArtificialType creates or retypes the instance of a typed folder.
func (a *applier) ArtificialType(wc *walker.Context, typeName string) walker.Action {
	list, err := wc.ListPath()
	if err != nil {
		return a.fail(err)
	}
	if err := a.ensure(list, wc.Instance, wc.Facts.AdminType, true); err != nil {
		return a.fail(err)
	}
	if err := a.run.placeholders(wc.Location, wc.Facts, wc.Node, wc.Node.Keys()); err != nil {
		return a.fail(err)
	}
	a.run.logger.Debug("applied provider type", "path", wc.ModelPath(), "type", typeName)
	return walker.Continue
}

// DeleteInstance deletes an instance if the session has it.
func (a *applier) DeleteInstance(wc *walker.Context, name string) walker.Action {
	list, err := wc.ListPath()
	if err != nil {
		return a.fail(err)
	}
	ok, err := a.exists(list, name)
	if err != nil {
		return a.fail(err)
	}
	if !ok {
		a.note(wc, severity.SeverityInfo, model.DeletionKey(name), "instance to delete does not exist", nil)
		return walker.Continue
	}
	if err := a.run.navigate(list); err != nil {
		return a.fail(err)
	}
	if err := a.run.d.s.Delete(a.run.ctx, name, list); err != nil {
		return a.fail(err)
	}
	a.run.res.Deleted++
	return walker.Continue
}

// Attribute converts and writes one attribute.
func (a *applier) Attribute(wc *walker.Context, attr *resolver.AttributeFacts, key string, value any) walker.Action {
	if !attr.Access.Writable() {
		a.note(wc, severity.SeverityWarning, key, fmt.Sprintf("%s attribute skipped", attr.Access), nil)
		return walker.Continue
	}
	paths, err := wc.Paths()
	if err != nil {
		return a.fail(err)
	}
	if err := a.run.navigate(paths.Attributes); err != nil {
		return a.fail(err)
	}
	if attr.Type.IsList() && hasDeletedElements(value) {
		current, err := a.run.d.s.GetAttribute(a.run.ctx, paths.Attributes, attr.AdminName)
		if err != nil {
			return a.fail(err)
		}
		value = model.MergeList(current, value)
	}
	converted, err := attr.Convert(value)
	if err != nil {
		var mismatch *modelerrors.AttributeTypeMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Path = wc.ModelPath()
		}
		return a.fail(err)
	}
	if err := a.run.d.s.SetAttribute(a.run.ctx, paths.Attributes, attr.AdminName, converted); err != nil {
		return a.fail(err)
	}
	a.run.res.Set++
	a.run.logger.Debug("set attribute", "path", paths.Attributes, "name", attr.AdminName, "value", attr.Display(converted))
	return walker.Continue
}

// DeleteAttribute unsets one attribute.
func (a *applier) DeleteAttribute(wc *walker.Context, attr *resolver.AttributeFacts) walker.Action {
	paths, err := wc.Paths()
	if err != nil {
		return a.fail(err)
	}
	if err := a.run.navigate(paths.Attributes); err != nil {
		return a.fail(err)
	}
	if err := a.run.d.s.SetAttribute(a.run.ctx, paths.Attributes, attr.AdminName, nil); err != nil {
		return a.fail(err)
	}
	a.run.res.Set++
	return walker.Continue
}

// Unrecognized applies custom provider types, skips keys gated out of the
// target version or mode, and fails on anything else.
func (a *applier) Unrecognized(wc *walker.Context, key string, value any, outcome resolver.KeyOutcome) walker.Action {
	if outcome.CustomType {
		return a.customType(wc, key, value)
	}
	var unknown *modelerrors.UnknownLocationError
	if errors.As(outcome.Err, &unknown) && unknown.VersionGated {
		a.note(wc, severity.SeverityWarning, key, unknown.Error(), outcome.Err)
		return walker.Continue
	}
	if outcome.Err == nil {
		return a.fail(&modelerrors.UnknownLocationError{Section: wc.Section(), Path: wc.ModelPath(), Attribute: key})
	}
	return a.fail(outcome.Err)
}

// customType creates a typed instance whose type the registry does not
// know and writes its attributes unchecked.
func (a *applier) customType(wc *walker.Context, typeName string, value any) walker.Action {
	node, ok := model.AsDict(value)
	if !ok {
		return a.fail(&modelerrors.AttributeTypeMismatchError{Path: wc.ModelPath(), Attribute: typeName, Expected: "type", Value: value})
	}
	list, err := wc.ListPath()
	if err != nil {
		return a.fail(err)
	}
	if err := a.ensure(list, wc.Instance, typeName, true); err != nil {
		return a.fail(err)
	}
	a.note(wc, severity.SeverityInfo, typeName, "custom type applied without registry checks", nil)

	target := session.Join(list, wc.Instance)
	if err := a.run.navigate(target); err != nil {
		return a.fail(err)
	}
	for _, key := range node.Keys() {
		v, _ := node.Get(key)
		name := key
		if model.IsDeletion(key) {
			name, v = model.DeletionTarget(key), nil
		}
		if err := a.run.d.s.SetAttribute(a.run.ctx, target, name, model.CloneValue(v)); err != nil {
			return a.fail(err)
		}
		a.run.res.Set++
	}
	return walker.Continue
}

func hasDeletedElements(v any) bool {
	return slices.ContainsFunc(model.SplitList(v), model.IsDeletion)
}
