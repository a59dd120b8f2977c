package walker

import (
	"github.com/erraggy/modeltools/resolver"
)

// Hooks is the capability object a use case injects into the walker.
// Embed [NopHooks] to implement only the methods a use case needs.
type Hooks interface {
	// EnterSection is called at the root of each section.
	EnterSection(wc *Context) Action
	// ExitSection is called after a section's children, unless the walk stopped.
	ExitSection(wc *Context)

	// EnterFolder is called once per folder key, before its instances.
	// wc.Node is the folder mapping.
	EnterFolder(wc *Context) Action
	// ExitFolder is called after a folder's instances.
	ExitFolder(wc *Context)

	// EnterInstance is called for each instance of a MULTIPLE or SINGLE
	// folder with the name-token already bound. wc.Node is the instance
	// mapping. name is "" for token-less SINGLE folders.
	EnterInstance(wc *Context, name string) Action
	// ExitInstance is called after an instance's children.
	ExitInstance(wc *Context, name string)
	// DeleteInstance is called for a deletion marker. wc.Location is at the
	// folder; name is the instance to delete. A "!Type" key under a typed
	// instance deletes that instance, with its token already bound.
	DeleteInstance(wc *Context, name string) Action

	// ArtificialType is called when a typed instance names a known type.
	// wc.Location includes the type; wc.Node is the type's mapping.
	ArtificialType(wc *Context, typeName string) Action

	// Attribute is called for a key that names a valid attribute. key is
	// the key as written; value is not type-checked.
	Attribute(wc *Context, attr *resolver.AttributeFacts, key string, value any) Action
	// DeleteAttribute is called for "!Attribute" keys.
	DeleteAttribute(wc *Context, attr *resolver.AttributeFacts) Action

	// Unrecognized is called for keys that are not attributes, folders or
	// known types, and for values whose shape is wrong for their key.
	// outcome.Err explains why; outcome.CustomType marks an unknown type
	// under a typed instance.
	Unrecognized(wc *Context, key string, value any, outcome resolver.KeyOutcome) Action
}

// NopHooks implements every hook as a no-op that continues the walk.
type NopHooks struct{}

// EnterSection implements Hooks.
func (NopHooks) EnterSection(*Context) Action { return Continue }

// ExitSection implements Hooks.
func (NopHooks) ExitSection(*Context) {}

// EnterFolder implements Hooks.
func (NopHooks) EnterFolder(*Context) Action { return Continue }

// ExitFolder implements Hooks.
func (NopHooks) ExitFolder(*Context) {}

// EnterInstance implements Hooks.
func (NopHooks) EnterInstance(*Context, string) Action { return Continue }

// ExitInstance implements Hooks.
func (NopHooks) ExitInstance(*Context, string) {}

// DeleteInstance implements Hooks.
func (NopHooks) DeleteInstance(*Context, string) Action { return Continue }

// ArtificialType implements Hooks.
func (NopHooks) ArtificialType(*Context, string) Action { return Continue }

// Attribute implements Hooks.
func (NopHooks) Attribute(*Context, *resolver.AttributeFacts, string, any) Action { return Continue }

// DeleteAttribute implements Hooks.
func (NopHooks) DeleteAttribute(*Context, *resolver.AttributeFacts) Action { return Continue }

// Unrecognized implements Hooks.
func (NopHooks) Unrecognized(*Context, string, any, resolver.KeyOutcome) Action { return Continue }

var _ Hooks = NopHooks{}
