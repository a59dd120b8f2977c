// Package walker provides the single traversal used by deploy, validate,
// discover-style checks and any other pass over a model document.
//
// The walker descends a model document section by section, folder by folder
// and instance by instance, asking the resolver what every key is and
// dispatching to an injected [Hooks] implementation. The walker never
// decides severity: unknown and version-gated keys are handed to
// [Hooks.Unrecognized] with the resolver's error, and each use case decides
// whether that is an error, a warning or a silent skip.
//
// # Quick Start
//
// Count the attributes a document sets:
//
//	type counter struct {
//	    walker.NopHooks
//	    n int
//	}
//
//	func (c *counter) Attribute(wc *walker.Context, attr *resolver.AttributeFacts, key string, value any) walker.Action {
//	    c.n++
//	    return walker.Continue
//	}
//
//	c := &counter{}
//	err := walker.New(r, c).Walk(doc)
//
// # Flow Control
//
// Hooks return an [Action]:
//
//   - [Continue]: continue into children and siblings
//   - [SkipChildren]: skip the children of the current folder, instance or type
//   - [Stop]: stop the walk immediately
//
// # Folder Dispatch
//
// For a MULTIPLE folder every instance key is visited exactly once, with
// the folder's name-token bound in a copy of the Location before any hook
// for that instance runs. A SINGLE folder binds its synthetic instance name
// when its token is not already bound by an ancestor and descends with no
// name level. A NONE folder descends directly. Under a folder with type
// subfolders, instance keys are type discriminators and are reported to
// [Hooks.ArtificialType], or to [Hooks.Unrecognized] with CustomType set
// when the registry does not know the type.
//
// # Deletion Markers
//
// Instance keys prefixed with "!" are routed to [Hooks.DeleteInstance] and
// attribute keys to [Hooks.DeleteAttribute]. "!Folder" for a SINGLE folder
// deletes its one instance.
package walker
