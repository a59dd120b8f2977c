package walker

import (
	"context"

	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
)

// Context describes where the walker is when a hook runs.
type Context struct {
	// Location is the live traversal location. It is only valid for the
	// duration of the hook; hooks that keep it must Copy it.
	Location *location.Location

	// Facts are the resolver facts for Location's folder.
	Facts *resolver.FolderFacts

	// Node is the mapping being walked: the section, folder, instance or
	// type mapping, depending on the hook.
	Node *model.Dict

	// Instance is the instance name bound for Facts' token, if any.
	Instance string

	resolver *resolver.Resolver
	ctx      context.Context
}

// Context returns the context.Context for cancellation and deadline propagation.
// Returns context.Background() if no context was set.
func (wc *Context) Context() context.Context {
	if wc.ctx == nil {
		return context.Background()
	}
	return wc.ctx
}

// Resolver returns the resolver the walker uses.
func (wc *Context) Resolver() *resolver.Resolver { return wc.resolver }

// Section returns the model section being walked.
func (wc *Context) Section() string { return wc.Location.Section() }

// ModelPath renders the Location as a model path, e.g. "topology:/Server/ms1".
func (wc *Context) ModelPath() string { return wc.resolver.ModelPath(wc.Location) }

// Paths renders the session paths of the Location.
func (wc *Context) Paths() (*resolver.Paths, error) { return wc.resolver.Paths(wc.Location) }

// ListPath renders the session path instances of the Location's folder
// are created under.
func (wc *Context) ListPath() (string, error) { return wc.resolver.ListPath(wc.Location) }
