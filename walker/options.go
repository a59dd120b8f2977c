package walker

import (
	"context"

	"github.com/erraggy/modeltools/model"
)

// Option configures a Walker.
type Option func(*Walker)

// WithAttributesFirst processes every attribute of a node before
// descending into its folders. Without it keys are visited in document order.
func WithAttributesFirst() Option {
	return func(w *Walker) {
		w.attributesFirst = true
	}
}

// WithSectionOrder reorders the keys at a section root before they are
// visited. fn receives the keys in document order and returns the order to
// use; keys it omits are not visited.
func WithSectionOrder(fn func(section string, keys []string) []string) Option {
	return func(w *Walker) {
		w.sectionOrder = fn
	}
}

// WithSections restricts Walk to the named sections.
func WithSections(names ...string) Option {
	return func(w *Walker) {
		w.sections = names
	}
}

// WithLogger sets the logger.
func WithLogger(l model.Logger) Option {
	return func(w *Walker) {
		w.logger = l
	}
}

// WithUserContext sets the context for cancellation and deadline propagation.
// The context is available to hooks via wc.Context().
func WithUserContext(ctx context.Context) Option {
	return func(w *Walker) {
		w.userCtx = ctx
	}
}
