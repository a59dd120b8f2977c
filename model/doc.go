// Package model holds the in-memory form of a model document and the small
// set of helpers every other package shares.
//
// A model document is an ordered mapping of mappings of arbitrary depth. Keys
// are folder names, attribute names or instance names; which one a key is
// depends on where it sits, and is decided by the resolver package, not here.
// Key order is significant: traversal visits keys in document order, so
// [Dict] preserves insertion order.
//
// # Loading and Writing
//
// [Parse] and [Load] read YAML or JSON (JSON is read as YAML) into a [*Dict],
// keeping the source key order. [Marshal] writes a document back out in
// either format.
//
//	doc, err := model.Load("domain.yaml")
//	if err != nil {
//	    return err
//	}
//	data, err := model.Marshal(doc, model.FormatJSON)
//
// # Deletion Markers
//
// A key prefixed with [DeletePrefix] ("!") asks for the named instance or
// attribute to be removed. Change documents produced by the differ use these
// markers so that they remain structurally model documents. [Merge] applies
// a change document to a model and [ResultingNames] computes the instance
// names a folder ends up with.
//
// # Logging
//
// [Logger] is the structured logging interface used across the module. It is
// satisfied by [NopLogger] (the default) and by [SlogAdapter], which wraps a
// standard library *slog.Logger.
package model
