package resolver

import (
	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
)

// KeyKind tags what a model key is at a given location.
type KeyKind int

const (
	// KeyUnrecognized keys are neither attributes, folders nor types.
	KeyUnrecognized KeyKind = iota
	// KeyAttribute keys name a valid attribute.
	KeyAttribute
	// KeyFolder keys name a valid child folder.
	KeyFolder
	// KeyArtificialType keys name a valid type under a typed instance.
	KeyArtificialType
)

func (k KeyKind) String() string {
	switch k {
	case KeyAttribute:
		return "attribute"
	case KeyFolder:
		return "folder"
	case KeyArtificialType:
		return "artificial type"
	default:
		return "unrecognized"
	}
}

// KeyOutcome is the classification of one key. Exactly one Kind applies.
type KeyOutcome struct {
	Kind KeyKind
	// Key is the key as written in the document.
	Key string
	// Name is Key without a deletion prefix.
	Name string
	// Deleted is true when Key carries the deletion prefix.
	Deleted bool
	// Attribute is set for KeyAttribute.
	Attribute *AttributeFacts
	// CustomType is true for an unrecognized key under a typed instance:
	// a provider type the registry does not enumerate.
	CustomType bool
	// Err explains a KeyUnrecognized outcome. It is nil for custom types.
	Err error
}

// Classify resolves loc and classifies key within an instance node of it.
func (r *Resolver) Classify(loc *location.Location, key string) (KeyOutcome, error) {
	facts, err := r.Resolve(loc)
	if err != nil {
		return KeyOutcome{}, err
	}
	return r.ClassifyIn(loc, facts, key), nil
}

// ClassifyIn classifies key using already-resolved facts for loc.
func (r *Resolver) ClassifyIn(loc *location.Location, facts *FolderFacts, key string) KeyOutcome {
	out := KeyOutcome{Key: key, Name: model.DeletionTarget(key), Deleted: model.IsDeletion(key)}

	if facts.HasTypes() {
		if facts.HasType(out.Name) {
			out.Kind = KeyArtificialType
			return out
		}
		if reason, gated := facts.Gated(out.Name); gated {
			out.Err = &modelerrors.UnknownLocationError{
				Section: loc.Section(), Path: r.ModelPath(loc), Folder: out.Name, VersionGated: true, Message: reason,
			}
			return out
		}
		out.CustomType = true
		return out
	}

	if a, ok := facts.Attribute(out.Name); ok {
		out.Kind = KeyAttribute
		out.Attribute = a
		return out
	}
	if facts.HasFolder(out.Name) {
		out.Kind = KeyFolder
		return out
	}
	reason, gated := facts.Gated(out.Name)
	out.Err = &modelerrors.UnknownLocationError{
		Section:      loc.Section(),
		Path:         r.ModelPath(loc),
		Attribute:    out.Name,
		VersionGated: gated,
		Message:      reason,
	}
	return out
}
