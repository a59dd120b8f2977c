package resolver

import (
	"slices"

	"github.com/erraggy/modeltools/registry"
)

// FolderFacts are the addressing facts for one folder chain under the
// active target version and mode. They do not depend on token bindings,
// so one value serves every instance of the folder.
type FolderFacts struct {
	Section string
	// Folders is the folder chain from the section root.
	Folders []string
	// Name is the last folder name, or "" at the section root.
	Name        string
	AdminType   string
	Cardinality registry.Cardinality
	Token       string
	// PathTemplate is the attributes path with %TOKEN% placeholders.
	PathTemplate string
	// ListTemplate is the path instances are created and listed under.
	ListTemplate string
	Artificial   bool
	Placeholder  bool
	Bootstrap    bool
	SingleName   string
	Version      registry.VersionRange

	attributes []*AttributeFacts
	folders    []string
	types      []string
	gated      map[string]string
}

// IsRoot reports whether the facts describe a section root.
func (f *FolderFacts) IsRoot() bool { return len(f.Folders) == 0 }

// IsNamed reports whether the folder has a named instance level.
func (f *FolderFacts) IsNamed() bool { return f.Cardinality.IsMultiple() }

// HasTypes reports whether instance contents are keyed by artificial type.
func (f *FolderFacts) HasTypes() bool {
	return f.Cardinality == registry.CardinalityMultipleWithTypeSubfolder
}

// HasInstance reports whether a session object backs this folder: named
// folders, token-bearing SINGLE folders and artificial types do; NONE
// folders and token-less SINGLE folders are pure groupings.
func (f *FolderFacts) HasInstance() bool {
	switch f.Cardinality {
	case registry.CardinalityMultiple, registry.CardinalityMultipleWithTypeSubfolder:
		return true
	case registry.CardinalitySingle:
		return f.Token != ""
	default:
		return f.Artificial
	}
}

// Attribute returns the facts for a valid attribute.
func (f *FolderFacts) Attribute(name string) (*AttributeFacts, bool) {
	for _, a := range f.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Attributes returns the valid attributes in declaration order.
func (f *FolderFacts) Attributes() []*AttributeFacts {
	return slices.Clone(f.attributes)
}

// AttributeNames returns the valid attribute names in declaration order.
func (f *FolderFacts) AttributeNames() []string {
	names := make([]string, len(f.attributes))
	for i, a := range f.attributes {
		names[i] = a.Name
	}
	return names
}

// FolderNames returns the valid child folder names in declaration order.
func (f *FolderFacts) FolderNames() []string { return slices.Clone(f.folders) }

// HasFolder reports whether name is a valid child folder.
func (f *FolderFacts) HasFolder(name string) bool { return slices.Contains(f.folders, name) }

// TypeNames returns the valid artificial type names.
func (f *FolderFacts) TypeNames() []string { return slices.Clone(f.types) }

// HasType reports whether name is a valid artificial type.
func (f *FolderFacts) HasType(name string) bool { return slices.Contains(f.types, name) }

// Gated returns the reason a known attribute, folder or type is excluded
// for the active version and mode.
func (f *FolderFacts) Gated(name string) (string, bool) {
	reason, ok := f.gated[name]
	return reason, ok
}

// AttributeFacts describe one attribute valid for the active version and mode.
type AttributeFacts struct {
	Name      string
	AdminName string
	Type      registry.AttrType
	Access    registry.Access
	Default   any
	RefersTo  []string
	Requires  []string
	Password  bool
	Version   registry.VersionRange
}
