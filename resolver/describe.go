package resolver

import (
	"github.com/erraggy/modeltools/location"
)

// Description summarizes what the registry says about one location.
type Description struct {
	ModelPath      string             `json:"model_path" yaml:"model_path"`
	Section        string             `json:"section" yaml:"section"`
	Folders        []string           `json:"folders,omitempty" yaml:"folders,omitempty"`
	AdminType      string             `json:"admin_type,omitempty" yaml:"admin_type,omitempty"`
	Cardinality    string             `json:"cardinality" yaml:"cardinality"`
	Token          string             `json:"token,omitempty" yaml:"token,omitempty"`
	// AttributesPath is empty when a named folder's instance is not bound.
	AttributesPath string             `json:"attributes_path,omitempty" yaml:"attributes_path,omitempty"`
	ListPath       string             `json:"list_path,omitempty" yaml:"list_path,omitempty"`
	Version        string             `json:"version,omitempty" yaml:"version,omitempty"`
	Attributes     []AttributeSummary `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ChildFolders   []string           `json:"child_folders,omitempty" yaml:"child_folders,omitempty"`
	Types          []string           `json:"types,omitempty" yaml:"types,omitempty"`
}

// AttributeSummary is the reportable part of AttributeFacts.
type AttributeSummary struct {
	Name      string `json:"name" yaml:"name"`
	AdminName string `json:"admin_name,omitempty" yaml:"admin_name,omitempty"`
	Type      string `json:"type" yaml:"type"`
	Access    string `json:"access" yaml:"access"`
	Default   any    `json:"default,omitempty" yaml:"default,omitempty"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Describe resolves loc and collects its facts and session paths.
func (r *Resolver) Describe(loc *location.Location) (*Description, error) {
	facts, err := r.Resolve(loc)
	if err != nil {
		return nil, err
	}
	d := &Description{
		ModelPath:    r.ModelPath(loc),
		Section:      loc.Section(),
		Folders:      facts.Folders,
		AdminType:    facts.AdminType,
		Cardinality:  facts.Cardinality.String(),
		Token:        facts.Token,
		ChildFolders: facts.FolderNames(),
		Types:        facts.TypeNames(),
	}
	if !facts.Version.IsAll() {
		d.Version = facts.Version.String()
	}
	if paths, err := r.Paths(loc); err == nil {
		d.AttributesPath = paths.Attributes
		d.ListPath = paths.List
	} else if list, err := r.ListPath(loc); err == nil {
		d.ListPath = list
	}
	for _, a := range facts.Attributes() {
		s := AttributeSummary{
			Name:      a.Name,
			AdminName: a.AdminName,
			Type:      string(a.Type),
			Access:    a.Access.String(),
			Default:   a.Default,
		}
		if !a.Version.IsAll() {
			s.Version = a.Version.String()
		}
		d.Attributes = append(d.Attributes, s)
	}
	return d, nil
}
