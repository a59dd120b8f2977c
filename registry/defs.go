package registry

import (
	"fmt"

	"go.yaml.in/yaml/v4"
)

// DefaultSingleName names the synthetic instance of a SINGLE folder whose
// token is not bound by an ancestor.
const DefaultSingleName = "NO_NAME_0"

// AttributeDef describes one attribute of a folder.
type AttributeDef struct {
	Name      string         `yaml:"-"`
	Type      AttrType       `yaml:"type"`
	Access    Access         `yaml:"access"`
	Version   VersionRange   `yaml:"version"`
	Mode      ModeSet        `yaml:"mode"`
	AdminName ByMode[string] `yaml:"admin_name"`
	Default   any            `yaml:"default"`
	// RefersTo lists "section/Folder" paths whose instance names are valid values.
	RefersTo []string `yaml:"refers_to"`
	// Requires lists companion attributes that must be set alongside this one.
	Requires []string `yaml:"requires"`
	Password bool     `yaml:"password"`
}

// FolderDef describes one folder in the schema tree.
type FolderDef struct {
	Name        string
	Cardinality Cardinality
	// Token is the name-token bound to the instance name, e.g. SERVER.
	Token     string
	AdminType ByMode[string]
	// Path is the attributes path template per mode, e.g. /Server/%SERVER%.
	// Empty means derived from the parent.
	Path        ByMode[string]
	Version     VersionRange
	Mode        ModeSet
	Placeholder bool
	Bootstrap   bool
	// Artificial marks a type discriminator folder under a
	// CardinalityMultipleWithTypeSubfolder parent.
	Artificial bool
	SingleName string

	Attributes []*AttributeDef
	Folders    []*FolderDef
	Types      []*FolderDef
}

// Attribute returns the attribute definition named name.
func (f *FolderDef) Attribute(name string) (*AttributeDef, bool) {
	return findAttribute(f.Attributes, name)
}

// Folder returns the child folder definition named name.
func (f *FolderDef) Folder(name string) (*FolderDef, bool) {
	return findFolder(f.Folders, name)
}

// Type returns the artificial type definition named name.
func (f *FolderDef) Type(name string) (*FolderDef, bool) {
	return findFolder(f.Types, name)
}

// HasTypes reports whether instances of this folder are type-keyed.
func (f *FolderDef) HasTypes() bool {
	return f.Cardinality == CardinalityMultipleWithTypeSubfolder
}

type folderYAML struct {
	Cardinality Cardinality    `yaml:"cardinality"`
	Token       string         `yaml:"token"`
	AdminType   ByMode[string] `yaml:"admin_type"`
	Path        ByMode[string] `yaml:"path"`
	Version     VersionRange   `yaml:"version"`
	Mode        ModeSet        `yaml:"mode"`
	Placeholder bool           `yaml:"placeholder"`
	Bootstrap   bool           `yaml:"bootstrap"`
	SingleName  string         `yaml:"single_name"`
	Attributes  yaml.Node      `yaml:"attributes"`
	Folders     yaml.Node      `yaml:"folders"`
	Types       yaml.Node      `yaml:"types"`
}

// UnmarshalYAML implements yaml.Unmarshaler. Attributes, folders and types
// keep their declaration order.
func (f *FolderDef) UnmarshalYAML(n *yaml.Node) error {
	var raw folderYAML
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*f = FolderDef{
		Name:        f.Name,
		Cardinality: raw.Cardinality,
		Token:       raw.Token,
		AdminType:   raw.AdminType,
		Path:        raw.Path,
		Version:     raw.Version,
		Mode:        raw.Mode,
		Placeholder: raw.Placeholder,
		Bootstrap:   raw.Bootstrap,
		SingleName:  raw.SingleName,
	}
	var err error
	if f.Attributes, err = attributeList(&raw.Attributes); err != nil {
		return err
	}
	if f.Folders, err = folderList(&raw.Folders); err != nil {
		return err
	}
	if f.Types, err = folderList(&raw.Types); err != nil {
		return err
	}
	for _, t := range f.Types {
		t.Artificial = true
	}
	return nil
}

// SectionDef is the root of one model section, e.g. topology.
type SectionDef struct {
	Name       string
	Attributes []*AttributeDef
	Folders    []*FolderDef
	// Order is the category order the deployer applies top-level folders in.
	// Folders not listed follow in document order.
	Order []string
}

// Attribute returns the section-level attribute named name.
func (s *SectionDef) Attribute(name string) (*AttributeDef, bool) {
	return findAttribute(s.Attributes, name)
}

// Folder returns the top-level folder named name.
func (s *SectionDef) Folder(name string) (*FolderDef, bool) {
	return findFolder(s.Folders, name)
}

type sectionYAML struct {
	Section    string    `yaml:"section"`
	Order      []string  `yaml:"order"`
	Attributes yaml.Node `yaml:"attributes"`
	Folders    yaml.Node `yaml:"folders"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SectionDef) UnmarshalYAML(n *yaml.Node) error {
	var raw sectionYAML
	if err := n.Decode(&raw); err != nil {
		return err
	}
	if raw.Section == "" {
		return fmt.Errorf("line %d: section name is required", n.Line)
	}
	s.Name, s.Order = raw.Section, raw.Order
	var err error
	if s.Attributes, err = attributeList(&raw.Attributes); err != nil {
		return err
	}
	s.Folders, err = folderList(&raw.Folders)
	return err
}

func attributeList(n *yaml.Node) ([]*AttributeDef, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: attributes must be a mapping", n.Line)
	}
	out := make([]*AttributeDef, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		a := &AttributeDef{}
		if val := n.Content[i+1]; val.ShortTag() != "!!null" {
			if err := val.Decode(a); err != nil {
				return nil, fmt.Errorf("attribute %s: %w", n.Content[i].Value, err)
			}
		}
		a.Name = n.Content[i].Value
		out = append(out, a)
	}
	return out, nil
}

func folderList(n *yaml.Node) ([]*FolderDef, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: folders must be a mapping", n.Line)
	}
	out := make([]*FolderDef, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		f := &FolderDef{}
		if val := n.Content[i+1]; val.ShortTag() != "!!null" {
			if err := val.Decode(f); err != nil {
				return nil, fmt.Errorf("folder %s: %w", n.Content[i].Value, err)
			}
		}
		f.Name = n.Content[i].Value
		out = append(out, f)
	}
	return out, nil
}

func findAttribute(list []*AttributeDef, name string) (*AttributeDef, bool) {
	for _, a := range list {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func findFolder(list []*FolderDef, name string) (*FolderDef, bool) {
	for _, f := range list {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
