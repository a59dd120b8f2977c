package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/erraggy/modeltools/modelerrors"
	"go.yaml.in/yaml/v4"
)

//go:embed typedefs/*.yaml
var typedefs embed.FS

// Registry is the read-only folder schema for every model section.
// It is built once per run and shared by reference; nothing in it is
// mutated after New returns.
type Registry struct {
	sections map[string]*SectionDef
	names    []string
}

// New validates the section definitions, fills in defaults and returns a
// Registry. Sections keep the order they are passed in.
func New(sections ...*SectionDef) (*Registry, error) {
	r := &Registry{sections: make(map[string]*SectionDef, len(sections))}
	for _, s := range sections {
		if _, dup := r.sections[s.Name]; dup {
			return nil, &modelerrors.ConfigError{Option: s.Name, Message: "duplicate section"}
		}
		if err := normalizeSection(s); err != nil {
			return nil, err
		}
		r.sections[s.Name] = s
		r.names = append(r.names, s.Name)
	}
	return r, nil
}

// Parse decodes a single section definition from YAML.
func Parse(data []byte) (*SectionDef, error) {
	var s SectionDef
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &modelerrors.ConfigError{Message: "parsing section definition", Cause: err}
	}
	return &s, nil
}

// Load reads every file matching pattern in fsys, in lexical order, and
// builds a Registry from them.
func Load(fsys fs.FS, pattern string) (*Registry, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, &modelerrors.ConfigError{Option: pattern, Message: "invalid pattern", Cause: err}
	}
	if len(files) == 0 {
		return nil, &modelerrors.ConfigError{Option: pattern, Message: "no section definitions found"}
	}
	slices.Sort(files)
	sections := make([]*SectionDef, 0, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, &modelerrors.ConfigError{Option: name, Message: "reading section definition", Cause: err}
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("registry: %s: %w", path.Base(name), err)
		}
		sections = append(sections, s)
	}
	return New(sections...)
}

// Default builds a fresh Registry from the embedded type definitions.
func Default() (*Registry, error) {
	return Load(typedefs, "typedefs/*.yaml")
}

// Section returns the section named name.
func (r *Registry) Section(name string) (*SectionDef, bool) {
	s, ok := r.sections[name]
	return s, ok
}

// SectionNames returns the section names in registration order.
func (r *Registry) SectionNames() []string {
	return slices.Clone(r.names)
}

func normalizeSection(s *SectionDef) error {
	if s.Name == "" {
		return &modelerrors.ConfigError{Message: "section name is required"}
	}
	if err := normalizeAttributes(s.Name, s.Attributes); err != nil {
		return err
	}
	if err := checkCollisions(s.Name, s.Attributes, s.Folders); err != nil {
		return err
	}
	for _, name := range s.Order {
		if _, ok := s.Folder(name); !ok {
			return &modelerrors.ConfigError{Option: s.Name + "/order", Value: name, Message: "order names an unknown folder"}
		}
	}
	for _, f := range s.Folders {
		if err := normalizeFolder(s.Name, f, nil); err != nil {
			return err
		}
	}
	return nil
}

func normalizeFolder(where string, f *FolderDef, parent *FolderDef) error {
	where += "/" + f.Name
	if f.Name == "" {
		return &modelerrors.ConfigError{Option: where, Message: "folder name is required"}
	}
	if f.Cardinality.IsMultiple() && f.Token == "" {
		return &modelerrors.ConfigError{Option: where, Message: fmt.Sprintf("%s folder requires a token", f.Cardinality)}
	}
	if len(f.Types) > 0 && !f.HasTypes() {
		return &modelerrors.ConfigError{Option: where, Message: "types are only allowed on multiple_with_type_subfolder folders"}
	}
	if f.Artificial && (parent == nil || !parent.HasTypes()) {
		return &modelerrors.ConfigError{Option: where, Message: "artificial type outside a typed folder"}
	}
	if f.AdminType.Offline == "" {
		f.AdminType.Offline = f.Name
	}
	if f.AdminType.Online == "" {
		f.AdminType.Online = f.AdminType.Offline
	}
	if f.SingleName == "" {
		f.SingleName = DefaultSingleName
	}
	for _, p := range []string{f.Path.Offline, f.Path.Online} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return &modelerrors.ConfigError{Option: where + "/path", Value: p, Message: "path must be absolute"}
		}
	}
	if err := normalizeAttributes(where, f.Attributes); err != nil {
		return err
	}
	if err := checkCollisions(where, f.Attributes, f.Folders); err != nil {
		return err
	}
	for _, child := range f.Folders {
		if err := normalizeFolder(where, child, f); err != nil {
			return err
		}
	}
	for _, t := range f.Types {
		if err := normalizeFolder(where, t, f); err != nil {
			return err
		}
	}
	return nil
}

func normalizeAttributes(where string, attrs []*AttributeDef) error {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a.Name] {
			return &modelerrors.ConfigError{Option: where + "/" + a.Name, Message: "duplicate attribute"}
		}
		seen[a.Name] = true
		if a.Type == "" {
			a.Type = TypeString
		}
		if !a.Type.IsValid() {
			return &modelerrors.ConfigError{Option: where + "/" + a.Name, Value: a.Type, Message: "unknown attribute type"}
		}
		if a.Type == TypePassword {
			a.Password = true
		}
		if a.AdminName.Offline == "" {
			a.AdminName.Offline = a.Name
		}
		if a.AdminName.Online == "" {
			a.AdminName.Online = a.AdminName.Offline
		}
	}
	return nil
}

func checkCollisions(where string, attrs []*AttributeDef, folders []*FolderDef) error {
	seen := make(map[string]bool, len(folders))
	for _, f := range folders {
		if seen[f.Name] {
			return &modelerrors.ConfigError{Option: where + "/" + f.Name, Message: "duplicate folder"}
		}
		seen[f.Name] = true
	}
	for _, a := range attrs {
		if seen[a.Name] {
			return &modelerrors.ConfigError{Option: where + "/" + a.Name, Message: "name is both an attribute and a folder"}
		}
	}
	return nil
}
