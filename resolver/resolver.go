// Package resolver computes the addressing facts for a Location against the
// folder schema registry, filtered by target version and mode.
//
// A Resolver is a pure function of (Location, Registry, version, mode):
// repeated calls with the same inputs return the same facts. Facts for
// each folder chain are memoized in a per-resolver LRU cache; there is no
// process-wide state.
//
//	reg, _ := registry.Default()
//	r, _ := resolver.New(reg, "14.1.2", registry.Offline)
//	loc := location.New("topology").Append("Server").AddNameToken("SERVER", "ms1")
//	paths, _ := r.Paths(loc) // paths.Attributes == "/Server/ms1"
package resolver

import (
	"fmt"
	"strings"

	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
	lru "github.com/hashicorp/golang-lru/v2"
	semver "github.com/hashicorp/go-version"
)

// DefaultCacheSize is the number of folder chains memoized per Resolver.
const DefaultCacheSize = 512

// Resolver resolves Locations for one target version and mode.
type Resolver struct {
	reg       *registry.Registry
	version   *semver.Version
	versionID string
	mode      registry.Mode
	cacheSize int
	cache     *lru.Cache[string, *FolderFacts]
	logger    model.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheSize sets the memoization cache size.
func WithCacheSize(n int) Option {
	return func(r *Resolver) { r.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(l model.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver. An empty targetVersion disables version gating.
func New(reg *registry.Registry, targetVersion string, mode registry.Mode, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		reg:       reg,
		versionID: targetVersion,
		mode:      mode,
		cacheSize: DefaultCacheSize,
		logger:    model.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = model.LoggerOrNop(r.logger)
	if targetVersion != "" {
		v, err := registry.ParseVersion(targetVersion)
		if err != nil {
			return nil, &modelerrors.ConfigError{Option: "target_version", Value: targetVersion, Cause: err}
		}
		r.version = v
	}
	if r.cacheSize <= 0 {
		r.cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *FolderFacts](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("resolver: creating cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Registry returns the registry the resolver reads.
func (r *Resolver) Registry() *registry.Registry { return r.reg }

// TargetVersion returns the target version string.
func (r *Resolver) TargetVersion() string { return r.versionID }

// Mode returns the target mode.
func (r *Resolver) Mode() registry.Mode { return r.mode }

// Sections returns the registry sections, in registry order.
func (r *Resolver) Sections() []string { return r.reg.SectionNames() }

// Resolve returns the facts for the folder chain of loc. Every ancestor
// must resolve for the active version and mode, otherwise the error is an
// *modelerrors.UnknownLocationError.
func (r *Resolver) Resolve(loc *location.Location) (*FolderFacts, error) {
	return r.resolveChain(loc.Section(), loc.Folders())
}

// ResolveAttribute returns the facts for attribute name at loc.
func (r *Resolver) ResolveAttribute(loc *location.Location, name string) (*AttributeFacts, error) {
	facts, err := r.Resolve(loc)
	if err != nil {
		return nil, err
	}
	if a, ok := facts.Attribute(name); ok {
		return a, nil
	}
	reason, gated := facts.Gated(name)
	return nil, &modelerrors.UnknownLocationError{
		Section:      loc.Section(),
		Path:         r.ModelPath(loc),
		Attribute:    name,
		VersionGated: gated,
		Message:      reason,
	}
}

func (r *Resolver) resolveChain(section string, folders []string) (*FolderFacts, error) {
	key := section + ":/" + strings.Join(folders, "/")
	if facts, ok := r.cache.Get(key); ok {
		return facts, nil
	}

	sec, ok := r.reg.Section(section)
	if !ok {
		return nil, &modelerrors.UnknownLocationError{Section: section, Message: "unknown section"}
	}

	var facts *FolderFacts
	if len(folders) == 0 {
		facts = r.rootFacts(sec)
	} else {
		parent, err := r.resolveChain(section, folders[:len(folders)-1])
		if err != nil {
			return nil, err
		}
		name := folders[len(folders)-1]
		def, err := r.childDef(sec, parent, name)
		if err != nil {
			return nil, err
		}
		facts = r.folderFacts(parent, def)
	}
	r.cache.Add(key, facts)
	return facts, nil
}

func (r *Resolver) childDef(sec *registry.SectionDef, parent *FolderFacts, name string) (*registry.FolderDef, error) {
	var (
		def *registry.FolderDef
		ok  bool
	)
	switch {
	case parent.IsRoot():
		def, ok = sec.Folder(name)
	default:
		parentDef := r.lookupDef(sec, parent.Folders)
		if parent.HasTypes() {
			def, ok = parentDef.Type(name)
		} else {
			def, ok = parentDef.Folder(name)
		}
	}
	where := parent.Section + ":/" + strings.Join(parent.Folders, "/")
	if !ok {
		return nil, &modelerrors.UnknownLocationError{Section: parent.Section, Path: where, Folder: name}
	}
	if !r.allowed(def.Version, def.Mode) {
		return nil, &modelerrors.UnknownLocationError{
			Section:      parent.Section,
			Path:         where,
			Folder:       name,
			VersionGated: true,
			Message:      r.gateReason(def.Version, def.Mode),
		}
	}
	return def, nil
}

// lookupDef returns the definition at the end of an already-resolved chain.
func (r *Resolver) lookupDef(sec *registry.SectionDef, folders []string) *registry.FolderDef {
	def, _ := sec.Folder(folders[0])
	for _, name := range folders[1:] {
		if def.HasTypes() {
			def, _ = def.Type(name)
		} else {
			def, _ = def.Folder(name)
		}
	}
	return def
}

func (r *Resolver) rootFacts(sec *registry.SectionDef) *FolderFacts {
	facts := &FolderFacts{
		Section:     sec.Name,
		Cardinality: registry.CardinalityNone,
		gated:       make(map[string]string),
	}
	r.fillMembers(facts, sec.Attributes, sec.Folders, nil)
	return facts
}

func (r *Resolver) folderFacts(parent *FolderFacts, def *registry.FolderDef) *FolderFacts {
	adminType := def.AdminType.For(r.mode)
	facts := &FolderFacts{
		Section:     parent.Section,
		Folders:     append(append([]string(nil), parent.Folders...), def.Name),
		Name:        def.Name,
		AdminType:   adminType,
		Cardinality: def.Cardinality,
		Token:       def.Token,
		Artificial:  def.Artificial,
		Placeholder: def.Placeholder,
		Bootstrap:   def.Bootstrap,
		SingleName:  def.SingleName,
		Version:     def.Version,
		gated:       make(map[string]string),
	}
	if def.Artificial {
		facts.Token = parent.Token
	}

	tmpl := def.Path.For(r.mode)
	if tmpl == "" {
		switch {
		case def.Artificial:
			tmpl = parent.PathTemplate
		case def.Token != "" && def.Cardinality != registry.CardinalityNone:
			tmpl = parent.PathTemplate + "/" + adminType + "/%" + def.Token + "%"
		default:
			tmpl = parent.PathTemplate + "/" + adminType
		}
	}
	facts.PathTemplate = tmpl

	switch {
	case def.Artificial:
		facts.ListTemplate = parent.ListTemplate
	case facts.HasInstance():
		facts.ListTemplate = parentDir(tmpl)
	default:
		facts.ListTemplate = tmpl
	}

	r.fillMembers(facts, def.Attributes, def.Folders, def.Types)
	return facts
}

func (r *Resolver) fillMembers(facts *FolderFacts, attrs []*registry.AttributeDef, folders, types []*registry.FolderDef) {
	for _, a := range attrs {
		if !r.allowed(a.Version, a.Mode) {
			facts.gated[a.Name] = r.gateReason(a.Version, a.Mode)
			continue
		}
		facts.attributes = append(facts.attributes, &AttributeFacts{
			Name:      a.Name,
			AdminName: a.AdminName.For(r.mode),
			Type:      a.Type,
			Access:    a.Access,
			Default:   a.Default,
			RefersTo:  a.RefersTo,
			Requires:  a.Requires,
			Password:  a.Password,
			Version:   a.Version,
		})
	}
	for _, f := range folders {
		if !r.allowed(f.Version, f.Mode) {
			facts.gated[f.Name] = r.gateReason(f.Version, f.Mode)
			continue
		}
		facts.folders = append(facts.folders, f.Name)
	}
	for _, t := range types {
		if !r.allowed(t.Version, t.Mode) {
			facts.gated[t.Name] = r.gateReason(t.Version, t.Mode)
			continue
		}
		facts.types = append(facts.types, t.Name)
	}
}

func (r *Resolver) allowed(v registry.VersionRange, m registry.ModeSet) bool {
	return v.Contains(r.version) && m.Allows(r.mode)
}

func (r *Resolver) gateReason(v registry.VersionRange, m registry.ModeSet) string {
	if !m.Allows(r.mode) {
		return fmt.Sprintf("only valid in %s mode", m)
	}
	return fmt.Sprintf("valid for versions %s, target is %s", v, r.versionID)
}

func parentDir(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}
