package resolver

import (
	"fmt"
	"strings"

	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/modelerrors"
)

// Paths are the concrete session paths for a Location.
type Paths struct {
	// Attributes is where the folder's attributes are read and written.
	Attributes string
	// List is where instances of the folder are created, deleted and listed.
	List string
}

// Paths renders the path templates of loc's folder with loc's tokens.
func (r *Resolver) Paths(loc *location.Location) (*Paths, error) {
	facts, err := r.Resolve(loc)
	if err != nil {
		return nil, err
	}
	if facts.IsRoot() {
		return &Paths{Attributes: "/", List: "/"}, nil
	}
	attrs, err := render(facts.PathTemplate, loc)
	if err != nil {
		return nil, &modelerrors.UnknownLocationError{Section: loc.Section(), Path: r.ModelPath(loc), Message: err.Error()}
	}
	list, err := render(facts.ListTemplate, loc)
	if err != nil {
		return nil, &modelerrors.UnknownLocationError{Section: loc.Section(), Path: r.ModelPath(loc), Message: err.Error()}
	}
	return &Paths{Attributes: attrs, List: list}, nil
}

// ListPath renders only the list path of loc's folder. Unlike Paths it does
// not need the folder's own token, so it works before an instance is named.
func (r *Resolver) ListPath(loc *location.Location) (string, error) {
	facts, err := r.Resolve(loc)
	if err != nil {
		return "", err
	}
	if facts.IsRoot() {
		return "/", nil
	}
	list, err := render(facts.ListTemplate, loc)
	if err != nil {
		return "", &modelerrors.UnknownLocationError{Section: loc.Section(), Path: r.ModelPath(loc), Message: err.Error()}
	}
	return list, nil
}

// render substitutes %TOKEN% placeholders.
func render(tmpl string, loc *location.Location) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		start := strings.IndexByte(rest, '%')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start+1:], '%')
		if end < 0 {
			return "", fmt.Errorf("unterminated token in path template %q", tmpl)
		}
		token := rest[start+1 : start+1+end]
		name, ok := loc.NameToken(token)
		if !ok {
			return "", fmt.Errorf("token %s is not bound for path template %q", token, tmpl)
		}
		b.WriteString(rest[:start])
		b.WriteString(name)
		rest = rest[start+end+2:]
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

// ModelPath renders loc as a model path with instance names, e.g.
// "topology:/Cluster/c1/DynamicServers". Unresolvable locations fall back
// to the folder chain.
func (r *Resolver) ModelPath(loc *location.Location) string {
	folders := loc.Folders()
	parts := make([]string, 0, len(folders)*2)
	for i := range folders {
		facts, err := r.resolveChain(loc.Section(), folders[:i+1])
		if err != nil {
			parts = append(parts, folders[i:]...)
			break
		}
		parts = append(parts, facts.Name)
		if facts.IsNamed() {
			if name, ok := loc.NameToken(facts.Token); ok {
				parts = append(parts, name)
			}
		}
	}
	return loc.Section() + ":/" + strings.Join(parts, "/")
}

// ParseModelPath is the inverse of ModelPath: it reads
// "section:/Folder/instance/Sub..." into a Location with tokens bound. A
// named folder that is the last segment leaves its token unbound.
func (r *Resolver) ParseModelPath(s string) (*location.Location, error) {
	section, rest, ok := strings.Cut(s, ":")
	if !ok || section == "" {
		return nil, &modelerrors.UnknownLocationError{Message: fmt.Sprintf("model path %q must start with section:", s)}
	}
	loc := location.New(section)
	if _, err := r.Resolve(loc); err != nil {
		return nil, err
	}
	segments := strings.FieldsFunc(rest, func(c rune) bool { return c == '/' })
	for i := 0; i < len(segments); i++ {
		loc.Append(segments[i])
		facts, err := r.Resolve(loc)
		if err != nil {
			return nil, err
		}
		if facts.IsNamed() && i+1 < len(segments) {
			i++
			loc.AddNameToken(facts.Token, segments[i])
		}
	}
	return loc, nil
}
