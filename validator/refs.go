package validator

import (
	"strings"

	"github.com/erraggy/modeltools/location"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
)

// refIndex answers "is name an instance of folder F in this document"
// for refers_to targets, caching one name set per target.
type refIndex struct {
	doc   *model.Dict
	r     *resolver.Resolver
	names map[string]map[string]bool
}

func newRefIndex(doc *model.Dict, r *resolver.Resolver) *refIndex {
	return &refIndex{doc: doc, r: r, names: make(map[string]map[string]bool)}
}

func (x *refIndex) contains(targets []string, name string) bool {
	for _, target := range targets {
		if x.lookup(target)[name] {
			return true
		}
	}
	return false
}

func (x *refIndex) lookup(target string) map[string]bool {
	if set, ok := x.names[target]; ok {
		return set
	}
	set := make(map[string]bool)
	x.names[target] = set

	selector, ok := x.selector(target)
	if !ok {
		return set
	}
	matches, err := model.Query(x.doc, selector)
	if err != nil {
		return set
	}
	for _, m := range matches {
		folder, ok := m.(map[string]any)
		if !ok {
			continue
		}
		for key := range folder {
			if !model.IsDeletion(key) {
				set[key] = true
			}
		}
	}
	return set
}

// selector builds the JSONPath of a "section/Folder/Sub" target, with a
// wildcard for the instance level of every named ancestor.
func (x *refIndex) selector(target string) (string, bool) {
	parts := strings.Split(target, "/")
	if len(parts) < 2 {
		return "", false
	}
	loc := location.New(parts[0])
	var b strings.Builder
	b.WriteString("$")
	writeKey(&b, parts[0])
	for i, folder := range parts[1:] {
		loc.Append(folder)
		facts, err := x.r.Resolve(loc)
		if err != nil {
			return "", false
		}
		writeKey(&b, folder)
		if i < len(parts)-2 && facts.IsNamed() {
			b.WriteString("[*]")
		}
	}
	return b.String(), true
}

func writeKey(b *strings.Builder, key string) {
	b.WriteString("['")
	b.WriteString(strings.ReplaceAll(key, "'", `\'`))
	b.WriteString("']")
}
