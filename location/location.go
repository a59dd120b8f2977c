// Package location provides the traversal address used by the resolver,
// walker, deployer and discoverer.
//
// A Location is a section name, an ordered sequence of folder names and the
// name-tokens bound so far. Instance names never appear in the folder
// sequence; they are reached through tokens. Mutating methods change the
// receiver; callers that need to keep a Location across a recursion take a
// Copy.
package location

import (
	"maps"
	"slices"
	"sort"
	"strings"
)

// Location is a folder path plus token bindings within one model section.
type Location struct {
	section string
	folders []string
	tokens  map[string]string
}

// New returns an empty Location at the root of section.
func New(section string) *Location {
	return &Location{section: section, tokens: make(map[string]string)}
}

// Section returns the model section.
func (l *Location) Section() string { return l.section }

// Folders returns a copy of the folder sequence.
func (l *Location) Folders() []string { return slices.Clone(l.folders) }

// Depth returns the number of folders in the sequence.
func (l *Location) Depth() int { return len(l.folders) }

// IsRoot reports whether the Location is at the section root.
func (l *Location) IsRoot() bool { return len(l.folders) == 0 }

// CurrentFolder returns the last folder name, or "" at the section root.
func (l *Location) CurrentFolder() string {
	if len(l.folders) == 0 {
		return ""
	}
	return l.folders[len(l.folders)-1]
}

// Append descends into folder.
func (l *Location) Append(folder string) *Location {
	l.folders = append(l.folders, folder)
	return l
}

// Pop ascends one level and returns the folder that was left. Tokens are
// kept; callers that bound a token for the folder remove it explicitly.
func (l *Location) Pop() string {
	if len(l.folders) == 0 {
		return ""
	}
	last := l.folders[len(l.folders)-1]
	l.folders = l.folders[:len(l.folders)-1]
	return last
}

// AddNameToken binds token to an instance name.
func (l *Location) AddNameToken(token, name string) *Location {
	l.tokens[token] = name
	return l
}

// RemoveNameToken unbinds token.
func (l *Location) RemoveNameToken(token string) {
	delete(l.tokens, token)
}

// NameToken returns the instance name bound to token.
func (l *Location) NameToken(token string) (string, bool) {
	name, ok := l.tokens[token]
	return name, ok
}

// Tokens returns a copy of the token bindings.
func (l *Location) Tokens() map[string]string {
	return maps.Clone(l.tokens)
}

// Copy returns an independent copy.
func (l *Location) Copy() *Location {
	return &Location{
		section: l.section,
		folders: slices.Clone(l.folders),
		tokens:  maps.Clone(l.tokens),
	}
}

// Equal reports whether both Locations have the same section, folders and
// token bindings.
func (l *Location) Equal(o *Location) bool {
	return l.section == o.section &&
		slices.Equal(l.folders, o.folders) &&
		maps.Equal(l.tokens, o.tokens)
}

// IsAncestorOf reports whether l is a strict ancestor of o: same section and
// l's folders are a proper prefix of o's.
func (l *Location) IsAncestorOf(o *Location) bool {
	if l.section != o.section || len(l.folders) >= len(o.folders) {
		return false
	}
	return slices.Equal(l.folders, o.folders[:len(l.folders)])
}

// Key identifies the folder chain, ignoring tokens. It is used to memoize
// per-folder facts.
func (l *Location) Key() string {
	return l.section + ":/" + strings.Join(l.folders, "/")
}

// String renders the Location for logs, e.g.
// "topology:/Server/SSL {SERVER=ms1}".
func (l *Location) String() string {
	if len(l.tokens) == 0 {
		return l.Key()
	}
	keys := make([]string, 0, len(l.tokens))
	for k := range l.tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(l.Key())
	b.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(l.tokens[k])
	}
	b.WriteByte('}')
	return b.String()
}
