package registry

import (
	"fmt"
	"strings"

	semver "github.com/hashicorp/go-version"
	"go.yaml.in/yaml/v4"
)

// ParseVersion parses a target platform version such as "12.2.1.4".
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// VersionRange is an interval of platform versions for which a folder or
// attribute is defined.
//
// Accepted forms are "[a,b)", "[a,b]", "(a,b)", "[a,)" and a bare "a",
// which means a or later. An empty range contains every version.
type VersionRange struct {
	raw          string
	low, high    *semver.Version
	lowInclusive bool
	highIncl     bool
}

// ParseVersionRange parses a version range expression.
func ParseVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	r := VersionRange{raw: s}
	if s == "" {
		return r, nil
	}
	if !strings.ContainsAny(s[:1], "[(") {
		low, err := ParseVersion(s)
		if err != nil {
			return VersionRange{}, err
		}
		r.low, r.lowInclusive = low, true
		return r, nil
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return VersionRange{}, fmt.Errorf("invalid version range %q: missing closing bracket", s)
	}
	bounds := strings.Split(s[1:len(s)-1], ",")
	if len(bounds) != 2 {
		return VersionRange{}, fmt.Errorf("invalid version range %q: expected two bounds", s)
	}
	r.lowInclusive = s[0] == '['
	r.highIncl = last == ']'

	var err error
	if lo := strings.TrimSpace(bounds[0]); lo != "" {
		if r.low, err = ParseVersion(lo); err != nil {
			return VersionRange{}, err
		}
	}
	if hi := strings.TrimSpace(bounds[1]); hi != "" {
		if r.high, err = ParseVersion(hi); err != nil {
			return VersionRange{}, err
		}
	}
	if r.low != nil && r.high != nil && r.high.LessThan(r.low) {
		return VersionRange{}, fmt.Errorf("invalid version range %q: upper bound below lower bound", s)
	}
	return r, nil
}

// MustParseVersionRange is like ParseVersionRange but panics on error.
func MustParseVersionRange(s string) VersionRange {
	r, err := ParseVersionRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether v lies inside the range. A nil version is
// treated as "no target" and is always contained.
func (r VersionRange) Contains(v *semver.Version) bool {
	if v == nil {
		return true
	}
	if r.low != nil {
		if r.lowInclusive && v.LessThan(r.low) {
			return false
		}
		if !r.lowInclusive && v.LessThanOrEqual(r.low) {
			return false
		}
	}
	if r.high != nil {
		if r.highIncl && v.GreaterThan(r.high) {
			return false
		}
		if !r.highIncl && v.GreaterThanOrEqual(r.high) {
			return false
		}
	}
	return true
}

// IsAll reports whether the range is unbounded on both sides.
func (r VersionRange) IsAll() bool {
	return r.low == nil && r.high == nil
}

func (r VersionRange) String() string {
	if r.raw == "" {
		return "all versions"
	}
	return r.raw
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *VersionRange) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: version range must be a scalar", n.Line)
	}
	parsed, err := ParseVersionRange(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*r = parsed
	return nil
}
