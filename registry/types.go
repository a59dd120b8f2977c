package registry

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Cardinality is the number of named instances a folder can hold.
type Cardinality int

const (
	// CardinalityNone folders are pure groupings: no instance level, no name.
	CardinalityNone Cardinality = iota
	// CardinalitySingle folders hold exactly one unnamed instance.
	CardinalitySingle
	// CardinalityMultiple folders hold any number of named instances.
	CardinalityMultiple
	// CardinalityMultipleWithTypeSubfolder folders hold named instances whose
	// contents are keyed by a type discriminator (provider families).
	CardinalityMultipleWithTypeSubfolder
)

var cardinalityNames = map[Cardinality]string{
	CardinalityNone:                      "none",
	CardinalitySingle:                    "single",
	CardinalityMultiple:                  "multiple",
	CardinalityMultipleWithTypeSubfolder: "multiple_with_type_subfolder",
}

func (c Cardinality) String() string {
	if s, ok := cardinalityNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Cardinality(%d)", int(c))
}

// IsMultiple reports whether the folder has a named instance level.
func (c Cardinality) IsMultiple() bool {
	return c == CardinalityMultiple || c == CardinalityMultipleWithTypeSubfolder
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cardinality) UnmarshalYAML(n *yaml.Node) error {
	for k, v := range cardinalityNames {
		if strings.EqualFold(n.Value, v) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown cardinality %q", n.Line, n.Value)
}

// Mode is the session mode a run targets.
type Mode int

const (
	// Offline manipulates an inert configuration store.
	Offline Mode = iota
	// Online talks to a running administration server.
	Online
)

func (m Mode) String() string {
	if m == Online {
		return "online"
	}
	return "offline"
}

// MarshalText writes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses "offline" or "online".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "offline", "":
		return Offline, nil
	case "online":
		return Online, nil
	default:
		return Offline, fmt.Errorf("unknown mode %q (want offline or online)", s)
	}
}

// ModeSet restricts a definition to one mode or allows both.
type ModeSet int

const (
	// BothModes is the default: the definition exists in both modes.
	BothModes ModeSet = iota
	// OfflineOnly definitions exist only offline.
	OfflineOnly
	// OnlineOnly definitions exist only online.
	OnlineOnly
)

// Allows reports whether m is part of the set.
func (s ModeSet) Allows(m Mode) bool {
	switch s {
	case OfflineOnly:
		return m == Offline
	case OnlineOnly:
		return m == Online
	default:
		return true
	}
}

func (s ModeSet) String() string {
	switch s {
	case OfflineOnly:
		return "offline"
	case OnlineOnly:
		return "online"
	default:
		return "both"
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ModeSet) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToLower(n.Value) {
	case "both", "":
		*s = BothModes
	case "offline":
		*s = OfflineOnly
	case "online":
		*s = OnlineOnly
	default:
		return fmt.Errorf("line %d: unknown mode %q", n.Line, n.Value)
	}
	return nil
}

// Access is the read/write access of an attribute.
type Access int

const (
	// AccessRW attributes are read and written.
	AccessRW Access = iota
	// AccessRO attributes are read-only and not discovered.
	AccessRO
	// AccessROD attributes are read-only but reported by discovery.
	AccessROD
)

func (a Access) String() string {
	switch a {
	case AccessRO:
		return "ro"
	case AccessROD:
		return "rod"
	default:
		return "rw"
	}
}

// Writable reports whether the attribute can be set through a session.
func (a Access) Writable() bool { return a == AccessRW }

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Access) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToLower(n.Value) {
	case "rw", "":
		*a = AccessRW
	case "ro":
		*a = AccessRO
	case "rod":
		*a = AccessROD
	default:
		return fmt.Errorf("line %d: unknown access %q", n.Line, n.Value)
	}
	return nil
}

// AttrType is the semantic type of an attribute value.
type AttrType string

// Attribute types.
const (
	TypeString     AttrType = "string"
	TypeInteger    AttrType = "integer"
	TypeLong       AttrType = "long"
	TypeDouble     AttrType = "double"
	TypeBoolean    AttrType = "boolean"
	TypeList       AttrType = "list"
	TypeProperties AttrType = "properties"
	TypePassword   AttrType = "password"
	TypeReference  AttrType = "reference"
	TypeReferences AttrType = "references"
)

var knownTypes = map[AttrType]bool{
	TypeString: true, TypeInteger: true, TypeLong: true, TypeDouble: true,
	TypeBoolean: true, TypeList: true, TypeProperties: true, TypePassword: true,
	TypeReference: true, TypeReferences: true,
}

// IsValid reports whether t is a known attribute type.
func (t AttrType) IsValid() bool { return knownTypes[t] }

// IsList reports whether values of this type are element lists.
func (t AttrType) IsList() bool { return t == TypeList || t == TypeReferences }

// ByMode holds a value that may differ between offline and online mode.
// In YAML it is written either as a single scalar used for both modes or as
// a mapping with offline and online keys.
type ByMode[T any] struct {
	Offline T `yaml:"offline"`
	Online  T `yaml:"online"`
}

// Same returns a ByMode holding v for both modes.
func Same[T any](v T) ByMode[T] {
	return ByMode[T]{Offline: v, Online: v}
}

// For returns the value for mode m.
func (b ByMode[T]) For(m Mode) T {
	if m == Online {
		return b.Online
	}
	return b.Offline
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByMode[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			var target *T
			switch key := n.Content[i].Value; key {
			case "offline":
				target = &b.Offline
			case "online":
				target = &b.Online
			default:
				return fmt.Errorf("line %d: unknown mode key %q", n.Content[i].Line, key)
			}
			if err := n.Content[i+1].Decode(target); err != nil {
				return err
			}
		}
		return nil
	}
	var v T
	if err := n.Decode(&v); err != nil {
		return err
	}
	b.Offline, b.Online = v, v
	return nil
}
