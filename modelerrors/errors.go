// Package modelerrors provides the structured error types shared by the
// registry, resolver, walker, deployer and sessions.
//
// Every error type matches a sentinel through errors.Is, and the concrete
// type can be extracted with errors.As:
//
//	facts, err := r.Resolve(loc)
//	if errors.Is(err, modelerrors.ErrUnknownLocation) {
//	    var ul *modelerrors.UnknownLocationError
//	    if errors.As(err, &ul) && ul.VersionGated {
//	        // the folder exists, just not for this target version
//	    }
//	}
//
// # Error Categories
//
//   - UnknownLocationError: a location, folder or attribute does not resolve
//     for the active target version and mode
//   - AttributeTypeMismatchError: a model value does not fit the attribute's
//     declared type
//   - UnsupportedCombinationError: a required companion is missing, or a
//     reference points to something that does not exist
//   - SessionError: any failure surfaced by a Session
//   - ConfigError: invalid registry definitions or tool configuration
package modelerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnknownLocation indicates a location does not resolve.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrAttributeTypeMismatch indicates a value does not match its declared type.
	ErrAttributeTypeMismatch = errors.New("attribute type mismatch")

	// ErrUnsupportedCombination indicates an invalid combination of settings.
	ErrUnsupportedCombination = errors.New("unsupported combination")

	// ErrSession indicates a session-level failure.
	ErrSession = errors.New("session failure")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// UnknownLocationError reports a folder or attribute that does not resolve.
type UnknownLocationError struct {
	// Section is the model section being resolved
	Section string
	// Path is the model path of the deepest folder that did resolve
	Path string
	// Folder is the folder name that failed to resolve, if any
	Folder string
	// Attribute is the attribute name that failed to resolve, if any
	Attribute string
	// VersionGated is true when the name is known to the registry but is
	// excluded for the active target version or mode
	VersionGated bool
	// Message adds detail, such as the version range that excluded the name
	Message string
}

// Error returns a human-readable error message.
func (e *UnknownLocationError) Error() string {
	var b strings.Builder
	b.WriteString("unknown location")
	switch {
	case e.Attribute != "":
		fmt.Fprintf(&b, ": attribute %q", e.Attribute)
	case e.Folder != "":
		fmt.Fprintf(&b, ": folder %q", e.Folder)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	} else if e.Section != "" {
		fmt.Fprintf(&b, " in section %s", e.Section)
	}
	if e.VersionGated {
		b.WriteString(" (not valid for the target version or mode)")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether target matches this error type.
func (e *UnknownLocationError) Is(target error) bool {
	return target == ErrUnknownLocation
}

// AttributeTypeMismatchError reports a value whose shape does not match the
// registry type of its attribute.
type AttributeTypeMismatchError struct {
	// Path is the model path of the owning folder
	Path string
	// Attribute is the attribute name
	Attribute string
	// Expected is the declared type
	Expected string
	// Value is the offending value
	Value any
}

// Error returns a human-readable error message.
func (e *AttributeTypeMismatchError) Error() string {
	msg := fmt.Sprintf("attribute type mismatch: %s expects %s, got %T", e.Attribute, e.Expected, e.Value)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *AttributeTypeMismatchError) Is(target error) bool {
	return target == ErrAttributeTypeMismatch
}

// UnsupportedCombinationError reports a missing companion attribute or a
// reference to an instance that does not exist.
type UnsupportedCombinationError struct {
	// Path is the model path where the problem was found
	Path string
	// Attribute is the attribute involved, if any
	Attribute string
	// Message describes the problem
	Message string
}

// Error returns a human-readable error message.
func (e *UnsupportedCombinationError) Error() string {
	msg := "unsupported combination"
	if e.Attribute != "" {
		msg += fmt.Sprintf(" for %s", e.Attribute)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnsupportedCombinationError) Is(target error) bool {
	return target == ErrUnsupportedCombination
}

// SessionError wraps a failure returned by a Session operation.
type SessionError struct {
	// Op is the session operation, e.g. "navigate" or "set"
	Op string
	// Path is the absolute session path the operation targeted
	Path string
	// Name is the instance or attribute name, if any
	Name string
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *SessionError) Error() string {
	msg := "session failure: " + e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Name != "" {
		msg += " (" + e.Name + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SessionError) Is(target error) bool {
	return target == ErrSession
}

// ConfigError represents an invalid configuration value or registry definition.
type ConfigError struct {
	// Option is the configuration key or definition that is invalid
	Option string
	// Value is the offending value
	Value any
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
