// Package issues provides a unified issue type for conditions reported by
// the validator, deployer, discoverer and differ.
package issues

import (
	"errors"
	"fmt"

	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/modelerrors"
)

// Issue represents a single reported condition.
type Issue struct {
	// Path is the model path of the folder, e.g. "topology:/Server/ms1"
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Field is the attribute or key name that has the issue (optional)
	Field string
	// Value is the problematic value (optional, already masked for passwords)
	Value any
	// Err is the underlying error, if any, for errors.Is matching
	Err error `json:"-" yaml:"-"`
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error or Critical severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}
	where := i.Path
	if i.Field != "" {
		where += " " + i.Field
	}
	return fmt.Sprintf("%s %s: %s", symbol, where, i.Message)
}

// Kind returns a short name for the error taxonomy member behind the issue.
func (i Issue) Kind() string {
	switch {
	case i.Err == nil:
		return ""
	case errors.Is(i.Err, modelerrors.ErrUnknownLocation):
		return "unknown-location"
	case errors.Is(i.Err, modelerrors.ErrAttributeTypeMismatch):
		return "type-mismatch"
	case errors.Is(i.Err, modelerrors.ErrUnsupportedCombination):
		return "unsupported-combination"
	case errors.Is(i.Err, modelerrors.ErrSession):
		return "session"
	default:
		return "other"
	}
}

// Severities returns the severity of each issue, in order.
func Severities(list []Issue) []severity.Severity {
	out := make([]severity.Severity, len(list))
	for i, is := range list {
		out[i] = is.Severity
	}
	return out
}

// Count returns how many issues have severity s.
func Count(list []Issue, s severity.Severity) int {
	n := 0
	for _, is := range list {
		if is.Severity == s {
			n++
		}
	}
	return n
}

// AtLeast returns the issues whose severity is s or worse.
func AtLeast(list []Issue, s severity.Severity) []Issue {
	var out []Issue
	for _, is := range list {
		if is.Severity >= s {
			out = append(out, is)
		}
	}
	return out
}
