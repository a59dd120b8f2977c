// Package severity provides severity level constants and utilities
// for issues reported by the validator, deployer, discoverer and differ.
//
// The severity levels are ordered from least to most severe:
// Info < Warning < Error < Critical
//
// The CLI derives its exit status from the worst severity observed; see
// [Worst] and [ExitCode].
package severity

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity indicates the severity level of a reported condition.
type Severity int

const (
	// SeverityInfo indicates an informational message, such as a custom
	// provider type the registry cannot check.
	SeverityInfo Severity = iota

	// SeverityWarning indicates a condition that is skipped but should be
	// reviewed, such as a key not valid for the target version.
	SeverityWarning

	// SeverityError indicates a model that cannot be applied as written.
	SeverityError

	// SeverityCritical indicates a failed run, such as a session failure.
	SeverityCritical
)

var titler = cases.Title(language.English)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Label returns the title-cased name used in tables and summaries.
func (s Severity) Label() string {
	return titler.String(s.String())
}

// Parse converts a severity name, case-insensitively.
func Parse(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Worst returns the most severe level in levels, and false when levels is
// empty.
func Worst(levels ...Severity) (Severity, bool) {
	if len(levels) == 0 {
		return SeverityInfo, false
	}
	worst := levels[0]
	for _, l := range levels[1:] {
		if l > worst {
			worst = l
		}
	}
	return worst, true
}

// ExitCode maps the worst observed severity to a process exit status:
// 0 for nothing or info, 1 for warnings, 2 for errors and 3 for critical.
func ExitCode(levels ...Severity) int {
	worst, ok := Worst(levels...)
	if !ok {
		return 0
	}
	switch worst {
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// MarshalText writes the severity name, so JSON and YAML reports carry
// "warning" rather than a number.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Severity) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
