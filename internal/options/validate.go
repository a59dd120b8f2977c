// Package options provides shared utilities for option validation across packages.
package options

import "errors"

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	sourceCount := 0
	for _, hasSource := range sources {
		if hasSource {
			sourceCount++
		}
	}
	if sourceCount == 0 {
		return errors.New(noSourceMsg)
	}
	if sourceCount > 1 {
		return errors.New(multiSourceMsg)
	}
	return nil
}

// RequireSet returns an error with msg unless set is true.
func RequireSet(msg string, set bool) error {
	if !set {
		return errors.New(msg)
	}
	return nil
}
