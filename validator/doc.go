// Package validator checks model documents against the registry for one
// target version and mode.
//
// The validator walks the document with the shared walker and classifies
// every condition the walker reports. It never touches a session.
//
// # Validation Levels
//
//   - SeverityError: unknown folders and attributes, values of the wrong
//     shape, missing companion attributes, dangling references (offline)
//   - SeverityWarning: keys not valid for the target version or mode,
//     read-only attributes, dangling references (online, where the target
//     may already hold the instance)
//   - SeverityInfo: custom provider types the registry cannot check
//
// With strict mode, version-gated keys are errors. Warnings can be
// suppressed with WithIncludeWarnings(false).
//
// # Usage
//
//	result, err := validator.ValidateWithOptions(
//	    validator.WithFilePath("model.yaml"),
//	    validator.WithResolver(r),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, e := range result.Errors {
//	    fmt.Println(e)
//	}
//
// # References
//
// Attributes declared with refers_to name registry folders such as
// "topology/Server" or "resources/SelfTuning/MaxThreadsConstraint". Each
// referenced name must be an instance of one of those folders in the same
// document. Lookups use JSONPath over the document.
package validator
