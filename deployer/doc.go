// Package deployer applies model documents to an administrative session.
//
// A Deployer owns the session for the duration of one run. For each section
// it first creates placeholder instances for folders flagged `placeholder`
// in the registry, so that peers can reference each other by name, and then
// walks the section with attributes processed before subfolders. Top-level
// folders are visited in the registry's category order; bootstrap folders
// such as the security configuration run first offline and last online.
//
// # Quick Start
//
//	r, _ := resolver.New(reg, "14.1.2", registry.Offline)
//	d := deployer.New(r, sess, deployer.WithLogger(logger))
//	result, err := d.Deploy(ctx, doc)
//
// Before each create, delete or batch of attribute sets the deployer
// navigates to the absolute session path it is about to touch. When a run
// fails the deployer discards any open edit, closes the session and returns
// the original error joined with any recovery failures.
//
// Deletion markers ("!name" instances and "!Attribute" keys) delete
// instances and unset attributes. List attributes with "!element" entries
// are merged with the current session value.
package deployer
