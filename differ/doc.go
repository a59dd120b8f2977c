/*
Package differ compares two model documents and produces a change document.

# Overview

Given a current model and a past model, the differ returns the document that,
applied to a domain built from the past model, yields the current one. It
walks both documents in lockstep using the same registry facts the walker
uses, so folders, named instances and artificial types are recognized the
same way in every use case.

# Usage

	reg, _ := registry.Default()
	r, _ := resolver.New(reg, "14.1.2", registry.Offline)
	result, err := differ.New(r).Diff(current, past)
	if err != nil {
		log.Fatal(err)
	}
	out, _ := model.Marshal(result.Model, model.FormatYAML)

Or with functional options:

	result, err := differ.DiffWithOptions(
		differ.WithCurrentPath("model-v2.yaml"),
		differ.WithPastPath("model-v1.yaml"),
		differ.WithResolver(r),
	)

# Change Document Rules

  - Instances of a named folder present only in the current model are copied
    whole. Instances present only in the past model become deletion markers
    ("!name"); named instances below them are listed as deletions too.
  - Attributes present only in the past model become "!Attribute".
  - List attributes are diffed element-wise: added elements are listed and
    removed elements are listed with the deletion prefix.
  - Properties attributes are diffed key-by-key. Removed keys cannot be
    expressed and are reported as informational messages.
  - Keys the registry does not recognize are copied when they differ.

Besides the document, [DiffResult.Changes] lists every change with its
[ChangeType] and model path.
*/
package differ
