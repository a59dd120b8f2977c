// Package modeltools applies, reads back, validates and compares declarative
// domain models against a versioned registry of configuration metadata.
//
// A model is a nested YAML document whose top-level sections (topology,
// resources, appDeployments) hold folders, named instances and attributes.
// The registry describes, per target version and session mode, which folders
// and attributes exist, where they live in the administrative session and
// what type each attribute has.
//
// # Overview
//
// The library is layered:
//
//   - registry: embedded typedefs with version ranges and mode restrictions
//   - location: a folder chain with bound instance-name tokens
//   - resolver: per-run registry view that answers folder and attribute facts
//   - walker: hook-driven traversal shared by every use case
//   - session: the administrative session capability, with an in-memory
//     implementation (memsession) and a SQLite store (sqlstore)
//   - deployer: applies a model through a session, placeholders first
//   - discoverer: reads a session back into a model
//   - validator: checks a model against the registry without a session
//   - differ: produces the change document between two models
//
// # Quick Start
//
// Validate a model for a target version:
//
//	reg, err := registry.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	r, err := resolver.New(reg, "14.1.2", registry.Offline)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := validator.New(r).ValidateFile("model.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, e := range result.Errors {
//		fmt.Println(e)
//	}
//
// Apply a model to an offline store:
//
//	store, err := sqlstore.Open(ctx, "domain.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	doc, _ := model.Load("model.yaml")
//	res, err := deployer.New(r, store).Deploy(ctx, doc)
//
// The modeltools command in cmd/modeltools exposes the same operations on the
// command line and as MCP tools.
package modeltools
