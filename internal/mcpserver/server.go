// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes modeltools capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/erraggy/modeltools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `modeltools MCP server: validates and compares domain models and explains registry locations.

Every tool accepts target_version and target_mode (offline or online). When omitted, the server defaults apply; they come from the modeltools config file, MODELTOOLS_TARGET_VERSION and MODELTOOLS_TARGET_MODE.

Key settings:
- MODELTOOLS_VALIDATE_STRICT (default: false): report version-gated keys as errors
- MODELTOOLS_VALIDATE_NO_WARNINGS (default: false): suppress warnings by default
- MODELTOOLS_MCP_RESULT_LIMIT (default: 100): default page size for issue and change lists
- MODELTOOLS_MCP_CACHE_SIZE (default: 16): parsed models and registry views kept in memory

Models are given either as a file path or as inline YAML/JSON content. Parsed files are cached by path and modification time.`

// Defaults are the target version and mode used when a tool call omits them.
type Defaults struct {
	TargetVersion string
	TargetMode    string
}

// defaults is replaced by Run before any tool is served.
var defaults = Defaults{TargetVersion: "14.1.2", TargetMode: "offline"}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context, d Defaults) error {
	if d.TargetVersion != "" {
		defaults.TargetVersion = d.TargetVersion
	}
	if d.TargetMode != "" {
		defaults.TargetMode = d.TargetMode
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "modeltools", Version: modeltools.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_model",
		Description: "Validate a domain model against the registry for a target version and mode. Reports unknown folders and attributes, type mismatches, read-only attributes, version-gated keys, dangling references and missing companion attributes, each with its model path. Use no_warnings to focus on errors first and offset/limit to page through results.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_models",
		Description: "Compare a current model with a past model. Returns the change document (YAML) that turns the past model into the current one, plus a flat list of changes keyed by model path. Instances removed from the current model appear as '!name' deletion markers.",
	}, handleCompare)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_location",
		Description: "Explain a registry location given as a model path such as 'topology:/Server/ms1/SSL'. Returns the session paths, admin type, cardinality, name token, valid attributes with types and defaults, child folders and artificial types for the target version and mode.",
	}, handleResolve)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ResultLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ResultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
