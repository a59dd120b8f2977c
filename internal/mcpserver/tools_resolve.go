package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/erraggy/modeltools/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type resolveInput struct {
	Path   string      `json:"path"             jsonschema:"Model path such as topology:/Server/ms1/SSL. Omit the instance name to describe the folder itself."`
	Target targetInput `json:"target,omitempty" jsonschema:"Target version and mode"`
	Filter string      `json:"filter,omitempty" jsonschema:"Only list attributes whose name contains this text (case-sensitive)"`
}

type resolveOutput struct {
	TargetVersion string                `json:"target_version"`
	TargetMode    string                `json:"target_mode"`
	Location      *resolver.Description `json:"location"`
}

func handleResolve(_ context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	if input.Path == "" {
		return errResult(errors.New("path is required")), resolveOutput{}, nil
	}
	r, err := input.Target.resolver()
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	loc, err := r.ParseModelPath(input.Path)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	desc, err := r.Describe(loc)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	if input.Filter != "" {
		kept := desc.Attributes[:0]
		for _, a := range desc.Attributes {
			if strings.Contains(a.Name, input.Filter) {
				kept = append(kept, a)
			}
		}
		desc.Attributes = kept
	}
	return nil, resolveOutput{
		TargetVersion: r.TargetVersion(),
		TargetMode:    r.Mode().String(),
		Location:      desc,
	}, nil
}
