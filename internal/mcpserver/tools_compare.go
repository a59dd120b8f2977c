package mcpserver

import (
	"context"

	"github.com/erraggy/modeltools/differ"
	"github.com/erraggy/modeltools/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type compareInput struct {
	Current modelInput  `json:"current"          jsonschema:"The current (desired) model"`
	Past    modelInput  `json:"past"             jsonschema:"The past model to compare against"`
	Target  targetInput `json:"target,omitempty" jsonschema:"Target version and mode"`
	Offset  int         `json:"offset,omitempty" jsonschema:"Skip the first N changes (for pagination)"`
	Limit   int         `json:"limit,omitempty"  jsonschema:"Maximum number of changes to return (default 100)"`
}

type changeOutput struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	OldValue any    `json:"old_value,omitempty"`
	NewValue any    `json:"new_value,omitempty"`
	Message  string `json:"message,omitempty"`
}

type compareOutput struct {
	Identical bool           `json:"identical"`
	Total     int            `json:"total"`
	Returned  int            `json:"returned"`
	Document  string         `json:"document,omitempty"`
	Changes   []changeOutput `json:"changes,omitempty"`
	Messages  []issueOutput  `json:"messages,omitempty"`
}

func handleCompare(_ context.Context, _ *mcp.CallToolRequest, input compareInput) (*mcp.CallToolResult, compareOutput, error) {
	current, err := input.Current.resolve()
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}
	past, err := input.Past.resolve()
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}
	r, err := input.Target.resolver()
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}

	result, err := differ.DiffWithOptions(
		differ.WithCurrent(current),
		differ.WithPast(past),
		differ.WithResolver(r),
	)
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}

	page := paginate(result.Changes, input.Offset, input.Limit)
	output := compareOutput{
		Identical: !result.HasChanges(),
		Total:     len(result.Changes),
		Returned:  len(page),
		Changes:   makeSlice[changeOutput](len(page)),
		Messages:  makeSlice[issueOutput](len(result.Messages)),
	}
	if result.HasChanges() {
		data, err := model.Marshal(result.Model, model.FormatYAML)
		if err != nil {
			return errResult(err), compareOutput{}, nil
		}
		output.Document = string(data)
	}
	for _, c := range page {
		output.Changes = append(output.Changes, changeOutput{
			Type:     string(c.Type),
			Path:     c.Path,
			Name:     c.Name,
			OldValue: c.OldValue,
			NewValue: c.NewValue,
			Message:  c.Message,
		})
	}
	for _, m := range result.Messages {
		output.Messages = append(output.Messages, toIssueOutput(m))
	}
	return nil, output, nil
}
