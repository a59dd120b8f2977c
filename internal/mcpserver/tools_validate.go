package mcpserver

import (
	"context"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateInput struct {
	Model      modelInput  `json:"model"                 jsonschema:"The model to validate"`
	Target     targetInput `json:"target,omitempty"      jsonschema:"Target version and mode"`
	Strict     *bool       `json:"strict,omitempty"      jsonschema:"Report version-gated keys as errors instead of warnings. Default false."`
	NoWarnings *bool       `json:"no_warnings,omitempty" jsonschema:"Suppress warnings and infos. Default false."`
	Offset     int         `json:"offset,omitempty"      jsonschema:"Skip the first N issues (for pagination)"`
	Limit      int         `json:"limit,omitempty"       jsonschema:"Maximum number of issues to return (default 100)"`
}

type issueOutput struct {
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Value    any    `json:"value,omitempty"`
}

type validateOutput struct {
	Valid         bool          `json:"valid"`
	TargetVersion string        `json:"target_version"`
	TargetMode    string        `json:"target_mode"`
	ErrorCount    int           `json:"error_count"`
	WarningCount  int           `json:"warning_count"`
	InfoCount     int           `json:"info_count,omitempty"`
	Returned      int           `json:"returned"`
	Issues        []issueOutput `json:"issues,omitempty"`
}

func handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	doc, err := input.Model.resolve()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	r, err := input.Target.resolver()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	strict := cfg.ValidateStrict
	if input.Strict != nil {
		strict = *input.Strict
	}
	noWarnings := cfg.ValidateNoWarnings
	if input.NoWarnings != nil {
		noWarnings = *input.NoWarnings
	}

	result, err := validator.ValidateWithOptions(
		validator.WithDocument(doc),
		validator.WithResolver(r),
		validator.WithStrictMode(strict),
		validator.WithIncludeWarnings(!noWarnings),
	)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	page := paginate(result.All(), input.Offset, input.Limit)
	output := validateOutput{
		Valid:         result.Valid,
		TargetVersion: result.TargetVersion,
		TargetMode:    result.Mode.String(),
		ErrorCount:    result.ErrorCount,
		WarningCount:  result.WarningCount,
		InfoCount:     len(result.Infos),
		Returned:      len(page),
		Issues:        makeSlice[issueOutput](len(page)),
	}
	for _, is := range page {
		output.Issues = append(output.Issues, toIssueOutput(is))
	}
	return nil, output, nil
}

func toIssueOutput(is issues.Issue) issueOutput {
	return issueOutput{
		Severity: is.Severity.String(),
		Path:     is.Path,
		Field:    is.Field,
		Message:  is.Message,
		Kind:     is.Kind(),
		Value:    is.Value,
	}
}
