package differ

import (
	"fmt"

	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
)

// ChangeType represents the type of change
type ChangeType string

const (
	// ChangeAttributeAdded indicates an attribute set only in the current model
	ChangeAttributeAdded ChangeType = "attribute-added"
	// ChangeAttributeChanged indicates an attribute whose value differs
	ChangeAttributeChanged ChangeType = "attribute-changed"
	// ChangeAttributeDeleted indicates an attribute set only in the past model
	ChangeAttributeDeleted ChangeType = "attribute-deleted"
	// ChangeFolderAdded indicates an instance or folder only in the current model
	ChangeFolderAdded ChangeType = "folder-added"
	// ChangeFolderDeleted indicates an instance or folder only in the past model
	ChangeFolderDeleted ChangeType = "folder-deleted"
)

// Change represents a single difference between the two models
type Change struct {
	// Path is the model path of the node holding the change,
	// e.g. "topology:/Server/ms1"
	Path string
	// Type is the kind of change
	Type ChangeType
	// Name is the attribute, instance or folder that changed
	Name string
	// OldValue is the value in the past model (attributes only)
	OldValue any
	// NewValue is the value in the current model (attributes only)
	NewValue any
	// Message is an optional note about the change
	Message string
}

// String returns a one-line description of the change
func (c Change) String() string {
	var symbol string
	switch c.Type {
	case ChangeAttributeAdded, ChangeFolderAdded:
		symbol = "+"
	case ChangeAttributeDeleted, ChangeFolderDeleted:
		symbol = "-"
	default:
		symbol = "~"
	}
	out := fmt.Sprintf("%s %s %s", symbol, c.Path, c.Name)
	switch c.Type {
	case ChangeAttributeChanged:
		out += fmt.Sprintf(": %v -> %v", c.OldValue, c.NewValue)
	case ChangeAttributeAdded:
		out += fmt.Sprintf(": %v", c.NewValue)
	}
	if c.Message != "" {
		out += " (" + c.Message + ")"
	}
	return out
}

// DiffResult contains the results of comparing two models
type DiffResult struct {
	// Model is the change document. It is empty when the models match.
	Model *model.Dict
	// Changes lists every difference found, in document order
	Changes []Change
	// Messages are notes about differences the change document cannot
	// express, such as removed property keys
	Messages []issues.Issue

	CurrentPath string
	PastPath    string
}

// HasChanges reports whether the change document has any content
func (r *DiffResult) HasChanges() bool {
	return r.Model.Len() > 0
}

// Count returns the number of changes of type t
func (r *DiffResult) Count(t ChangeType) int {
	n := 0
	for _, c := range r.Changes {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Differ compares models against one registry view
type Differ struct {
	// Logger receives a summary of each comparison. Nil disables logging.
	Logger model.Logger

	r *resolver.Resolver
}

// New creates a Differ that classifies keys with r
func New(r *resolver.Resolver) *Differ {
	return &Differ{r: r}
}

// Diff returns the change document that turns past into current.
// Nil documents are treated as empty.
func (d *Differ) Diff(current, past *model.Dict) (*DiffResult, error) {
	if d.r == nil {
		return nil, fmt.Errorf("differ: no resolver configured")
	}
	c := &comparison{r: d.r, res: &DiffResult{Model: model.NewDict()}}
	if err := c.sections(current, past); err != nil {
		return nil, fmt.Errorf("differ: %w", err)
	}
	logger := model.LoggerOrNop(d.Logger)
	logger.Info("comparison finished",
		"changes", len(c.res.Changes),
		"messages", len(c.res.Messages),
		"target_version", d.r.TargetVersion(),
	)
	return c.res, nil
}

// DiffFiles loads both model files and compares them
func (d *Differ) DiffFiles(currentPath, pastPath string) (*DiffResult, error) {
	current, err := model.Load(currentPath)
	if err != nil {
		return nil, fmt.Errorf("differ: current model: %w", err)
	}
	past, err := model.Load(pastPath)
	if err != nil {
		return nil, fmt.Errorf("differ: past model: %w", err)
	}
	result, err := d.Diff(current, past)
	if err != nil {
		return nil, err
	}
	result.CurrentPath = currentPath
	result.PastPath = pastPath
	return result, nil
}
