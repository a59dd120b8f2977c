package issues

import (
	"errors"
	"testing"

	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/stretchr/testify/assert"
)

func TestIssueString(t *testing.T) {
	tests := []struct {
		name  string
		issue Issue
		want  string
	}{
		{
			name:  "error with field",
			issue: Issue{Path: "topology:/Server/ms1", Field: "Bogus", Message: "unknown attribute", Severity: severity.SeverityError},
			want:  "✗ topology:/Server/ms1 Bogus: unknown attribute",
		},
		{
			name:  "critical",
			issue: Issue{Path: "topology:/", Message: "session failure", Severity: severity.SeverityCritical},
			want:  "✗ topology:/: session failure",
		},
		{
			name:  "warning",
			issue: Issue{Path: "topology:/Cluster/c1", Field: "MulticastAddress", Message: "not valid", Severity: severity.SeverityWarning},
			want:  "⚠ topology:/Cluster/c1 MulticastAddress: not valid",
		},
		{
			name:  "info",
			issue: Issue{Path: "resources:/MailSession/m1", Message: "custom type", Severity: severity.SeverityInfo},
			want:  "ℹ resources:/MailSession/m1: custom type",
		},
		{
			name:  "unknown severity",
			issue: Issue{Path: "p", Message: "m", Severity: severity.Severity(42)},
			want:  "? p: m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.String())
		})
	}
}

func TestIssueKind(t *testing.T) {
	assert.Equal(t, "", Issue{}.Kind())
	assert.Equal(t, "unknown-location", Issue{Err: &modelerrors.UnknownLocationError{Path: "x"}}.Kind())
	assert.Equal(t, "type-mismatch", Issue{Err: &modelerrors.AttributeTypeMismatchError{Attribute: "a"}}.Kind())
	assert.Equal(t, "unsupported-combination", Issue{Err: &modelerrors.UnsupportedCombinationError{Attribute: "a"}}.Kind())
	assert.Equal(t, "session", Issue{Err: &modelerrors.SessionError{Op: "set"}}.Kind())
	assert.Equal(t, "other", Issue{Err: errors.New("x")}.Kind())
}

func TestCounting(t *testing.T) {
	list := []Issue{
		{Severity: severity.SeverityInfo},
		{Severity: severity.SeverityWarning},
		{Severity: severity.SeverityError},
		{Severity: severity.SeverityError},
	}
	assert.Equal(t, 2, Count(list, severity.SeverityError))
	assert.Len(t, AtLeast(list, severity.SeverityWarning), 3)
	assert.Equal(t, []severity.Severity{
		severity.SeverityInfo, severity.SeverityWarning, severity.SeverityError, severity.SeverityError,
	}, Severities(list))
	assert.Nil(t, AtLeast(list, severity.SeverityCritical))
}
