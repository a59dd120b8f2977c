package cliutil

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/erraggy/modeltools/differ"
	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s: %d items", "Status", 42)
	assert.Equal(t, "Status: 42 items", buf.String())
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) { return 0, errors.New("simulated write error") }

func TestWritef_WriteError(t *testing.T) {
	assert.NotPanics(t, func() { Writef(errorWriter{}, "This will fail") })
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{FormatText, FormatJSON, FormatYAML} {
		assert.NoError(t, ValidateOutputFormat(f))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestOutputStructured(t *testing.T) {
	data := struct {
		Model  *model.Dict
		Issues []issues.Issue
	}{
		Model:  model.DictOf("topology", model.DictOf("Name", "d1", "AdminServerName", "admin")),
		Issues: []issues.Issue{{Path: "topology:/", Message: "m", Severity: severity.SeverityWarning, Err: errors.New("hidden")}},
	}

	var buf bytes.Buffer
	require.NoError(t, OutputStructured(&buf, data, FormatJSON))
	assert.Contains(t, buf.String(), `"Severity": "warning"`)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Less(t, strings.Index(buf.String(), "Name"), strings.Index(buf.String(), "AdminServerName"))

	buf.Reset()
	require.NoError(t, OutputStructured(&buf, data, FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "severity: warning")
	assert.Less(t, strings.Index(out, "Name: d1"), strings.Index(out, "AdminServerName: admin"))

	assert.Error(t, OutputStructured(&buf, data, FormatText))
}

func TestIssueTable(t *testing.T) {
	var buf bytes.Buffer
	IssueTable(&buf, nil)
	assert.Contains(t, buf.String(), "No issues")

	buf.Reset()
	IssueTable(&buf, []issues.Issue{
		{Path: "topology:/Server/ms1", Field: "ListenPort", Message: "expected integer", Severity: severity.SeverityError},
		{Path: "topology:/Cluster/c1", Field: "MulticastAddress", Message: strings.Repeat("x", 100), Severity: severity.SeverityWarning},
	})
	out := buf.String()
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "topology:/Server/ms1")
	assert.Contains(t, out, "...")
}

func TestChangeTable(t *testing.T) {
	var buf bytes.Buffer
	ChangeTable(&buf, nil)
	assert.Contains(t, buf.String(), "No differences")

	buf.Reset()
	ChangeTable(&buf, []differ.Change{
		{Path: "topology:/Server/ms1", Type: differ.ChangeAttributeChanged, Name: "ListenPort", OldValue: 7001, NewValue: 7101},
		{Path: "resources:/MailSession/m1", Type: differ.ChangeAttributeChanged, Name: "Properties",
			NewValue: model.DictOf("mail.host", "smtp")},
	})
	out := buf.String()
	assert.Contains(t, out, "attribute-changed")
	assert.Contains(t, out, "7101")
	assert.Contains(t, out, `{"mail.host":"smtp"}`)
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, []issues.Issue{
		{Severity: severity.SeverityInfo},
		{Severity: severity.SeverityError},
		{Severity: severity.SeverityError},
	})
	assert.Equal(t, "Error: 2, Info: 1\n", buf.String())

	buf.Reset()
	Summary(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	KeyValueTable(&buf, [][2]string{{"attributes", "/Server/ms1"}})
	assert.Contains(t, buf.String(), "/Server/ms1")
}

func TestAttributeTable(t *testing.T) {
	var buf bytes.Buffer
	AttributeTable(&buf, []resolver.AttributeSummary{
		{Name: "ListenPort", Type: "integer", Access: "rw", Default: 7001},
		{Name: "MulticastAddress", Type: "string", Access: "rw", Version: "[10,12.2.1)"},
	})
	out := buf.String()
	assert.Contains(t, out, "ATTRIBUTE")
	assert.Contains(t, out, "7001")
	assert.Contains(t, out, "[10,12.2.1)")
}
