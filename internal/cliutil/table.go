package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/erraggy/modeltools/differ"
	"github.com/erraggy/modeltools/internal/issues"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/resolver"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxValueWidth truncates long values in table cells.
const maxValueWidth = 60

func newTable(w io.Writer, headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(row)
	return t
}

// severityColor picks the color a severity label is printed in.
func severityColor(s severity.Severity) text.Colors {
	switch s {
	case severity.SeverityCritical:
		return text.Colors{text.FgHiRed, text.Bold}
	case severity.SeverityError:
		return text.Colors{text.FgRed}
	case severity.SeverityWarning:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

// IssueTable renders issues as a table, or a single line when there are none.
func IssueTable(w io.Writer, list []issues.Issue) {
	if len(list) == 0 {
		Writef(w, "%s\n", text.FgGreen.Sprint("✓ No issues"))
		return
	}
	t := newTable(w, "SEVERITY", "PATH", "FIELD", "MESSAGE")
	for _, is := range list {
		t.AppendRow(table.Row{
			severityColor(is.Severity).Sprint(is.Severity.Label()),
			is.Path,
			is.Field,
			truncate(is.Message),
		})
	}
	t.Render()
}

// ChangeTable renders differ changes as a table.
func ChangeTable(w io.Writer, changes []differ.Change) {
	if len(changes) == 0 {
		Writef(w, "%s\n", text.FgGreen.Sprint("✓ No differences found"))
		return
	}
	t := newTable(w, "CHANGE", "PATH", "NAME", "OLD", "NEW")
	for _, c := range changes {
		t.AppendRow(table.Row{
			changeColor(c.Type).Sprint(string(c.Type)),
			c.Path,
			c.Name,
			cell(c.OldValue),
			cell(c.NewValue),
		})
	}
	t.Render()
}

func changeColor(ct differ.ChangeType) text.Colors {
	switch ct {
	case differ.ChangeAttributeAdded, differ.ChangeFolderAdded:
		return text.Colors{text.FgGreen}
	case differ.ChangeAttributeDeleted, differ.ChangeFolderDeleted:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgYellow}
	}
}

// Summary writes "Label: n" for each severity present in list, worst first.
func Summary(w io.Writer, list []issues.Issue) {
	var parts []string
	for _, s := range []severity.Severity{
		severity.SeverityCritical, severity.SeverityError, severity.SeverityWarning, severity.SeverityInfo,
	} {
		if n := issues.Count(list, s); n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", s.Label(), n))
		}
	}
	if len(parts) == 0 {
		return
	}
	Writef(w, "%s\n", strings.Join(parts, ", "))
}

// KeyValueTable renders ordered key/value pairs, as used by the resolve command.
func KeyValueTable(w io.Writer, pairs [][2]string) {
	t := newTable(w, "KEY", "VALUE")
	for _, p := range pairs {
		t.AppendRow(table.Row{p[0], p[1]})
	}
	t.Render()
}

// AttributeTable lists the attributes of a resolved location.
func AttributeTable(w io.Writer, attrs []resolver.AttributeSummary) {
	t := newTable(w, "ATTRIBUTE", "TYPE", "ACCESS", "DEFAULT", "VERSIONS")
	for _, a := range attrs {
		t.AppendRow(table.Row{a.Name, a.Type, a.Access, cell(a.Default), a.Version})
	}
	t.Render()
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *model.Dict:
		data, err := json.Marshal(t)
		if err != nil {
			return "{...}"
		}
		return truncate(string(data))
	case []any:
		return truncate(strings.Join(model.SplitList(t), ","))
	default:
		return truncate(fmt.Sprint(v))
	}
}

func truncate(s string) string {
	if len(s) > maxValueWidth {
		return s[:maxValueWidth-3] + "..."
	}
	return s
}
