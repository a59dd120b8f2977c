package differ

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	r, err := resolver.New(reg, "14.1.2", registry.Offline)
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, src string) *model.Dict {
	t.Helper()
	d, err := model.Parse([]byte(src))
	require.NoError(t, err)
	return d
}

// fixture is one txtar archive: three models plus directives from the
// archive comment.
type fixture struct {
	current, past, expected *model.Dict
	messages                int
	invertible              bool
}

func loadFixture(t *testing.T, path string) fixture {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	require.NoError(t, err)

	var fx fixture
	for _, line := range strings.Split(string(ar.Comment), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "messages":
			fx.messages, err = strconv.Atoi(value)
			require.NoError(t, err)
		case "invertible":
			fx.invertible, err = strconv.ParseBool(value)
			require.NoError(t, err)
		}
	}
	for _, f := range ar.Files {
		doc := parse(t, string(f.Data))
		switch f.Name {
		case "current.yaml":
			fx.current = doc
		case "past.yaml":
			fx.past = doc
		case "expected.yaml":
			fx.expected = doc
		default:
			t.Fatalf("%s: unexpected file %q", path, f.Name)
		}
	}
	require.NotNil(t, fx.current, "%s: missing current.yaml", path)
	require.NotNil(t, fx.past, "%s: missing past.yaml", path)
	require.NotNil(t, fx.expected, "%s: missing expected.yaml", path)
	return fx
}

func marshal(t *testing.T, d *model.Dict) string {
	t.Helper()
	out, err := model.Marshal(d, model.FormatYAML)
	require.NoError(t, err)
	return string(out)
}

func TestDiffFixtures(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	d := New(newResolver(t))
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			fx := loadFixture(t, file)

			result, err := d.Diff(fx.current, fx.past)
			require.NoError(t, err)
			assert.True(t, model.Equal(fx.expected, result.Model), "change document:\n%s", marshal(t, result.Model))
			assert.Len(t, result.Messages, fx.messages)
			assert.Equal(t, fx.expected.Len() > 0, result.HasChanges())

			if fx.invertible {
				applied := fx.past.Clone()
				model.Merge(applied, result.Model)
				assert.True(t, model.Equal(fx.current, applied), "past with changes applied:\n%s", marshal(t, applied))
			}

			same, err := d.Diff(fx.current, fx.current)
			require.NoError(t, err)
			assert.False(t, same.HasChanges())
			assert.Empty(t, same.Changes)
		})
	}
}

func TestDiffChangeList(t *testing.T) {
	fx := loadFixture(t, filepath.Join("testdata", "instances.txtar"))
	result, err := New(newResolver(t)).Diff(fx.current, fx.past)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count(ChangeAttributeChanged))
	assert.Equal(t, 1, result.Count(ChangeAttributeAdded))
	assert.Equal(t, 1, result.Count(ChangeAttributeDeleted))
	assert.Equal(t, 1, result.Count(ChangeFolderAdded))
	// ms2 and its two network access points
	assert.Equal(t, 3, result.Count(ChangeFolderDeleted))

	byName := make(map[string]Change)
	for _, c := range result.Changes {
		byName[c.Name] = c
	}
	port := byName["ListenPort"]
	assert.Equal(t, "topology:/Server/ms1", port.Path)
	assert.Equal(t, 7001, port.OldValue)
	assert.Equal(t, 7101, port.NewValue)
	assert.Equal(t, "~ topology:/Server/ms1 ListenPort: 7001 -> 7101", port.String())

	assert.Equal(t, "topology:/Server/ms2/NetworkAccessPoint", byName["nap1"].Path)
	assert.Equal(t, ChangeFolderDeleted, byName["ms2"].Type)
	assert.Equal(t, "- topology:/Server ms2", byName["ms2"].String())
	assert.NotEmpty(t, byName["Bogus"].Message)
}

func TestDiffVanishedSingleFolderListsNamedChildren(t *testing.T) {
	fx := loadFixture(t, filepath.Join("testdata", "vanished_single.txtar"))
	result, err := New(newResolver(t)).Diff(fx.current, fx.past)
	require.NoError(t, err)

	var deleted []string
	for _, c := range result.Changes {
		if c.Type == ChangeFolderDeleted {
			deleted = append(deleted, c.Path+" "+c.Name)
		}
	}
	assert.ElementsMatch(t, []string{
		"resources:/JDBCSystemResource/ds1 JdbcResource",
		"resources:/JDBCSystemResource/ds1/JdbcResource/JDBCDriverParams/Properties user",
		"resources:/JDBCSystemResource/ds1/JdbcResource/JDBCDriverParams/Properties oracle.net.CONNECT_TIMEOUT",
	}, deleted)
}

func TestDiffTypedInstances(t *testing.T) {
	fx := loadFixture(t, filepath.Join("testdata", "typed.txtar"))
	result, err := New(newResolver(t)).Diff(fx.current, fx.past)
	require.NoError(t, err)

	var added, deleted []string
	for _, c := range result.Changes {
		switch c.Type {
		case ChangeFolderAdded:
			added = append(added, c.Name)
		case ChangeFolderDeleted:
			deleted = append(deleted, c.Name)
		}
	}
	assert.Equal(t, []string{"DefaultAuthenticator"}, added)
	assert.Equal(t, []string{"LDAPAuthenticator"}, deleted)
}

func TestDiffPasswordsMaskedInChanges(t *testing.T) {
	current := parse(t, `
topology:
  Server:
    ms1:
      ServerStart:
        PasswordEncrypted: new-secret
`)
	past := parse(t, `
topology:
  Server:
    ms1:
      ServerStart:
        PasswordEncrypted: old-secret
`)
	result, err := New(newResolver(t)).Diff(current, past)
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, resolver.MaskedValue, result.Changes[0].OldValue)
	assert.Equal(t, resolver.MaskedValue, result.Changes[0].NewValue)
	assert.NotContains(t, result.Changes[0].String(), "secret")

	got, err := model.Query(result.Model, "$.topology.Server.ms1.ServerStart.PasswordEncrypted")
	require.NoError(t, err)
	assert.Equal(t, []any{"new-secret"}, got)
}

func TestDiffUnknownSectionCopied(t *testing.T) {
	current := parse(t, "kubernetes:\n  metadata:\n    name: one\n")
	past := parse(t, "kubernetes:\n  metadata:\n    name: two\n")
	result, err := New(newResolver(t)).Diff(current, past)
	require.NoError(t, err)
	assert.True(t, model.Equal(current, result.Model))
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "kubernetes", result.Changes[0].Name)
}

func TestDiffReorderedListIsUnchanged(t *testing.T) {
	current := parse(t, "resources:\n  JDBCSystemResource:\n    ds1:\n      Target: ms2,ms1\n")
	past := parse(t, "resources:\n  JDBCSystemResource:\n    ds1:\n      Target: [ms1, ms2]\n")
	result, err := New(newResolver(t)).Diff(current, past)
	require.NoError(t, err)
	assert.False(t, result.HasChanges())
}

func TestDiffNilDocuments(t *testing.T) {
	current := parse(t, "topology:\n  Server:\n    ms1:\n      ListenPort: 7101\n")
	d := New(newResolver(t))

	result, err := d.Diff(current, nil)
	require.NoError(t, err)
	assert.True(t, model.Equal(current, result.Model))

	result, err = d.Diff(nil, current)
	require.NoError(t, err)
	topology, ok := result.Model.Dict("topology")
	require.True(t, ok)
	servers, ok := topology.Dict("Server")
	require.True(t, ok)
	assert.Equal(t, []string{"!ms1"}, servers.Keys())
	assert.Empty(t, model.ResultingNames([]string{"ms1"}, servers))
}

func TestDiffWithOptions(t *testing.T) {
	dir := t.TempDir()
	currentPath := filepath.Join(dir, "current.yaml")
	pastPath := filepath.Join(dir, "past.yaml")
	require.NoError(t, os.WriteFile(currentPath, []byte("topology:\n  Name: d2\n"), 0o600))
	require.NoError(t, os.WriteFile(pastPath, []byte("topology:\n  Name: d1\n"), 0o600))
	r := newResolver(t)

	result, err := DiffWithOptions(WithCurrentPath(currentPath), WithPastPath(pastPath), WithResolver(r))
	require.NoError(t, err)
	assert.Equal(t, currentPath, result.CurrentPath)
	assert.Equal(t, pastPath, result.PastPath)
	assert.Equal(t, 1, result.Count(ChangeAttributeChanged))

	result, err = New(r).DiffFiles(currentPath, pastPath)
	require.NoError(t, err)
	assert.True(t, result.HasChanges())

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"no current", []Option{WithPastPath(pastPath), WithResolver(r)}, "must specify a current model"},
		{"two currents", []Option{WithCurrentPath(currentPath), WithCurrent(model.NewDict()), WithPastPath(pastPath), WithResolver(r)}, "exactly one current model"},
		{"no past", []Option{WithCurrentPath(currentPath), WithResolver(r)}, "must specify a past model"},
		{"no resolver", []Option{WithCurrentPath(currentPath), WithPastPath(pastPath)}, "must specify a resolver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DiffWithOptions(tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err = DiffWithOptions(WithCurrentPath(filepath.Join(dir, "missing.yaml")), WithPast(model.NewDict()), WithResolver(r))
	assert.Error(t, err)
}
