package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/modeltools/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validModel = `topology:
  Cluster:
    c1: {}
  Server:
    ms1:
      ListenPort: 7101
      Cluster: c1
`

const invalidModel = `topology:
  Server:
    ms1:
      ListenPort: abc
      Machine: m9
`

// run executes the command tree and returns stdout, stderr and the error.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitCodeSuccess
	}
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	return exit.Code
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "modeltools version dev\n", out)

	out, _, err = run(t, "", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version:")
}

func TestRootRejectsBadFormat(t *testing.T) {
	_, _, err := run(t, "", "--format", "xml", "version")
	assert.ErrorContains(t, err, "invalid format")
}

func TestValidateCommand(t *testing.T) {
	_, stderr, err := run(t, "", "validate", writeFile(t, "ok.yaml", validModel))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Validation passed")
	assert.Contains(t, stderr, "14.1.2 (offline)")

	_, stderr, err = run(t, "", "validate", writeFile(t, "bad.yaml", invalidModel))
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, stderr, "ListenPort")
	assert.Contains(t, stderr, "Error: 2")
}

func TestValidateCommandStdinAndJSON(t *testing.T) {
	out, _, err := run(t, invalidModel, "validate", "--format", "json", "-")
	assert.Equal(t, 2, exitCode(t, err))

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, false, report["Valid"])
	assert.Equal(t, "offline", report["Mode"])
	assert.Equal(t, float64(2), report["ErrorCount"])
	assert.Equal(t, "-", report["SourcePath"])
}

func TestValidateCommandQuiet(t *testing.T) {
	out, stderr, err := run(t, invalidModel, "validate", "-q", "-")
	assert.Equal(t, 2, exitCode(t, err))
	assert.Empty(t, out)
	assert.Empty(t, stderr)
}

func TestValidateCommandTargetFlags(t *testing.T) {
	path := writeFile(t, "cluster.yaml", "topology:\n  Cluster:\n    c1:\n      MulticastAddress: 239.1.1.1\n")

	_, _, err := run(t, "", "validate", "--target-version", "12.1.3", path)
	assert.NoError(t, err)

	_, _, err = run(t, "", "validate", "--target-version", "14.1.2", path)
	assert.Equal(t, 1, exitCode(t, err))

	_, _, err = run(t, "", "validate", "--target-version", "14.1.2", "--strict", path)
	assert.Equal(t, 2, exitCode(t, err))

	_, _, err = run(t, "", "validate", "--target-mode", "sideways", path)
	assert.ErrorContains(t, err, "target_mode")
}

func TestValidateCommandConfigFile(t *testing.T) {
	cfgPath := writeFile(t, "modeltools.yaml", "target_version: 12.1.3\ntarget_mode: online\n")
	out, _, err := run(t, validModel, "validate", "--config", cfgPath, "--format", "yaml", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "targetversion: 12.1.3")
	assert.Contains(t, out, "mode: online")
}

func TestCompareCommand(t *testing.T) {
	past := writeFile(t, "past.yaml", validModel+"    ms2:\n      ListenPort: 8001\n")
	current := writeFile(t, "current.yaml", strings.Replace(validModel, "7101", "7201", 1))

	out, stderr, err := run(t, "", "compare", current, past)
	require.NoError(t, err)
	assert.Contains(t, out, "ListenPort: 7201")
	assert.Contains(t, out, "!ms2")
	assert.Contains(t, stderr, "attribute-changed")
	assert.Contains(t, stderr, "folder-deleted")

	outFile := filepath.Join(t.TempDir(), "changes.json")
	out, _, err = run(t, "", "compare", "-q", "-o", outFile, current, past)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "change document should be JSON: %s", data)
}

func TestCompareCommandIdentical(t *testing.T) {
	path := writeFile(t, "m.yaml", validModel)
	out, stderr, err := run(t, "", "compare", path, path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "No differences found")
}

func TestCompareCommandArgs(t *testing.T) {
	_, _, err := run(t, "", "compare", "only-one.yaml")
	assert.Error(t, err)
}

func TestDeployAndDiscover(t *testing.T) {
	store := filepath.Join(t.TempDir(), "domain.db")

	_, stderr, err := run(t, "", "deploy", "--store", store, testutil.WriteTempYAML(t, testutil.NewSimpleModel()))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Deploy finished")

	out, _, err := run(t, "", "discover", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "ms1:")
	assert.Contains(t, out, "ListenPort: 7101")
	assert.Contains(t, out, "Cluster: c1")

	out, _, err = run(t, "", "discover", "--store", store, "--format", "json", "--section", "topology")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "discovered model should be JSON: %s", out)
}

func TestDiscoverMasksPasswords(t *testing.T) {
	store := filepath.Join(t.TempDir(), "domain.db")
	_, _, err := run(t, "", "deploy", "--skip-validation", "--store", store, testutil.WriteTempJSON(t, testutil.NewDetailedModel()))
	require.NoError(t, err)

	out, _, err := run(t, "", "discover", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "PasswordEncrypted")
	assert.Contains(t, out, "--FIX ME--")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "smtp.example.com")
}

func TestDeployStructuredReport(t *testing.T) {
	store := filepath.Join(t.TempDir(), "domain.db")
	out, _, err := run(t, validModel, "deploy", "--store", store, "--format", "json", "-")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report["run_id"])
	assert.Equal(t, float64(2), report["created"])
	assert.Equal(t, float64(2), report["set"])
}

func TestDeployRefusesInvalidModel(t *testing.T) {
	store := filepath.Join(t.TempDir(), "domain.db")
	_, stderr, err := run(t, invalidModel, "deploy", "--store", store, "-")
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, stderr, "nothing was deployed")
	_, statErr := os.Stat(store)
	assert.True(t, os.IsNotExist(statErr), "store must not be created")
}

func TestDiscoverMissingStore(t *testing.T) {
	_, _, err := run(t, "", "discover", "--store", filepath.Join(t.TempDir(), "missing.db"))
	assert.ErrorContains(t, err, "configuration store")
}

func TestResolveCommand(t *testing.T) {
	out, _, err := run(t, "", "resolve", "topology", "Server", "ms1", "SSL")
	require.NoError(t, err)
	assert.Contains(t, out, "topology:/Server/ms1/SSL")
	assert.Contains(t, out, "/Server/ms1/SSL/ms1")
	assert.Contains(t, out, "Enabled")

	out, _, err = run(t, "", "resolve", "--format", "json", "topology", "Server/ms1")
	require.NoError(t, err)
	var desc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &desc))
	assert.Equal(t, "/Server/ms1", desc["attributes_path"])
	assert.Equal(t, "SERVER", desc["token"])

	_, _, err = run(t, "", "resolve", "topology", "Nope")
	assert.Error(t, err)
}

func TestExecuteExitCodes(t *testing.T) {
	assert.Equal(t, ExitCodeSuccess, Execute(context.Background(), []string{"version"}))
	assert.Equal(t, ExitCodeFailure, Execute(context.Background(), []string{"no-such-command"}))
	assert.Equal(t, 2, Execute(context.Background(), []string{"validate", "-q", writeFile(t, "bad.yaml", invalidModel)}))
}
