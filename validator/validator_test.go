package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problems = `
domainInfo:
  AdminUserName: weblogic
topology:
  Bogus: 1
  LastModificationTime: 5
  Cluster:
    c1:
      MulticastAddress: 239.1.1.1
      DynamicServers:
        DynamicClusterSize: 2
  Server:
    ms1:
      ListenPort: abc
      Cluster: c1
      Machine: m9
  SecurityConfiguration:
    Realm:
      r1:
        AuthenticationProvider:
          p1:
            com.example.Custom: {}
`

func newResolver(t *testing.T, version string, mode registry.Mode) *resolver.Resolver {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	r, err := resolver.New(reg, version, mode)
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, src string) *model.Dict {
	t.Helper()
	doc, err := model.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func fields(list []ValidationError) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Field
	}
	return out
}

func TestValidateReportsEachKind(t *testing.T) {
	v := New(newResolver(t, "14.1.2", registry.Offline))
	result, err := v.Validate(parse(t, problems))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, "14.1.2", result.TargetVersion)
	assert.ElementsMatch(t, []string{"Bogus", "DynamicClusterSize", "ListenPort", "Machine"}, fields(result.Errors))
	assert.ElementsMatch(t, []string{"LastModificationTime", "MulticastAddress"}, fields(result.Warnings))
	assert.Equal(t, []string{"com.example.Custom"}, fields(result.Infos))
	assert.Equal(t, 4, result.ErrorCount)
	assert.Equal(t, 2, result.WarningCount)
	assert.Len(t, result.All(), 7)

	for _, e := range result.Errors {
		switch e.Field {
		case "Bogus":
			assert.ErrorIs(t, e.Err, modelerrors.ErrUnknownLocation)
			assert.Equal(t, "topology:/", e.Path)
		case "ListenPort":
			assert.ErrorIs(t, e.Err, modelerrors.ErrAttributeTypeMismatch)
			assert.Equal(t, "topology:/Server/ms1", e.Path)
		case "DynamicClusterSize":
			assert.ErrorIs(t, e.Err, modelerrors.ErrUnsupportedCombination)
			assert.Equal(t, "topology:/Cluster/c1/DynamicServers", e.Path)
		case "Machine":
			assert.ErrorIs(t, e.Err, modelerrors.ErrUnsupportedCombination)
			assert.Equal(t, "m9", e.Value)
		}
	}
}

func TestValidateRejectsOutOfRangeIntegers(t *testing.T) {
	doc := parse(t, `
topology:
  Server:
    ms1:
      ListenPort: .inf
    ms2:
      ListenPort: 1.0e+30
    ms3:
      ListenPort: 7003
`)
	result, err := New(newResolver(t, "14.1.2", registry.Offline)).Validate(doc)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	for _, e := range result.Errors {
		assert.Equal(t, "ListenPort", e.Field)
		assert.ErrorIs(t, e.Err, modelerrors.ErrAttributeTypeMismatch)
	}
}

func TestValidateVersionGatingFollowsTarget(t *testing.T) {
	doc := parse(t, `
topology:
  Cluster:
    c1:
      MulticastAddress: 239.1.1.1
`)
	result, err := New(newResolver(t, "12.1.3", registry.Offline)).Validate(doc)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)

	result, err = New(newResolver(t, "14.1.2", registry.Offline)).Validate(doc)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)

	strict := New(newResolver(t, "14.1.2", registry.Offline))
	strict.StrictMode = true
	result, err = strict.Validate(doc)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"MulticastAddress"}, fields(result.Errors))
}

func TestValidateReferences(t *testing.T) {
	doc := parse(t, `
topology:
  Cluster:
    c1: {}
  Server:
    ms1:
      Cluster: c1
resources:
  SelfTuning:
    MaxThreadsConstraint:
      mtc1:
        Count: 4
    WorkManager:
      wm1:
        MaxThreadsConstraint: mtc1
        Target: [ms1, c1, '!ms2']
      wm2:
        MaxThreadsConstraint: mtc9
`)
	result, err := New(newResolver(t, "14.1.2", registry.Offline)).Validate(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"MaxThreadsConstraint"}, fields(result.Errors))
	assert.Equal(t, "resources:/SelfTuning/WorkManager/wm2", result.Errors[0].Path)

	result, err = New(newResolver(t, "14.1.2", registry.Online)).Validate(doc)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"MaxThreadsConstraint"}, fields(result.Warnings))
}

func TestRefSelector(t *testing.T) {
	doc := parse(t, `
resources:
  JMSSystemResource:
    jms1:
      SubDeployment:
        sd1: {}
    jms2:
      SubDeployment:
        sd2: {}
        '!sd3':
`)
	x := newRefIndex(doc, newResolver(t, "14.1.2", registry.Offline))

	sel, ok := x.selector("resources/JMSSystemResource/SubDeployment")
	require.True(t, ok)
	assert.Equal(t, "$['resources']['JMSSystemResource'][*]['SubDeployment']", sel)

	assert.True(t, x.contains([]string{"resources/JMSSystemResource/SubDeployment"}, "sd1"))
	assert.True(t, x.contains([]string{"resources/JMSSystemResource/SubDeployment"}, "sd2"))
	assert.False(t, x.contains([]string{"resources/JMSSystemResource/SubDeployment"}, "sd3"))
	assert.True(t, x.contains([]string{"topology/Server", "resources/JMSSystemResource"}, "jms2"))

	_, ok = x.selector("resources/Nope")
	assert.False(t, ok)
	_, ok = x.selector("resources")
	assert.False(t, ok)
}

func TestIncludeWarnings(t *testing.T) {
	v := New(newResolver(t, "14.1.2", registry.Offline))
	v.IncludeWarnings = false
	result, err := v.Validate(parse(t, problems))
	require.NoError(t, err)
	assert.Len(t, result.Errors, 4)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Infos)
}

func TestValidateWithOptions(t *testing.T) {
	r := newResolver(t, "14.1.2", registry.Offline)
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topology:\n  Server:\n    ms1:\n      ListenPort: 7001\n"), 0o600))

	result, err := ValidateWithOptions(WithFilePath(path), WithResolver(r))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, path, result.SourcePath)

	result, err = ValidateWithOptions(WithDocument(parse(t, problems)), WithResolver(r), WithIncludeWarnings(false), WithStrictMode(true))
	require.NoError(t, err)
	assert.Len(t, result.Errors, 5)

	_, err = ValidateWithOptions(WithResolver(r))
	assert.ErrorContains(t, err, "must specify an input source")

	_, err = ValidateWithOptions(WithFilePath(path), WithDocument(model.NewDict()), WithResolver(r))
	assert.ErrorContains(t, err, "exactly one input source")

	_, err = ValidateWithOptions(WithFilePath(path))
	assert.ErrorContains(t, err, "must specify a resolver")

	_, err = ValidateWithOptions(WithFilePath(filepath.Join(t.TempDir(), "missing.yaml")), WithResolver(r))
	assert.Error(t, err)
}
