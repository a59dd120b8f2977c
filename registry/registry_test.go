package registry

import (
	"testing"
	"testing/fstest"

	"github.com/erraggy/modeltools/modelerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"domainInfo", "topology", "resources", "appDeployments"}, reg.SectionNames())

	topo, ok := reg.Section("topology")
	require.True(t, ok)
	assert.Equal(t, "SecurityConfiguration", topo.Order[0])

	server, ok := topo.Folder("Server")
	require.True(t, ok)
	assert.Equal(t, CardinalityMultiple, server.Cardinality)
	assert.Equal(t, "SERVER", server.Token)
	assert.Equal(t, "Server", server.AdminType.For(Offline))
	assert.Equal(t, "Servers", server.AdminType.For(Online))
	assert.Equal(t, "/Server/%SERVER%", server.Path.For(Offline))
	assert.True(t, server.Placeholder)

	port, ok := server.Attribute("ListenPort")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, port.Type)
	assert.Equal(t, 7001, port.Default)

	ssl, ok := server.Folder("SSL")
	require.True(t, ok)
	assert.Equal(t, DefaultSingleName, ssl.SingleName)
	assert.Equal(t, "SSL", ssl.AdminType.For(Online))

	names := make([]string, 0, len(server.Folders))
	for _, f := range server.Folders {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"SSL", "Log", "ServerStart", "NetworkAccessPoint"}, names)

	sec, _ := topo.Folder("SecurityConfiguration")
	assert.True(t, sec.Bootstrap)
	realm, _ := sec.Folder("Realm")
	provider, ok := realm.Folder("AuthenticationProvider")
	require.True(t, ok)
	assert.True(t, provider.HasTypes())
	ldap, ok := provider.Type("LDAPAuthenticator")
	require.True(t, ok)
	assert.True(t, ldap.Artificial)
	pw, _ := ldap.Attribute("CredentialEncrypted")
	assert.True(t, pw.Password)
}

func TestDefaultReturnsFreshRegistries(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestParseFolderDefaults(t *testing.T) {
	sec, err := Parse([]byte(`
section: demo
folders:
  Thing:
    cardinality: multiple
    token: THING
    attributes:
      Plain:
      Secret: {type: password, admin_name: {offline: SecretEncrypted}}
`))
	require.NoError(t, err)
	reg, err := New(sec)
	require.NoError(t, err)

	s, _ := reg.Section("demo")
	thing, _ := s.Folder("Thing")
	plain, ok := thing.Attribute("Plain")
	require.True(t, ok)
	assert.Equal(t, TypeString, plain.Type)
	assert.Equal(t, "Plain", plain.AdminName.For(Online))

	secret, _ := thing.Attribute("Secret")
	assert.True(t, secret.Password)
	assert.Equal(t, "SecretEncrypted", secret.AdminName.For(Offline))
	assert.Equal(t, "SecretEncrypted", secret.AdminName.For(Online))
	assert.Equal(t, "Thing", thing.AdminType.For(Online))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"multiple without token", "section: s\nfolders:\n  A: {cardinality: multiple}\n"},
		{"attribute and folder collide", "section: s\nfolders:\n  A:\n    attributes: {B: {}}\n    folders: {B: {}}\n"},
		{"types on plain folder", "section: s\nfolders:\n  A:\n    cardinality: single\n    types: {T: {}}\n"},
		{"unknown attribute type", "section: s\nattributes: {X: {type: blob}}\n"},
		{"order names unknown folder", "section: s\norder: [Missing]\n"},
		{"relative path", "section: s\nfolders:\n  A: {path: A/B}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = New(sec)
			assert.ErrorIs(t, err, modelerrors.ErrConfig)
		})
	}

	a, err := Parse([]byte("section: s\n"))
	require.NoError(t, err)
	b, err := Parse([]byte("section: s\n"))
	require.NoError(t, err)
	_, err = New(a, b)
	assert.ErrorIs(t, err, modelerrors.ErrConfig)
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		"folders: {}\n",
		"section: s\nfolders:\n  A: {cardinality: many}\n",
		"section: s\nfolders:\n  A: {version: \"[1,\"}\n",
		"section: s\nfolders: [A]\n",
		"section: s\nattributes:\n  A: {access: write}\n",
		"section: s\nfolders:\n  A: {mode: sometimes}\n",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/b.yaml": {Data: []byte("section: second\n")},
		"defs/a.yaml": {Data: []byte("section: first\n")},
	}
	reg, err := Load(fsys, "defs/*.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, reg.SectionNames())

	_, err = Load(fsys, "none/*.yaml")
	assert.ErrorIs(t, err, modelerrors.ErrConfig)

	bad := fstest.MapFS{"x.yaml": {Data: []byte("section: [\n")}}
	_, err = Load(bad, "*.yaml")
	assert.ErrorIs(t, err, modelerrors.ErrConfig)
}

func TestEnums(t *testing.T) {
	assert.Equal(t, "multiple_with_type_subfolder", CardinalityMultipleWithTypeSubfolder.String())
	assert.Equal(t, "Cardinality(9)", Cardinality(9).String())
	assert.True(t, CardinalityMultiple.IsMultiple())
	assert.False(t, CardinalitySingle.IsMultiple())

	m, err := ParseMode("ONLINE")
	require.NoError(t, err)
	assert.Equal(t, Online, m)
	assert.Equal(t, "online", m.String())
	text, err := Offline.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "offline", string(text))
	_, err = ParseMode("sideways")
	assert.Error(t, err)

	assert.True(t, BothModes.Allows(Online))
	assert.False(t, OfflineOnly.Allows(Online))
	assert.True(t, OnlineOnly.Allows(Online))
	assert.True(t, AccessRW.Writable())
	assert.False(t, AccessROD.Writable())
	assert.True(t, TypeReferences.IsList())
	assert.False(t, AttrType("blob").IsValid())
	assert.Equal(t, ByMode[string]{Offline: "x", Online: "x"}, Same("x"))
}
