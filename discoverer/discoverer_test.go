package discoverer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erraggy/modeltools/deployer"
	"github.com/erraggy/modeltools/internal/severity"
	"github.com/erraggy/modeltools/internal/testutil"
	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	"github.com/erraggy/modeltools/session"
	"github.com/erraggy/modeltools/session/memsession"
	"github.com/erraggy/modeltools/session/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployed = `
topology:
  AdminServerName: admin
  Cluster:
    c1:
      ClusterMessagingMode: unicast
      DynamicServers:
        ServerNamePrefix: dyn-
  Server:
    ms1:
      ListenPort: 7101
      Cluster: c1
      SSL:
        Enabled: true
      ServerStart:
        PasswordEncrypted: secret
resources:
  MailSession:
    mail1:
      Properties:
        mail.host: smtp.example.com
        mail.port: '25'
      Target: [ms1]
`

const discovered = `
topology:
  AdminServerName: admin
  Cluster:
    c1:
      DynamicServers:
        ServerNamePrefix: dyn-
  Server:
    ms1:
      ListenPort: 7101
      Cluster: c1
      SSL:
        Enabled: true
      ServerStart:
        PasswordEncrypted: '--FIX ME--'
resources:
  MailSession:
    mail1:
      Properties:
        mail.host: smtp.example.com
        mail.port: '25'
      Target: [ms1]
`

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
	doc, err := model.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func roundTrip(t *testing.T, s session.Session, opts ...Option) *Result {
	t.Helper()
	ctx := context.Background()
	r := newResolver(t)
	_, err := deployer.New(r, s).Deploy(ctx, parse(t, deployed))
	require.NoError(t, err)
	res, err := New(r, s, opts...).Discover(ctx)
	require.NoError(t, err)
	return res
}

func TestDiscoverMemSession(t *testing.T) {
	res := roundTrip(t, memsession.New())
	want := parse(t, discovered)
	assert.True(t, model.Equal(want, res.Model), "got %s", mustYAML(t, res.Model))
	assert.Empty(t, res.Issues)
	assert.Equal(t, []string{"topology", "resources"}, res.Model.Keys())
}

func TestDiscoverSQLStore(t *testing.T) {
	ctx := context.Background()
	s, err := sqlstore.Open(ctx, filepath.Join(t.TempDir(), "domain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	res := roundTrip(t, s)
	want := parse(t, discovered)
	assert.True(t, model.Equal(want, res.Model), "got %s", mustYAML(t, res.Model))
}

func TestDiscoverWithDefaults(t *testing.T) {
	res := roundTrip(t, memsession.New(), WithDefaults())
	c1, ok := res.Model.Dict("topology")
	require.True(t, ok)
	c1, ok = c1.Dict("Cluster")
	require.True(t, ok)
	c1, ok = c1.Dict("c1")
	require.True(t, ok)
	v, ok := c1.Get("ClusterMessagingMode")
	require.True(t, ok)
	assert.Equal(t, "unicast", v)
}

func TestDiscoverTypedInstances(t *testing.T) {
	const providers = "/SecurityConfiguration/NO_NAME_0/Realm/r1/AuthenticationProvider"
	s := memsession.New(
		memsession.WithInstance("/SecurityConfiguration/NO_NAME_0", "SecurityConfiguration", nil),
		memsession.WithInstance("/SecurityConfiguration/NO_NAME_0/Realm/r1", "Realm", nil),
		memsession.WithInstance(providers+"/p1", "DefaultAuthenticator", map[string]any{"ControlFlag": "SUFFICIENT"}),
		memsession.WithInstance(providers+"/p2", "com.example.X", nil),
	)
	res, err := New(newResolver(t), s).Discover(context.Background())
	require.NoError(t, err)

	want := parse(t, `
topology:
  SecurityConfiguration:
    Realm:
      r1:
        AuthenticationProvider:
          p1:
            DefaultAuthenticator:
              ControlFlag: SUFFICIENT
          p2:
            com.example.X: {}
`)
	assert.True(t, model.Equal(want, res.Model), "got %s", mustYAML(t, res.Model))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, severity.SeverityInfo, res.Issues[0].Severity)
	assert.Equal(t, "com.example.X", res.Issues[0].Field)
}

func TestDiscoverSharedListPathOnline(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	r, err := resolver.New(reg, "14.1.2", registry.Online)
	require.NoError(t, err)

	s := memsession.New(
		memsession.WithInstance("/Machines/m1", "Machines", map[string]any{"Notes": "plain"}),
		memsession.WithInstance("/Machines/u1", "UnixMachines", map[string]any{"PostBindGID": "wls"}),
	)
	res, err := New(r, s, WithSections("topology")).Discover(context.Background())
	require.NoError(t, err)

	topology, ok := res.Model.Dict("topology")
	require.True(t, ok, "got %s", mustYAML(t, res.Model))
	assert.Equal(t, []string{"m1"}, testutil.InstanceNames(res.Model, "topology", "Machine"))
	assert.Equal(t, []string{"u1"}, testutil.InstanceNames(res.Model, "topology", "UnixMachine"))

	machines, ok := topology.Dict("UnixMachine")
	require.True(t, ok)
	u1, ok := machines.Dict("u1")
	require.True(t, ok)
	v, _ := u1.Get("PostBindGID")
	assert.Equal(t, "wls", v)
}

func TestDiscoverEmpty(t *testing.T) {
	res, err := New(newResolver(t), memsession.New()).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Model.Len())
}

func mustYAML(t *testing.T, d *model.Dict) string {
	t.Helper()
	data, err := model.Marshal(d, model.FormatYAML)
	require.NoError(t, err)
	return string(data)
}
