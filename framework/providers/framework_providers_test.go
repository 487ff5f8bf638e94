package providers_test

import (
	"context"
	"testing"

	"github.com/km-arc/go-datasource/framework/container"
	"github.com/km-arc/go-datasource/framework/datasource"
	"github.com/km-arc/go-datasource/framework/lifecycle"
	"github.com/km-arc/go-datasource/framework/providers"
)

// ── stub client ───────────────────────────────────────────────────────────────

type stubClient struct {
	connects    int
	disconnects int
	models      map[string]any
}

func (s *stubClient) Connect(_ context.Context) error    { s.connects++; return nil }
func (s *stubClient) Disconnect(_ context.Context) error { s.disconnects++; return nil }
func (s *stubClient) Models() map[string]any             { return s.models }

func bootWith(t *testing.T, provider *providers.DatasourceServiceProvider) *container.Container {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&providers.ConfigServiceProvider{EnvFiles: []string{"testdata/empty.env"}})
	reg.Register(&providers.LogServiceProvider{})
	reg.Register(provider)
	reg.Boot()
	return c
}

// ── DatasourceServiceProvider ─────────────────────────────────────────────────

func TestDatasourceProvider_InitializesManagerOnBoot(t *testing.T) {
	client := &stubClient{models: map[string]any{"users": "users-model"}}
	c := bootWith(t, &providers.DatasourceServiceProvider{Client: client})

	m := container.Resolve[*datasource.Manager](c, datasource.KeyManager)
	if !m.IsInitialized() {
		t.Error("manager should be initialized after Boot")
	}

	if got := container.Resolve[datasource.Client](c, datasource.KeyClient); got != datasource.Client(client) {
		t.Error("client binding should resolve to the provider's client")
	}
	if got := len(c.FindByTag(datasource.TagModel)); got != 1 {
		t.Errorf("found %d model bindings, want 1", got)
	}
}

func TestDatasourceProvider_TaggedForLifecycleDiscovery(t *testing.T) {
	client := &stubClient{}
	c := bootWith(t, &providers.DatasourceServiceProvider{Client: client})

	reg := lifecycle.NewRegistry(c, nil)
	comps := reg.Components()
	if len(comps) != 1 {
		t.Fatalf("discovered %d lifecycle components, want 1", len(comps))
	}
	if comps[0].Name() != datasource.KeyManager {
		t.Errorf("component name = %s, want %s", comps[0].Name(), datasource.KeyManager)
	}

	ctx := context.Background()
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() error: %v", err)
	}
	if client.connects != 1 {
		t.Errorf("Connect called %d times, want 1", client.connects)
	}
	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("StopAll() error: %v", err)
	}
	if client.disconnects != 1 {
		t.Errorf("Disconnect called %d times, want 1", client.disconnects)
	}
}

func TestDatasourceProvider_ExplicitConfigWins(t *testing.T) {
	client := &stubClient{}
	cfg := &datasource.Config{Name: "explicit", LazyConnect: true}
	c := bootWith(t, &providers.DatasourceServiceProvider{Client: client, Config: cfg})

	got := container.Resolve[*datasource.Config](c, datasource.KeyConfig)
	if got != cfg {
		t.Error("config binding should resolve to the provider's explicit record")
	}

	// LazyConnect from the explicit record must gate Start.
	m := container.Resolve[*datasource.Manager](c, datasource.KeyManager)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if client.connects != 0 {
		t.Errorf("Connect called %d times under LazyConnect, want 0", client.connects)
	}
}

func TestDatasourceProvider_FactoryPath(t *testing.T) {
	built := &stubClient{}
	c := bootWith(t, &providers.DatasourceServiceProvider{
		Factory: func(_ *datasource.Config) (datasource.Client, error) { return built, nil },
	})

	if got := container.Resolve[datasource.Client](c, datasource.KeyClient); got != datasource.Client(built) {
		t.Error("client binding should resolve to the factory-built client")
	}

	b, _ := c.GetBinding(datasource.KeyClient)
	if !b.IsLocked() {
		t.Error("client binding must be locked after Boot")
	}
}

// ── Core providers ────────────────────────────────────────────────────────────

func TestConfigProvider_AliasResolvesToSameInstance(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&providers.ConfigServiceProvider{EnvFiles: []string{"testdata/empty.env"}})
	reg.Boot()

	if c.Make("config") != c.Make("configuration") {
		t.Error("'configuration' should alias the 'config' singleton")
	}
}

func TestRoutingProvider_BindsRouter(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	reg.Register(&providers.RoutingServiceProvider{})
	reg.Boot()

	if !c.IsBound("router") {
		t.Error("'router' should be bound")
	}
}
