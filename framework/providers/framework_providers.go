package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-datasource/framework/config"
	"github.com/km-arc/go-datasource/framework/container"
	"github.com/km-arc/go-datasource/framework/datasource"
	"github.com/km-arc/go-datasource/framework/lifecycle"
	"github.com/km-arc/go-datasource/framework/logging"
	"github.com/km-arc/go-datasource/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound keys:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Bind("config").ToDynamicValue(func(c *container.Container) any {
		return config.Load(envFiles...)
	}).InScope(container.ScopeSingleton)
	app.Bind("configuration").ToAlias("config")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider registers the zap logger.
//
// Bound keys:
//   - "log" → *zap.Logger
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Bind("log").ToDynamicValue(func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		return logging.New(cfg.App.Env, cfg.App.Debug)
	}).InScope(container.ScopeSingleton)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound keys:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Bind("router").ToDynamicValue(func(c *container.Container) any {
		return routing.New()
	}).InScope(container.ScopeSingleton)
}

// ── DatasourceServiceProvider ─────────────────────────────────────────────────

// DatasourceServiceProvider wires a datasource.Manager into the application.
//
// The manager is registered under datasource.KeyManager and tagged
// lifecycle.TagComponent, so the lifecycle registry finds it and drives
// Start/Stop. Init runs in Boot, after every provider has registered —
// initialization failures there are wiring bugs, surfaced as panics like
// other container misuse.
//
// Supply either a pre-built Client or a Factory. When Config is nil the
// record is derived from the environment-sourced app configuration.
type DatasourceServiceProvider struct {
	container.BaseProvider
	Client  datasource.Client
	Config  *datasource.Config
	Factory datasource.Factory
}

func (p *DatasourceServiceProvider) Register(app *container.Container) {
	app.Bind(datasource.KeyManager).ToDynamicValue(func(c *container.Container) any {
		opts := []datasource.Option{
			datasource.WithConfig(p.record(c)),
		}
		if p.Client != nil {
			opts = append(opts, datasource.WithClient(p.Client))
		}
		if p.Factory != nil {
			opts = append(opts, datasource.WithFactory(p.Factory))
		}
		if log, ok := container.MustResolve[*zap.Logger](c, "log"); ok {
			opts = append(opts, datasource.WithLogger(log))
		}

		m, err := datasource.New(c, opts...)
		if err != nil {
			panic(fmt.Sprintf("datasource: %v", err))
		}
		return m
	}).InScope(container.ScopeSingleton).Tag(lifecycle.TagComponent)
}

func (p *DatasourceServiceProvider) Boot(app *container.Container) {
	m := container.Resolve[*datasource.Manager](app, datasource.KeyManager)
	if err := m.Init(); err != nil {
		panic(fmt.Sprintf("datasource: init failed: %v", err))
	}
}

// record picks the configuration record: an explicit one wins, otherwise it
// is derived from the app config when available.
func (p *DatasourceServiceProvider) record(c *container.Container) *datasource.Config {
	if p.Config != nil {
		return p.Config
	}
	if appCfg, ok := container.MustResolve[*config.Config](c, "config"); ok {
		return &datasource.Config{
			Name:        appCfg.Datasource.Name,
			DSN:         appCfg.Datasource.DSN,
			LazyConnect: appCfg.Datasource.LazyConnect,
		}
	}
	return datasource.DefaultConfig()
}
