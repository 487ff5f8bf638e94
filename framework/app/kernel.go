package app

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-datasource/framework/config"
	"github.com/km-arc/go-datasource/framework/container"
	"github.com/km-arc/go-datasource/framework/lifecycle"
	"github.com/km-arc/go-datasource/framework/providers"
	"github.com/km-arc/go-datasource/framework/routing"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run. A hung handler
// or component must not block process exit indefinitely.
const DefaultShutdownTimeout = 30 * time.Second

// Application is the top-level application container.
// It embeds the IoC Container so user code can call app.Bind(), app.Get()
// directly, and carries the provider registry plus the lifecycle registry
// that drives tagged components.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Lifecycle *lifecycle.Registry

	// ShutdownTimeout overrides DefaultShutdownTimeout when positive.
	ShutdownTimeout time.Duration
}

// New creates and bootstraps the application.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Framework core providers
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers and prepares the lifecycle
// registry.
func (a *Application) Boot() {
	a.Providers.Boot()
	if a.Lifecycle == nil {
		a.Lifecycle = lifecycle.NewRegistry(a.Container, a.Log())
	}
}

// Start boots the application (if needed) and starts every lifecycle
// component in registration order.
func (a *Application) Start(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	return a.Lifecycle.StartAll(ctx)
}

// Shutdown stops every lifecycle component in reverse order.
func (a *Application) Shutdown(ctx context.Context) error {
	if a.Lifecycle == nil {
		return nil
	}
	return a.Lifecycle.StopAll(ctx)
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Log resolves the application logger, or a no-op logger before boot.
func (a *Application) Log() *zap.Logger {
	if log, ok := container.MustResolve[*zap.Logger](a.Container, "log"); ok {
		return log
	}
	return zap.NewNop()
}

// Run starts the application and serves HTTP until SIGINT/SIGTERM, then
// shuts the lifecycle components down.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	cfg := a.Config()
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log().Info("http server listening",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	return a.drain(srv)
}

// drain gracefully shuts the HTTP server and lifecycle components down,
// bounded by ShutdownTimeout so a stuck handler cannot wedge exit.
func (a *Application) drain(srv *http.Server) error {
	timeout := a.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Log().Error("http server shutdown failed", zap.Error(err))
	}
	return a.Shutdown(ctx)
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
