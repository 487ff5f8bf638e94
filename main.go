package main

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/km-arc/go-datasource/framework/app"
	"github.com/km-arc/go-datasource/framework/container"
	"github.com/km-arc/go-datasource/framework/datasource"
	gohttp "github.com/km-arc/go-datasource/framework/http"
	"github.com/km-arc/go-datasource/framework/providers"
)

// memoryClient is a demo datasource: an in-process store standing in for a
// real database client.
type memoryClient struct {
	dsn       string
	connected atomic.Bool
	models    map[string]any
}

func newMemoryClient(cfg *datasource.Config) (datasource.Client, error) {
	return &memoryClient{
		dsn: cfg.DSN,
		models: map[string]any{
			"users":  map[string]string{},
			"orders": map[string]string{},
		},
	}, nil
}

func (m *memoryClient) Connect(_ context.Context) error {
	m.connected.Store(true)
	return nil
}

func (m *memoryClient) Disconnect(_ context.Context) error {
	m.connected.Store(false)
	return nil
}

func (m *memoryClient) Models() map[string]any { return m.models }

func main() {
	application := app.New() // loads .env automatically

	// Wire the datasource: built from config at init, connected at start.
	application.Register(&providers.DatasourceServiceProvider{
		Factory: newMemoryClient,
	})

	application.Boot()
	r := application.Router()

	// ── Health & introspection ───────────────────────────────────────────────

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		m := container.Resolve[*datasource.Manager](application.Container, datasource.KeyManager)
		if !m.IsInitialized() {
			res.Error(http.StatusServiceUnavailable, "datasource not ready")
			return
		}
		client := container.Resolve[*memoryClient](application.Container, datasource.KeyClient)
		res.Success(map[string]any{
			"initialized": true,
			"connected":   client.connected.Load(),
		})
	})

	r.Get("/models", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		names := []string{}
		for _, b := range application.FindByTag(datasource.TagModel) {
			names = append(names, b.Key())
		}
		res.Success(map[string]any{"models": names})
	})

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
