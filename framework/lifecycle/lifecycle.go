// Package lifecycle starts and stops the application's long-lived
// components. Components register themselves in the container under any key,
// tagged TagComponent; the Registry discovers them by tag and drives them in
// registration order (reverse order on shutdown).
package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-datasource/framework/container"
)

// TagComponent marks a container binding as a lifecycle-managed component.
const TagComponent = "lifecycle.component"

// Component is anything with a start/stop lifecycle.
type Component interface {
	// Name returns the component's identity for logs and errors.
	Name() string

	// Start brings the component up. Blocking work should honor ctx.
	Start(ctx context.Context) error

	// Stop brings the component down. Called in reverse start order.
	Stop(ctx context.Context) error
}

// Registry discovers tagged components from the container and runs their
// lifecycle. It holds no component state of its own — the container is the
// source of truth, so components registered after construction are picked up
// too.
type Registry struct {
	app *container.Container
	log *zap.Logger
}

// NewRegistry creates a registry reading from app.
func NewRegistry(app *container.Container, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{app: app, log: log}
}

// Components resolves every binding tagged TagComponent, in registration
// order. Bindings whose value does not implement Component are skipped.
func (r *Registry) Components() []Component {
	bindings := r.app.FindByTag(TagComponent)
	out := make([]Component, 0, len(bindings))
	for _, b := range bindings {
		v, err := r.app.Get(b.Key())
		if err != nil {
			r.log.Warn("lifecycle component failed to resolve",
				zap.String("key", b.Key()), zap.Error(err))
			continue
		}
		if comp, ok := v.(Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// StartAll starts every discovered component in order, stopping at the first
// failure.
func (r *Registry) StartAll(ctx context.Context) error {
	for _, comp := range r.Components() {
		r.log.Info("starting component", zap.String("component", comp.Name()))
		if err := comp.Start(ctx); err != nil {
			return fmt.Errorf("lifecycle: starting %s: %w", comp.Name(), err)
		}
	}
	return nil
}

// StopAll stops every discovered component in reverse order. A failing
// component does not prevent the remaining ones from stopping; the first
// error is returned.
func (r *Registry) StopAll(ctx context.Context) error {
	comps := r.Components()
	var firstErr error
	for i := len(comps) - 1; i >= 0; i-- {
		r.log.Info("stopping component", zap.String("component", comps[i].Name()))
		if err := comps[i].Stop(ctx); err != nil {
			r.log.Error("component stop failed",
				zap.String("component", comps[i].Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("lifecycle: stopping %s: %w", comps[i].Name(), err)
			}
		}
	}
	return firstErr
}
