package datasource

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/km-arc/go-datasource/framework/container"
)

// ── Manager ───────────────────────────────────────────────────────────────────

// Manager wires a single Client into the container and drives its lifecycle.
//
// A client instance can reach the manager two ways: supplied through
// WithClient, or bound into the container under KeyClient before the manager
// runs. The manager reconciles the two — they must be the same instance —
// and guarantees that after Init exactly one client binding exists, locked,
// with one derived binding per model the client exposes.
//
// Lifecycle: New → Init (exactly once, later calls are no-ops) → any number
// of Start/Stop calls. Start and Stop require Init to have completed. The
// manager assumes serialized lifecycle invocation; it has no internal guard
// against racing Init calls.
type Manager struct {
	app     *container.Container
	client  Client
	cfg     *Config
	factory Factory
	log     *zap.Logger

	initialized bool
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithClient supplies a pre-built client instance. The manager registers it
// under KeyClient at Init instead of building one from configuration.
func WithClient(client Client) Option {
	return func(m *Manager) { m.client = client }
}

// WithConfig supplies the configuration record bound under KeyConfig when
// the container holds none yet.
func WithConfig(cfg *Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithFactory supplies the factory used to build a client from configuration
// when no instance was given.
func WithFactory(f Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithLogger sets the manager's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New constructs a Manager against app.
//
// If the container has no configuration binding yet, one is created from the
// supplied (or default) record — created, never locked: the application may
// still replace it up until Init, and the last write wins. If a client was
// supplied and a different instance is already bound under KeyClient, New
// fails with a ConflictingInstanceError.
func New(app *container.Container, opts ...Option) (*Manager, error) {
	m := &Manager{app: app, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if m.cfg == nil {
		m.cfg = DefaultConfig()
	}

	if !app.IsBound(KeyConfig) {
		app.Bind(KeyConfig).To(m.cfg).InScope(container.ScopeSingleton)
	}

	if err := m.checkConflict(); err != nil {
		return nil, err
	}
	return m, nil
}

// IsInitialized reports whether Init has completed. The transition is
// one-way for the manager's lifetime.
func (m *Manager) IsInitialized() bool { return m.initialized }

// Name identifies the manager to the lifecycle registry.
func (m *Manager) Name() string { return KeyManager }

// ── Init ──────────────────────────────────────────────────────────────────────

// Init performs the one-time setup:
//
//  1. Re-runs the conflict check (the container may have changed since New).
//  2. Registers the supplied client as a singleton constant, or — when one
//     is already bound — validates that the existing binding is a
//     singleton-scoped constant.
//  3. Without a supplied client, adopts a client already bound under
//     KeyClient (validated the same way); only when that key is unbound
//     does it re-fetch the configuration record from the container and
//     build the client through the Factory.
//  4. Locks the configuration and client bindings for the rest of the
//     container's life.
//  5. Derives one binding per model under ModelNamespace, tagged TagModel.
//
// Init is idempotent: the second and later calls return nil immediately.
// Validation runs before any registration, so a failed Init registers
// nothing new; there is no rollback of steps that already ran.
func (m *Manager) Init() error {
	if m.initialized {
		return nil
	}

	if err := m.checkConflict(); err != nil {
		return err
	}

	if m.client != nil {
		if b, ok := m.app.GetBinding(KeyClient); ok {
			// The entry must be a fixed, already-materialized value:
			// alias, dynamic, and provider bindings could produce a
			// different instance on each resolution.
			if b.Type() != container.BindingConstant || b.Scope() != container.ScopeSingleton {
				return &NotSingletonConstantError{Key: KeyClient, Type: b.Type(), Scope: b.Scope()}
			}
		} else {
			m.app.Bind(KeyClient).To(m.client).InScope(container.ScopeSingleton)
		}
	} else if b, ok := m.app.GetBinding(KeyClient); ok {
		// A collaborator bound a client directly; adopt it instead of
		// building one, subject to the same shape rule.
		if b.Type() != container.BindingConstant || b.Scope() != container.ScopeSingleton {
			return &NotSingletonConstantError{Key: KeyClient, Type: b.Type(), Scope: b.Scope()}
		}
	} else {
		// Last write before the lock wins.
		cfg, err := m.config()
		if err != nil {
			return err
		}
		if m.factory == nil {
			return ErrNoFactory
		}
		client, err := m.factory(cfg)
		if err != nil {
			return fmt.Errorf("datasource: building client: %w", err)
		}
		m.app.Bind(KeyClient).To(client).InScope(container.ScopeSingleton)
	}

	m.lockBindings()
	m.registerModels()

	m.initialized = true
	m.log.Info("datasource initialized", zap.String("key", KeyClient))
	return nil
}

// checkConflict enforces the single-instance rule: when a client was
// supplied to the constructor and a constant client binding already exists,
// the two must be the same instance. Non-constant binding shapes are left to
// Init's singleton-constant check.
func (m *Manager) checkConflict() error {
	if m.client == nil {
		return nil
	}
	b, ok := m.app.GetBinding(KeyClient)
	if !ok {
		return nil
	}
	if bound, isConst := b.ConstantValue(); isConst && bound != m.client {
		return &ConflictingInstanceError{Key: KeyClient}
	}
	return nil
}

// lockBindings freezes the configuration and client entries. Irreversible.
func (m *Manager) lockBindings() {
	if b, ok := m.app.GetBinding(KeyConfig); ok {
		b.Lock()
	}
	if b, ok := m.app.GetBinding(KeyClient); ok {
		b.Lock()
	}
}

// registerModels derives one binding per model the client exposes, under
// ModelKey(name) and tagged TagModel. Best-effort enumeration: whatever
// names the client reports get bound, nothing is validated against an
// expected set. Names are registered in sorted order so discovery is
// deterministic.
func (m *Manager) registerModels() {
	client, err := m.resolveClient()
	if err != nil {
		return
	}
	models := client.Models()
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.app.Bind(ModelKey(name)).
			To(models[name]).
			InScope(container.ScopeSingleton).
			Tag(TagModel)
		m.log.Debug("model bound", zap.String("model", name), zap.String("key", ModelKey(name)))
	}
}

// ── Start / Stop ──────────────────────────────────────────────────────────────

// Start opens the client's connection. With LazyConnect set it does nothing
// — the client is expected to connect on first use, a contract the manager
// does not enforce. Otherwise every call issues exactly one Connect and
// returns its outcome unchanged; whether repeated connects are safe is the
// client's property, not the manager's.
func (m *Manager) Start(ctx context.Context) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	cfg, err := m.config()
	if err != nil {
		return err
	}
	if cfg.LazyConnect {
		m.log.Debug("lazy connect enabled, skipping connect", zap.String("datasource", cfg.Name))
		return nil
	}
	client, err := m.resolveClient()
	if err != nil {
		return err
	}
	m.log.Info("connecting datasource", zap.String("datasource", cfg.Name))
	return client.Connect(ctx)
}

// Stop closes the client's connection. There is no LazyConnect short-circuit
// here: every call issues exactly one Disconnect, however the connection was
// opened, and returns its outcome unchanged.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	client, err := m.resolveClient()
	if err != nil {
		return err
	}
	m.log.Info("disconnecting datasource")
	return client.Disconnect(ctx)
}

// ── Container access ──────────────────────────────────────────────────────────

// config re-fetches the configuration record from the container, so edits
// made between New and Init are honored.
func (m *Manager) config() (*Config, error) {
	v, err := m.app.Get(KeyConfig)
	if err != nil {
		return nil, err
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("datasource: [%s] resolved to %T, want *datasource.Config", KeyConfig, v)
	}
	return cfg, nil
}

// resolveClient fetches the shared client through the container, the same
// path every other consumer uses.
func (m *Manager) resolveClient() (Client, error) {
	v, err := m.app.Get(KeyClient)
	if err != nil {
		return nil, err
	}
	client, ok := v.(Client)
	if !ok {
		return nil, fmt.Errorf("datasource: [%s] resolved to %T, want datasource.Client", KeyClient, v)
	}
	return client, nil
}
