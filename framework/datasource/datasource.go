package datasource

import "context"

// ── Well-known container keys ─────────────────────────────────────────────────

const (
	// KeyClient is the binding key for the shared client instance.
	KeyClient = "datasource.client"

	// KeyConfig is the binding key for the datasource configuration record.
	KeyConfig = "datasource.config"

	// KeyManager is the binding key for the Manager itself, so lifecycle
	// machinery can discover and drive it.
	KeyManager = "datasource.manager"

	// ModelNamespace prefixes the per-model bindings derived at Init.
	ModelNamespace = "datasource.models"

	// TagModel is carried by every derived model binding, letting
	// collaborators enumerate models without knowing the client's internals.
	TagModel = "datasource.model"
)

// ModelKey returns the namespaced binding key for a model name.
func ModelKey(name string) string {
	return ModelNamespace + "." + name
}

// ── Client ────────────────────────────────────────────────────────────────────

// Client is the stateful resource the manager wires into the container:
// typically a database or broker client owned by the application. Its wire
// protocol is its own business; the manager only drives connection lifetime
// and shares the instance.
//
// Connect and Disconnect outcomes are propagated to the caller unchanged —
// the manager adds no retry, timeout, or idempotence of its own, so clients
// that cannot tolerate repeated Connect/Disconnect calls must guard
// internally.
type Client interface {
	// Connect opens the client's connection.
	Connect(ctx context.Context) error

	// Disconnect closes the client's connection.
	Disconnect(ctx context.Context) error

	// Models returns the named sub-resources the client exposes, e.g. one
	// entry per collection or table handle. May be empty.
	Models() map[string]any
}

// Factory builds a Client from a configuration record. The manager calls it
// during Init when no pre-built client was supplied.
type Factory func(cfg *Config) (Client, error)

// ── Config ────────────────────────────────────────────────────────────────────

// Config is the datasource configuration record. The manager owns it until
// Init, at which point its container binding is locked and it becomes
// read-only for the rest of the container's life.
type Config struct {
	// Name identifies the datasource in logs.
	Name string

	// DSN is the connection string handed to the Factory.
	DSN string

	// LazyConnect defers connection establishment to the client's first
	// use: Start becomes a no-op. Stop still disconnects.
	LazyConnect bool

	// Options carries driver-specific construction parameters.
	Options map[string]string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{Name: "default"}
}
