// Package datasource wires a single stateful client — a database, cache, or
// broker connection — into the IoC container and manages its lifecycle.
//
// # Overview
//
// The Manager guarantees that one client instance, and only one, lives in
// the container under KeyClient, no matter how it got there:
//
//   - supplied to the constructor via WithClient,
//   - bound into the container before the manager runs, or
//   - built by the manager itself from configuration via WithFactory.
//
// When a client arrives through the first two paths simultaneously the
// instances must match by reference; anything else is a
// ConflictingInstanceError, never a silent overwrite. A pre-existing binding
// must also be a singleton-scoped constant — alias, dynamic, and provider
// bindings are rejected with NotSingletonConstantError because they could
// produce a different instance per resolution.
//
// # Lifecycle
//
//	m, err := datasource.New(app,
//	    datasource.WithConfig(&datasource.Config{DSN: "redis://localhost"}),
//	    datasource.WithFactory(redisFactory),
//	)
//	...
//	err = m.Init()                   // once; later calls are no-ops
//	err = m.Start(ctx)               // connect (no-op under LazyConnect)
//	err = m.Stop(ctx)                // disconnect, always
//
// Init locks the configuration and client bindings — after that neither can
// be rebound for the container's life — and derives one binding per model
// the client exposes:
//
//	datasource.models.<name>         // tagged "datasource.model"
//
// Collaborators enumerate models with app.FindByTag(datasource.TagModel) or
// app.Find("datasource.models.*") without knowing the client's internals.
//
// # What the manager does not do
//
// Connect/Disconnect outcomes pass through unchanged: no retries, no
// timeouts, no guard against double-connect or double-disconnect. Those are
// the wrapped client's properties. The manager also assumes serialized
// lifecycle calls — racing Init invocations are the caller's bug.
package datasource
