package container

import "fmt"

// ── Binding variants ──────────────────────────────────────────────────────────

// BindingType is the explicit discriminant for how a binding produces its
// value. Callers that need to reason about a binding's shape (e.g. "is this a
// fixed, already-materialized value?") switch on this instead of inspecting
// the binding's internals.
type BindingType string

const (
	// BindingConstant resolves to a fixed value supplied at bind time.
	BindingConstant BindingType = "constant"
	// BindingAlias defers resolution to another key.
	BindingAlias BindingType = "alias"
	// BindingDynamic runs a factory function to produce the value.
	BindingDynamic BindingType = "dynamic"
	// BindingProvider delegates to a ValueProvider implementation.
	BindingProvider BindingType = "provider"
)

// Scope controls how often a binding's value is materialized.
type Scope string

const (
	// ScopeTransient produces a fresh value on every resolution.
	// This is the default scope for new bindings.
	ScopeTransient Scope = "transient"
	// ScopeSingleton produces the value once and reuses it for the
	// container's lifetime.
	ScopeSingleton Scope = "singleton"
)

// Factory builds a concrete value from the container.
type Factory func(c *Container) any

// ValueProvider is the interface-style counterpart of Factory, for producers
// that carry their own state or dependencies.
type ValueProvider interface {
	Value(c *Container) any
}

// ── Binding ───────────────────────────────────────────────────────────────────

// Binding is a single registry entry: a key associated with a constant,
// alias, factory, or provider, plus scope, tag, and lock metadata.
//
// Bindings are created with Container.Bind and configured through the
// chainable mutators:
//
//	c.Bind("cache").ToDynamicValue(func(c *container.Container) any {
//	    return cache.New(container.Resolve[*config.Config](c, "config"))
//	}).InScope(container.ScopeSingleton).Tag("service")
//
// Once Lock() has been called every mutator panics; the lock is irreversible
// for the container's lifetime.
type Binding struct {
	c *Container

	key      string
	typ      BindingType
	value    any
	alias    string
	factory  Factory
	provider ValueProvider
	scope    Scope
	tags     []string

	locked bool

	// singleton cache
	resolved bool
	cache    any
}

// ── Mutators (chainable) ──────────────────────────────────────────────────────

// To makes the binding resolve to a fixed value.
func (b *Binding) To(value any) *Binding {
	b.mutate(func() {
		b.setTarget(BindingConstant)
		b.value = value
	})
	return b
}

// ToAlias makes the binding defer resolution to another key.
func (b *Binding) ToAlias(key string) *Binding {
	if key == b.key {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", b.key))
	}
	b.mutate(func() {
		b.setTarget(BindingAlias)
		b.alias = key
	})
	return b
}

// ToDynamicValue makes the binding run a factory on resolution.
func (b *Binding) ToDynamicValue(factory Factory) *Binding {
	b.mutate(func() {
		b.setTarget(BindingDynamic)
		b.factory = factory
	})
	return b
}

// ToProvider makes the binding delegate to a ValueProvider.
func (b *Binding) ToProvider(p ValueProvider) *Binding {
	b.mutate(func() {
		b.setTarget(BindingProvider)
		b.provider = p
	})
	return b
}

// InScope sets the binding's scope.
func (b *Binding) InScope(scope Scope) *Binding {
	b.mutate(func() { b.scope = scope })
	return b
}

// Tag adds the binding to one or more named groups, discoverable through
// Container.FindByTag and Container.Tagged.
func (b *Binding) Tag(tags ...string) *Binding {
	b.mutate(func() {
		b.tags = append(b.tags, tags...)
		for _, tag := range tags {
			b.c.tags[tag] = append(b.c.tags[tag], b.key)
		}
	})
	return b
}

// Lock irreversibly freezes the binding. Every subsequent mutator call
// panics, and Container.Bind refuses to replace the entry. There is no
// unlock.
func (b *Binding) Lock() *Binding {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	b.locked = true
	return b
}

// setTarget switches the binding variant, dropping any previously cached
// singleton value (must hold c.mu).
func (b *Binding) setTarget(typ BindingType) {
	b.typ = typ
	b.value = nil
	b.alias = ""
	b.factory = nil
	b.provider = nil
	b.resolved = false
	b.cache = nil
}

// mutate runs fn under the container lock, panicking if the binding has been
// locked. Lock enforcement lives here so every write path is covered.
func (b *Binding) mutate(fn func()) {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	if b.locked {
		panic(fmt.Sprintf("container: binding [%s] is locked", b.key))
	}
	fn()
}

// ── Metadata accessors ────────────────────────────────────────────────────────

// Key returns the key the binding is registered under.
func (b *Binding) Key() string { return b.key }

// Type returns the binding's variant discriminant.
func (b *Binding) Type() BindingType {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	return b.typ
}

// Scope returns the binding's scope.
func (b *Binding) Scope() Scope {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	return b.scope
}

// IsLocked reports whether Lock has been called.
func (b *Binding) IsLocked() bool {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	return b.locked
}

// Tags returns a copy of the binding's tags.
func (b *Binding) Tags() []string {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	out := make([]string, len(b.tags))
	copy(out, b.tags)
	return out
}

// ConstantValue returns the bound value and true when the binding is a
// constant; (nil, false) for every other variant.
func (b *Binding) ConstantValue() (any, bool) {
	b.c.mu.RLock()
	defer b.c.mu.RUnlock()
	if b.typ != BindingConstant {
		return nil, false
	}
	return b.value, true
}

// ── Resolution ────────────────────────────────────────────────────────────────

// resolve materializes the binding's value. Factories and providers run
// outside the container lock; singleton results are cached.
func (b *Binding) resolve(seen map[string]bool) (any, error) {
	b.c.mu.RLock()
	typ := b.typ
	value := b.value
	alias := b.alias
	factory := b.factory
	provider := b.provider
	scope := b.scope
	resolved := b.resolved
	cache := b.cache
	b.c.mu.RUnlock()

	switch typ {
	case BindingConstant:
		return value, nil

	case BindingAlias:
		return b.c.get(alias, seen)

	case BindingDynamic, BindingProvider:
		if scope == ScopeSingleton && resolved {
			return cache, nil
		}
		var instance any
		if typ == BindingDynamic {
			instance = factory(b.c)
		} else {
			instance = provider.Value(b.c)
		}
		if scope == ScopeSingleton {
			b.c.mu.Lock()
			// First writer wins if two resolutions raced.
			if b.resolved {
				instance = b.cache
			} else {
				b.resolved = true
				b.cache = instance
			}
			b.c.mu.Unlock()
		}
		return instance, nil

	default:
		return nil, &NoTargetError{Key: b.key}
	}
}
