package container

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC registry: a keyed map of Binding entries supporting
// scoped registration, tag-based discovery, and an irreversible per-binding
// lock.
//
// It supports:
//   - Bind(key) with chainable To / ToAlias / ToDynamicValue / ToProvider
//   - ScopeTransient / ScopeSingleton
//   - Tags (group multiple keys under one tag)
//   - Find (key-glob discovery) and FindByTag
//   - GetBinding (query an entry without creating or resolving it)
//   - Lock (freeze an entry against any further mutation)
type Container struct {
	mu sync.RWMutex

	// key → binding
	bindings map[string]*Binding

	// registration order, for deterministic Find / Tagged results
	order []string

	// tag → []key
	tags map[string][]string
}

// New creates an empty container with itself bound under "container".
func New() *Container {
	c := &Container{
		bindings: make(map[string]*Binding),
		tags:     make(map[string][]string),
	}
	c.Bind("container").To(c).InScope(ScopeSingleton)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind creates (or replaces) the binding for key and returns it for
// chaining:
//
//	c.Bind("config").To(cfg).InScope(container.ScopeSingleton)
//
// Replacing a locked entry is a programming error and panics — the lock is
// enforced here, on the container's single write path, not by callers.
func (c *Container) Bind(key string) *Binding {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.bindings[key]; ok {
		if existing.locked {
			panic(fmt.Sprintf("container: cannot rebind locked key [%s]", key))
		}
		// The replacement starts untagged; drop the old entry's tags so
		// FindByTag never resurrects the key through a stale index.
		c.pruneTags(existing)
	} else {
		c.order = append(c.order, key)
	}

	b := &Binding{c: c, key: key, scope: ScopeTransient}
	c.bindings[key] = b
	return b
}

// pruneTags removes b's key from the tag index (must hold mu).
func (c *Container) pruneTags(b *Binding) {
	for _, tag := range b.tags {
		kept := make([]string, 0, len(c.tags[tag]))
		for _, key := range c.tags[tag] {
			if key != b.key {
				kept = append(kept, key)
			}
		}
		if len(kept) == 0 {
			delete(c.tags, tag)
		} else {
			c.tags[tag] = kept
		}
	}
}

// ── Queries ───────────────────────────────────────────────────────────────────

// GetBinding returns the binding registered under key without creating or
// resolving anything. The second result reports whether the key is bound.
func (c *Container) GetBinding(key string) (*Binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[key]
	return b, ok
}

// IsBound reports whether key has a binding.
func (c *Container) IsBound(key string) bool {
	_, ok := c.GetBinding(key)
	return ok
}

// Find returns all bindings whose key matches pattern, in registration
// order. A trailing "*" matches any suffix:
//
//	c.Find("datasource.models.*")
func (c *Container) Find(pattern string) []*Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()

	match := func(key string) bool { return key == pattern }
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		match = func(key string) bool { return strings.HasPrefix(key, prefix) }
	}

	var out []*Binding
	for _, key := range c.order {
		if match(key) {
			out = append(out, c.bindings[key])
		}
	}
	return out
}

// FindByTag returns all bindings carrying tag, in registration order.
func (c *Container) FindByTag(tag string) []*Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.tags[tag]
	out := make([]*Binding, 0, len(keys))
	for _, key := range keys {
		if b, ok := c.bindings[key]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Keys returns all bound keys in registration order.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves the value bound under key.
func (c *Container) Get(key string) (any, error) {
	return c.get(key, nil)
}

// get is the internal resolver; seen tracks alias hops to detect cycles.
func (c *Container) get(key string, seen map[string]bool) (any, error) {
	if seen[key] {
		return nil, &AliasCycleError{Key: key}
	}

	b, ok := c.GetBinding(key)
	if !ok {
		return nil, &NotBoundError{Key: key}
	}

	if b.Type() == BindingAlias {
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[key] = true
	}
	return b.resolve(seen)
}

// Make resolves key, panicking on failure. Prefer Get (or the generic
// Resolve helper) when the caller can handle errors.
func (c *Container) Make(key string) any {
	v, err := c.Get(key)
	if err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
	return v
}

// Tagged resolves every binding carrying tag, in registration order.
func (c *Container) Tagged(tag string) ([]any, error) {
	bindings := c.FindByTag(tag)
	out := make([]any, 0, len(bindings))
	for _, b := range bindings {
		v, err := c.get(b.Key(), nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ── Errors ────────────────────────────────────────────────────────────────────

// NotBoundError is returned when a requested key has no binding.
type NotBoundError struct {
	Key string
}

func (e *NotBoundError) Error() string {
	return fmt.Sprintf("no binding registered for [%s]", e.Key)
}

// NoTargetError is returned when a binding was created with Bind but never
// given a target via To / ToAlias / ToDynamicValue / ToProvider.
type NoTargetError struct {
	Key string
}

func (e *NoTargetError) Error() string {
	return fmt.Sprintf("binding [%s] has no target", e.Key)
}

// AliasCycleError is returned when alias resolution loops back on itself.
type AliasCycleError struct {
	Key string
}

func (e *AliasCycleError) Error() string {
	return fmt.Sprintf("alias cycle detected at [%s]", e.Key)
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// binding key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))
//	c.Bind(key).ToDynamicValue(factory)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: cfg := c.Make("config").(*config.Config)
//	// Write:      cfg := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c *Container, key string) T {
	instance := c.Make(key)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), key, instance))
	}
	return typed
}

// MustResolve is like Resolve but returns (T, bool) without panicking.
func MustResolve[T any](c *Container, key string) (T, bool) {
	v, err := c.Get(key)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
