// Package container provides the IoC (Inversion of Control) registry and
// Service Provider system for the framework.
//
// # Overview
//
// The container maps string keys to Binding entries. A binding associates a
// key with one of four targets — a constant value, an alias to another key,
// a dynamic-value factory, or a ValueProvider — plus scope, tag, and lock
// metadata. Because Go has no runtime constructor reflection, auto-wiring is
// replaced by explicit factory functions.
//
// # Bindings
//
//	// Constant — a pre-built value
//	c.Bind("config").To(cfg).InScope(container.ScopeSingleton)
//
//	// Dynamic value — factory runs on resolution, cached when singleton
//	c.Bind("cache").ToDynamicValue(func(c *container.Container) any {
//	    return cache.New(container.Resolve[*config.Config](c, "config"))
//	}).InScope(container.ScopeSingleton)
//
//	// Alias
//	c.Bind("configuration").ToAlias("config")
//
//	// Provider-backed
//	c.Bind("mailer").ToProvider(&MailerProvider{}).InScope(container.ScopeSingleton)
//
// # Resolving
//
//	raw, err := c.Get("cache")
//
//	// Generic (preferred — no type assertion required)
//	cc := container.Resolve[*cache.Cache](c, "cache")
//
// # Inspection and discovery
//
//	b, ok := c.GetBinding("cache")  // no resolution side effects
//	b.Type()                        // container.BindingDynamic
//	b.Scope()                       // container.ScopeSingleton
//
//	c.Bind("datasource.models.users").To(users).Tag("datasource.model")
//	c.FindByTag("datasource.model") // []*Binding
//	c.Find("datasource.models.*")   // trailing-* key glob
//
// # Locking
//
// Lock() irreversibly freezes a binding: every later mutator call panics, and
// Bind() refuses to replace the entry. Consumers that must treat an entry as
// fixed for the container's lifetime (see the datasource manager) lock it
// once its value is final.
//
//	b, _ := c.GetBinding("config")
//	b.Lock()
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Bind("mailer").ToDynamicValue(func(c *container.Container) any {
//	        return mail.NewSMTP(container.Resolve[*config.Config](c, "config").Mail)
//	    }).InScope(container.ScopeSingleton)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// Deferred providers declare Provides() and IsDeferred() and are only
// registered when one of their keys is first resolved.
package container
