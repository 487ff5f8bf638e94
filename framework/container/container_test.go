package container_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-datasource/framework/container"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected a panic, got none")
		}
	}()
	fn()
}

type service struct{ name string }

// ── Constant bindings ─────────────────────────────────────────────────────────

func TestBind_Constant(t *testing.T) {
	c := container.New()
	svc := &service{name: "db"}

	c.Bind("svc").To(svc)

	got, err := c.Get("svc")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != svc {
		t.Errorf("Get() = %v, want the bound instance", got)
	}
}

func TestBind_ReplacesExisting(t *testing.T) {
	c := container.New()
	c.Bind("svc").To("first")
	c.Bind("svc").To("second")

	if got := c.Make("svc"); got != "second" {
		t.Errorf("Make() = %v, want %q", got, "second")
	}
}

func TestBind_NoTarget(t *testing.T) {
	c := container.New()
	c.Bind("empty")

	_, err := c.Get("empty")
	var noTarget *container.NoTargetError
	if !errors.As(err, &noTarget) {
		t.Errorf("Get() error = %v, want NoTargetError", err)
	}
}

func TestGet_Unbound(t *testing.T) {
	c := container.New()

	_, err := c.Get("missing")
	var notBound *container.NotBoundError
	if !errors.As(err, &notBound) {
		t.Errorf("Get() error = %v, want NotBoundError", err)
	}
}

// ── Dynamic values & scopes ───────────────────────────────────────────────────

func TestDynamicValue_TransientRunsEveryTime(t *testing.T) {
	c := container.New()
	calls := 0
	c.Bind("counter").ToDynamicValue(func(_ *container.Container) any {
		calls++
		return calls
	})

	c.Make("counter")
	c.Make("counter")

	if calls != 2 {
		t.Errorf("factory ran %d times, want 2 (transient)", calls)
	}
}

func TestDynamicValue_SingletonCached(t *testing.T) {
	c := container.New()
	calls := 0
	c.Bind("counter").ToDynamicValue(func(_ *container.Container) any {
		calls++
		return &service{}
	}).InScope(container.ScopeSingleton)

	first := c.Make("counter")
	second := c.Make("counter")

	if calls != 1 {
		t.Errorf("factory ran %d times, want 1 (singleton)", calls)
	}
	if first != second {
		t.Error("singleton resolutions returned different instances")
	}
}

type stubProvider struct{ built int }

func (p *stubProvider) Value(_ *container.Container) any {
	p.built++
	return &service{name: "provided"}
}

func TestProviderBacked(t *testing.T) {
	c := container.New()
	p := &stubProvider{}
	c.Bind("svc").ToProvider(p).InScope(container.ScopeSingleton)

	got := container.Resolve[*service](c, "svc")
	c.Make("svc")

	if got.name != "provided" {
		t.Errorf("resolved %+v, want provider-built value", got)
	}
	if p.built != 1 {
		t.Errorf("provider ran %d times, want 1", p.built)
	}
}

// ── Aliases ───────────────────────────────────────────────────────────────────

func TestAlias_ResolvesTarget(t *testing.T) {
	c := container.New()
	svc := &service{}
	c.Bind("svc").To(svc)
	c.Bind("service").ToAlias("svc")

	if got := c.Make("service"); got != svc {
		t.Errorf("alias resolved to %v, want target instance", got)
	}
}

func TestAlias_ToItselfPanics(t *testing.T) {
	c := container.New()
	expectPanic(t, func() { c.Bind("svc").ToAlias("svc") })
}

func TestAlias_CycleDetected(t *testing.T) {
	c := container.New()
	c.Bind("a").ToAlias("b")
	c.Bind("b").ToAlias("a")

	_, err := c.Get("a")
	var cycle *container.AliasCycleError
	if !errors.As(err, &cycle) {
		t.Errorf("Get() error = %v, want AliasCycleError", err)
	}
}

// ── Binding metadata ──────────────────────────────────────────────────────────

func TestGetBinding_Metadata(t *testing.T) {
	c := container.New()
	svc := &service{}
	c.Bind("svc").To(svc).InScope(container.ScopeSingleton).Tag("services")

	b, ok := c.GetBinding("svc")
	if !ok {
		t.Fatal("GetBinding() did not find the binding")
	}
	if b.Type() != container.BindingConstant {
		t.Errorf("Type() = %v, want BindingConstant", b.Type())
	}
	if b.Scope() != container.ScopeSingleton {
		t.Errorf("Scope() = %v, want ScopeSingleton", b.Scope())
	}
	if b.IsLocked() {
		t.Error("new binding should not be locked")
	}
	if v, ok := b.ConstantValue(); !ok || v != svc {
		t.Errorf("ConstantValue() = (%v, %v), want bound instance", v, ok)
	}
}

func TestGetBinding_AbsentHasNoSideEffects(t *testing.T) {
	c := container.New()

	if _, ok := c.GetBinding("missing"); ok {
		t.Error("GetBinding() reported a binding for an unbound key")
	}
	if c.IsBound("missing") {
		t.Error("querying a key must not create a binding")
	}
}

func TestConstantValue_NonConstant(t *testing.T) {
	c := container.New()
	c.Bind("svc").ToDynamicValue(func(_ *container.Container) any { return 1 })

	b, _ := c.GetBinding("svc")
	if _, ok := b.ConstantValue(); ok {
		t.Error("ConstantValue() should report false for a dynamic binding")
	}
}

// ── Locking ───────────────────────────────────────────────────────────────────

func TestLock_MutatorsPanic(t *testing.T) {
	c := container.New()
	b := c.Bind("svc").To(&service{}).InScope(container.ScopeSingleton)
	b.Lock()

	if !b.IsLocked() {
		t.Fatal("IsLocked() = false after Lock()")
	}

	mutations := []struct {
		name string
		fn   func()
	}{
		{"To", func() { b.To("other") }},
		{"ToAlias", func() { b.ToAlias("elsewhere") }},
		{"ToDynamicValue", func() { b.ToDynamicValue(func(_ *container.Container) any { return nil }) }},
		{"InScope", func() { b.InScope(container.ScopeTransient) }},
		{"Tag", func() { b.Tag("late") }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, tt.fn)
		})
	}
}

func TestLock_RebindPanics(t *testing.T) {
	c := container.New()
	c.Bind("svc").To(&service{}).Lock()

	expectPanic(t, func() { c.Bind("svc") })
}

func TestLock_ResolutionStillWorks(t *testing.T) {
	c := container.New()
	svc := &service{}
	c.Bind("svc").To(svc).Lock()

	if got := c.Make("svc"); got != svc {
		t.Errorf("locked binding resolved to %v, want bound instance", got)
	}
}

// ── Tags & discovery ──────────────────────────────────────────────────────────

func TestFindByTag(t *testing.T) {
	c := container.New()
	c.Bind("models.users").To("users").Tag("model")
	c.Bind("models.orders").To("orders").Tag("model")
	c.Bind("other").To("other")

	found := c.FindByTag("model")
	if len(found) != 2 {
		t.Fatalf("FindByTag() returned %d bindings, want 2", len(found))
	}
	if found[0].Key() != "models.users" || found[1].Key() != "models.orders" {
		t.Errorf("FindByTag() order = [%s, %s], want registration order",
			found[0].Key(), found[1].Key())
	}
}

func TestFindByTag_RebindDropsOldTags(t *testing.T) {
	c := container.New()
	c.Bind("svc").To("tagged").Tag("group")

	// Rebinding the key without the tag must remove it from the group.
	c.Bind("svc").To("untagged")

	if got := len(c.FindByTag("group")); got != 0 {
		t.Errorf("FindByTag() returned %d bindings after rebind, want 0", got)
	}

	// Re-tagging registers the key exactly once.
	c.Bind("svc").To("retagged").Tag("group")
	if got := len(c.FindByTag("group")); got != 1 {
		t.Errorf("FindByTag() returned %d bindings after re-tag, want 1", got)
	}
}

func TestTagged_ResolvesValues(t *testing.T) {
	c := container.New()
	c.Bind("models.users").To("users").Tag("model")
	c.Bind("models.orders").To("orders").Tag("model")

	values, err := c.Tagged("model")
	if err != nil {
		t.Fatalf("Tagged() error: %v", err)
	}
	if len(values) != 2 || values[0] != "users" || values[1] != "orders" {
		t.Errorf("Tagged() = %v, want [users orders]", values)
	}
}

func TestFind_PrefixGlob(t *testing.T) {
	c := container.New()
	c.Bind("models.users").To("users")
	c.Bind("models.orders").To("orders")
	c.Bind("config").To("cfg")

	tests := []struct {
		pattern string
		want    int
	}{
		{"models.*", 2},
		{"models.users", 1},
		{"missing.*", 0},
	}
	for _, tt := range tests {
		if got := len(c.Find(tt.pattern)); got != tt.want {
			t.Errorf("Find(%q) returned %d bindings, want %d", tt.pattern, got, tt.want)
		}
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

func TestResolve_WrongTypePanics(t *testing.T) {
	c := container.New()
	c.Bind("svc").To("a string")

	expectPanic(t, func() { container.Resolve[*service](c, "svc") })
}

func TestMustResolve(t *testing.T) {
	c := container.New()
	c.Bind("svc").To(&service{})

	if _, ok := container.MustResolve[*service](c, "svc"); !ok {
		t.Error("MustResolve() = false for a matching type")
	}
	if _, ok := container.MustResolve[int](c, "svc"); ok {
		t.Error("MustResolve() = true for a mismatched type")
	}
	if _, ok := container.MustResolve[*service](c, "missing"); ok {
		t.Error("MustResolve() = true for an unbound key")
	}
}
