package datasource

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-datasource/framework/container"
)

// ErrNotInitialized is returned by Start and Stop when Init has not
// completed yet.
var ErrNotInitialized = errors.New("datasource: manager is not initialized, call Init first")

// ErrNoFactory is returned by Init when no client was supplied and no
// Factory is available to build one from configuration.
var ErrNoFactory = errors.New("datasource: no client supplied and no factory configured")

// ConflictingInstanceError is returned when a client was supplied to the
// manager's constructor while a different instance is already bound in the
// container. The manager never silently overwrites the bound one.
type ConflictingInstanceError struct {
	Key string
}

func (e *ConflictingInstanceError) Error() string {
	return fmt.Sprintf("datasource: a client was supplied to the manager but a different instance is already bound under [%s]", e.Key)
}

// NotSingletonConstantError is returned by Init when the pre-existing client
// binding is not a singleton-scoped constant. Alias, dynamic-value, and
// provider bindings could yield a different instance on each resolution,
// which would break the single-instance guarantee.
type NotSingletonConstantError struct {
	Key   string
	Type  container.BindingType
	Scope container.Scope
}

func (e *NotSingletonConstantError) Error() string {
	return fmt.Sprintf("datasource: binding [%s] must be a singleton-scoped constant, got a %s binding in %s scope", e.Key, e.Type, e.Scope)
}
