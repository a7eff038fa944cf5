package content

import (
	"github.com/aretw0/introspection"
)

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	return m.Status()
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "content-manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)
