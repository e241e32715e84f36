package module

import (
	"brandpulse/internal/services/campaigns/domain"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Ports exposed by the campaigns module
type Ports struct {
	Query domain.QueryPort
}
