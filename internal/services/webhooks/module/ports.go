package module

import "brandpulse/internal/services/webhooks/domain"

// Ports exposed by the webhooks module
type Ports struct {
	Manager domain.ManagerPort
	Trigger domain.TriggerPort
	Runner  domain.RunnerPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
