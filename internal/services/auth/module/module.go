// Package module wires the auth service
package module

import (
	"brandpulse/internal/modkit"
	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/platform/net/middleware"
	"brandpulse/internal/services/auth/domain"
	"brandpulse/internal/services/auth/service"
)

// Ports exposed by the auth module
type Ports struct {
	Auth   middleware.AuthPort
	Tokens domain.TokenPort
}

// Module implements the auth service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the auth module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	v := service.New(service.Config{
		Secret: []byte(opts.Secret),
		Issuer: opts.Issuer,
		TTL:    opts.TTL,
	})

	port := httpkit.NewPortFunc(func(token string) (middleware.Identity, error) {
		p, err := v.Parse(token)
		if err != nil {
			return middleware.Identity{}, err
		}
		return middleware.Identity{
			UserID:      p.UserID,
			TenantIDs:   p.TenantIDs,
			Permissions: p.Permissions,
			SuperAdmin:  p.SuperAdmin,
		}, nil
	})

	m := &Module{deps: deps}
	m.ports = Ports{Auth: port, Tokens: v}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "auth" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
