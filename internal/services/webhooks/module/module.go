// Package module wires webhooks into the API and exposes its ports
package module

import (
	"net/http"

	modkit "brandpulse/internal/modkit"
	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/modkit/repokit"
	str "brandpulse/internal/platform/strings"
	whhttp "brandpulse/internal/services/webhooks/http"
	whrepo "brandpulse/internal/services/webhooks/repo"
	whsvc "brandpulse/internal/services/webhooks/service"
)

// Module implements the webhooks module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *whsvc.Service
}

// New constructs the webhooks module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("webhooks"), modkit.WithPrefix("/webhooks")}, opts...)...)

	wo := FromConfig(deps.Cfg)
	svc := whsvc.New(repokit.TxRunner(deps.PG), whrepo.NewPG(), whsvc.Config{
		Interval:  wo.Interval,
		Batch:     wo.Batch,
		Timeout:   wo.Timeout,
		UserAgent: wo.UserAgent,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{
		Manager: svc,
		Trigger: svc,
		Runner:  svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		whhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
