// Package module wires analytics into the API using modkit
package module

import (
	"net/http"

	modkit "brandpulse/internal/modkit"
	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/modkit/repokit"
	str "brandpulse/internal/platform/strings"
	andomain "brandpulse/internal/services/analytics/domain"
	anhttp "brandpulse/internal/services/analytics/http"
	anrepo "brandpulse/internal/services/analytics/repo"
	ansvc "brandpulse/internal/services/analytics/service"
)

// Ports declares the injected campaign-read port this module requires
type Ports struct {
	Campaigns andomain.CampaignReader
}

// Module implements the analytics module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *ansvc.Service
}

// New constructs the analytics module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("analytics"),
		modkit.WithPrefix("/analytics"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Campaigns == nil {
		panic("analytics module requires the campaigns query port")
	}

	binder := anrepo.NewPG()
	svc := ansvc.New(repokit.TxRunner(deps.PG), binder, injected.Campaigns, ansvc.Config{})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = svc

	external := b.Register
	m.register = func(r httpkit.Router) {
		anhttp.Register(r, m.svc)
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

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
