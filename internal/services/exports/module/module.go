// Package module wires scheduled exports into the API using modkit
package module

import (
	"net/http"

	modkit "brandpulse/internal/modkit"
	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/modkit/repokit"
	str "brandpulse/internal/platform/strings"
	exdomain "brandpulse/internal/services/exports/domain"
	exhttp "brandpulse/internal/services/exports/http"
	exrepo "brandpulse/internal/services/exports/repo"
	exsvc "brandpulse/internal/services/exports/service"
	whdomain "brandpulse/internal/services/webhooks/domain"
)

// Ports declares the collaborator ports this module requires. Events
// is optional; a nil trigger disables the export.completed fan-out.
type Ports struct {
	Campaigns exdomain.CampaignReader
	Events    whdomain.TriggerPort
}

// ExposedPorts are the ports this module offers to others
type ExposedPorts struct {
	Manager exdomain.ManagerPort
	Runner  exdomain.RunnerPort
}

// Module implements the exports module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     ExposedPorts
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *exsvc.Service
}

// New constructs the exports module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("exports"),
		modkit.WithPrefix("/scheduled-exports"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Campaigns == nil {
		panic("exports module requires the campaigns query port")
	}

	eo := FromConfig(deps.Cfg)
	svc := exsvc.New(
		repokit.TxRunner(deps.PG),
		exrepo.NewPG(),
		injected.Campaigns,
		injected.Events,
		exsvc.NewMailer(eo.SMTP),
		exsvc.Config{Resync: eo.Resync},
	)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = ExposedPorts{Manager: svc, Runner: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		exhttp.Register(r, m.svc)
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
