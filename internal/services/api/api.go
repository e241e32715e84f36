// Package api provides the HTTP API for the application
package api

import (
	"brandpulse/internal/platform/config"
	"brandpulse/internal/platform/logger"
	phttp "brandpulse/internal/platform/net/http"
	"brandpulse/internal/platform/store"

	"brandpulse/internal/modkit"
	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/modkit/module"
	"brandpulse/internal/modkit/swaggerkit"

	anmod "brandpulse/internal/services/analytics/module"
	metamod "brandpulse/internal/services/api/meta/module"
	authmod "brandpulse/internal/services/auth/module"
	campmod "brandpulse/internal/services/campaigns/module"
	exmod "brandpulse/internal/services/exports/module"
	whmod "brandpulse/internal/services/webhooks/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// Auth first so its port can guard the tenant scoped modules
	auth := authmod.New(deps)
	guard := httpkit.Auth(auth.Ports().(authmod.Ports).Auth)

	// Campaigns owns the Query port that analytics and exports read through
	campaigns := campmod.New(deps, modkit.WithMiddlewares(guard))
	query := module.MustPortsOf[campmod.Ports](campaigns).Query

	// Webhooks owns the Trigger port that exports fans out export.completed on
	webhooks := whmod.New(deps, modkit.WithMiddlewares(guard))
	trigger := module.MustPortsOf[whmod.Ports](webhooks).Trigger

	analytics := anmod.New(
		deps,
		modkit.WithMiddlewares(guard),
		modkit.WithPorts(anmod.Ports{Campaigns: query}),
	)

	exports := exmod.New(
		deps,
		modkit.WithMiddlewares(guard),
		modkit.WithPorts(exmod.Ports{Campaigns: query, Events: trigger}),
	)

	mods := []module.Module{
		metamod.New(deps), // unauthenticated probes
		auth,
		campaigns,
		webhooks,
		analytics,
		exports,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
