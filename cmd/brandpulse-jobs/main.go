package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"brandpulse/internal/modkit"
	"brandpulse/internal/modkit/module"
	"brandpulse/internal/platform/config"
	"brandpulse/internal/platform/logger"
	"brandpulse/internal/platform/store"

	campmod "brandpulse/internal/services/campaigns/module"
	exmod "brandpulse/internal/services/exports/module"
	whmod "brandpulse/internal/services/webhooks/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "brandpulse-jobs",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Flags mirror the WEBHOOKS_* / EXPORTS_* env knobs for one-off runs
	var (
		fPump   = flag.String("pump_interval", "", "webhook delivery pump interval (e.g. 30s)")
		fBatch  = flag.Int("pump_batch", 0, "webhook deliveries leased per pump")
		fResync = flag.String("schedule_resync", "", "export schedule reconcile interval (e.g. 1m)")
	)
	flag.Parse()

	// Export as env so modules can also read via FromConfig
	mustSetEnv("WEBHOOKS_PUMP_INTERVAL", *fPump)
	if *fBatch > 0 {
		mustSetEnv("WEBHOOKS_PUMP_BATCH", fmt.Sprintf("%d", *fBatch))
	}
	mustSetEnv("EXPORTS_SCHEDULE_RESYNC", *fResync)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	// Webhooks first; exports fans export.completed out through its Trigger port
	webhooks := whmod.New(deps)
	module.Register(webhooks.Name(), webhooks.Ports())
	whPorts := module.MustPortsOf[whmod.Ports](webhooks)

	// Campaigns supplies the read port scheduled exports render from
	campaigns := campmod.New(deps)
	module.Register(campaigns.Name(), campaigns.Ports())
	query := module.MustPortsOf[campmod.Ports](campaigns).Query

	exports := exmod.New(deps, modkit.WithPorts(exmod.Ports{
		Campaigns: query,
		Events:    whPorts.Trigger,
	}))
	module.Register(exports.Name(), exports.Ports())
	exPorts := module.MustPortsOf[exmod.ExposedPorts](exports)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return whPorts.Runner.Run(ctx) })
	g.Go(func() error { return exPorts.Runner.Run(ctx) })

	if err := g.Wait(); err != nil {
		l.Fatal().Err(err).Msg("jobs runner failed")
	}
}
