package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-placement/api"
	"github.com/saeidalz13/battleship-placement/db"
	"github.com/saeidalz13/battleship-placement/db/sqlc"
	"github.com/saeidalz13/battleship-placement/internal/config"
	"github.com/saeidalz13/battleship-placement/internal/logging"
	mb "github.com/saeidalz13/battleship-placement/models/battleship"
	mc "github.com/saeidalz13/battleship-placement/models/connection"
	"github.com/sqlc-dev/pqtype"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}
	logging.Setup(cfg.LogLevel, os.Stdout, cfg.Stage == config.StageDev)

	fleet := mb.ClassicFleet()
	if cfg.FleetFile != "" {
		fleet, err = mb.LoadFleet(cfg.FleetFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.FleetFile).Msg("could not load fleet")
		}
	}

	var analytics *sqlc.AnalyticsManager
	if cfg.AnalyticsEnabled() {
		psqlDb := db.MustConnectToDb(cfg.DatabaseURL, db.DefaultMigrationDir)
		defer psqlDb.Close()
		analytics = sqlc.NewDbManager(psqlDb).Analytics
	} else {
		log.Info().Msg("DATABASE_URL is empty; analytics disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bsm := mc.NewBattleshipSessionManager(cfg.CleanupInterval, cfg.GracePeriod)
	go bsm.CleanupPeriodically(ctx)

	bfm := mb.NewBattleshipFieldManager()
	rp := api.NewRequestProcessor(bsm, bfm, analytics, api.WithFleet(fleet), api.WithGridSize(cfg.GridSize))
	logServerCounts(ctx, analytics, rp.GetIpNet())

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr()).
		Str("stage", cfg.Stage).
		Str("fleet", fleet.Name).
		Int("grid_size", cfg.GridSize).
		Str("server_ip", rp.GetIpNet().IP.String()).
		Msg("listening")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// Counters carried over from earlier runs of this host.
func logServerCounts(ctx context.Context, analytics *sqlc.AnalyticsManager, ipnet net.IPNet) {
	if analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	counts, err := analytics.Counts(ctx, pqtype.Inet{IPNet: ipnet, Valid: true})
	if err != nil {
		log.Warn().Err(err).Msg("could not read analytics counts")
		return
	}
	log.Info().
		Int64("fields_created", counts.FieldsCreated).
		Int64("ships_committed", counts.ShipsCommitted).
		Msg("analytics counts")
}
