// Command reservationd serves the reservation engine over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/assetsync"
	"github.com/equiprent/reservation-engine/httpapi"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell/config"
)

const readHeaderTimeout = 5 * time.Second

// Version information, set via ldflags during build.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit")
	configPath := flag.String("config", "reservationd.yaml", "Path to the configuration file")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reservationd %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("reservationd stopped with error: %v", err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := newObservability(ctx, cfg.Observability)
	if err != nil {
		return err
	}
	defer obs.close()

	calendar, err := cfg.Calendar()
	if err != nil {
		return err
	}

	clock := reservation.SystemClock{}

	store, closeStore, err := newStore(ctx, cfg, obs)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = seedAssets(ctx, cfg, store); err != nil {
		return err
	}

	var syncer *assetsync.Synchronizer
	if cfg.Engine.AssetSync.Enabled {
		syncer = assetsync.NewSynchronizer(store, calendar, clock,
			assetsync.WithContextualLogger(obs.contextualLogger),
			assetsync.WithMetrics(obs.metrics),
		)

		stopSync := startSynchronizer(ctx, syncer, cfg.Engine.AssetSync.Interval)
		defer stopSync()
	}

	handlers, err := newHandlers(store, cfg.BookingRules(calendar), clock, cfg.Engine, syncer, obs)
	if err != nil {
		return err
	}

	api := httpapi.NewAPI(handlers,
		httpapi.WithContextualLogger(obs.contextualLogger),
		httpapi.WithMetrics(obs.metrics),
		httpapi.WithMetricsHandler(obs.metricsHandler),
		httpapi.WithHealthCheck(storeHealthCheck(store)),
	)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		obs.logger.Info("reservationd listening", "addr", cfg.HTTP.Addr, "version", version,
			"storage", cfg.Postgres.Adapter, "timezone", calendar.Location().String())

		if listenErr := server.ListenAndServe(); !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		obs.logger.Info("shutting down")
	case err = <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// startSynchronizer runs the periodic asset status sweep in the background.
// The returned function stops the sweep and waits for it, so the store can be closed afterwards.
func startSynchronizer(ctx context.Context, syncer *assetsync.Synchronizer, interval time.Duration) func() {
	syncCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		syncer.Run(syncCtx, interval)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// seedAssets writes the configured assets into the catalog.
func seedAssets(ctx context.Context, cfg config.Config, catalog reservation.AssetCatalog) error {
	assets, err := cfg.SeedAssets()
	if err != nil {
		return err
	}

	for _, asset := range assets {
		if err = catalog.SaveAsset(ctx, asset); err != nil {
			return fmt.Errorf("seeding asset %s: %w", asset.ID, err)
		}
	}

	return nil
}

// storeHealthCheck probes the store with a lookup that touches the database but matches nothing.
func storeHealthCheck(catalog reservation.AssetCatalog) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := catalog.GetAsset(reservation.WithStrongConsistency(ctx), uuid.Nil)
		if err == nil || errors.Is(err, reservation.ErrNotFound) {
			return nil
		}

		return err
	}
}
