package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/equiprent/reservation-engine/assetsync"
	"github.com/equiprent/reservation-engine/features/command/cancelreservation"
	"github.com/equiprent/reservation-engine/features/command/createreservation"
	"github.com/equiprent/reservation-engine/features/command/editreservation"
	"github.com/equiprent/reservation-engine/features/command/transitionreservation"
	"github.com/equiprent/reservation-engine/features/query/assetavailability"
	"github.com/equiprent/reservation-engine/features/query/reservationdetails"
	"github.com/equiprent/reservation-engine/features/query/reservationlist"
	"github.com/equiprent/reservation-engine/features/query/reservationstatistics"
	"github.com/equiprent/reservation-engine/httpapi"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
	"github.com/equiprent/reservation-engine/reservation/oteladapters"
	"github.com/equiprent/reservation-engine/reservation/postgresengine"
	"github.com/equiprent/reservation-engine/reservation/promadapters"
	"github.com/equiprent/reservation-engine/shell"
	"github.com/equiprent/reservation-engine/shell/config"
	"github.com/equiprent/reservation-engine/shell/observable"
)

const instrumentationName = "github.com/equiprent/reservation-engine"

// engineStore is what the engine needs from storage: the asset catalog and the reservations.
type engineStore interface {
	reservation.AssetCatalog
	reservation.ReservationStore
}

// observability holds the adapters every component is instrumented with.
// metrics and tracing stay nil when disabled.
type observability struct {
	logger           *slog.Logger
	contextualLogger reservation.ContextualLogger
	metrics          reservation.MetricsCollector
	tracing          reservation.TracingCollector
	metricsHandler   http.Handler
	providers        *config.ObservabilityProviders
}

func newObservability(ctx context.Context, cfg config.ObservabilitySection) (*observability, error) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})

	obs := &observability{
		logger:           slog.New(handler),
		contextualLogger: oteladapters.NewSlogBridgeLoggerWithHandler(handler),
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg, version)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}

	obs.providers = providers

	switch cfg.Metrics {
	case config.MetricsPrometheus:
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		obs.metrics = promadapters.NewMetricsCollector(registry)
		obs.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	case config.MetricsOTel:
		obs.metrics = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName))
	}

	if cfg.Tracing {
		obs.tracing = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
	}

	return obs, nil
}

func (o *observability) close() {
	if err := o.providers.Shutdown(); err != nil {
		o.logger.Error("observability shutdown failed", "error", err.Error())
	}
}

// newStore builds the configured store and returns a function releasing its connections.
func newStore(ctx context.Context, cfg config.Config, obs *observability) (engineStore, func(), error) {
	if cfg.Postgres.Adapter == config.AdapterMemory {
		return memengine.NewStore(memengine.WithLogger(obs.logger)), func() {}, nil
	}

	options := []postgresengine.Option{postgresengine.WithContextualLogger(obs.contextualLogger)}

	if obs.metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.tracing))
	}

	store, closeConnections, err := config.NewPostgresStore(ctx, cfg.Postgres, options...)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres store: %w", err)
	}

	if cfg.Postgres.EnsureSchema {
		if err = store.EnsureSchema(ctx); err != nil {
			closeConnections()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
	}

	return store, closeConnections, nil
}

// newHandlers builds the command and query handlers wrapped with logging, metrics and tracing.
func newHandlers(
	store engineStore,
	rules reservation.BookingRules,
	clock reservation.Clock,
	cfg config.EngineSection,
	syncer *assetsync.Synchronizer,
	obs *observability,
) (httpapi.Handlers, error) {

	retry := func(commandType string) []shell.RetryOption {
		options := []shell.RetryOption{shell.WithMaxAttempts(cfg.CommitAttempts)}
		if obs.metrics != nil {
			options = append(options, shell.WithMetrics(obs.metrics, commandType))
		}

		return options
	}

	var transitionOptions []transitionreservation.Option
	cancelOptions := []cancelreservation.Option{cancelreservation.WithPurgeCancelled(cfg.PurgeCancelled)}

	if syncer != nil {
		transitionOptions = append(transitionOptions, transitionreservation.WithAssetStatusSync(syncer))
		cancelOptions = append(cancelOptions, cancelreservation.WithAssetStatusSync(syncer))
	}

	transitionOptions = append(transitionOptions,
		transitionreservation.WithRetryOptions(retry(transitionreservation.Command{}.CommandType())...))
	cancelOptions = append(cancelOptions,
		cancelreservation.WithRetryOptions(retry(cancelreservation.Command{}.CommandType())...))

	create, err := wrapCommand[createreservation.Command](obs, createreservation.NewCommandHandler(store, rules, clock,
		createreservation.WithRetryOptions(retry(createreservation.Command{}.CommandType())...)))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	edit, err := wrapCommand[editreservation.Command](obs, editreservation.NewCommandHandler(store, rules, clock,
		editreservation.WithRetryOptions(retry(editreservation.Command{}.CommandType())...)))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	transition, err := wrapCommand[transitionreservation.Command](obs,
		transitionreservation.NewCommandHandler(store, clock, transitionOptions...))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	cancel, err := wrapCommand[cancelreservation.Command](obs, cancelreservation.NewCommandHandler(store, clock, cancelOptions...))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	availability, err := wrapQuery[assetavailability.Query, assetavailability.Availability](obs,
		assetavailability.NewQueryHandler(store, rules.Calendar))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	details, err := wrapQuery[reservationdetails.Query, reservation.Reservation](obs, reservationdetails.NewQueryHandler(store))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	list, err := wrapQuery[reservationlist.Query, reservationlist.ReservationList](obs, reservationlist.NewQueryHandler(store))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	statistics, err := wrapQuery[reservationstatistics.Query, reservationstatistics.Statistics](obs,
		reservationstatistics.NewQueryHandler(store))
	if err != nil {
		return httpapi.Handlers{}, err
	}

	return httpapi.Handlers{
		Create:       create,
		Edit:         edit,
		Transition:   transition,
		Cancel:       cancel,
		Availability: availability,
		Details:      details,
		List:         list,
		Statistics:   statistics,
	}, nil
}

func wrapCommand[C shell.Command](obs *observability, handler shell.CommandHandler[C]) (*observable.CommandWrapper[C], error) {
	options := []observable.CommandOption[C]{observable.WithCommandContextualLogging[C](obs.contextualLogger)}

	if obs.metrics != nil {
		options = append(options, observable.WithCommandMetrics[C](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.tracing))
	}

	return observable.NewCommandWrapper(handler, options...)
}

func wrapQuery[Q shell.Query, R any](obs *observability, handler shell.QueryHandler[Q, R]) (*observable.QueryWrapper[Q, R], error) {
	options := []observable.QueryOption[Q, R]{observable.WithQueryContextualLogging[Q, R](obs.contextualLogger)}

	if obs.metrics != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.tracing))
	}

	return observable.NewQueryWrapper(handler, options...)
}
