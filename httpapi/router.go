package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/features/command/cancelreservation"
	"github.com/equiprent/reservation-engine/features/command/createreservation"
	"github.com/equiprent/reservation-engine/features/command/editreservation"
	"github.com/equiprent/reservation-engine/features/command/transitionreservation"
	"github.com/equiprent/reservation-engine/features/query/assetavailability"
	"github.com/equiprent/reservation-engine/features/query/reservationdetails"
	"github.com/equiprent/reservation-engine/features/query/reservationlist"
	"github.com/equiprent/reservation-engine/features/query/reservationstatistics"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell"
)

// Handlers are the command and query handlers the routes delegate to, usually wrapped with observability.
type Handlers struct {
	Create       shell.CommandHandler[createreservation.Command]
	Edit         shell.CommandHandler[editreservation.Command]
	Transition   shell.CommandHandler[transitionreservation.Command]
	Cancel       shell.CommandHandler[cancelreservation.Command]
	Availability shell.QueryHandler[assetavailability.Query, assetavailability.Availability]
	Details      shell.QueryHandler[reservationdetails.Query, reservation.Reservation]
	List         shell.QueryHandler[reservationlist.Query, reservationlist.ReservationList]
	Statistics   shell.QueryHandler[reservationstatistics.Query, reservationstatistics.Statistics]
}

// API serves the HTTP routes.
type API struct {
	handlers         Handlers
	newID            func() (uuid.UUID, error)
	healthCheck      func(ctx context.Context) error
	metricsHandler   http.Handler
	metricsCollector reservation.MetricsCollector
	logger           reservation.Logger
	contextualLogger reservation.ContextualLogger
}

// Option configures an API.
type Option func(*API)

// WithIDGenerator replaces the generator of reservation IDs for create requests without an ID.
func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(a *API) {
		a.newID = newID
	}
}

// WithHealthCheck makes /healthz report 503 while check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(a *API) {
		a.healthCheck = check
	}
}

// WithMetricsHandler serves handler on /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(a *API) {
		a.metricsHandler = handler
	}
}

// WithMetrics records request durations.
func WithMetrics(collector reservation.MetricsCollector) Option {
	return func(a *API) {
		a.metricsCollector = collector
	}
}

// WithLogger logs failed requests.
func WithLogger(logger reservation.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// WithContextualLogger logs failed requests with trace correlation.
func WithContextualLogger(logger reservation.ContextualLogger) Option {
	return func(a *API) {
		a.contextualLogger = logger
	}
}

// NewAPI creates an API. New reservation IDs are UUIDv7 unless WithIDGenerator says otherwise.
func NewAPI(handlers Handlers, opts ...Option) *API {
	api := &API{
		handlers: handlers,
		newID:    uuid.NewV7,
	}

	for _, opt := range opts {
		opt(api)
	}

	return api
}

// Router returns the chi router serving every route.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.observeRequests)

	r.Get("/healthz", a.health)

	if a.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", a.metricsHandler)
	}

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", a.createReservation)
		r.Get("/", a.listReservations)
		r.Get("/{id}", a.getReservation)
		r.Patch("/{id}", a.editReservation)
		r.Delete("/{id}", a.cancelReservation)
		r.Post("/{id}/transitions", a.transitionReservation)
	})

	r.Get("/assets/{id}/availability", a.assetAvailability)
	r.Get("/statistics", a.statistics)

	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if a.healthCheck != nil {
		if err := a.healthCheck(r.Context()); err != nil {
			a.logWarn(r.Context(), "health check failed", logAttrError, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
