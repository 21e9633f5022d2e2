package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	// MetricRequestDuration tracks request durations. Labels: method, route, status_code.
	MetricRequestDuration = "http_request_duration_seconds"

	routeUnmatched = "unmatched"

	logMsgRequestFailed = "request failed"

	logAttrError      = "error"
	logAttrMethod     = "method"
	logAttrRoute      = "route"
	logAttrStatusCode = "status_code"
	logAttrRequestID  = "request_id"
)

// observeRequests records the duration of every request under its route pattern,
// so that identifiers in paths do not create new label values.
func (a *API) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if a.metricsCollector == nil {
			return
		}

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		labels := map[string]string{
			logAttrMethod:     r.Method,
			logAttrRoute:      routePattern(r),
			logAttrStatusCode: strconv.Itoa(statusCode),
		}

		if collector, ok := a.metricsCollector.(reservation.ContextualMetricsCollector); ok {
			collector.RecordDurationContext(r.Context(), MetricRequestDuration, time.Since(start), labels)
			return
		}

		a.metricsCollector.RecordDuration(MetricRequestDuration, time.Since(start), labels)
	})
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return routeUnmatched
}

// writeError answers with the status and body for err. Only infrastructure failures are logged here;
// rejections are already logged by the handler wrappers.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	if status == http.StatusInternalServerError {
		a.logError(r.Context(), logMsgRequestFailed,
			logAttrError, err.Error(),
			logAttrMethod, r.Method,
			logAttrRoute, routePattern(r),
			logAttrRequestID, middleware.GetReqID(r.Context()),
		)
	}

	writeJSON(w, status, toErrorResponse(err))
}

func (a *API) logError(ctx context.Context, msg string, args ...any) {
	switch {
	case a.contextualLogger != nil:
		a.contextualLogger.ErrorContext(ctx, msg, args...)
	case a.logger != nil:
		a.logger.Error(msg, args...)
	}
}

func (a *API) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case a.contextualLogger != nil:
		a.contextualLogger.WarnContext(ctx, msg, args...)
	case a.logger != nil:
		a.logger.Warn(msg, args...)
	}
}
