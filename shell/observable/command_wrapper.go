package observable

import (
	"context"
	"time"

	"github.com/equiprent/reservation-engine/shell"
)

// CommandWrapper instruments any command handler.
type CommandWrapper[C shell.Command] struct {
	coreHandler      shell.CommandHandler[C]
	commandType      string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper wraps coreHandler. The command type is taken from the zero value of C.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CommandHandler[C],
	opts ...CommandOption[C],
) (*CommandWrapper[C], error) {
	var zeroCommand C

	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the core handler and records the outcome.
// Rejections are logged at info level: they are answers, not failures.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(start)

	shell.RecordRetryTotalDelay(ctx, w.metricsCollector, w.commandType, result)
	shell.RecordLostRace(ctx, w.metricsCollector, w.commandType, result)

	status := shell.ClassifyError(err)
	if err == nil {
		status = result.BusinessOutcome()
	}

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration, err)
	shell.FinishSpan(w.tracingCollector, span, status, duration, err)

	switch status {
	case shell.StatusSuccess, shell.StatusIdempotent:
		shell.LogCommandSuccess(ctx, w.logger, w.contextualLogger, w.commandType, result, duration)
	case shell.StatusRejected:
		shell.LogCommandRejected(ctx, w.logger, w.contextualLogger, w.commandType, err, duration)
	default:
		shell.LogCommandError(ctx, w.logger, w.contextualLogger, w.commandType, err)
	}

	return result, err
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

// WithCommandMetrics sets the metrics collector.
func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector.
func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithCommandContextualLogging sets the contextual logger. It takes precedence over WithCommandLogging.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the plain logger.
func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.logger = logger
		return nil
	}
}
