package observable_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/shell"
	"github.com/equiprent/reservation-engine/shell/observable"
	"github.com/equiprent/reservation-engine/testutil/spies"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "test_command" }

type handlerStub struct {
	mu     sync.Mutex
	result shell.HandlerResult
	err    error
	calls  int
}

func (h *handlerStub) Handle(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++

	return h.result, h.err
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := &handlerStub{result: shell.HandlerResult{RetryAttempts: 1}}
	metrics := spies.NewMetricsCollectorSpy()
	tracing := spies.NewTracingCollectorSpy()
	logger := spies.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithCommandMetrics[testCommand](metrics),
		observable.WithCommandTracing[testCommand](tracing),
		observable.WithCommandContextualLogging[testCommand](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, handler.result, result)
	assert.Equal(t, 1, handler.calls)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).
		WithLabel(shell.LogAttrCommandType, "test_command").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metrics.HasDuration(shell.CommandHandlerDurationMetric).WithStatus(shell.StatusSuccess).Assert())
	assert.Zero(t, metrics.Count(spies.KindDuration, shell.CommandHandlerRetryTotalDelayMetric))

	span, ok := tracing.FinishedSpan(shell.SpanNameCommandHandle)
	require.True(t, ok)
	assert.Equal(t, shell.StatusSuccess, span.Status)

	assert.True(t, logger.HasInfo(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasInfo(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_Idempotent(t *testing.T) {
	// arrange
	handler := &handlerStub{result: shell.HandlerResult{Idempotent: true, RetryAttempts: 1}}
	metrics := spies.NewMetricsCollectorSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand](handler, observable.WithCommandMetrics[testCommand](metrics))
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).WithStatus(shell.StatusIdempotent).Assert())
}

func Test_CommandWrapper_Handle_Rejected(t *testing.T) {
	// arrange
	rejection := reservation.Reject(reservation.ErrDateConflict, "asset was booked concurrently")
	handler := &handlerStub{
		result: shell.HandlerResult{Rejected: true, RetryAttempts: 2, TotalRetryDelay: 5 * time.Millisecond, RetriesExhausted: true},
		err:    rejection,
	}
	metrics := spies.NewMetricsCollectorSpy()
	logger := spies.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithCommandMetrics[testCommand](metrics),
		observable.WithCommandContextualLogging[testCommand](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.ErrorIs(t, err, reservation.ErrDateConflict)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).WithStatus(shell.StatusRejected).Assert())
	assert.True(t, metrics.HasCounter(shell.CommandHandlerRejectionsMetric).
		WithLabel(shell.LogAttrRejectionKind, "date_conflict").
		Assert())
	assert.Equal(t, 1, metrics.Count(spies.KindDuration, shell.CommandHandlerRetryTotalDelayMetric))
	assert.Equal(t, 1, metrics.Count(spies.KindCounter, shell.CommandHandlerConcurrencyConflictMetric))
	assert.True(t, logger.HasInfo(shell.LogMsgCommandRejected))
	assert.False(t, logger.HasError(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Handle_Failures(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus string
	}{
		{"canceled", context.Canceled, shell.StatusCanceled},
		{"timeout", context.DeadlineExceeded, shell.StatusTimeout},
		{"concurrency conflict", reservation.ErrConcurrencyConflict, shell.StatusConcurrencyConflict},
		{"infrastructure", errors.New("connection reset"), shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := &handlerStub{err: tc.err}
			metrics := spies.NewMetricsCollectorSpy()
			logger := spies.NewContextualLoggerSpy()

			wrapper, err := observable.NewCommandWrapper[testCommand](
				handler,
				observable.WithCommandMetrics[testCommand](metrics),
				observable.WithCommandContextualLogging[testCommand](logger),
			)
			require.NoError(t, err)

			// act
			_, err = wrapper.Handle(context.Background(), testCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).WithStatus(tc.expectedStatus).Assert())
			assert.True(t, logger.HasError(shell.LogMsgCommandFailed))
		})
	}
}

func Test_CommandWrapper_Handle_WithoutObservability(t *testing.T) {
	handler := &handlerStub{result: shell.HandlerResult{RetryAttempts: 1}}

	wrapper, err := observable.NewCommandWrapper[testCommand](handler)
	require.NoError(t, err)

	_, err = wrapper.Handle(context.Background(), testCommand{})

	assert.NoError(t, err)
}
