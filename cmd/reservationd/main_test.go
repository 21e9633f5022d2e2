package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/assetsync"
	"github.com/equiprent/reservation-engine/httpapi"
	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/memengine"
	"github.com/equiprent/reservation-engine/shell/config"
)

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Postgres.Adapter = config.AdapterMemory
	cfg.Assets = []config.AssetSeed{
		{ID: "0199a3c4-5e6f-7a8b-9c0d-1e2f3a4b5c6d", Name: "Excavator CAT 320", DailyRate: "250.00"},
	}

	return cfg
}

func Test_SeedAssets_WritesCatalog(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memengine.NewStore()

	// act
	err := seedAssets(ctx, memoryConfig(), store)

	// assert
	require.NoError(t, err)
	asset, err := store.GetAsset(ctx, uuid.MustParse("0199a3c4-5e6f-7a8b-9c0d-1e2f3a4b5c6d"))
	require.NoError(t, err)
	assert.Equal(t, reservation.AssetAvailable, asset.Status)
}

func Test_StoreHealthCheck_TreatsNotFoundAsHealthy(t *testing.T) {
	// arrange
	check := storeHealthCheck(memengine.NewStore())

	// act
	err := check(context.Background())

	// assert
	assert.NoError(t, err)
}

// closingStore reports whether the sweep touched it after it was marked closed.
type closingStore struct {
	*memengine.Store
	closed        atomic.Bool
	usedAfterStop atomic.Bool
}

func (s *closingStore) ListAssets(ctx context.Context) (reservation.Assets, error) {
	if s.closed.Load() {
		s.usedAfterStop.Store(true)
	}

	return s.Store.ListAssets(ctx)
}

func Test_StartSynchronizer_StopWaitsForTheSweep(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := &closingStore{Store: memengine.NewStore()}
	require.NoError(t, seedAssets(ctx, memoryConfig(), store))

	calendar, err := memoryConfig().Calendar()
	require.NoError(t, err)
	clock := reservation.NewFixedClock(calendar.StartOf(reservation.MustParseDay("2025-10-01")))
	syncer := assetsync.NewSynchronizer(store, calendar, clock)

	stop := startSynchronizer(ctx, syncer, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	// act
	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	// assert
	require.Eventually(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	store.closed.Store(true)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, store.usedAfterStop.Load())
}

func Test_Wiring_ServesReservationsFromMemory(t *testing.T) {
	// arrange
	ctx := context.Background()
	cfg := memoryConfig()

	obs, err := newObservability(ctx, cfg.Observability)
	require.NoError(t, err)
	t.Cleanup(obs.close)

	store, closeStore, err := newStore(ctx, cfg, obs)
	require.NoError(t, err)
	t.Cleanup(closeStore)
	require.NoError(t, seedAssets(ctx, cfg, store))

	calendar, err := cfg.Calendar()
	require.NoError(t, err)
	clock := reservation.NewFixedClock(calendar.StartOf(reservation.MustParseDay("2025-10-01")))
	syncer := assetsync.NewSynchronizer(store, calendar, clock)

	handlers, err := newHandlers(store, cfg.BookingRules(calendar), clock, cfg.Engine, syncer, obs)
	require.NoError(t, err)

	router := httpapi.NewAPI(handlers, httpapi.WithMetrics(obs.metrics), httpapi.WithMetricsHandler(obs.metricsHandler)).Router()

	request := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(
		`{"asset_id":"0199a3c4-5e6f-7a8b-9c0d-1e2f3a4b5c6d","start_date":"2025-10-03","end_date":"2025-10-05"}`))
	request.Header.Set(httpapi.HeaderActorID, uuid.NewString())
	request.Header.Set(httpapi.HeaderActorRole, string(reservation.RoleOwner))
	recorder := httptest.NewRecorder()

	// act
	router.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	metrics := httptest.NewRecorder()
	router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "commandhandler_handle_duration_seconds")
	assert.Contains(t, metrics.Body.String(), httpapi.MetricRequestDuration)
}
