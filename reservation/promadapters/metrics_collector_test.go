package promadapters_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equiprent/reservation-engine/reservation/promadapters"
)

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)
	labels := map[string]string{"command_type": "create_reservation", "rejection_kind": "date_conflict"}

	// act
	collector.IncrementCounter("commandhandler_rejections_total", labels)
	collector.IncrementCounter("commandhandler_rejections_total", labels)

	// assert
	expected := `
# HELP commandhandler_rejections_total commandhandler rejections total
# TYPE commandhandler_rejections_total counter
commandhandler_rejections_total{command_type="create_reservation",rejection_kind="date_conflict"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "commandhandler_rejections_total"))
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, promadapters.WithNamespace("equiprent"))

	collector.RecordValue("reservationstore_rows_returned", 3, map[string]string{"operation": "find"})
	collector.RecordValue("reservationstore_rows_returned", 4, map[string]string{"operation": "find"})

	expected := `
# HELP equiprent_reservationstore_rows_returned reservationstore rows returned
# TYPE equiprent_reservationstore_rows_returned gauge
equiprent_reservationstore_rows_returned{operation="find"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "equiprent_reservationstore_rows_returned"))
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	collector.RecordDuration("commandhandler_duration_seconds", 20*time.Millisecond, map[string]string{"command_type": "cancel_reservation", "status": "success"})
	collector.RecordDuration("commandhandler_duration_seconds", 30*time.Millisecond, map[string]string{"command_type": "edit_reservation", "status": "rejected"})

	count, err := testutil.GatherAndCount(registry, "commandhandler_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func Test_MetricsCollector_MismatchedLabels_AreDropped(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry)

	// act
	collector.IncrementCounter("assetsync_status_changes_total", map[string]string{"status": "rented"})
	assert.NotPanics(t, func() {
		collector.IncrementCounter("assetsync_status_changes_total", map[string]string{"status": "rented", "extra": "x"})
	})

	// assert
	expected := `
# HELP metrics_dropped_total Measurements dropped because their labels did not match the metric's label set
# TYPE metrics_dropped_total counter
metrics_dropped_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "metrics_dropped_total"))
}

func Test_NewMetricsCollector_TwiceOnTheSameRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry)
	second := promadapters.NewMetricsCollector(registry)

	first.IncrementCounter("commandhandler_calls_total", map[string]string{"command_type": "x", "status": "success"})
	second.IncrementCounter("commandhandler_calls_total", map[string]string{"command_type": "x", "status": "success"})

	expected := `
# HELP commandhandler_calls_total commandhandler calls total
# TYPE commandhandler_calls_total counter
commandhandler_calls_total{command_type="x",status="success"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "commandhandler_calls_total"))
}
