// Package oteladapters implements the reservation observability interfaces on OpenTelemetry.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// TracingCollector opens one span per store operation or handler call. SlogBridgeLogger and
// OTelLogger are contextual loggers that carry the active trace and span into every record.
package oteladapters
