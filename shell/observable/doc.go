// Package observable decorates command and query handlers with metrics, tracing and logging.
// Handlers stay free of observability code; the wrappers translate their results into signals.
package observable
