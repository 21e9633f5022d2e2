// Package config loads the reservationd configuration file and builds the infrastructure it describes.
//
// It contains the YAML configuration with its defaults and validation, factory functions for
// PostgreSQL connections using the supported drivers (pgx.Pool, sql.DB, sqlx.DB), and the setup
// of the OpenTelemetry tracer and meter providers.
//
// This package is part of the shell (infrastructure) layer.
package config
