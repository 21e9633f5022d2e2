package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/equiprent/reservation-engine/reservation"
)

// Supported values for postgres.adapter.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLX    = "sqlx.db"
	AdapterMemory  = "memory"
)

// Supported values for observability.metrics.
const (
	MetricsPrometheus = "prometheus"
	MetricsOTel       = "otel"
	MetricsNone       = "none"
)

// Environment variables that override values from the file.
const (
	EnvPostgresDSN        = "RESERVATIOND_POSTGRES_DSN"
	EnvPostgresReplicaDSN = "RESERVATIOND_POSTGRES_REPLICA_DSN"
	EnvHTTPAddr           = "RESERVATIOND_HTTP_ADDR"
	EnvOTLPEndpoint       = "RESERVATIOND_OTLP_ENDPOINT"
)

const (
	defaultBusinessTimezone = "Europe/Vilnius"
	defaultSyncInterval     = time.Hour
	defaultMaxConns         = int32(8)
	defaultHTTPAddr         = ":8080"
	defaultShutdownTimeout  = 10 * time.Second
	defaultServiceName      = "reservationd"
	defaultLogLevel         = "info"
)

// ErrInvalidConfig is returned by Validate and Load for configurations that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the reservationd configuration file.
type Config struct {
	Engine        EngineSection        `yaml:"engine"`
	Postgres      PostgresSection      `yaml:"postgres"`
	HTTP          HTTPSection          `yaml:"http"`
	Observability ObservabilitySection `yaml:"observability"`

	// Assets are written to the catalog on startup, replacing stored assets with the same ID.
	Assets []AssetSeed `yaml:"assets"`
}

// AssetSeed describes one catalog asset.
type AssetSeed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// DailyRate is a decimal amount like "250.00".
	DailyRate string `yaml:"daily_rate"`

	// Status defaults to available.
	Status string `yaml:"status"`
}

// EngineSection holds the booking rules and engine behavior.
type EngineSection struct {
	// BusinessTimezone is the IANA zone in which calendar dates are interpreted.
	BusinessTimezone string `yaml:"business_timezone"`

	// MaxRentalDays caps the inclusive length of a reservation. 0 disables the cap.
	MaxRentalDays int `yaml:"max_rental_days"`

	// MaxAdvanceDays caps how far ahead a reservation may start. 0 disables the cap.
	MaxAdvanceDays int `yaml:"max_advance_days"`

	// CommitAttempts is how often a command runs its read-decide-write cycle before giving up.
	CommitAttempts int `yaml:"commit_attempts"`

	// PurgeCancelled deletes reservations when they are cancelled instead of keeping them.
	PurgeCancelled bool `yaml:"purge_cancelled"`

	// RentedIsBookable accepts new reservations for assets whose status is rented.
	// Off by default: only available assets take new reservations.
	RentedIsBookable bool `yaml:"rented_is_bookable"`

	AssetSync AssetSyncSection `yaml:"asset_sync"`
}

// AssetSyncSection configures the periodic derivation of asset statuses.
type AssetSyncSection struct {
	Enabled bool `yaml:"enabled"`

	// Interval uses Go duration format: "30m", "1h".
	Interval time.Duration `yaml:"interval"`
}

// PostgresSection selects the storage backend.
type PostgresSection struct {
	Adapter    string `yaml:"adapter"`
	DSN        string `yaml:"dsn"`
	ReplicaDSN string `yaml:"replica_dsn"`
	MaxConns   int32  `yaml:"max_conns"`

	// EnsureSchema creates missing tables and indexes on startup.
	EnsureSchema bool `yaml:"ensure_schema"`
}

// HTTPSection configures the request layer.
type HTTPSection struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ObservabilitySection selects the logging, metrics and tracing backends.
type ObservabilitySection struct {
	ServiceName string `yaml:"service_name"`

	// Metrics is one of prometheus, otel or none.
	Metrics string `yaml:"metrics"`

	Tracing bool `yaml:"tracing"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces and OTel metrics.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used for every value the file leaves out.
func Default() Config {
	return Config{
		Engine: EngineSection{
			BusinessTimezone: defaultBusinessTimezone,
			MaxRentalDays:    reservation.DefaultMaxRentalDays,
			MaxAdvanceDays:   reservation.DefaultMaxAdvanceDays,
			CommitAttempts:   2,
			AssetSync: AssetSyncSection{
				Enabled:  true,
				Interval: defaultSyncInterval,
			},
		},
		Postgres: PostgresSection{
			Adapter:      AdapterPGXPool,
			MaxConns:     defaultMaxConns,
			EnsureSchema: true,
		},
		HTTP: HTTPSection{
			Addr:            defaultHTTPAddr,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Observability: ObservabilitySection{
			ServiceName: defaultServiceName,
			Metrics:     MetricsPrometheus,
			LogLevel:    defaultLogLevel,
		},
	}
}

// Load reads the file at path over the defaults, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path comes from the operator
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv(EnvPostgresDSN); dsn != "" {
		c.Postgres.DSN = dsn
	}

	if dsn := os.Getenv(EnvPostgresReplicaDSN); dsn != "" {
		c.Postgres.ReplicaDSN = dsn
	}

	if addr := os.Getenv(EnvHTTPAddr); addr != "" {
		c.HTTP.Addr = addr
	}

	if endpoint := os.Getenv(EnvOTLPEndpoint); endpoint != "" {
		c.Observability.OTLPEndpoint = endpoint
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if _, err := reservation.NewBusinessCalendar(c.Engine.BusinessTimezone); err != nil {
		return fmt.Errorf("%w: engine.business_timezone %q: %w", ErrInvalidConfig, c.Engine.BusinessTimezone, err)
	}

	if c.Engine.MaxRentalDays < 0 {
		return fmt.Errorf("%w: engine.max_rental_days must not be negative", ErrInvalidConfig)
	}

	if c.Engine.MaxAdvanceDays < 0 {
		return fmt.Errorf("%w: engine.max_advance_days must not be negative", ErrInvalidConfig)
	}

	if c.Engine.CommitAttempts < 1 {
		return fmt.Errorf("%w: engine.commit_attempts must be at least 1", ErrInvalidConfig)
	}

	if c.Engine.AssetSync.Enabled && c.Engine.AssetSync.Interval <= 0 {
		return fmt.Errorf("%w: engine.asset_sync.interval must be positive", ErrInvalidConfig)
	}

	switch c.Postgres.Adapter {
	case AdapterPGXPool, AdapterSQLDB, AdapterSQLX:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: postgres.dsn must be set for adapter %s", ErrInvalidConfig, c.Postgres.Adapter)
		}

		if c.Postgres.MaxConns < 1 {
			return fmt.Errorf("%w: postgres.max_conns must be at least 1", ErrInvalidConfig)
		}
	case AdapterMemory:
	default:
		return fmt.Errorf("%w: unsupported postgres.adapter %q", ErrInvalidConfig, c.Postgres.Adapter)
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr must be set", ErrInvalidConfig)
	}

	switch c.Observability.Metrics {
	case MetricsPrometheus, MetricsNone:
	case MetricsOTel:
		if c.Observability.OTLPEndpoint == "" {
			return fmt.Errorf("%w: observability.otlp_endpoint must be set for otel metrics", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported observability.metrics %q", ErrInvalidConfig, c.Observability.Metrics)
	}

	if c.Observability.Tracing && c.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("%w: observability.otlp_endpoint must be set when tracing is enabled", ErrInvalidConfig)
	}

	if _, err := parseLogLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := c.SeedAssets(); err != nil {
		return err
	}

	return nil
}

// SeedAssets converts the configured assets.
func (c Config) SeedAssets() (reservation.Assets, error) {
	assets := make(reservation.Assets, 0, len(c.Assets))

	for i, seed := range c.Assets {
		id, err := uuid.Parse(seed.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: assets[%d].id %q: %w", ErrInvalidConfig, i, seed.ID, err)
		}

		dailyRate, err := reservation.ParseMoney(seed.DailyRate)
		if err != nil || dailyRate.IsNegative() {
			return nil, fmt.Errorf("%w: assets[%d].daily_rate %q must be a non-negative amount", ErrInvalidConfig, i, seed.DailyRate)
		}

		status := reservation.AssetAvailable
		if seed.Status != "" {
			if status, err = reservation.ParseAssetStatus(seed.Status); err != nil {
				return nil, fmt.Errorf("%w: assets[%d].status: %w", ErrInvalidConfig, i, err)
			}
		}

		assets = append(assets, reservation.BuildAsset(id, seed.Name, dailyRate, status))
	}

	return assets, nil
}

// Calendar returns the business calendar of the configured timezone.
func (c Config) Calendar() (reservation.BusinessCalendar, error) {
	return reservation.NewBusinessCalendar(c.Engine.BusinessTimezone)
}

// BookingRules returns the configured limits for calendar.
func (c Config) BookingRules(calendar reservation.BusinessCalendar) reservation.BookingRules {
	return reservation.BookingRules{
		Calendar:         calendar,
		MaxRentalDays:    c.Engine.MaxRentalDays,
		MaxAdvanceDays:   c.Engine.MaxAdvanceDays,
		RentedIsBookable: c.Engine.RentedIsBookable,
	}
}

// SlogLevel returns the configured log level, falling back to info.
func (o ObservabilitySection) SlogLevel() slog.Level {
	level, err := parseLogLevel(o.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}

	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("observability.log_level %q: %w", s, err)
	}

	return level, nil
}
