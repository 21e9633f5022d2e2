package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/equiprent/reservation-engine/reservation/postgresengine"
)

const (
	driverPostgres = "postgres"

	defaultMinConnections    = int32(2)
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

// ErrUnsupportedAdapter is returned when a Postgres store is requested for an adapter that is not a database.
var ErrUnsupportedAdapter = errors.New("unsupported postgres adapter")

// PostgresPGXPoolConfig creates a pgxpool.Config for dsn with maxConns connections.
func PostgresPGXPoolConfig(dsn string, maxConns int32) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	dbConfig.MaxConns = maxConns
	dbConfig.MinConns = min(defaultMinConnections, maxConns)
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// NewPGXPool connects a pgxpool.Pool and pings it.
func NewPGXPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn, maxConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return pool, nil
}

// NewSQLDB opens a *sql.DB using the lib/pq driver, configures its pool and pings it.
func NewSQLDB(ctx context.Context, dsn string, maxConns int32) (*sql.DB, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	configureSQLPool(db, maxConns)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close() // ignore error
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}

// NewSQLX opens a *sqlx.DB using the lib/pq driver, configures its pool and pings it.
func NewSQLX(ctx context.Context, dsn string, maxConns int32) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	configureSQLPool(db.DB, maxConns)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close() // ignore error
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}

func configureSQLPool(db *sql.DB, maxConns int32) {
	db.SetMaxOpenConns(int(maxConns))
	db.SetMaxIdleConns(int(min(defaultMinConnections, maxConns)))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

// NewPostgresStore connects to the primary, and the replica when one is configured, with the configured
// adapter and returns the store built on them together with a function closing every connection.
func NewPostgresStore(
	ctx context.Context,
	cfg PostgresSection,
	options ...postgresengine.Option,
) (*postgresengine.Store, func(), error) {

	switch cfg.Adapter {
	case AdapterPGXPool:
		return connect(ctx, cfg, NewPGXPool, (*pgxpool.Pool).Close,
			postgresengine.NewStoreFromPGXPool, postgresengine.NewStoreFromPGXPoolAndReplica, options)

	case AdapterSQLDB:
		return connect(ctx, cfg, NewSQLDB, func(db *sql.DB) { _ = db.Close() },
			postgresengine.NewStoreFromSQLDB, postgresengine.NewStoreFromSQLDBAndReplica, options)

	case AdapterSQLX:
		return connect(ctx, cfg, NewSQLX, func(db *sqlx.DB) { _ = db.Close() },
			postgresengine.NewStoreFromSQLX, postgresengine.NewStoreFromSQLXAndReplica, options)

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedAdapter, cfg.Adapter)
	}
}

func connect[DB any](
	ctx context.Context,
	cfg PostgresSection,
	open func(context.Context, string, int32) (DB, error),
	closeDB func(DB),
	newStore func(DB, ...postgresengine.Option) (*postgresengine.Store, error),
	newStoreWithReplica func(DB, DB, ...postgresengine.Option) (*postgresengine.Store, error),
	options []postgresengine.Option,
) (*postgresengine.Store, func(), error) {

	primary, err := open(ctx, cfg.DSN, cfg.MaxConns)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ReplicaDSN == "" {
		store, storeErr := newStore(primary, options...)
		if storeErr != nil {
			closeDB(primary)
			return nil, nil, storeErr
		}

		return store, func() { closeDB(primary) }, nil
	}

	replica, err := open(ctx, cfg.ReplicaDSN, cfg.MaxConns)
	if err != nil {
		closeDB(primary)
		return nil, nil, fmt.Errorf("replica: %w", err)
	}

	closeAll := func() {
		closeDB(replica)
		closeDB(primary)
	}

	store, err := newStoreWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}
