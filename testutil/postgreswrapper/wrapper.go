// Package postgreswrapper runs PostgreSQL integration tests against a testcontainers-go container
// and hands out a postgresengine.Store per database adapter.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/equiprent/reservation-engine/reservation/postgresengine"
)

// Adapter type constants
const (
	TypePGXPool = "pgx.pool"
	TypeSQLDB   = "sql.db"
	TypeSQLX    = "sqlx.db"

	postgresImage    = "postgres:16-alpine"
	postgresUser     = "test"
	postgresPassword = "test"
	postgresDB       = "reservations"
	postgresPort     = "5432/tcp"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// AdapterTypes returns the adapters to test: the one named by ADAPTER_TYPE, or all of them.
func AdapterTypes() []string {
	if fromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE")); fromEnv != "" {
		return []string{fromEnv}
	}

	return []string{TypePGXPool, TypeSQLDB, TypeSQLX}
}

// DSN returns the DSN of the shared test container, starting it on first use.
// The test is skipped in short mode or when no container provider is available.
// The container is removed by the testcontainers reaper when the test binary exits.
func DSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		containerDSN, containerErr = startContainer(context.Background())
	})
	require.NoError(t, containerErr, "starting the postgres container failed")

	return containerDSN
}

func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}

	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB,
	), nil
}

// Wrapper owns a database connection and the Store built on it.
type Wrapper interface {
	Store() *postgresengine.Store
	Close()
}

type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapper connects with the given adapter type and creates a Store on fresh, uniquely named tables.
// The connection is closed when the test ends.
func CreateWrapper(t *testing.T, adapterType string, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := DSN(t)
	ctx := context.Background()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	options = append([]postgresengine.Option{
		postgresengine.WithTableNames("assets_"+suffix, "reservations_"+suffix),
	}, options...)

	var wrapper Wrapper

	switch adapterType {
	case TypePGXPool:
		pool, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err)
		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case TypeSQLDB:
		db, err := sql.Open("postgres", dsn)
		require.NoError(t, err, "error opening DB in test setup")
		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err)
		wrapper = &SQLDBWrapper{db: db, store: store}

	case TypeSQLX:
		db, err := sqlx.Open("postgres", dsn)
		require.NoError(t, err, "error opening DB in test setup")
		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err)
		wrapper = &SQLXWrapper{db: db, store: store}

	default:
		t.Fatalf("unsupported adapter type: %s", adapterType)
	}

	t.Cleanup(wrapper.Close)
	require.NoError(t, wrapper.Store().EnsureSchema(ctx), "creating the schema failed")

	return wrapper
}
