package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/equiprent/reservation-engine/reservation"
	"github.com/equiprent/reservation-engine/reservation/postgresengine/internal/adapters"
)

const (
	defaultAssetTableName       = "assets"
	defaultReservationTableName = "reservations"
)

var (
	_ reservation.AssetCatalog     = (*Store)(nil)
	_ reservation.ReservationStore = (*Store)(nil)
)

// Store is the PostgreSQL asset catalog and reservation store.
type Store struct {
	db               adapters.DBAdapter
	assetTable       string
	reservationTable string
	logger           reservation.Logger
	contextualLogger reservation.ContextualLogger
	metricsCollector reservation.MetricsCollector
	tracingCollector reservation.TracingCollector
}

// reservationRow holds one scanned reservation. Fields are pointers so that
// the LEFT JOIN of ListBlocking can scan an asset without reservations.
type reservationRow struct {
	id          *string
	assetID     *string
	requesterID *string
	startDate   *string
	endDate     *string
	totalCost   *int64
	status      *string
	notes       *string
	createdAt   *time.Time
	updatedAt   *time.Time
}

func (row *reservationRow) targets() []any {
	return []any{
		&row.id, &row.assetID, &row.requesterID, &row.startDate, &row.endDate,
		&row.totalCost, &row.status, &row.notes, &row.createdAt, &row.updatedAt,
	}
}

func (row *reservationRow) isEmpty() bool {
	return row.id == nil
}

func (row *reservationRow) toReservation() (reservation.Reservation, error) {
	if row.isEmpty() || row.assetID == nil || row.requesterID == nil || row.startDate == nil ||
		row.endDate == nil || row.totalCost == nil || row.status == nil || row.createdAt == nil || row.updatedAt == nil {
		return reservation.Reservation{}, errors.New("reservation row has NULL columns")
	}

	id, err := uuid.Parse(*row.id)
	if err != nil {
		return reservation.Reservation{}, err
	}

	assetID, err := uuid.Parse(*row.assetID)
	if err != nil {
		return reservation.Reservation{}, err
	}

	requesterID, err := uuid.Parse(*row.requesterID)
	if err != nil {
		return reservation.Reservation{}, err
	}

	start, err := reservation.ParseDay(*row.startDate)
	if err != nil {
		return reservation.Reservation{}, err
	}

	end, err := reservation.ParseDay(*row.endDate)
	if err != nil {
		return reservation.Reservation{}, err
	}

	status, err := reservation.ParseStatus(*row.status)
	if err != nil {
		return reservation.Reservation{}, err
	}

	notes := ""
	if row.notes != nil {
		notes = *row.notes
	}

	return reservation.Reservation{
		ID:          id,
		AssetID:     assetID,
		RequesterID: requesterID,
		Dates:       reservation.NewDateRange(start, end),
		TotalCost:   reservation.MoneyFromMinor(*row.totalCost),
		Status:      status,
		Notes:       notes,
		CreatedAt:   row.createdAt.UTC(),
		UpdatedAt:   row.updatedAt.UTC(),
	}, nil
}

// NewStoreFromPGXPool creates a Store on a pgx pool.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options)
}

// NewStoreFromPGXPoolAndReplica creates a Store on a pgx pool whose eventually consistent reads go to replica.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewStoreFromSQLDB creates a Store on a sql.DB, typically opened with the lib/pq driver.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options)
}

// NewStoreFromSQLDBAndReplica creates a Store on a sql.DB with a replica for eventually consistent reads.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options)
}

// NewStoreFromSQLX creates a Store on a sqlx.DB.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options)
}

// NewStoreFromSQLXAndReplica creates a Store on a sqlx.DB with a replica for eventually consistent reads.
func NewStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, reservation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), options)
}

func newStore(db adapters.DBAdapter, options []Option) (*Store, error) {
	s := &Store{
		db:               db,
		assetTable:       defaultAssetTableName,
		reservationTable: defaultReservationTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	assets := quoteIdent(s.assetTable)
	reservations := quoteIdent(s.reservationTable)

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			daily_rate_minor BIGINT NOT NULL CHECK (daily_rate_minor >= 0),
			status TEXT NOT NULL,
			reservation_version BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, assets),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			asset_id UUID NOT NULL REFERENCES %s (id),
			requester_id UUID NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			total_cost_minor BIGINT NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CHECK (start_date <= end_date)
		)`, reservations, assets),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (asset_id, status)`,
			quoteIdent(s.reservationTable+"_asset_status_idx"), reservations),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (requester_id)`,
			quoteIdent(s.reservationTable+"_requester_idx"), reservations),
	}

	for _, statement := range statements {
		if _, err := s.execute(ctx, statement, operationEnsureSchema); err != nil {
			return err
		}
	}

	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Store) GetAsset(ctx context.Context, id uuid.UUID) (reservation.Asset, error) {
	ctx, observer := s.startOperation(ctx, operationGetAsset, map[string]string{spanAttrAssetID: id.String()})

	sqlQuery, err := s.buildGetAssetQuery(id)
	if err != nil {
		observer.finish(ctx, err)
		return reservation.Asset{}, err
	}

	assets, err := s.queryAssets(ctx, sqlQuery, operationGetAsset)
	if err == nil && len(assets) == 0 {
		err = reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", id))
	}

	observer.finish(ctx, err)
	if err != nil {
		return reservation.Asset{}, err
	}

	return assets[0], nil
}

func (s *Store) ListAssets(ctx context.Context) (reservation.Assets, error) {
	ctx, observer := s.startOperation(ctx, operationListAssets, nil)

	sqlQuery, err := s.buildListAssetsQuery()
	if err != nil {
		observer.finish(ctx, err)
		return nil, err
	}

	assets, err := s.queryAssets(ctx, sqlQuery, operationListAssets)
	observer.finish(ctx, err, logAttrRowCount, len(assets))

	return assets, err
}

// SaveAsset inserts or replaces an asset. The reservation version of an existing asset is kept.
func (s *Store) SaveAsset(ctx context.Context, asset reservation.Asset) error {
	ctx, observer := s.startOperation(ctx, operationSaveAsset, map[string]string{spanAttrAssetID: asset.ID.String()})

	sqlQuery, err := s.buildSaveAssetQuery(asset, time.Now().UTC())
	if err == nil {
		_, err = s.execute(ctx, sqlQuery, operationSaveAsset)
	}

	if err != nil {
		err = errors.Join(reservation.ErrWritingAssetFailed, err)
	}

	observer.finish(ctx, err)

	return err
}

func (s *Store) SetAssetStatus(ctx context.Context, id uuid.UUID, status reservation.AssetStatus) error {
	ctx, observer := s.startOperation(ctx, operationSetAssetStatus, map[string]string{spanAttrAssetID: id.String()})

	sqlQuery, err := s.buildSetAssetStatusQuery(id, status, time.Now().UTC())
	if err != nil {
		observer.finish(ctx, err)
		return err
	}

	rowsAffected, err := s.execute(ctx, sqlQuery, operationSetAssetStatus)
	switch {
	case err != nil:
		err = errors.Join(reservation.ErrWritingAssetFailed, err)
	case rowsAffected == 0:
		err = reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", id))
	}

	observer.finish(ctx, err)

	return err
}

// ListBlocking returns the asset's blocking reservations and its version, read in one statement.
func (s *Store) ListBlocking(ctx context.Context, assetID uuid.UUID) (reservation.Reservations, reservation.AssetVersion, error) {
	ctx, observer := s.startOperation(ctx, operationListBlocking, map[string]string{spanAttrAssetID: assetID.String()})

	sqlQuery, err := s.buildListBlockingQuery(assetID)
	if err != nil {
		observer.finish(ctx, err)
		return nil, 0, err
	}

	reservations, version, found, err := s.queryVersioned(ctx, sqlQuery, operationListBlocking)
	if err == nil && !found {
		err = reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", assetID))
	}

	observer.finish(ctx, err, logAttrRowCount, len(reservations), logAttrVersion, version)
	if err != nil {
		return nil, 0, err
	}

	return reservations, version, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (reservation.Reservation, reservation.AssetVersion, error) {
	ctx, observer := s.startOperation(ctx, operationGet, map[string]string{spanAttrReservationID: id.String()})

	sqlQuery, err := s.buildGetQuery(id)
	if err != nil {
		observer.finish(ctx, err)
		return reservation.Reservation{}, 0, err
	}

	reservations, version, _, err := s.queryVersioned(ctx, sqlQuery, operationGet)
	if err == nil && len(reservations) == 0 {
		err = reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("reservation %s does not exist", id))
	}

	observer.finish(ctx, err)
	if err != nil {
		return reservation.Reservation{}, 0, err
	}

	return reservations[0], version, nil
}

func (s *Store) Find(ctx context.Context, filter reservation.ReservationFilter) (reservation.Reservations, error) {
	ctx, observer := s.startOperation(ctx, operationFind, nil)

	sqlQuery, err := s.buildFindQuery(filter)
	if err != nil {
		observer.finish(ctx, err)
		return nil, err
	}

	rows, err := s.query(ctx, sqlQuery, operationFind)
	if err != nil {
		observer.finish(ctx, err)
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	reservations := reservation.Reservations{}
	for rows.Next() {
		row := reservationRow{}
		if err = rows.Scan(row.targets()...); err != nil {
			err = s.scanFailed(ctx, err)
			observer.finish(ctx, err)
			return nil, err
		}

		r, convErr := row.toReservation()
		if convErr != nil {
			err = s.scanFailed(ctx, convErr)
			observer.finish(ctx, err)
			return nil, err
		}

		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		err = errors.Join(reservation.ErrQueryingReservationsFailed, err)
	}

	observer.finish(ctx, err, logAttrRowCount, len(reservations))
	if err != nil {
		return nil, err
	}

	return reservations, nil
}

// Create inserts r if the asset's version still equals expected.
func (s *Store) Create(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	return s.versionedWrite(ctx, operationCreate, expected, r.AssetID, r.ID, func() (sqlQueryString, error) {
		return s.buildCreateQuery(expected, r)
	})
}

// Update replaces r if the asset's version still equals expected.
func (s *Store) Update(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	return s.versionedWrite(ctx, operationUpdate, expected, r.AssetID, r.ID, func() (sqlQueryString, error) {
		return s.buildUpdateQuery(expected, r)
	})
}

// Delete removes the reservation if the asset's version still equals expected.
func (s *Store) Delete(ctx context.Context, expected reservation.AssetVersion, assetID uuid.UUID, id uuid.UUID) error {
	return s.versionedWrite(ctx, operationDelete, expected, assetID, id, func() (sqlQueryString, error) {
		return s.buildDeleteQuery(expected, assetID, id)
	})
}

func (s *Store) versionedWrite(
	ctx context.Context,
	operation string,
	expected reservation.AssetVersion,
	assetID uuid.UUID,
	id uuid.UUID,
	build func() (sqlQueryString, error),
) error {
	ctx, observer := s.startOperation(ctx, operation, map[string]string{
		spanAttrAssetID:         assetID.String(),
		spanAttrReservationID:   id.String(),
		spanAttrExpectedVersion: fmt.Sprintf("%d", expected),
	})

	sqlQuery, err := build()
	if err != nil {
		observer.finish(ctx, err)
		return err
	}

	rowsAffected, err := s.execute(ctx, sqlQuery, operation)
	if err != nil {
		err = errors.Join(reservation.ErrWritingReservationFailed, err)
		observer.finish(ctx, err)
		return err
	}

	if rowsAffected == 0 {
		s.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrOperation, operation,
			logAttrAssetID, assetID.String(),
			logAttrExpectedVersion, expected,
		)
		observer.finish(ctx, reservation.ErrConcurrencyConflict)

		return reservation.ErrConcurrencyConflict
	}

	observer.finish(ctx, nil, logAttrAssetID, assetID.String(), logAttrReservationID, id.String())

	return nil
}

func (s *Store) query(ctx context.Context, sqlQuery, operation string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(reservation.ErrQueryingReservationsFailed, err)
	}

	return rows, nil
}

func (s *Store) execute(ctx context.Context, sqlQuery, operation string) (int64, error) {
	start := time.Now()
	result, err := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err)
		return 0, errors.Join(reservation.ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

func (s *Store) queryAssets(ctx context.Context, sqlQuery, operation string) (reservation.Assets, error) {
	rows, err := s.query(ctx, sqlQuery, operation)
	if err != nil {
		return nil, errors.Join(reservation.ErrQueryingAssetsFailed, err)
	}
	defer s.closeRows(ctx, rows)

	assets := reservation.Assets{}
	for rows.Next() {
		var id, name, status string
		var dailyRate int64

		if err = rows.Scan(&id, &name, &dailyRate, &status); err != nil {
			return nil, s.scanFailed(ctx, err)
		}

		asset, convErr := toAsset(id, name, dailyRate, status)
		if convErr != nil {
			return nil, s.scanFailed(ctx, convErr)
		}

		assets = append(assets, asset)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(reservation.ErrQueryingAssetsFailed, err)
	}

	return assets, nil
}

func toAsset(id, name string, dailyRate int64, status string) (reservation.Asset, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return reservation.Asset{}, err
	}

	assetStatus, err := reservation.ParseAssetStatus(status)
	if err != nil {
		return reservation.Asset{}, err
	}

	return reservation.BuildAsset(assetID, name, reservation.MoneyFromMinor(dailyRate), assetStatus), nil
}

// queryVersioned scans rows of (reservation_version, reservation columns...).
// found reports whether at least one row came back, even if its reservation columns were NULL.
func (s *Store) queryVersioned(ctx context.Context, sqlQuery, operation string) (
	reservation.Reservations,
	reservation.AssetVersion,
	bool,
	error,
) {
	rows, err := s.query(ctx, sqlQuery, operation)
	if err != nil {
		return nil, 0, false, err
	}
	defer s.closeRows(ctx, rows)

	reservations := reservation.Reservations{}
	found := false
	var version int64

	for rows.Next() {
		found = true
		row := reservationRow{}
		targets := append([]any{&version}, row.targets()...)

		if err = rows.Scan(targets...); err != nil {
			return nil, 0, false, s.scanFailed(ctx, err)
		}

		if row.isEmpty() {
			continue
		}

		r, convErr := row.toReservation()
		if convErr != nil {
			return nil, 0, false, s.scanFailed(ctx, convErr)
		}

		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, false, errors.Join(reservation.ErrQueryingReservationsFailed, err)
	}

	return reservations, reservation.AssetVersion(version), found, nil
}

func (s *Store) scanFailed(ctx context.Context, err error) error {
	s.logError(ctx, logMsgScanRowFailed, err)
	return errors.Join(reservation.ErrScanningDBRowFailed, err)
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}
