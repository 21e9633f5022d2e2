package postgresengine

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	dialectPostgres = "postgres"

	colID                 = "id"
	colName               = "name"
	colDailyRateMinor     = "daily_rate_minor"
	colStatus             = "status"
	colReservationVersion = "reservation_version"
	colAssetID            = "asset_id"
	colRequesterID        = "requester_id"
	colStartDate          = "start_date"
	colEndDate            = "end_date"
	colTotalCostMinor     = "total_cost_minor"
	colNotes              = "notes"
	colCreatedAt          = "created_at"
	colUpdatedAt          = "updated_at"

	aliasAsset       = "a"
	aliasReservation = "r"
	cteBump          = "bump"

	typeText        = "TEXT"
	typeUUID        = "UUID"
	typeDate        = "DATE"
	typeBigint      = "BIGINT"
	typeTimestampTZ = "TIMESTAMPTZ"
)

type sqlQueryString = string

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func toSQL(ds interface{ ToSQL() (string, []any, error) }) (sqlQueryString, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return "", errors.Join(reservation.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// reservationColumns selects a reservation row from the table aliased as alias.
// UUIDs and dates are read as text so that every driver scans them the same way.
func reservationColumns(alias string) []any {
	t := goqu.T(alias)

	return []any{
		goqu.Cast(t.Col(colID), typeText),
		goqu.Cast(t.Col(colAssetID), typeText),
		goqu.Cast(t.Col(colRequesterID), typeText),
		goqu.Cast(t.Col(colStartDate), typeText),
		goqu.Cast(t.Col(colEndDate), typeText),
		t.Col(colTotalCostMinor),
		t.Col(colStatus),
		t.Col(colNotes),
		t.Col(colCreatedAt),
		t.Col(colUpdatedAt),
	}
}

func statusValues(statuses []reservation.Status) []string {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, status.String())
	}

	return values
}

func (s *Store) buildGetAssetQuery(id uuid.UUID) (sqlQueryString, error) {
	return toSQL(s.selectAssets().Where(goqu.C(colID).Eq(id.String())))
}

func (s *Store) buildListAssetsQuery() (sqlQueryString, error) {
	return toSQL(s.selectAssets().Order(goqu.C(colID).Asc()))
}

func (s *Store) selectAssets() *goqu.SelectDataset {
	return builder().
		From(s.assetTable).
		Select(
			goqu.Cast(goqu.C(colID), typeText),
			goqu.C(colName),
			goqu.C(colDailyRateMinor),
			goqu.C(colStatus),
		)
}

func (s *Store) buildSaveAssetQuery(asset reservation.Asset, now time.Time) (sqlQueryString, error) {
	insertStmt := builder().
		Insert(s.assetTable).
		Rows(goqu.Record{
			colID:             asset.ID.String(),
			colName:           asset.Name,
			colDailyRateMinor: asset.DailyRate.Minor(),
			colStatus:         asset.Status.String(),
			colUpdatedAt:      now,
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colName:           goqu.L("EXCLUDED." + colName),
			colDailyRateMinor: goqu.L("EXCLUDED." + colDailyRateMinor),
			colStatus:         goqu.L("EXCLUDED." + colStatus),
			colUpdatedAt:      goqu.L("EXCLUDED." + colUpdatedAt),
		}))

	return toSQL(insertStmt)
}

func (s *Store) buildSetAssetStatusQuery(id uuid.UUID, status reservation.AssetStatus, now time.Time) (sqlQueryString, error) {
	updateStmt := builder().
		Update(s.assetTable).
		Set(goqu.Record{colStatus: status.String(), colUpdatedAt: now}).
		Where(goqu.C(colID).Eq(id.String()))

	return toSQL(updateStmt)
}

// buildListBlockingQuery reads the asset's version and its blocking reservations in one statement.
// The asset row is always returned; reservation columns are NULL when nothing blocks.
func (s *Store) buildListBlockingQuery(assetID uuid.UUID) (sqlQueryString, error) {
	a := goqu.T(aliasAsset)
	r := goqu.T(aliasReservation)

	columns := append([]any{a.Col(colReservationVersion)}, reservationColumns(aliasReservation)...)

	selectStmt := builder().
		From(goqu.T(s.assetTable).As(aliasAsset)).
		LeftJoin(
			goqu.T(s.reservationTable).As(aliasReservation),
			goqu.On(
				r.Col(colAssetID).Eq(a.Col(colID)),
				r.Col(colStatus).In(statusValues(reservation.BlockingStatuses)),
			),
		).
		Select(columns...).
		Where(a.Col(colID).Eq(assetID.String())).
		Order(r.Col(colStartDate).Asc(), r.Col(colID).Asc())

	return toSQL(selectStmt)
}

func (s *Store) buildGetQuery(id uuid.UUID) (sqlQueryString, error) {
	a := goqu.T(aliasAsset)
	r := goqu.T(aliasReservation)

	columns := append([]any{a.Col(colReservationVersion)}, reservationColumns(aliasReservation)...)

	selectStmt := builder().
		From(goqu.T(s.reservationTable).As(aliasReservation)).
		Join(goqu.T(s.assetTable).As(aliasAsset), goqu.On(a.Col(colID).Eq(r.Col(colAssetID)))).
		Select(columns...).
		Where(r.Col(colID).Eq(id.String()))

	return toSQL(selectStmt)
}

func (s *Store) buildFindQuery(filter reservation.ReservationFilter) (sqlQueryString, error) {
	r := goqu.T(aliasReservation)
	conditions := make([]exp.Expression, 0, 3)

	if filter.AssetID != uuid.Nil {
		conditions = append(conditions, r.Col(colAssetID).Eq(filter.AssetID.String()))
	}

	if filter.RequesterID != uuid.Nil {
		conditions = append(conditions, r.Col(colRequesterID).Eq(filter.RequesterID.String()))
	}

	if len(filter.Statuses) > 0 {
		conditions = append(conditions, r.Col(colStatus).In(statusValues(filter.Statuses)))
	}

	selectStmt := builder().
		From(goqu.T(s.reservationTable).As(aliasReservation)).
		Select(reservationColumns(aliasReservation)...).
		Order(r.Col(colStartDate).Asc(), r.Col(colID).Asc())

	if len(conditions) > 0 {
		selectStmt = selectStmt.Where(conditions...)
	}

	return toSQL(selectStmt)
}

// bumpVersion increments the asset's version if it still equals expected and returns the asset's id.
func (s *Store) bumpVersion(assetID uuid.UUID, expected reservation.AssetVersion) *goqu.UpdateDataset {
	return builder().
		Update(s.assetTable).
		Set(goqu.Record{colReservationVersion: goqu.L(`"`+colReservationVersion+`" + 1`)}).
		Where(
			goqu.C(colID).Eq(assetID.String()),
			goqu.C(colReservationVersion).Eq(int64(expected)),
		).
		Returning(goqu.C(colID))
}

func (s *Store) bumpedAsset() *goqu.SelectDataset {
	return builder().From(cteBump).Select(goqu.C(colID))
}

func (s *Store) buildCreateQuery(expected reservation.AssetVersion, r reservation.Reservation) (sqlQueryString, error) {
	valuesStmt := builder().
		From(cteBump).
		Select(
			goqu.Cast(goqu.V(r.ID.String()), typeUUID),
			goqu.C(colID),
			goqu.Cast(goqu.V(r.RequesterID.String()), typeUUID),
			goqu.Cast(goqu.V(r.Dates.Start.String()), typeDate),
			goqu.Cast(goqu.V(r.Dates.End.String()), typeDate),
			goqu.Cast(goqu.V(r.TotalCost.Minor()), typeBigint),
			goqu.Cast(goqu.V(r.Status.String()), typeText),
			goqu.Cast(goqu.V(r.Notes), typeText),
			goqu.Cast(goqu.V(r.CreatedAt), typeTimestampTZ),
			goqu.Cast(goqu.V(r.UpdatedAt), typeTimestampTZ),
		)

	insertStmt := builder().
		Insert(s.reservationTable).
		With(cteBump, s.bumpVersion(r.AssetID, expected)).
		Cols(
			colID, colAssetID, colRequesterID, colStartDate, colEndDate,
			colTotalCostMinor, colStatus, colNotes, colCreatedAt, colUpdatedAt,
		).
		FromQuery(valuesStmt)

	return toSQL(insertStmt)
}

func (s *Store) buildUpdateQuery(expected reservation.AssetVersion, r reservation.Reservation) (sqlQueryString, error) {
	updateStmt := builder().
		Update(s.reservationTable).
		With(cteBump, s.bumpVersion(r.AssetID, expected)).
		Set(goqu.Record{
			colStartDate:      goqu.Cast(goqu.V(r.Dates.Start.String()), typeDate),
			colEndDate:        goqu.Cast(goqu.V(r.Dates.End.String()), typeDate),
			colTotalCostMinor: r.TotalCost.Minor(),
			colStatus:         r.Status.String(),
			colNotes:          r.Notes,
			colUpdatedAt:      r.UpdatedAt,
		}).
		Where(
			goqu.C(colID).Eq(r.ID.String()),
			goqu.C(colAssetID).In(s.bumpedAsset()),
		)

	return toSQL(updateStmt)
}

func (s *Store) buildDeleteQuery(expected reservation.AssetVersion, assetID, id uuid.UUID) (sqlQueryString, error) {
	deleteStmt := builder().
		Delete(s.reservationTable).
		With(cteBump, s.bumpVersion(assetID, expected)).
		Where(
			goqu.C(colID).Eq(id.String()),
			goqu.C(colAssetID).In(s.bumpedAsset()),
		)

	return toSQL(deleteStmt)
}
