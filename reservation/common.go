package reservation

import (
	"errors"
)

var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")

var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingReservationsFailed = errors.New("querying reservations failed")
var ErrQueryingAssetsFailed = errors.New("querying assets failed")
var ErrWritingReservationFailed = errors.New("writing reservation failed")
var ErrWritingAssetFailed = errors.New("writing asset failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

// AssetVersion is the per-asset write counter guarding the check-then-write of reservations.
// Every successful reservation write for an asset increments it by one.
type AssetVersion = uint64
