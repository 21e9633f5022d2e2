package memengine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/equiprent/reservation-engine/reservation"
)

type assetRow struct {
	asset   reservation.Asset
	version reservation.AssetVersion
}

// Store keeps assets and reservations in maps.
type Store struct {
	mu           sync.RWMutex
	assets       map[uuid.UUID]*assetRow
	reservations map[uuid.UUID]reservation.Reservation
	logger       reservation.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every applied write and every lost version race at info level.
func WithLogger(logger reservation.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty Store.
func NewStore(options ...Option) *Store {
	s := &Store{
		assets:       map[uuid.UUID]*assetRow{},
		reservations: map[uuid.UUID]reservation.Reservation{},
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *Store) GetAsset(ctx context.Context, id uuid.UUID) (reservation.Asset, error) {
	if err := ctx.Err(); err != nil {
		return reservation.Asset{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.assets[id]
	if !ok {
		return reservation.Asset{}, assetNotFound(id)
	}

	return row.asset, nil
}

func (s *Store) ListAssets(ctx context.Context) (reservation.Assets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make(reservation.Assets, 0, len(s.assets))
	for _, row := range s.assets {
		assets = append(assets, row.asset)
	}

	slices.SortFunc(assets, func(a, b reservation.Asset) int {
		return compareUUID(a.ID, b.ID)
	})

	return assets, nil
}

// SaveAsset inserts or replaces an asset. The reservation version of an existing asset is kept.
func (s *Store) SaveAsset(ctx context.Context, asset reservation.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.assets[asset.ID]; ok {
		row.asset = asset
		return nil
	}

	s.assets[asset.ID] = &assetRow{asset: asset}

	return nil
}

func (s *Store) SetAssetStatus(ctx context.Context, id uuid.UUID, status reservation.AssetStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.assets[id]
	if !ok {
		return assetNotFound(id)
	}

	row.asset.Status = status

	return nil
}

func (s *Store) ListBlocking(ctx context.Context, assetID uuid.UUID) (reservation.Reservations, reservation.AssetVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.assets[assetID]
	if !ok {
		return nil, 0, assetNotFound(assetID)
	}

	blocking := s.filterLocked(reservation.ReservationFilter{
		AssetID:  assetID,
		Statuses: reservation.BlockingStatuses,
	})

	return blocking, row.version, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (reservation.Reservation, reservation.AssetVersion, error) {
	if err := ctx.Err(); err != nil {
		return reservation.Reservation{}, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return reservation.Reservation{}, 0, reservationNotFound(id)
	}

	var version reservation.AssetVersion
	if row, ok := s.assets[r.AssetID]; ok {
		version = row.version
	}

	return r, version, nil
}

func (s *Store) Find(ctx context.Context, filter reservation.ReservationFilter) (reservation.Reservations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLocked(filter), nil
}

func (s *Store) Create(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	return s.write(ctx, expected, r.AssetID, "create", func() error {
		if _, exists := s.reservations[r.ID]; exists {
			return fmt.Errorf("%w: reservation %s already exists", reservation.ErrWritingReservationFailed, r.ID)
		}

		s.reservations[r.ID] = r

		return nil
	})
}

func (s *Store) Update(ctx context.Context, expected reservation.AssetVersion, r reservation.Reservation) error {
	return s.write(ctx, expected, r.AssetID, "update", func() error {
		current, exists := s.reservations[r.ID]
		if !exists || current.AssetID != r.AssetID {
			return reservation.ErrConcurrencyConflict
		}

		s.reservations[r.ID] = r

		return nil
	})
}

func (s *Store) Delete(ctx context.Context, expected reservation.AssetVersion, assetID uuid.UUID, id uuid.UUID) error {
	return s.write(ctx, expected, assetID, "delete", func() error {
		current, exists := s.reservations[id]
		if !exists || current.AssetID != assetID {
			return reservation.ErrConcurrencyConflict
		}

		delete(s.reservations, id)

		return nil
	})
}

// write runs apply under the lock if the asset's version matches, then bumps the version.
func (s *Store) write(
	ctx context.Context,
	expected reservation.AssetVersion,
	assetID uuid.UUID,
	operation string,
	apply func() error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.assets[assetID]
	if !ok || row.version != expected {
		s.logInfo("concurrency conflict detected", "operation", operation, "asset_id", assetID.String(), "expected_version", expected)
		return reservation.ErrConcurrencyConflict
	}

	if err := apply(); err != nil {
		return err
	}

	row.version++
	s.logInfo("reservation written", "operation", operation, "asset_id", assetID.String(), "version", row.version)

	return nil
}

func (s *Store) filterLocked(filter reservation.ReservationFilter) reservation.Reservations {
	found := reservation.Reservations{}

	for _, r := range s.reservations {
		if filter.Matches(r) {
			found = append(found, r)
		}
	}

	slices.SortFunc(found, func(a, b reservation.Reservation) int {
		switch {
		case a.Dates.Start.Before(b.Dates.Start):
			return -1
		case a.Dates.Start.After(b.Dates.Start):
			return 1
		default:
			return compareUUID(a.ID, b.ID)
		}
	})

	return found
}

func (s *Store) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}

func assetNotFound(id uuid.UUID) error {
	return reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("asset %s does not exist", id))
}

func reservationNotFound(id uuid.UUID) error {
	return reservation.Reject(reservation.ErrNotFound, fmt.Sprintf("reservation %s does not exist", id))
}
