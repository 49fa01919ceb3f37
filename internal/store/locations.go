package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
)

// RecordLocation appends one observation to the location ledger. The
// ledger is append-only; rows are never updated or deleted.
func (s *Store) RecordLocation(ctx context.Context, update itinerary.LocationUpdate) (itinerary.LocationUpdate, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.RecordedAt.IsZero() {
		update.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO location_updates (id, user_id, transport_group_id, lat, lng, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		update.ID, update.UserID, update.GroupID, update.Coord.Lat, update.Coord.Lng, update.RecordedAt,
	)
	if err != nil {
		return itinerary.LocationUpdate{}, fmt.Errorf("insert location update: %w", err)
	}
	return update, nil
}

// LastKnownLocation returns the most recently recorded coordinate for a
// group, regardless of which member reported it. ok is false when the
// group has never reported a location. Ties on recorded_at are broken by
// id, which is deterministic but otherwise arbitrary.
func (s *Store) LastKnownLocation(ctx context.Context, groupID string) (geo.Coordinate, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var c geo.Coordinate
	err := s.db.QueryRowContext(ctx,
		`SELECT lat, lng FROM location_updates
		 WHERE transport_group_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`, groupID,
	).Scan(&c.Lat, &c.Lng)
	if err == sql.ErrNoRows {
		return geo.Coordinate{}, false, nil
	}
	if err != nil {
		return geo.Coordinate{}, false, fmt.Errorf("query last location: %w", err)
	}
	return c, true, nil
}
