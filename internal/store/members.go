package store

import (
	"context"
	"database/sql"
	"fmt"

	"trip-coordinator/internal/itinerary"
)

// TripMembers returns the (user, role) pairs for a trip.
func (s *Store) TripMembers(ctx context.Context, tripID string) ([]itinerary.TripMember, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, COALESCE(role, '') FROM trip_members WHERE trip_id = $1`, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trip members: %w", err)
	}
	defer rows.Close()

	var members []itinerary.TripMember
	for rows.Next() {
		var m itinerary.TripMember
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// TripOwner returns the user id of the member with role "owner"; ok is
// false when the trip has no owner row.
func (s *Store) TripOwner(ctx context.Context, tripID string) (string, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM trip_members WHERE trip_id = $1 AND role = $2`,
		tripID, itinerary.RoleOwner,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query trip owner: %w", err)
	}
	return userID, true, nil
}
