package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trip-coordinator/internal/itinerary"
)

// InsertETASnapshot persists one ETA computation for audit and analytics.
func (s *Store) InsertETASnapshot(ctx context.Context, snap itinerary.ETASnapshot) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CalculatedAt.IsZero() {
		snap.CalculatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eta_snapshots (id, group_id, task_id, distance_km, eta_minutes, calculated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.GroupID, snap.TaskID, snap.DistanceKm, snap.ETAMinutes, snap.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert eta snapshot: %w", err)
	}
	return nil
}

// SnapshotMinutes returns the eta_minutes of every snapshot recorded for
// the trip's non-deleted tasks. An empty result is not an error.
func (s *Store) SnapshotMinutes(ctx context.Context, tripID string) ([]int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.eta_minutes
		 FROM eta_snapshots e
		 WHERE e.task_id IN (
		     SELECT id FROM tasks
		     WHERE trip_id = $1 AND (is_deleted IS NULL OR is_deleted = FALSE)
		 )`, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot minutes: %w", err)
	}
	defer rows.Close()

	var minutes []int
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		minutes = append(minutes, m)
	}
	return minutes, rows.Err()
}

// SnapshotTaskStartTimes returns the start_time of every non-deleted task
// of the trip that has at least one ETA snapshot, one entry per snapshot.
func (s *Store) SnapshotTaskStartTimes(ctx context.Context, tripID string) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(t.start_time, '')
		 FROM tasks t
		 JOIN eta_snapshots e ON e.task_id = t.id
		 WHERE t.trip_id = $1 AND (t.is_deleted IS NULL OR t.is_deleted = FALSE)`, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot task times: %w", err)
	}
	defer rows.Close()

	var startTimes []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		startTimes = append(startTimes, st)
	}
	return startTimes, rows.Err()
}
