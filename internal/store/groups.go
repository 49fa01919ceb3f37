package store

import (
	"context"
	"database/sql"
	"fmt"

	"trip-coordinator/internal/itinerary"
	"trip-coordinator/internal/transport"
)

// GroupsForDay returns every transport group belonging to the (trip, day)
// pair, including groups whose memberships were stripped by a regroup.
func (s *Store) GroupsForDay(ctx context.Context, tripID, dayID string) ([]itinerary.TransportGroup, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	q := `SELECT id, trip_id, day_id, COALESCE(task_id, ''), COALESCE(mode_id, ''),
	             COALESCE(label, ''), COALESCE(leader_id, ''), created_at
	      FROM transport_groups
	      WHERE trip_id = $1 AND day_id = $2
	      ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, tripID, dayID)
	if err != nil {
		return nil, fmt.Errorf("query transport groups: %w", err)
	}
	defer rows.Close()

	var groups []itinerary.TransportGroup
	for rows.Next() {
		var g itinerary.TransportGroup
		var mode string
		var createdAt sql.NullTime
		if err := rows.Scan(&g.ID, &g.TripID, &g.DayID, &g.TaskID, &mode, &g.Label, &g.LeaderID, &createdAt); err != nil {
			return nil, err
		}
		g.Mode = transport.Mode(mode)
		if createdAt.Valid {
			g.CreatedAt = createdAt.Time
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GroupMembers returns the user ids attached to a group.
func (s *Store) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM transport_group_members WHERE transport_group_id = $1`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// CreateGroupWithMembers inserts one group row and one membership row per
// member in a single transaction.
func (s *Store) CreateGroupWithMembers(ctx context.Context, group itinerary.TransportGroup, memberIDs []string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertGroupTx(ctx, tx, group, memberIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReplaceDayGroups deletes every membership row of the day's existing
// groups and inserts the new groups with their memberships, all in one
// transaction. Old group rows stay behind as orphans so foreign keys from
// historical ETA snapshots remain valid.
func (s *Store) ReplaceDayGroups(ctx context.Context, tripID, dayID string, groups []itinerary.GroupWithMembers) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM transport_group_members
		 WHERE transport_group_id IN (
		     SELECT id FROM transport_groups
		     WHERE trip_id = $1 AND day_id = $2
		 )`, tripID, dayID,
	)
	if err != nil {
		return fmt.Errorf("delete day memberships: %w", err)
	}

	for _, gm := range groups {
		if err := insertGroupTx(ctx, tx, gm.Group, gm.MemberIDs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertGroupTx(ctx context.Context, tx *sql.Tx, group itinerary.TransportGroup, memberIDs []string) error {
	var taskID, label sql.NullString
	if group.TaskID != "" {
		taskID = sql.NullString{String: group.TaskID, Valid: true}
	}
	if group.Label != "" {
		label = sql.NullString{String: group.Label, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transport_groups (id, trip_id, day_id, task_id, mode_id, label, leader_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		group.ID, group.TripID, group.DayID, taskID, string(group.Mode), label, group.LeaderID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	for _, userID := range memberIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transport_group_members (transport_group_id, user_id, effective_mode_id)
			 VALUES ($1, $2, NULL)`,
			group.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}
	return nil
}
