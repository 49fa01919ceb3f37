package store

import "context"

// Table DDL for everything the coordinator reads or writes. Statements are
// idempotent so startup can always run them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		name TEXT,
		start_date DATE,
		end_date DATE,
		owner_id TEXT,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS trip_members (
		trip_id TEXT,
		user_id TEXT,
		role TEXT,
		joined_at TIMESTAMP,
		PRIMARY KEY (trip_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS days (
		id TEXT PRIMARY KEY,
		trip_id TEXT,
		date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		trip_id TEXT,
		day_id TEXT,
		title TEXT,
		description TEXT,
		start_time TEXT,
		end_time TEXT,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		order_index DOUBLE PRECISION,
		created_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS transport_groups (
		id TEXT PRIMARY KEY,
		trip_id TEXT,
		day_id TEXT,
		task_id TEXT,
		mode_id TEXT,
		label TEXT,
		leader_id TEXT,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS transport_group_members (
		transport_group_id TEXT,
		user_id TEXT,
		effective_mode_id TEXT,
		PRIMARY KEY (transport_group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS location_updates (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		transport_group_id TEXT,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		recorded_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS location_updates_group_recorded
		ON location_updates (transport_group_id, recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS eta_snapshots (
		id TEXT PRIMARY KEY,
		group_id TEXT,
		task_id TEXT,
		distance_km DOUBLE PRECISION,
		eta_minutes INTEGER,
		calculated_at TIMESTAMP
	)`,
}

// InitSchema creates all tables and indexes if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		opCtx, cancel := s.opCtx(ctx)
		_, err := s.db.ExecContext(opCtx, stmt)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
