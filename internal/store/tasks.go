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

const taskColumns = `id, trip_id, day_id, COALESCE(title, ''), COALESCE(description, ''),
	COALESCE(start_time, ''), COALESCE(end_time, ''), lat, lng,
	COALESCE(order_index, 0), created_at, COALESCE(is_deleted, FALSE)`

// TasksForDay returns the day's non-deleted tasks ordered by order_index.
func (s *Store) TasksForDay(ctx context.Context, dayID string) ([]itinerary.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	q := `SELECT ` + taskColumns + `
	      FROM tasks
	      WHERE day_id = $1 AND (is_deleted IS NULL OR is_deleted = FALSE)
	      ORDER BY order_index ASC`
	rows, err := s.db.QueryContext(ctx, q, dayID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []itinerary.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTask returns a single task by id; ok is false when it does not exist.
func (s *Store) GetTask(ctx context.Context, taskID string) (itinerary.Task, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return itinerary.Task{}, false, nil
	}
	if err != nil {
		return itinerary.Task{}, false, fmt.Errorf("query task: %w", err)
	}
	return task, true, nil
}

// GetDay returns a day by id; ok is false when it does not exist.
func (s *Store) GetDay(ctx context.Context, dayID string) (itinerary.Day, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var d itinerary.Day
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, date FROM days WHERE id = $1`, dayID,
	).Scan(&d.ID, &d.TripID, &d.Date)
	if err == sql.ErrNoRows {
		return itinerary.Day{}, false, nil
	}
	if err != nil {
		return itinerary.Day{}, false, fmt.Errorf("query day: %w", err)
	}
	return d, true, nil
}

// AddTask appends a task to the end of a day's ordering.
func (s *Store) AddTask(ctx context.Context, task itinerary.Task) (itinerary.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var maxOrder sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM tasks WHERE day_id = $1`, task.DayID,
	).Scan(&maxOrder)
	if err != nil {
		return itinerary.Task{}, fmt.Errorf("query max order: %w", err)
	}
	task.OrderIndex = maxOrder.Float64 + 1

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	var lat, lng sql.NullFloat64
	if task.Coord != nil {
		lat = sql.NullFloat64{Float64: task.Coord.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: task.Coord.Lng, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, trip_id, day_id, title, description, start_time, end_time, lat, lng, order_index, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.TripID, task.DayID, task.Title, task.Description,
		task.StartTime, task.EndTime, lat, lng, task.OrderIndex, task.CreatedAt,
	)
	if err != nil {
		return itinerary.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// ReorderTaskBefore moves a task immediately before the reference task by
// assigning it the midpoint between the reference's order_index and its
// predecessor's, e.g. inserting before index 2 yields 1.5.
func (s *Store) ReorderTaskBefore(ctx context.Context, taskID, beforeTaskID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var refOrder float64
	var dayID string
	err := s.db.QueryRowContext(ctx,
		`SELECT day_id, COALESCE(order_index, 0) FROM tasks WHERE id = $1`, beforeTaskID,
	).Scan(&dayID, &refOrder)
	if err != nil {
		return fmt.Errorf("query reference task: %w", err)
	}

	var prevOrder sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM tasks
		 WHERE day_id = $1 AND order_index < $2
		   AND (is_deleted IS NULL OR is_deleted = FALSE) AND id <> $3`,
		dayID, refOrder, taskID,
	).Scan(&prevOrder)
	if err != nil {
		return fmt.Errorf("query predecessor order: %w", err)
	}

	newOrder := (prevOrder.Float64 + refOrder) / 2
	if !prevOrder.Valid {
		newOrder = refOrder - 1
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET order_index = $1 WHERE id = $2`, newOrder, taskID,
	)
	if err != nil {
		return fmt.Errorf("update task order: %w", err)
	}
	return nil
}

// SoftDeleteTask marks a task deleted. Rows are never physically removed.
func (s *Store) SoftDeleteTask(ctx context.Context, taskID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = TRUE WHERE id = $1`, taskID,
	)
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (itinerary.Task, error) {
	var t itinerary.Task
	var lat, lng sql.NullFloat64
	var createdAt sql.NullTime
	err := row.Scan(&t.ID, &t.TripID, &t.DayID, &t.Title, &t.Description,
		&t.StartTime, &t.EndTime, &lat, &lng, &t.OrderIndex, &createdAt, &t.Deleted)
	if err != nil {
		return itinerary.Task{}, err
	}
	if lat.Valid && lng.Valid {
		t.Coord = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	return t, nil
}
