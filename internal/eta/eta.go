// Package eta estimates transport group arrival times against scheduled
// tasks and evaluates lateness for a day's itinerary.
package eta

import (
	"context"
	"time"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
	"trip-coordinator/internal/metrics"
	"trip-coordinator/internal/transport"
)

// Store is the persistence surface the engine consumes. Missing data is
// reported through ok flags, never as errors.
type Store interface {
	LastKnownLocation(ctx context.Context, groupID string) (geo.Coordinate, bool, error)
	GetDay(ctx context.Context, dayID string) (itinerary.Day, bool, error)
	TasksForDay(ctx context.Context, dayID string) ([]itinerary.Task, error)
	GroupsForDay(ctx context.Context, tripID, dayID string) ([]itinerary.TransportGroup, error)
	InsertETASnapshot(ctx context.Context, snap itinerary.ETASnapshot) error
}

// SnapshotSink receives a copy of each persisted ETA snapshot, e.g. for
// publication on an event feed. May be nil.
type SnapshotSink interface {
	PublishSnapshot(snap itinerary.ETASnapshot) error
}

// Estimate is the result of one ETA computation.
type Estimate struct {
	DistanceKm float64
	Minutes    int
}

// Engine computes ETAs and lateness. The clock and timezone are injected
// so the lateness logic is deterministic under test.
type Engine struct {
	store   Store
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Collector
	sink    SnapshotSink
}

func NewEngine(store Store, now func() time.Time, loc *time.Location, mcol *metrics.Collector, sink SnapshotSink) *Engine {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, now: now, loc: loc, metrics: mcol, sink: sink}
}

// ComputeETA returns the distance and estimated travel time from a group's
// last known location to a task's coordinate. It returns nil when the
// group has never reported a location or the task has no coordinate:
// "cannot estimate" is not an error.
func (e *Engine) ComputeETA(ctx context.Context, group itinerary.TransportGroup, task itinerary.Task) (*Estimate, error) {
	last, ok, err := e.store.LastKnownLocation(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	if !ok || task.Coord == nil {
		return nil, nil
	}

	distanceKm := geo.Distance(last, *task.Coord)
	speed := transport.SpeedKmh(group.Mode)
	minutes := int(distanceKm / speed * 60)

	if e.metrics != nil {
		e.metrics.ETAComputations.Inc()
	}
	return &Estimate{DistanceKm: distanceKm, Minutes: minutes}, nil
}

// LatenessMinutes returns how many whole minutes past the task's scheduled
// start a group arriving in etaMinutes would be, or 0 when on time or
// early. When no date or start time can be resolved it returns 0: missing
// geodata degrades the feature rather than failing the request.
func (e *Engine) LatenessMinutes(ctx context.Context, task itinerary.Task, etaMinutes int) (int, error) {
	date := task.Date
	if date.IsZero() {
		day, ok, err := e.store.GetDay(ctx, task.DayID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		date = day.Date
	}

	scheduled, ok := e.scheduledStart(date, task.StartTime)
	if !ok {
		return 0, nil
	}

	arrival := e.now().In(e.loc).Add(time.Duration(etaMinutes) * time.Minute)
	if !arrival.After(scheduled) {
		return 0, nil
	}
	return int(arrival.Sub(scheduled).Seconds() / 60), nil
}

// scheduledStart composes a date and a wall-clock "HH:MM" start time in
// the engine's timezone. No timezone conversion happens: scheduled times
// and "now" are assumed to share a zone.
func (e *Engine) scheduledStart(date time.Time, startTime string) (time.Time, bool) {
	t, err := time.Parse("15:04", startTime)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, e.loc), true
}
