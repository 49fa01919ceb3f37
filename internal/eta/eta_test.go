package eta

import (
	"context"
	"math"
	"testing"
	"time"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
	"trip-coordinator/internal/transport"
)

type fakeStore struct {
	day       itinerary.Day
	hasDay    bool
	tasks     []itinerary.Task
	groups    []itinerary.TransportGroup
	locations map[string]geo.Coordinate

	snaps   []itinerary.ETASnapshot
	snapErr error
}

func (f *fakeStore) LastKnownLocation(_ context.Context, groupID string) (geo.Coordinate, bool, error) {
	c, ok := f.locations[groupID]
	return c, ok, nil
}

func (f *fakeStore) GetDay(_ context.Context, dayID string) (itinerary.Day, bool, error) {
	return f.day, f.hasDay, nil
}

func (f *fakeStore) TasksForDay(_ context.Context, dayID string) ([]itinerary.Task, error) {
	return f.tasks, nil
}

func (f *fakeStore) GroupsForDay(_ context.Context, tripID, dayID string) ([]itinerary.TransportGroup, error) {
	return f.groups, nil
}

func (f *fakeStore) InsertETASnapshot(_ context.Context, snap itinerary.ETASnapshot) error {
	if f.snapErr != nil {
		return f.snapErr
	}
	f.snaps = append(f.snaps, snap)
	return nil
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func coordPtr(lat, lng float64) *geo.Coordinate {
	return &geo.Coordinate{Lat: lat, Lng: lng}
}

func TestComputeETAReturnsNilWithoutLocation(t *testing.T) {
	t.Parallel()
	store := &fakeStore{locations: map[string]geo.Coordinate{}}
	engine := NewEngine(store, nil, time.UTC, nil, nil)

	group := itinerary.TransportGroup{ID: "g1", Mode: transport.ModeCar}
	task := itinerary.Task{ID: "t1", Coord: coordPtr(0, 0.1)}
	est, err := engine.ComputeETA(context.Background(), group, task)
	if err != nil {
		t.Fatalf("ComputeETA: %v", err)
	}
	if est != nil {
		t.Fatalf("ComputeETA = %+v, want nil for group with no recorded location", est)
	}
}

func TestComputeETAReturnsNilWithoutTaskCoordinate(t *testing.T) {
	t.Parallel()
	store := &fakeStore{locations: map[string]geo.Coordinate{"g1": {Lat: 0, Lng: 0}}}
	engine := NewEngine(store, nil, time.UTC, nil, nil)

	group := itinerary.TransportGroup{ID: "g1", Mode: transport.ModeCar}
	est, err := engine.ComputeETA(context.Background(), group, itinerary.Task{ID: "t1"})
	if err != nil {
		t.Fatalf("ComputeETA: %v", err)
	}
	if est != nil {
		t.Fatalf("ComputeETA = %+v, want nil for task without coordinate", est)
	}
}

func TestComputeETACarTenthDegree(t *testing.T) {
	t.Parallel()
	store := &fakeStore{locations: map[string]geo.Coordinate{"g1": {Lat: 0, Lng: 0}}}
	engine := NewEngine(store, nil, time.UTC, nil, nil)

	// ~11.12 km east at 50 km/h: floor(11.12/50*60) = 13 minutes
	group := itinerary.TransportGroup{ID: "g1", Mode: transport.ModeCar}
	task := itinerary.Task{ID: "t1", Coord: coordPtr(0, 0.1)}
	est, err := engine.ComputeETA(context.Background(), group, task)
	if err != nil {
		t.Fatalf("ComputeETA: %v", err)
	}
	if est == nil {
		t.Fatal("ComputeETA returned nil")
	}
	if math.Abs(est.DistanceKm-11.12) > 0.01 {
		t.Fatalf("DistanceKm = %v, want ~11.12", est.DistanceKm)
	}
	if est.Minutes != 13 {
		t.Fatalf("Minutes = %d, want 13", est.Minutes)
	}
}

func TestComputeETAUnknownModeUsesDefaultSpeed(t *testing.T) {
	t.Parallel()
	store := &fakeStore{locations: map[string]geo.Coordinate{"g1": {Lat: 0, Lng: 0}}}
	engine := NewEngine(store, nil, time.UTC, nil, nil)

	// ~11.12 km at the 30 km/h fallback: floor(11.12/30*60) = 22 minutes
	group := itinerary.TransportGroup{ID: "g1", Mode: "hoverboard"}
	task := itinerary.Task{ID: "t1", Coord: coordPtr(0, 0.1)}
	est, err := engine.ComputeETA(context.Background(), group, task)
	if err != nil {
		t.Fatalf("ComputeETA: %v", err)
	}
	if est == nil || est.Minutes != 22 {
		t.Fatalf("est = %+v, want 22 minutes at fallback speed", est)
	}
}

func TestLatenessMinutes(t *testing.T) {
	t.Parallel()
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		now        time.Time
		etaMinutes int
		want       int
	}{
		{"early arrival", time.Date(2025, 6, 14, 13, 50, 0, 0, time.UTC), 5, 0},
		{"exactly on time", time.Date(2025, 6, 14, 13, 50, 0, 0, time.UTC), 10, 0},
		{"eight minutes late", time.Date(2025, 6, 14, 13, 58, 0, 0, time.UTC), 10, 8},
		{"59 seconds over rounds down", time.Date(2025, 6, 14, 13, 59, 59, 0, time.UTC), 1, 0},
		{"61 seconds over is one minute", time.Date(2025, 6, 14, 14, 0, 1, 0, time.UTC), 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			engine := NewEngine(store, clockAt(tt.now), time.UTC, nil, nil)
			task := itinerary.Task{ID: "t1", StartTime: "14:00", Date: date}
			got, err := engine.LatenessMinutes(context.Background(), task, tt.etaMinutes)
			if err != nil {
				t.Fatalf("LatenessMinutes: %v", err)
			}
			if got != tt.want {
				t.Fatalf("LatenessMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLatenessMinutesResolvesDateFromDay(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 14, 13, 58, 0, 0, time.UTC)
	store := &fakeStore{
		day:    itinerary.Day{ID: "d1", Date: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		hasDay: true,
	}
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	task := itinerary.Task{ID: "t1", DayID: "d1", StartTime: "14:00"}
	got, err := engine.LatenessMinutes(context.Background(), task, 10)
	if err != nil {
		t.Fatalf("LatenessMinutes: %v", err)
	}
	if got != 8 {
		t.Fatalf("LatenessMinutes = %d, want 8", got)
	}
}

func TestLatenessMinutesZeroWhenDateUnresolvable(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 14, 13, 58, 0, 0, time.UTC)
	store := &fakeStore{hasDay: false}
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	task := itinerary.Task{ID: "t1", DayID: "missing", StartTime: "14:00"}
	got, err := engine.LatenessMinutes(context.Background(), task, 120)
	if err != nil {
		t.Fatalf("LatenessMinutes: %v", err)
	}
	if got != 0 {
		t.Fatalf("LatenessMinutes = %d, want 0 when no date can be resolved", got)
	}
}
