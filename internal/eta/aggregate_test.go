package eta

import (
	"context"
	"errors"
	"testing"
	"time"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
	"trip-coordinator/internal/transport"
)

// dayFixture wires a store with one day, one 14:00 task ~11.12 km east of
// the origin, and the given groups.
func dayFixture(groups []itinerary.TransportGroup, locations map[string]geo.Coordinate) *fakeStore {
	return &fakeStore{
		day:    itinerary.Day{ID: "d1", TripID: "t1", Date: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		hasDay: true,
		tasks: []itinerary.Task{
			{ID: "task1", TripID: "t1", DayID: "d1", Title: "Museum", StartTime: "14:00", Coord: coordPtr(0, 0.1)},
		},
		groups:    groups,
		locations: locations,
	}
}

func TestEvaluateDayUnknownDay(t *testing.T) {
	t.Parallel()
	store := &fakeStore{hasDay: false}
	engine := NewEngine(store, nil, time.UTC, nil, nil)

	_, err := engine.EvaluateDay(context.Background(), "t1", "missing")
	if !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("EvaluateDay error = %v, want ErrDayNotFound", err)
	}
}

func TestEvaluateDayPicksSmallestPositiveLateness(t *testing.T) {
	t.Parallel()
	// Two groups at the same spot; the car group arrives 13 minutes after
	// departure, the walk group after 133 minutes. At 13:55 the car group
	// is 8 minutes late and the walk group 128: the displayed value is the
	// optimistic 8, the worst case 128.
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
		{ID: "walk", TripID: "t1", DayID: "d1", Mode: transport.ModeWalk},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{
		"car":  {Lat: 0, Lng: 0},
		"walk": {Lat: 0, Lng: 0},
	})
	now := time.Date(2025, 6, 14, 13, 55, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if len(eval.Tasks) != 1 {
		t.Fatalf("evaluated %d tasks, want 1", len(eval.Tasks))
	}
	te := eval.Tasks[0]
	if !te.IsToday {
		t.Fatal("task not flagged as today")
	}
	if te.LateMinutes != 8 {
		t.Fatalf("LateMinutes = %d, want 8 (smallest positive)", te.LateMinutes)
	}
	if te.WorstLateMinutes != 128 {
		t.Fatalf("WorstLateMinutes = %d, want 128", te.WorstLateMinutes)
	}
}

func TestEvaluateDayOnTimeGroupDoesNotMaskLateGroup(t *testing.T) {
	t.Parallel()
	// Car group arrives on time (lateness 0), walk group is late. Zero is
	// not a positive value, so the positive set is {walk's lateness} and
	// the late group is what gets shown.
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
		{ID: "walk", TripID: "t1", DayID: "d1", Mode: transport.ModeWalk},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{
		"car":  {Lat: 0, Lng: 0},
		"walk": {Lat: 0, Lng: 0},
	})
	// 13:40: car ETA 13 min -> 13:53, on time. Walk ETA 133 min -> 15:53,
	// 113 minutes late.
	now := time.Date(2025, 6, 14, 13, 40, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if got := eval.Tasks[0].LateMinutes; got != 113 {
		t.Fatalf("LateMinutes = %d, want 113 (0 is excluded from the minimum)", got)
	}
}

func TestEvaluateDayAllGroupsOnTime(t *testing.T) {
	t.Parallel()
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{"car": {Lat: 0, Lng: 0}})
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if got := eval.Tasks[0].LateMinutes; got != 0 {
		t.Fatalf("LateMinutes = %d, want 0 when every group is on time", got)
	}
}

func TestEvaluateDayEmptyGroupSet(t *testing.T) {
	t.Parallel()
	// A reader between regroup's delete and insert steps sees zero groups;
	// that must yield zero lateness, not an error.
	store := dayFixture(nil, nil)
	now := time.Date(2025, 6, 14, 13, 58, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if got := eval.Tasks[0].LateMinutes; got != 0 {
		t.Fatalf("LateMinutes = %d, want 0 with no active groups", got)
	}
}

func TestEvaluateDaySkipsGroupsWithoutLocation(t *testing.T) {
	t.Parallel()
	groups := []itinerary.TransportGroup{
		{ID: "silent", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{})
	now := time.Date(2025, 6, 14, 13, 58, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if got := eval.Tasks[0].LateMinutes; got != 0 {
		t.Fatalf("LateMinutes = %d, want 0 when no group can be estimated", got)
	}
	if len(store.snaps) != 0 {
		t.Fatalf("recorded %d snapshots for unestimable groups, want 0", len(store.snaps))
	}
}

func TestEvaluateDayNotTodaySkipsLiveEvaluation(t *testing.T) {
	t.Parallel()
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{"car": {Lat: 0, Lng: 0}})
	// Day is 2025-06-14 but now is the day after.
	now := time.Date(2025, 6, 15, 13, 58, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	te := eval.Tasks[0]
	if te.IsToday {
		t.Fatal("task flagged as today for a past day")
	}
	if te.LateMinutes != 0 {
		t.Fatalf("LateMinutes = %d, want 0 for a non-today day", te.LateMinutes)
	}
	if len(store.snaps) != 0 {
		t.Fatalf("recorded %d snapshots for a non-today day, want 0", len(store.snaps))
	}
}

func TestEvaluateDayRecordsSnapshots(t *testing.T) {
	t.Parallel()
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{"car": {Lat: 0, Lng: 0}})
	now := time.Date(2025, 6, 14, 13, 55, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	if _, err := engine.EvaluateDay(context.Background(), "t1", "d1"); err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if len(store.snaps) != 1 {
		t.Fatalf("recorded %d snapshots, want 1", len(store.snaps))
	}
	snap := store.snaps[0]
	if snap.GroupID != "car" || snap.TaskID != "task1" {
		t.Fatalf("snapshot keys = (%s, %s)", snap.GroupID, snap.TaskID)
	}
	if snap.ETAMinutes != 13 {
		t.Fatalf("snapshot ETAMinutes = %d, want 13", snap.ETAMinutes)
	}
}

func TestEvaluateDayAbortsOnSnapshotFailure(t *testing.T) {
	t.Parallel()
	groups := []itinerary.TransportGroup{
		{ID: "car", TripID: "t1", DayID: "d1", Mode: transport.ModeCar},
	}
	store := dayFixture(groups, map[string]geo.Coordinate{"car": {Lat: 0, Lng: 0}})
	store.snapErr = errors.New("connection reset")
	now := time.Date(2025, 6, 14, 13, 55, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	if _, err := engine.EvaluateDay(context.Background(), "t1", "d1"); err == nil {
		t.Fatal("EvaluateDay succeeded despite snapshot write failure")
	}
}

func TestEvaluateDayFlagsPastTasks(t *testing.T) {
	t.Parallel()
	store := dayFixture(nil, nil)
	store.tasks = append(store.tasks, itinerary.Task{
		ID: "task2", TripID: "t1", DayID: "d1", Title: "Breakfast", StartTime: "08:00",
	})
	// 14:30: the 08:00 task is more than four hours past, the 14:00 is not.
	now := time.Date(2025, 6, 14, 14, 30, 0, 0, time.UTC)
	engine := NewEngine(store, clockAt(now), time.UTC, nil, nil)

	eval, err := engine.EvaluateDay(context.Background(), "t1", "d1")
	if err != nil {
		t.Fatalf("EvaluateDay: %v", err)
	}
	if eval.Tasks[0].IsPast {
		t.Fatal("14:00 task flagged past at 14:30")
	}
	if !eval.Tasks[1].IsPast {
		t.Fatal("08:00 task not flagged past at 14:30")
	}
}
