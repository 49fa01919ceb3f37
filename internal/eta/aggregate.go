package eta

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"trip-coordinator/internal/itinerary"
)

// ErrDayNotFound is returned when evaluation is requested for an unknown day.
var ErrDayNotFound = errors.New("day not found")

// pastWindow is how long after its scheduled start a task is still shown
// as current rather than past.
const pastWindow = 4 * time.Hour

// TaskEvaluation annotates one task with its lateness signal.
type TaskEvaluation struct {
	Task itinerary.Task

	// LateMinutes is the smallest strictly-positive lateness across the
	// day's active groups, or 0 when no group is late. The most optimistic
	// late-arrival estimate is surfaced; callers wanting the conservative
	// signal should read WorstLateMinutes.
	LateMinutes int

	// WorstLateMinutes is the largest lateness across groups, 0 when none
	// are late.
	WorstLateMinutes int

	IsToday bool
	IsPast  bool
}

// DayEvaluation is the aggregate lateness view for one day.
type DayEvaluation struct {
	Day    itinerary.Day
	Groups []itinerary.TransportGroup
	Tasks  []TaskEvaluation
}

// EvaluateDay computes the lateness signal for every non-deleted task of
// the day. Only today's tasks are live-evaluated; past and future days get
// zero lateness. A day with no active groups (e.g. observed mid-regroup)
// yields zero lateness for every task rather than an error. Each successful
// ETA computation is persisted as a snapshot; a storage failure aborts the
// evaluation without recording further snapshots.
func (e *Engine) EvaluateDay(ctx context.Context, tripID, dayID string) (*DayEvaluation, error) {
	day, ok, err := e.store.GetDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDayNotFound
	}

	tasks, err := e.store.TasksForDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	groups, err := e.store.GroupsForDay(ctx, tripID, dayID)
	if err != nil {
		return nil, err
	}

	now := e.now().In(e.loc)
	today := sameDate(now, day.Date)

	start := time.Now()
	eval := &DayEvaluation{Day: day, Groups: groups}
	for _, task := range tasks {
		task.Date = day.Date

		te := TaskEvaluation{Task: task, IsToday: today}
		if scheduled, ok := e.scheduledStart(day.Date, task.StartTime); ok {
			te.IsPast = now.After(scheduled.Add(pastWindow))
		}

		if today {
			late, worst, err := e.taskLateness(ctx, task, groups)
			if err != nil {
				return nil, err
			}
			te.LateMinutes = late
			te.WorstLateMinutes = worst
		}
		eval.Tasks = append(eval.Tasks, te)
	}
	if e.metrics != nil {
		e.metrics.EvalDuration.Observe(time.Since(start).Seconds())
	}
	return eval, nil
}

// taskLateness evaluates one task across all active groups and reduces the
// per-group lateness values: minimum of the strictly-positive values for
// the displayed signal, maximum for the worst case.
func (e *Engine) taskLateness(ctx context.Context, task itinerary.Task, groups []itinerary.TransportGroup) (late, worst int, err error) {
	var values []int
	for _, group := range groups {
		est, err := e.ComputeETA(ctx, group, task)
		if err != nil {
			return 0, 0, err
		}
		if est == nil {
			continue
		}

		snap := itinerary.ETASnapshot{
			GroupID:      group.ID,
			TaskID:       task.ID,
			DistanceKm:   est.DistanceKm,
			ETAMinutes:   est.Minutes,
			CalculatedAt: e.now(),
		}
		if err := e.store.InsertETASnapshot(ctx, snap); err != nil {
			return 0, 0, err
		}
		if e.metrics != nil {
			e.metrics.SnapshotWrites.Inc()
		}
		if e.sink != nil {
			if err := e.sink.PublishSnapshot(snap); err != nil {
				log.Warn().Err(err).Str("task", task.ID).Str("group", group.ID).
					Msg("publish eta snapshot")
			}
		}

		lm, err := e.LatenessMinutes(ctx, task, est.Minutes)
		if err != nil {
			return 0, 0, err
		}
		values = append(values, lm)
	}

	for _, v := range values {
		if v <= 0 {
			continue
		}
		if late == 0 || v < late {
			late = v
		}
		if v > worst {
			worst = v
		}
	}
	return late, worst, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
