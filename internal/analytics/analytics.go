// Package analytics derives delay statistics from persisted ETA snapshots.
package analytics

import (
	"context"
	"strconv"
	"strings"
)

// Store is the snapshot read surface. An empty dataset is an empty slice,
// not an error; errors mean the storage layer failed.
type Store interface {
	SnapshotMinutes(ctx context.Context, tripID string) ([]int, error)
	SnapshotTaskStartTimes(ctx context.Context, tripID string) ([]string, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AverageDelayMinutes returns the integer mean of all ETA minutes recorded
// for the trip's non-deleted tasks, or 0 for an empty dataset. Storage
// failures are returned as errors rather than silently reported as zero.
func (s *Service) AverageDelayMinutes(ctx context.Context, tripID string) (int, error) {
	minutes, err := s.store.SnapshotMinutes(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if len(minutes) == 0 {
		return 0, nil
	}
	total := 0
	for _, m := range minutes {
		total += m
	}
	return total / len(minutes), nil
}

// TimeBuckets counts delay observations by the time of day of the task
// they were recorded for.
type TimeBuckets struct {
	Morning   int `json:"morning"`   // [06:00, 12:00)
	Afternoon int `json:"afternoon"` // [12:00, 18:00)
	Evening   int `json:"evening"`   // everything else
}

// DelayTimeBuckets buckets the trip's snapshot observations by task start
// hour: morning, afternoon, evening.
func (s *Service) DelayTimeBuckets(ctx context.Context, tripID string) (TimeBuckets, error) {
	startTimes, err := s.store.SnapshotTaskStartTimes(ctx, tripID)
	if err != nil {
		return TimeBuckets{}, err
	}
	return bucketByHour(startTimes), nil
}

func bucketByHour(startTimes []string) TimeBuckets {
	var b TimeBuckets
	for _, st := range startTimes {
		hour, ok := startHour(st)
		if !ok {
			continue
		}
		switch {
		case hour >= 6 && hour < 12:
			b.Morning++
		case hour >= 12 && hour < 18:
			b.Afternoon++
		default:
			b.Evening++
		}
	}
	return b
}

func startHour(startTime string) (int, bool) {
	h, _, ok := strings.Cut(startTime, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}
