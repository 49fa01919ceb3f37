package analytics

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	minutes    []int
	startTimes []string
	err        error
}

func (f *fakeStore) SnapshotMinutes(_ context.Context, tripID string) ([]int, error) {
	return f.minutes, f.err
}

func (f *fakeStore) SnapshotTaskStartTimes(_ context.Context, tripID string) ([]string, error) {
	return f.startTimes, f.err
}

func TestAverageDelayMinutes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		minutes []int
		want    int
	}{
		{"empty dataset is zero", nil, 0},
		{"single value", []int{7}, 7},
		{"integer mean truncates", []int{10, 15}, 12},
		{"zeros count", []int{0, 0, 9}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeStore{minutes: tt.minutes})
			got, err := svc.AverageDelayMinutes(context.Background(), "t1")
			if err != nil {
				t.Fatalf("AverageDelayMinutes: %v", err)
			}
			if got != tt.want {
				t.Fatalf("AverageDelayMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAverageDelayMinutesPropagatesStorageFailure(t *testing.T) {
	t.Parallel()
	svc := NewService(&fakeStore{err: errors.New("connection refused")})
	if _, err := svc.AverageDelayMinutes(context.Background(), "t1"); err == nil {
		t.Fatal("storage failure was swallowed")
	}
}

func TestDelayTimeBuckets(t *testing.T) {
	t.Parallel()
	svc := NewService(&fakeStore{startTimes: []string{
		"06:00", "11:59", // morning
		"12:00", "17:45", // afternoon
		"18:00", "23:30", "05:59", // evening
		"garbage", "", // ignored
	}})
	got, err := svc.DelayTimeBuckets(context.Background(), "t1")
	if err != nil {
		t.Fatalf("DelayTimeBuckets: %v", err)
	}
	want := TimeBuckets{Morning: 2, Afternoon: 2, Evening: 3}
	if got != want {
		t.Fatalf("DelayTimeBuckets = %+v, want %+v", got, want)
	}
}
