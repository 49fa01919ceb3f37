package transport

import "testing"

func TestSpeedKmhKnownModes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mode Mode
		want float64
	}{
		{ModeWalk, 5},
		{ModeBike, 35},
		{ModeCar, 50},
		{ModeBus, 40},
		{ModeTrain, 80},
		{ModeFlight, 600},
	}
	for _, tt := range tests {
		if got := SpeedKmh(tt.mode); got != tt.want {
			t.Fatalf("SpeedKmh(%s) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSpeedKmhUnknownModeFallsBack(t *testing.T) {
	t.Parallel()
	for _, unknown := range []Mode{"", "teleport", "WALK", "scooter"} {
		if got := SpeedKmh(unknown); got != DefaultSpeedKmh {
			t.Fatalf("SpeedKmh(%q) = %v, want default %v", unknown, got, DefaultSpeedKmh)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	for _, m := range Modes() {
		parsed, ok := ParseMode(string(m))
		if !ok || parsed != m {
			t.Fatalf("ParseMode(%q) = %q, %v", m, parsed, ok)
		}
	}
	if _, ok := ParseMode("hovercraft"); ok {
		t.Fatal("ParseMode accepted an unknown mode")
	}
}
