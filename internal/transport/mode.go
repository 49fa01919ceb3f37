// Package transport defines the travel mode enumeration and the average
// speed model used to convert distances into travel times.
package transport

// Mode identifies how a transport group travels.
type Mode string

const (
	ModeWalk   Mode = "walk"
	ModeBike   Mode = "bike"
	ModeCar    Mode = "car"
	ModeBus    Mode = "bus"
	ModeTrain  Mode = "train"
	ModeFlight Mode = "flight"
)

// DefaultSpeedKmh is used when a mode is not in the speed table.
const DefaultSpeedKmh = 30.0

// modeSpeedKmh maps each mode to an average speed in km/h. Deliberately
// simple: no traffic, terrain or time-of-day modelling.
var modeSpeedKmh = map[Mode]float64{
	ModeWalk:   5,
	ModeBike:   35,
	ModeCar:    50,
	ModeBus:    40,
	ModeTrain:  80,
	ModeFlight: 600,
}

// SpeedKmh returns the average speed for a mode, falling back to
// DefaultSpeedKmh for unrecognized modes. It never fails.
func SpeedKmh(m Mode) float64 {
	if speed, ok := modeSpeedKmh[m]; ok {
		return speed
	}
	return DefaultSpeedKmh
}

// ParseMode reports whether s names a known travel mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	_, ok := modeSpeedKmh[m]
	return m, ok
}

// Modes returns the fixed set of known travel modes.
func Modes() []Mode {
	return []Mode{ModeWalk, ModeBike, ModeCar, ModeBus, ModeTrain, ModeFlight}
}
