// Package itinerary holds the domain types shared by the storage,
// grouping and ETA layers.
package itinerary

import (
	"time"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/transport"
)

type Trip struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	OwnerID   string
	CreatedAt time.Time
}

// TripMember is a (user, role) pair for a trip. The member with role
// "owner" leads the default transport group.
type TripMember struct {
	UserID string
	Role   string
}

const RoleOwner = "owner"

type Day struct {
	ID     string
	TripID string
	Date   time.Time // calendar date, time-of-day components zero
}

// Task is a scheduled activity within a day. StartTime and EndTime are
// wall-clock "HH:MM" strings with no date or timezone attached.
type Task struct {
	ID          string
	TripID      string
	DayID       string
	Title       string
	Description string
	StartTime   string
	EndTime     string
	Coord       *geo.Coordinate // nil unless explicitly set
	OrderIndex  float64
	CreatedAt   time.Time
	Deleted     bool

	// Date is the owning day's date when the caller has already resolved
	// it; zero otherwise, in which case it is looked up from the day.
	Date time.Time
}

// TransportGroup is a set of trip members travelling together on one day
// under a single travel mode.
type TransportGroup struct {
	ID        string
	TripID    string
	DayID     string
	TaskID    string // optional association, empty when none
	Mode      transport.Mode
	Label     string
	LeaderID  string
	CreatedAt time.Time
}

// GroupWithMembers pairs a group with its member user ids.
type GroupWithMembers struct {
	Group     TransportGroup
	MemberIDs []string
}

// GroupSpec is one entry of a regroup request: the wire shape accepted
// from callers replacing a day's grouping wholesale.
type GroupSpec struct {
	Mode    string   `json:"mode"`
	Leader  string   `json:"leader"`
	Members []string `json:"members"`
}

// LocationUpdate is one append-only observation in the location ledger.
type LocationUpdate struct {
	ID         string
	UserID     string
	GroupID    string
	Coord      geo.Coordinate
	RecordedAt time.Time
}

// ETASnapshot is a durable record of one ETA computation. Snapshots are
// written for audit and analytics; the lateness path never reads them back.
type ETASnapshot struct {
	ID           string
	GroupID      string
	TaskID       string
	DistanceKm   float64
	ETAMinutes   int
	CalculatedAt time.Time
}
