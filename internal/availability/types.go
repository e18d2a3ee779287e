// Package availability computes the occupancy of a day's reservation grid
// from snapshots of reservations and blackout rules. It owns no state and
// performs no I/O; callers re-invoke it whenever their snapshots change.
package availability

import (
	"time"

	"github.com/example/clubroom-reservation/internal/recurrence"
)

// ReservationStatus is the lifecycle state of a reservation as seen by the
// resolution engine.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusRejected  ReservationStatus = "rejected"
	StatusCancelled ReservationStatus = "cancelled"
)

// Occupies reports whether a reservation in this status counts toward
// availability and conflict checks. Rejected and cancelled reservations are
// kept for history but never block a slot.
func (s ReservationStatus) Occupies() bool {
	return s == StatusPending || s == StatusApproved
}

// Reservation is the engine's read-only view of a booking. Times are wall
// clock "HH:MM" strings as stored; Date identifies the KST calendar day.
type Reservation struct {
	ID            string
	ResourceGroup string
	Date          time.Time
	StartTime     string
	EndTime       string
	Status        ReservationStatus
}

// BlackoutRule is the engine's read-only view of an administrator-defined
// blocked window. StartDate and EndDate bound the rule inclusively.
type BlackoutRule struct {
	ID            string
	ResourceGroup string
	StartDate     time.Time
	EndDate       time.Time
	Pattern       recurrence.Pattern
	StartTime     string
	EndTime       string
}

// SlotStatus is the resolved occupancy of one half-hour slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotPending   SlotStatus = "pending"
	SlotOccupied  SlotStatus = "occupied"
	SlotBlocked   SlotStatus = "blocked"
)
