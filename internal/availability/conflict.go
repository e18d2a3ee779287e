package availability

import (
	"time"

	"github.com/example/clubroom-reservation/internal/timeslot"
)

// FindConflict scans the snapshot for the first pending or approved
// reservation overlapping the proposed minute window on the same day and
// resource group. It is a pure read: passing the check reserves nothing, and
// two concurrent submissions can both pass before either is persisted.
// Serializing that race belongs to the storage layer, not to this check.
func (r *Resolver) FindConflict(date time.Time, resourceGroup string, startMinute, endMinute int, reservations []Reservation) (Reservation, bool) {
	for _, res := range r.prepareReservations(date, resourceGroup, reservations) {
		if !res.source.Status.Occupies() {
			continue
		}
		if timeslot.Overlaps(startMinute, endMinute, res.start, res.end) {
			return res.source, true
		}
	}
	return Reservation{}, false
}

// HasConflict reports whether any occupying reservation overlaps the
// proposed window.
func (r *Resolver) HasConflict(date time.Time, resourceGroup string, startMinute, endMinute int, reservations []Reservation) bool {
	_, found := r.FindConflict(date, resourceGroup, startMinute, endMinute, reservations)
	return found
}
