package lifecycle

import (
	"time"

	"stayledger-backend/internal/models"
)

// Action is the outcome of assigning a leave date.
type Action int

const (
	// ArchiveNow: the leave date is today or in the past; the record moves to
	// Archived on the same request.
	ArchiveNow Action = iota
	// ScheduleForLater: the leave date is in the future; store it and let the
	// sweeper pick the record up when it comes due.
	ScheduleForLater
)

// DateOnly truncates t to its calendar day. Leave dates are compared at date
// granularity; time-of-day never participates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDue reports whether the record's leave date is set and due-or-overdue
// relative to ref. Records without a leave date are currently residing.
func IsDue(rec models.TenancyRecord, ref time.Time) bool {
	if rec.LeaveDate == nil {
		return false
	}
	return !DateOnly(*rec.LeaveDate).After(DateOnly(ref))
}

// Decide picks the path for a newly assigned leave date.
func Decide(leaveDate, ref time.Time) Action {
	if DateOnly(leaveDate).After(DateOnly(ref)) {
		return ScheduleForLater
	}
	return ArchiveNow
}

// MonthKey renders the Mon-YY rent key used by the Express frontend
// (e.g. "Mar-25"). Rents are unique per key.
func MonthKey(t time.Time) string {
	return t.Format("Jan-06")
}
