package trade

import "time"

// MergeDateWithClock combines the calendar date of picked with the
// time-of-day of now and returns the resulting UTC instant. Date pickers
// submit midnight instants; documents saved that day should still order by
// the moment they were registered.
func MergeDateWithClock(picked, now time.Time) time.Time {
	merged := time.Date(
		picked.Year(), picked.Month(), picked.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(),
		now.Location(),
	)
	return merged.UTC()
}
