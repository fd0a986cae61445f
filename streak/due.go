package streak

import "time"

// DueToday reports whether the frequency expects activity on today's
// weekday. Daily habits are always due; weekly habits can be worked on any
// day of the week unless they are pinned to specific days; specific_days
// habits are due only on their configured weekdays. Archived habits are the
// caller's concern.
func DueToday(freq Frequency, today time.Time) bool {
	switch freq.Type {
	case Weekly, SpecificDays:
		if len(freq.SpecificDays) == 0 {
			// Mirrors the daily fallback in Compute.
			return true
		}
		wd := today.Weekday()
		for _, d := range freq.SpecificDays {
			if d == wd {
				return true
			}
		}
		return false
	default:
		return true
	}
}
