package calendar

import "time"

const (
	workdayStart   = "09:00:00"
	workdayEnd     = "17:00:00"
	maxSuggestions = 5
	scanStep       = 30 * time.Minute
)

// EventInterval is an occupied interval on the day being scanned.
type EventInterval struct {
	Start time.Time
	End   time.Time
}

// scanFreeSlots walks the working-hours window and reports free start instants:
// one per gap before an event that fits the duration, then 30-minute steps past
// the last event until the window closes. Events must be sorted by start time.
func scanFreeSlots(dayStart, dayEnd time.Time, events []EventInterval, duration time.Duration) []string {
	var free []string
	current := dayStart

	for _, ev := range events {
		if !current.Add(duration).After(ev.Start) {
			free = append(free, current.Format(time.RFC3339))
		}
		if ev.End.After(current) {
			current = ev.End
		}
	}

	for !current.Add(duration).After(dayEnd) {
		free = append(free, current.Format(time.RFC3339))
		current = current.Add(scanStep)
	}

	if len(free) > maxSuggestions {
		free = free[:maxSuggestions]
	}
	return free
}
