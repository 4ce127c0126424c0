package calendar

import "context"

// Gateway is the calendar service boundary the agent negotiates against:
// availability, free-slot enumeration and event creation. Start/end arguments
// are ISO 8601 datetime strings with an explicit offset.
type Gateway interface {
	// CheckAvailability is true iff no events overlap the half-open interval.
	CheckAvailability(ctx context.Context, start, end string) (bool, error)
	// SuggestSlots returns up to five free start instants within working hours
	// on the given YYYY-MM-DD date.
	SuggestSlots(ctx context.Context, date string, durationMinutes int) ([]string, error)
	// CreateEvent inserts an event and returns a human-readable confirmation.
	CreateEvent(ctx context.Context, title, start, end, description string) (string, error)
}
