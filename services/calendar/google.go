// File: services/calendar/google.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookwise/config"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleGateway implements Gateway against the Google Calendar API v3 using a
// service-account credentials file.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
}

func NewGoogleGateway(ctx context.Context) (*GoogleGateway, error) {
	if config.AppConfig.GoogleCalendarID == "" {
		return nil, errors.New("GOOGLE_CALENDAR_ID is not configured")
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleGateway{svc: svc, calendarID: config.AppConfig.GoogleCalendarID}, nil
}

func (g *GoogleGateway) listEvents(ctx context.Context, timeMin, timeMax string) ([]*gcal.Event, error) {
	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

func (g *GoogleGateway) CheckAvailability(ctx context.Context, start, end string) (bool, error) {
	items, err := g.listEvents(ctx, start, end)
	if err != nil {
		return false, fmt.Errorf("list events: %w", err)
	}
	return len(items) == 0, nil
}

func (g *GoogleGateway) SuggestSlots(ctx context.Context, date string, durationMinutes int) ([]string, error) {
	// Working-hours window in the gateway's reference timezone.
	dayStart, err := time.Parse(time.RFC3339, date+"T"+workdayStart+"Z")
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayEnd, _ := time.Parse(time.RFC3339, date+"T"+workdayEnd+"Z")

	items, err := g.listEvents(ctx, dayStart.Format(time.RFC3339), dayEnd.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	intervals := make([]EventInterval, 0, len(items))
	for _, item := range items {
		// All-day events carry only a date, not a dateTime; skip them.
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		evStart, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
		evEnd, err2 := time.Parse(time.RFC3339, item.End.DateTime)
		if err1 != nil || err2 != nil {
			continue
		}
		intervals = append(intervals, EventInterval{Start: evStart, End: evEnd})
	}

	duration := time.Duration(durationMinutes) * time.Minute
	return scanFreeSlots(dayStart, dayEnd, intervals, duration), nil
}

func (g *GoogleGateway) CreateEvent(ctx context.Context, title, start, end, description string) (string, error) {
	event := &gcal.Event{
		Summary:     title,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start, TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: end, TimeZone: "UTC"},
	}
	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return fmt.Sprintf("Event created successfully! View it here: %s", created.HtmlLink), nil
}
