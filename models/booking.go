package models

import "time"

// PendingBooking is the single negotiation-in-progress record held for a session.
// Created when an available slot is found, given a title while the agent waits for
// one, and consumed on confirm or cancel.
type PendingBooking struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description"`
}

// ConversationState holds the booking negotiation for one chat session.
// WaitingForConfirmation and WaitingForTitle are never both true; whenever either
// is true, PendingBooking is non-nil.
type ConversationState struct {
	PendingBooking         *PendingBooking `json:"pendingBooking,omitempty"`
	WaitingForConfirmation bool            `json:"waitingForConfirmation"`
	WaitingForTitle        bool            `json:"waitingForTitle"`
}

// Idle reports whether no negotiation is in flight.
func (s *ConversationState) Idle() bool {
	return !s.WaitingForConfirmation && !s.WaitingForTitle
}

// BookingRecord is the audit record persisted once a booking has been committed
// to the calendar.
type BookingRecord struct {
	ID              string    `bson:"id" json:"id"`
	SessionID       string    `bson:"sessionId" json:"sessionId"`
	Title           string    `bson:"title" json:"title"`
	StartTime       string    `bson:"startTime" json:"startTime"`
	EndTime         string    `bson:"endTime" json:"endTime"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	Description     string    `bson:"description" json:"description"`
	EventLink       string    `bson:"eventLink,omitempty" json:"eventLink,omitempty"`
	Reminded        bool      `bson:"reminded" json:"reminded"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the asynq task payload for an appointment reminder.
type ReminderPayload struct {
	RecordID  string `json:"recordId"`
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
}
