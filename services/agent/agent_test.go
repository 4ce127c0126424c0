package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-process ConversationStore for tests.
type memoryStore struct {
	states map[string]*models.ConversationState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]*models.ConversationState)}
}

func (m *memoryStore) Get(_ context.Context, sessionID string) (*models.ConversationState, error) {
	if state, ok := m.states[sessionID]; ok {
		return state, nil
	}
	return &models.ConversationState{}, nil
}

func (m *memoryStore) Set(_ context.Context, sessionID string, state *models.ConversationState) error {
	m.states[sessionID] = state
	return nil
}

func (m *memoryStore) Clear(_ context.Context, sessionID string) error {
	delete(m.states, sessionID)
	return nil
}

type createCall struct {
	title, start, end, description string
}

// fakeGateway scripts the calendar collaborator.
type fakeGateway struct {
	available    bool
	checkErr     error
	slots        []string
	slotsErr     error
	confirmation string
	createErr    error

	checkCalls   int
	suggestCalls int
	created      []createCall
}

func (f *fakeGateway) CheckAvailability(_ context.Context, start, end string) (bool, error) {
	f.checkCalls++
	return f.available, f.checkErr
}

func (f *fakeGateway) SuggestSlots(_ context.Context, date string, durationMinutes int) ([]string, error) {
	f.suggestCalls++
	return f.slots, f.slotsErr
}

func (f *fakeGateway) CreateEvent(_ context.Context, title, start, end, description string) (string, error) {
	f.created = append(f.created, createCall{title, start, end, description})
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.confirmation, nil
}

type fakeResponder struct {
	reply string
	err   error
	calls int
}

func (f *fakeResponder) Generate(_ context.Context, systemContext, utterance string) (string, error) {
	f.calls++
	return f.reply, f.err
}

const testSession = "session-1"

func newTestAgent(gw *fakeGateway, responder *fakeResponder) (*DefaultAgentService, *memoryStore) {
	store := newMemoryStore()
	svc := &DefaultAgentService{
		Store:    store,
		Calendar: gw,
		Clock:    func() time.Time { return testNow },
	}
	if responder != nil {
		svc.Responder = responder
	}
	return svc, store
}

// respond runs one turn and asserts the flag-pair invariant afterwards.
func respond(t *testing.T, svc *DefaultAgentService, store *memoryStore, message string) string {
	t.Helper()
	reply := svc.Respond(context.Background(), testSession, message, nil)
	state, err := store.Get(context.Background(), testSession)
	require.NoError(t, err)
	assert.False(t, state.WaitingForConfirmation && state.WaitingForTitle,
		"confirmation and title flags must never both be set")
	if state.WaitingForConfirmation || state.WaitingForTitle {
		assert.NotNil(t, state.PendingBooking, "a set flag requires a pending booking")
	}
	return reply
}

func TestBookingNegotiationHappyPath(t *testing.T) {
	gw := &fakeGateway{
		available:    true,
		confirmation: "Event created successfully! View it here: https://cal.example/evt/42",
	}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "Book an appointment on July 8th at 5:00 PM for 1 hour")
	assert.Contains(t, reply, "What would you like to call this appointment?")

	state, _ := store.Get(context.Background(), testSession)
	require.NotNil(t, state.PendingBooking)
	assert.True(t, state.WaitingForTitle)
	assert.Equal(t, "2025-07-08T17:00:00", state.PendingBooking.StartTime)
	assert.Equal(t, "2025-07-08T18:00:00", state.PendingBooking.EndTime)
	assert.Equal(t, 60, state.PendingBooking.DurationMinutes)

	reply = respond(t, svc, store, "Dentist")
	assert.Contains(t, reply, "Dentist")
	assert.Contains(t, reply, "Tuesday, July 08, 2025")
	assert.Contains(t, reply, "05:00 PM - 06:00 PM")
	assert.Contains(t, reply, "Duration: 60 minutes")

	reply = respond(t, svc, store, "yes")
	assert.Contains(t, reply, "booked successfully")
	assert.Contains(t, reply, "Event created successfully!")

	require.Len(t, gw.created, 1)
	assert.Equal(t, "Dentist", gw.created[0].title)
	assert.Equal(t, "2025-07-08T17:00:00+05:30", gw.created[0].start)
	assert.Equal(t, "2025-07-08T18:00:00+05:30", gw.created[0].end)
	assert.Equal(t, "Appointment booked for 60 minutes", gw.created[0].description)

	state, _ = store.Get(context.Background(), testSession)
	assert.Nil(t, state.PendingBooking)
	assert.True(t, state.Idle())
}

func TestBookingCancelled(t *testing.T) {
	gw := &fakeGateway{available: true}
	svc, store := newTestAgent(gw, nil)

	respond(t, svc, store, "Schedule a meeting tomorrow at 10 am")
	respond(t, svc, store, "Standup")
	reply := respond(t, svc, store, "no, cancel that")

	assert.Contains(t, reply, "Booking cancelled")
	assert.Empty(t, gw.created)

	state, _ := store.Get(context.Background(), testSession)
	assert.Nil(t, state.PendingBooking)
	assert.True(t, state.Idle())
}

func TestConfirmationRepromptOnUnclassifiedReply(t *testing.T) {
	gw := &fakeGateway{available: true}
	svc, store := newTestAgent(gw, nil)

	respond(t, svc, store, "Book an appointment on July 8th at 5 PM")
	respond(t, svc, store, "Dentist")
	reply := respond(t, svc, store, "perhaps")

	assert.Contains(t, reply, "yes to confirm")
	state, _ := store.Get(context.Background(), testSession)
	assert.True(t, state.WaitingForConfirmation)
	require.NotNil(t, state.PendingBooking)
	assert.Equal(t, "Dentist", state.PendingBooking.Title)
}

func TestBookingMissingDateTime(t *testing.T) {
	gw := &fakeGateway{}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "book an appointment please")
	assert.Contains(t, reply, "I need the date and time")
	assert.Zero(t, gw.checkCalls)

	state, _ := store.Get(context.Background(), testSession)
	assert.True(t, state.Idle())
}

func TestBookingConflictSuggestsAlternatives(t *testing.T) {
	gw := &fakeGateway{
		available: false,
		slots: []string{
			"2025-07-08T03:30:00Z",
			"2025-07-08T05:30:00Z",
		},
	}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "Book an appointment on July 8th at 5:00 PM")
	assert.Contains(t, reply, "Sorry, that time slot is not available.")
	assert.Contains(t, reply, "Available slots on 2025-07-08")
	// 03:30 UTC renders as 09:00 at the fixed +05:30 offset.
	assert.Contains(t, reply, "09:00 AM")
	assert.Contains(t, reply, "11:00 AM")
	assert.Equal(t, 1, gw.suggestCalls)

	state, _ := store.Get(context.Background(), testSession)
	assert.True(t, state.Idle())
}

func TestBookingConflictNoAlternatives(t *testing.T) {
	gw := &fakeGateway{available: false}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "Book a 30 minute appointment on July 8th at 5 PM")
	assert.Contains(t, reply, "Sorry, no available 30-minute slots on 2025-07-08.")
}

func TestAvailabilityCheck(t *testing.T) {
	gw := &fakeGateway{available: false}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "Check if July 8th at 5 PM is available")
	assert.Contains(t, reply, "already booked")
	assert.Zero(t, gw.suggestCalls)

	state, _ := store.Get(context.Background(), testSession)
	assert.True(t, state.Idle())
	assert.Nil(t, state.PendingBooking)

	gw.available = true
	reply = respond(t, svc, store, "Check if July 8th at 5 PM is available")
	assert.Contains(t, reply, "is available")
}

func TestAvailabilityCheckMissingDateTime(t *testing.T) {
	gw := &fakeGateway{}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "is it free?")
	assert.Contains(t, reply, "Please specify date and time")
	assert.Zero(t, gw.checkCalls)
}

func TestGatewayErrorLeavesStateConsistent(t *testing.T) {
	gw := &fakeGateway{checkErr: errors.New("calendar unreachable")}
	svc, store := newTestAgent(gw, nil)

	reply := respond(t, svc, store, "Book an appointment on July 8th at 5 PM")
	assert.Contains(t, reply, "trouble checking the calendar")

	state, _ := store.Get(context.Background(), testSession)
	assert.True(t, state.Idle())
	assert.Nil(t, state.PendingBooking)
}

func TestCreateEventFailureClearsState(t *testing.T) {
	gw := &fakeGateway{available: true, createErr: errors.New("quota exceeded")}
	svc, store := newTestAgent(gw, nil)

	respond(t, svc, store, "Book an appointment on July 8th at 5 PM")
	respond(t, svc, store, "Dentist")
	reply := respond(t, svc, store, "yes")

	assert.Contains(t, reply, "error booking your appointment")
	state, _ := store.Get(context.Background(), testSession)
	assert.Nil(t, state.PendingBooking)
	assert.True(t, state.Idle())
}

func TestGeneralQueryGoesToFallback(t *testing.T) {
	gw := &fakeGateway{}
	responder := &fakeResponder{reply: "Hello! I can help you book appointments."}
	svc, store := newTestAgent(gw, responder)

	reply := respond(t, svc, store, "hello, how are you")
	assert.Equal(t, "Hello! I can help you book appointments.", reply)
	assert.Equal(t, 1, responder.calls)
	assert.Zero(t, gw.checkCalls)
	assert.Zero(t, gw.suggestCalls)
	assert.Empty(t, gw.created)
}

func TestFallbackErrorCollapsesToRedirect(t *testing.T) {
	responder := &fakeResponder{err: errors.New("model overloaded")}
	svc, store := newTestAgent(&fakeGateway{}, responder)

	reply := respond(t, svc, store, "hello, how are you")
	assert.Equal(t, msgGenericRedirect, reply)
}

func TestFallbackDisabledWithoutResponder(t *testing.T) {
	svc, store := newTestAgent(&fakeGateway{}, nil)

	reply := respond(t, svc, store, "hello, how are you")
	assert.Equal(t, msgGenericRedirect, reply)
}

func TestSessionsAreIsolated(t *testing.T) {
	gw := &fakeGateway{available: true}
	store := newMemoryStore()
	svc := &DefaultAgentService{
		Store:    store,
		Calendar: gw,
		Clock:    func() time.Time { return testNow },
	}

	svc.Respond(context.Background(), "session-a", "Book an appointment on July 8th at 5 PM", nil)

	stateA, _ := store.Get(context.Background(), "session-a")
	stateB, _ := store.Get(context.Background(), "session-b")
	assert.True(t, stateA.WaitingForTitle)
	assert.True(t, stateB.Idle())
	assert.Nil(t, stateB.PendingBooking)
}

func TestStatusAndReset(t *testing.T) {
	gw := &fakeGateway{available: true}
	svc, store := newTestAgent(gw, nil)

	respond(t, svc, store, "Book an appointment on July 8th at 5 PM")

	status := svc.Status(context.Background(), testSession)
	assert.True(t, status.HasPendingBooking)
	assert.True(t, status.WaitingForTitle)
	assert.False(t, status.WaitingForConfirmation)

	require.NoError(t, svc.Reset(context.Background(), testSession))
	status = svc.Status(context.Background(), testSession)
	assert.False(t, status.HasPendingBooking)
	assert.False(t, status.WaitingForTitle)
}
