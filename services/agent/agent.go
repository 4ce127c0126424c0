// File: services/agent/agent.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	recordsRepo "bookwise/database/repository/records"
	"bookwise/models"
	"bookwise/services/calendar"
	ai "bookwise/services/intelligence"
	"bookwise/services/tasks"
	"bookwise/utils"

	"go.uber.org/zap"
)

const (
	intentBook         = "book"
	intentAvailability = "availability"
)

// intentRule maps a keyword set to a handler intent. Rules are evaluated in
// order; the first rule with any keyword present in the message wins.
type intentRule struct {
	intent   string
	keywords []string
}

var idleRules = []intentRule{
	{intentBook, []string{"book", "schedule", "appointment", "meeting"}},
	{intentAvailability, []string{"available", "free", "check"}},
}

var (
	confirmWords = []string{"yes", "confirm", "book"}
	cancelWords  = []string{"no", "cancel"}
)

const (
	msgNeedDateTime      = "I need the date and time. Example: 'Book an appointment on July 8th at 5:00 PM for 1 hour'"
	msgUnparsedDateTime  = "Couldn't parse the date and time. Please try: 'July 8th at 5:00 PM'"
	msgSpecifyDateTime   = "Please specify date and time. Example: 'Check if July 8th at 5:00 PM is available'"
	msgCalendarTrouble   = "I'm having trouble checking the calendar. Please try again."
	msgAskTitle          = "Great! The time slot is available. What would you like to call this appointment?"
	msgCancelled         = "Booking cancelled. How else can I help you?"
	msgConfirmOrCancel   = "Please reply yes to confirm the appointment or no to cancel it."
	msgGenericRedirect   = "I'm here to help you with calendar appointments. How can I assist you today?"
	reminderLeadDuration = 30 * time.Minute
)

const fallbackSystemPrompt = `You are a helpful AI assistant for booking appointments in a calendar.
Current date: %s

You can help with:
- Booking appointments
- Checking availability
- Suggesting alternative time slots

Be friendly and conversational. If users ask unrelated questions, politely redirect to calendar tasks.`

// DefaultAgentService is the conversation state machine. Records and Reminders
// are optional collaborators; a nil value disables the corresponding side effect.
type DefaultAgentService struct {
	Store     ConversationStore
	Calendar  calendar.Gateway
	Responder ai.Responder
	Records   recordsRepo.BookingRecordRepository
	Reminders tasks.Scheduler

	// Clock overrides time.Now in tests.
	Clock func() time.Time

	sessionLocks sync.Map // sessionID -> *sync.Mutex
}

func (s *DefaultAgentService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// lockSession serializes turns per session; concurrent turns on the same
// session would race on the negotiation state.
func (s *DefaultAgentService) lockSession(sessionID string) func() {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Respond processes one conversational turn and always returns a displayable
// reply. The session state is loaded before routing and persisted after, so the
// whole turn is atomic from the caller's perspective.
func (s *DefaultAgentService) Respond(ctx context.Context, sessionID, message string, history []models.ChatMessage) string {
	defer s.lockSession(sessionID)()
	logger := utils.GetLogger()

	state, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		logger.Warn("agent: failed to load session state, starting fresh",
			zap.String("sessionID", sessionID), zap.Error(err))
		state = &models.ConversationState{}
	}

	reply := s.route(ctx, sessionID, state, message, history)

	if err := s.Store.Set(ctx, sessionID, state); err != nil {
		logger.Error("agent: failed to persist session state",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
	return reply
}

func (s *DefaultAgentService) route(ctx context.Context, sessionID string, state *models.ConversationState, message string, history []models.ChatMessage) string {
	lower := strings.ToLower(message)

	// A set flag without a pending booking means the stored state is corrupt;
	// drop the session back to idle rather than panic mid-turn.
	if (state.WaitingForConfirmation || state.WaitingForTitle) && state.PendingBooking == nil {
		state.WaitingForConfirmation = false
		state.WaitingForTitle = false
	}

	if state.WaitingForConfirmation {
		if containsAny(lower, confirmWords) {
			return s.executeBooking(ctx, sessionID, state)
		}
		if containsAny(lower, cancelWords) {
			state.PendingBooking = nil
			state.WaitingForConfirmation = false
			return msgCancelled
		}
		// Neither accept nor reject: re-prompt and keep waiting.
		return msgConfirmOrCancel
	}

	if state.WaitingForTitle {
		state.PendingBooking.Title = message
		state.WaitingForTitle = false
		return s.confirmBooking(state)
	}

	for _, rule := range idleRules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		switch rule.intent {
		case intentBook:
			return s.handleBooking(ctx, state, message)
		case intentAvailability:
			return s.handleAvailability(ctx, message)
		}
	}
	return s.handleGeneral(ctx, message, history)
}

// handleBooking runs extraction, checks the calendar and either opens a pending
// booking or suggests alternatives. The session stays idle unless a slot is free.
func (s *DefaultAgentService) handleBooking(ctx context.Context, state *models.ConversationState, message string) string {
	intent := Extract(message, s.now())
	if intent.Date == "" || intent.Time == "" {
		return msgNeedDateTime
	}

	start, end := BuildInterval(intent.Date, intent.Time, intent.DurationMinutes)
	if start == "" || end == "" {
		return msgUnparsedDateTime
	}

	available, err := s.Calendar.CheckAvailability(ctx, WithOffset(start), WithOffset(end))
	if err != nil {
		utils.GetLogger().Warn("agent: availability check failed", zap.Error(err))
		return msgCalendarTrouble
	}

	if available {
		state.PendingBooking = &models.PendingBooking{
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: intent.DurationMinutes,
			Description:     fmt.Sprintf("Appointment booked for %d minutes", intent.DurationMinutes),
		}
		state.WaitingForTitle = true
		return msgAskTitle
	}

	return "Sorry, that time slot is not available. " + s.suggestAlternatives(ctx, intent.Date, intent.DurationMinutes)
}

func (s *DefaultAgentService) suggestAlternatives(ctx context.Context, date string, durationMinutes int) string {
	slots, err := s.Calendar.SuggestSlots(ctx, date, durationMinutes)
	if err != nil {
		utils.GetLogger().Warn("agent: slot suggestion failed", zap.Error(err))
		return msgCalendarTrouble
	}
	if len(slots) == 0 {
		return fmt.Sprintf("Sorry, no available %d-minute slots on %s.", durationMinutes, date)
	}

	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		if t, err := parseSlot(slot); err == nil {
			labels = append(labels, t.Format("03:04 PM"))
		} else {
			labels = append(labels, slot)
		}
	}
	return fmt.Sprintf("Available slots on %s: %s IST. Any of these work?", date, strings.Join(labels, ", "))
}

// handleAvailability answers a pure availability question without touching the
// session state.
func (s *DefaultAgentService) handleAvailability(ctx context.Context, message string) string {
	intent := Extract(message, s.now())
	if intent.Date == "" || intent.Time == "" {
		return msgSpecifyDateTime
	}

	start, end := BuildInterval(intent.Date, intent.Time, intent.DurationMinutes)
	if start == "" || end == "" {
		return msgUnparsedDateTime
	}

	start, end = WithOffset(start), WithOffset(end)
	available, err := s.Calendar.CheckAvailability(ctx, start, end)
	if err != nil {
		utils.GetLogger().Warn("agent: availability check failed", zap.Error(err))
		return msgCalendarTrouble
	}

	status := "available"
	if !available {
		status = "already booked"
	}
	return fmt.Sprintf("The time slot from %s to %s is %s.", start, end, status)
}

// confirmBooking emits the summary and arms the confirmation flag.
func (s *DefaultAgentService) confirmBooking(state *models.ConversationState) string {
	booking := state.PendingBooking
	startAt, err := time.ParseInLocation(civilLayout, booking.StartTime, fixedZone)
	if err != nil {
		state.PendingBooking = nil
		return msgUnparsedDateTime
	}
	endAt, _ := time.ParseInLocation(civilLayout, booking.EndTime, fixedZone)

	state.WaitingForConfirmation = true
	return fmt.Sprintf(`I'm ready to book your appointment:
- Title: %s
- Date: %s
- Time: %s - %s
- Duration: %d minutes

Should I go ahead and book this appointment? (Yes/No)`,
		booking.Title,
		startAt.Format("Monday, January 02, 2006"),
		startAt.Format("03:04 PM"),
		endAt.Format("03:04 PM"),
		booking.DurationMinutes)
}

// executeBooking commits the pending booking. The flags are cleared before the
// gateway call so a failure never leaves the session stuck mid-negotiation.
func (s *DefaultAgentService) executeBooking(ctx context.Context, sessionID string, state *models.ConversationState) string {
	booking := state.PendingBooking
	state.PendingBooking = nil
	state.WaitingForConfirmation = false
	state.WaitingForTitle = false

	result, err := s.Calendar.CreateEvent(ctx,
		booking.Title,
		WithOffset(booking.StartTime),
		WithOffset(booking.EndTime),
		booking.Description,
	)
	if err != nil {
		utils.GetLogger().Warn("agent: event creation failed", zap.Error(err))
		return fmt.Sprintf("Sorry, there was an error booking your appointment: %v", err)
	}

	s.recordBooking(ctx, sessionID, booking, result)

	trimmed := strings.TrimSpace(strings.SplitN(result, "!", 2)[0]) + "!"
	return "Perfect! Your appointment has been booked successfully. " + trimmed
}

// recordBooking persists the audit record and schedules the reminder. Both are
// best-effort: a failure here never reaches the user.
func (s *DefaultAgentService) recordBooking(ctx context.Context, sessionID string, booking *models.PendingBooking, confirmation string) {
	if s.Records == nil {
		return
	}
	logger := utils.GetLogger()

	record := models.BookingRecord{
		SessionID:       sessionID,
		Title:           booking.Title,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		DurationMinutes: booking.DurationMinutes,
		Description:     booking.Description,
		EventLink:       eventLink(confirmation),
	}
	recordID, err := s.Records.Create(ctx, record)
	if err != nil {
		logger.Warn("agent: failed to persist booking record",
			zap.String("sessionID", sessionID), zap.Error(err))
		return
	}

	if s.Reminders == nil {
		return
	}
	startAt, err := time.ParseInLocation(civilLayout, booking.StartTime, fixedZone)
	if err != nil {
		return
	}
	fireAt := startAt.Add(-reminderLeadDuration)
	if fireAt.Before(s.now()) {
		return
	}
	payload := models.ReminderPayload{
		RecordID:  recordID,
		SessionID: sessionID,
		Title:     booking.Title,
		StartTime: booking.StartTime,
	}
	if err := s.Reminders.ScheduleReminder(payload, fireAt); err != nil {
		logger.Warn("agent: failed to schedule reminder",
			zap.String("recordID", recordID), zap.Error(err))
	}
}

// handleGeneral delegates to the fallback responder; its own failures collapse
// into a generic redirect.
func (s *DefaultAgentService) handleGeneral(ctx context.Context, message string, history []models.ChatMessage) string {
	if s.Responder == nil {
		return msgGenericRedirect
	}

	prompt := fmt.Sprintf(fallbackSystemPrompt, s.now().Format("Monday, 2006-01-02 15:04:05"))
	if len(history) > 0 {
		var sb strings.Builder
		sb.WriteString(prompt)
		sb.WriteString("\n\nConversation so far:\n")
		for _, msg := range history {
			switch msg.Role {
			case "user":
				sb.WriteString("Human: " + msg.Content + "\n")
			case "assistant":
				sb.WriteString("AI: " + msg.Content + "\n")
			}
		}
		prompt = sb.String()
	}

	reply, err := s.Responder.Generate(ctx, prompt, message)
	if err != nil || strings.TrimSpace(reply) == "" {
		return msgGenericRedirect
	}
	return reply
}

// Status reports the session flags for the status probe.
func (s *DefaultAgentService) Status(ctx context.Context, sessionID string) models.ConversationStateStatus {
	state, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return models.ConversationStateStatus{}
	}
	return models.ConversationStateStatus{
		HasPendingBooking:      state.PendingBooking != nil,
		WaitingForConfirmation: state.WaitingForConfirmation,
		WaitingForTitle:        state.WaitingForTitle,
	}
}

// Reset unconditionally clears a session's negotiation state.
func (s *DefaultAgentService) Reset(ctx context.Context, sessionID string) error {
	return s.Store.Clear(ctx, sessionID)
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// eventLink pulls the URL out of the gateway's confirmation text, falling back
// to the full text when the expected marker is missing.
func eventLink(confirmation string) string {
	if idx := strings.LastIndex(confirmation, "here: "); idx >= 0 {
		return strings.TrimSpace(confirmation[idx+len("here: "):])
	}
	return confirmation
}
