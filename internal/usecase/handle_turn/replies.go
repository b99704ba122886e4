package handle_turn

import (
	"fmt"
	"strings"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
	"github.com/avkor/SMB-SchedulingService/internal/extract"
)

// Построители ответов. Весь видимый клиенту текст - естественный язык,
// коды ошибок наружу не выходят

func greetingReply(options []extract.ServiceOption) string {
	if len(options) == 0 {
		return "Hi! I can help you book, reschedule or cancel an appointment. What would you like to do?"
	}
	return fmt.Sprintf("Hi! I can help you book an appointment. We offer: %s. What would you like?", serviceList(options))
}

func askServiceReply(options []extract.ServiceOption) string {
	if len(options) == 0 {
		return "What service would you like to book?"
	}
	return fmt.Sprintf("What service would you like? We offer: %s.", serviceList(options))
}

func askDateTimeReply(draft *domain.ConversationDraft) string {
	if draft.HasDate() {
		return "What time works for you? You can say an exact time like 3pm, or morning/afternoon/evening."
	}
	if hasTimeChoice(draft) {
		return "What day works for you? You can say today, tomorrow, a weekday or a date like 20/09."
	}
	return "What day and time work for you?"
}

func askContactReply(draft *domain.ConversationDraft) string {
	switch {
	case !draft.HasName() && !draft.HasPhone():
		return "Could I get your name and phone number to finish the booking?"
	case !draft.HasName():
		return "Could I get your name to finish the booking?"
	default:
		return "Could I get your phone number to finish the booking?"
	}
}

func offerSlotsReply(slots []domain.OfferedSlot) string {
	var b strings.Builder
	b.WriteString("Here's what I have available:\n")
	for i, s := range slots {
		fmt.Fprintf(&b, "%d) %s\n", i+1, s.Label)
	}
	b.WriteString("Reply with the number that works for you.")
	return b.String()
}

func confirmReply(draft *domain.ConversationDraft, label string) string {
	return fmt.Sprintf("Shall I book %s on %s for %s? Reply yes to confirm, no to cancel, or change to pick another time.",
		draft.ServiceName, label, draft.CustomerName)
}

func confirmRescheduleReply(draft *domain.ConversationDraft, label string) string {
	return fmt.Sprintf("Shall I move your %s to %s? Reply yes to confirm, no to cancel, or change to pick another time.",
		draft.ServiceName, label)
}

func bookedReply(serviceName, label string, pending bool) string {
	if pending {
		return fmt.Sprintf("Your %s on %s is reserved and awaiting confirmation from the business. See you soon!", serviceName, label)
	}
	return fmt.Sprintf("All set! Your %s is booked for %s. See you then!", serviceName, label)
}

func rescheduledReply(serviceName, label string) string {
	return fmt.Sprintf("Done - your %s has been moved to %s. The business will confirm shortly.", serviceName, label)
}

func slotTakenReply() string {
	return "Sorry, that time was just taken. "
}

func noAvailabilityReply() string {
	return "I'm sorry, there are no free times matching that. Could you try another day or time?"
}

func abandonedReply() string {
	return "No problem, I've discarded that request. Let me know if you'd like to book another time."
}

func cancelledAppointmentReply(appt *domain.Appointment, label string) string {
	return fmt.Sprintf("Your %s on %s has been cancelled. Hope to see you another time!", appt.ServiceName, label)
}

func appointmentNotFoundReply() string {
	return "I couldn't find an upcoming appointment for that phone number. A member of our team will follow up shortly."
}

func askPhoneForLookupReply() string {
	return "Sure - could you give me the phone number the appointment was made with?"
}

func repeatConfirmReply() string {
	return "Just to confirm - reply yes to book it, no to cancel, or change to pick another time."
}

func serviceList(options []extract.ServiceOption) string {
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return strings.Join(names, ", ")
}
