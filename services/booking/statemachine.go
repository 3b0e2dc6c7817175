package booking

import "istishara/models"

// transitions is the closed edge set of the booking state machine.
// Cancellation is allowed from every non-terminal state; completed and
// cancelled are terminal.
var transitions = map[models.BookingStatus]map[models.BookingEvent]models.BookingStatus{
	models.BookingStatusPendingPayment: {
		models.EventPaymentSucceeded: models.BookingStatusPendingConfirmation,
		models.EventPaymentFailed:    models.BookingStatusCancelled,
		models.EventPaymentTimeout:   models.BookingStatusCancelled,
		models.EventCancelled:        models.BookingStatusCancelled,
	},
	models.BookingStatusPendingConfirmation: {
		models.EventAdvisorConfirmed: models.BookingStatusConfirmed,
		models.EventCancelled:        models.BookingStatusCancelled,
	},
	models.BookingStatusConfirmed: {
		models.EventSessionCompleted: models.BookingStatusCompleted,
		models.EventRescheduled:      models.BookingStatusRescheduled,
		models.EventCancelled:        models.BookingStatusCancelled,
		models.EventNoShow:           models.BookingStatusNoShow,
	},
	// A rescheduled booking waits for the advisor to confirm the new
	// slot, and may be moved again or cancelled meanwhile.
	models.BookingStatusRescheduled: {
		models.EventAdvisorConfirmed: models.BookingStatusConfirmed,
		models.EventRescheduled:      models.BookingStatusRescheduled,
		models.EventCancelled:        models.BookingStatusCancelled,
	},
	models.BookingStatusNoShow: {
		models.EventCancelled: models.BookingStatusCancelled,
	},
}

// nextStatus resolves the target status for (from, event); ok is false
// when the edge is not in the table.
func nextStatus(from models.BookingStatus, event models.BookingEvent) (models.BookingStatus, bool) {
	edges, ok := transitions[from]
	if !ok {
		return "", false
	}
	to, ok := edges[event]
	return to, ok
}

// releasesSlot reports whether applying event frees the booking's slot.
// A no-show keeps the slot consumed; everything else that cancels the
// booking returns the slot to the pool.
func releasesSlot(event models.BookingEvent) bool {
	switch event {
	case models.EventPaymentFailed, models.EventPaymentTimeout, models.EventCancelled:
		return true
	}
	return false
}
