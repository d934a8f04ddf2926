package agent

import (
	"fmt"

	"dakotahome/models"
)

// Event is an observable step of the booking flow.
type Event string

const (
	// EventTurnStarted fires when a user message lands on the thread.
	EventTurnStarted Event = "turn_started"
	// EventCheckRequested fires when the availability tool is invoked.
	EventCheckRequested Event = "check_requested"
	// EventUnavailable fires when a check comes back blocked.
	EventUnavailable Event = "unavailable"
	// EventQuoted fires when a quote is computed for confirmed dates.
	EventQuoted Event = "quoted"
	// EventEmailProvided fires when the guest's email lands in the draft.
	EventEmailProvided Event = "email_provided"
	// EventCheckoutCreated fires when a payment session is created.
	EventCheckoutCreated Event = "checkout_created"
	// EventCompleted fires when the flow is wrapped up.
	EventCompleted Event = "completed"
)

// transitions is the booking flow's guarded state table. Re-checking
// availability is allowed from any pre-payment state so a guest can change
// dates mid-conversation; everything else is linear.
var transitions = map[models.BookingState]map[Event]models.BookingState{
	models.StateGreeting: {
		EventTurnStarted:    models.StateCollectingDates,
		EventCheckRequested: models.StateCheckingAvailability,
	},
	models.StateCollectingDates: {
		EventTurnStarted:    models.StateCollectingDates,
		EventCheckRequested: models.StateCheckingAvailability,
	},
	models.StateCheckingAvailability: {
		EventCheckRequested: models.StateCheckingAvailability,
		EventUnavailable:    models.StateUnavailable,
		EventQuoted:         models.StateQuoted,
	},
	models.StateUnavailable: {
		EventTurnStarted:    models.StateCollectingDates,
		EventCheckRequested: models.StateCheckingAvailability,
	},
	models.StateQuoted: {
		EventCheckRequested: models.StateCheckingAvailability,
		EventQuoted:         models.StateQuoted,
		EventEmailProvided:  models.StateCollectingEmail,
	},
	models.StateCollectingEmail: {
		EventCheckRequested:  models.StateCheckingAvailability,
		EventEmailProvided:   models.StateCollectingEmail,
		EventCheckoutCreated: models.StatePaymentInitiated,
	},
	models.StatePaymentInitiated: {
		EventCompleted:      models.StateDone,
		EventCheckRequested: models.StateCheckingAvailability,
	},
	models.StateDone: {},
}

// NextState applies one event to the flow. An empty current state is
// treated as greeting, so brand-new drafts work without seeding.
func NextState(current models.BookingState, event Event) (models.BookingState, error) {
	if current == "" {
		current = models.StateGreeting
	}
	next, ok := transitions[current][event]
	if !ok {
		return current, fmt.Errorf("event %s not allowed in state %s", event, current)
	}
	return next, nil
}
