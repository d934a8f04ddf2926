package agent

import (
	"testing"

	"dakotahome/models"
)

func TestNextState_HappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  models.BookingState
	}{
		{EventTurnStarted, models.StateCollectingDates},
		{EventCheckRequested, models.StateCheckingAvailability},
		{EventQuoted, models.StateQuoted},
		{EventEmailProvided, models.StateCollectingEmail},
		{EventCheckoutCreated, models.StatePaymentInitiated},
		{EventCompleted, models.StateDone},
	}

	state := models.StateGreeting
	for _, step := range steps {
		next, err := NextState(state, step.event)
		if err != nil {
			t.Fatalf("event %s in state %s: %v", step.event, state, err)
		}
		if next != step.want {
			t.Fatalf("event %s in state %s: got %s, want %s", step.event, state, next, step.want)
		}
		state = next
	}
}

func TestNextState_EmptyStateIsGreeting(t *testing.T) {
	next, err := NextState("", EventTurnStarted)
	if err != nil {
		t.Fatalf("NextState: %v", err)
	}
	if next != models.StateCollectingDates {
		t.Fatalf("got %s, want %s", next, models.StateCollectingDates)
	}
}

func TestNextState_UnavailableLoopsBack(t *testing.T) {
	next, err := NextState(models.StateCheckingAvailability, EventUnavailable)
	if err != nil || next != models.StateUnavailable {
		t.Fatalf("got %s, %v", next, err)
	}

	next, err = NextState(models.StateUnavailable, EventCheckRequested)
	if err != nil || next != models.StateCheckingAvailability {
		t.Fatalf("got %s, %v", next, err)
	}
}

// Changing dates mid-conversation restarts the check from any pre-payment
// state.
func TestNextState_RecheckAllowed(t *testing.T) {
	for _, state := range []models.BookingState{
		models.StateQuoted,
		models.StateCollectingEmail,
		models.StatePaymentInitiated,
	} {
		next, err := NextState(state, EventCheckRequested)
		if err != nil {
			t.Fatalf("recheck from %s: %v", state, err)
		}
		if next != models.StateCheckingAvailability {
			t.Fatalf("recheck from %s: got %s", state, next)
		}
	}
}

func TestNextState_GuardedTransitions(t *testing.T) {
	cases := []struct {
		state models.BookingState
		event Event
	}{
		{models.StateGreeting, EventQuoted},
		{models.StateGreeting, EventCheckoutCreated},
		{models.StateCollectingDates, EventEmailProvided},
		{models.StateQuoted, EventCheckoutCreated},
		{models.StateDone, EventCheckRequested},
	}

	for _, tc := range cases {
		got, err := NextState(tc.state, tc.event)
		if err == nil {
			t.Fatalf("event %s in state %s should be rejected", tc.event, tc.state)
		}
		if got != tc.state {
			t.Fatalf("rejected event must not move state: got %s from %s", got, tc.state)
		}
	}
}
