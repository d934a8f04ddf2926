package models

// BookingState is the explicit step of the booking flow carried in the
// per-thread draft.
type BookingState string

const (
	StateGreeting             BookingState = "greeting"
	StateCollectingDates      BookingState = "collecting_dates"
	StateCheckingAvailability BookingState = "checking_availability"
	StateUnavailable          BookingState = "unavailable"
	StateQuoted               BookingState = "quoted"
	StateCollectingEmail      BookingState = "collecting_email"
	StatePaymentInitiated     BookingState = "payment_initiated"
	StateDone                 BookingState = "done"
)

// Draft field keys shared by the store and the agent tool layer. The draft
// itself is a loose string map: values are provisional until validated by
// the availability checker and pricing calculator.
const (
	DraftCheckIn         = "check_in"
	DraftCheckOut        = "check_out"
	DraftGuests          = "guests"
	DraftEmail           = "email"
	DraftState           = "state"
	DraftQuoteTotalCents = "quote_total_cents"
	DraftCheckedCheckIn  = "checked_check_in"  // dates of the last confirmed availability
	DraftCheckedCheckOut = "checked_check_out" //
	DraftSessionID       = "checkout_session_id"
)

// AvailabilityResult is the outcome of a date-range availability check.
// BlockedReason is set exactly when Available is false; Note carries the
// advisory when no calendar feed is configured.
type AvailabilityResult struct {
	Available     bool         `json:"available"`
	BlockedReason string       `json:"blocked_reason"`
	Note          string       `json:"note,omitempty"`
	CheckedDates  CheckedDates `json:"checked_dates"`
}

// CheckedDates echoes the raw inputs of an availability check.
type CheckedDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
