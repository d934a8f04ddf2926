package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"dakotahome/models"
	"dakotahome/services/availability"
	"dakotahome/services/calendar"
	"dakotahome/services/checkout"
	"dakotahome/services/conversation"
	"dakotahome/services/pricing"
)

// newTestTools wires the tool executor against an unconfigured calendar
// (availability always passes, unverified), default pricing and a stubbed
// payment provider. Today is pinned to 2025-06-01.
func newTestTools(t *testing.T) (*Tools, *conversation.MemoryStore) {
	t.Helper()

	feed := calendar.NewFeedCache("", zap.NewNop())
	checker := availability.NewChecker(feed, zap.NewNop())
	checker.Today = func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}

	calc := pricing.NewCalculator(pricing.Config{
		NightlyRate: 250,
		CleaningFee: 150,
		MaxGuests:   10,
		BaseGuests:  6,
		Currency:    "usd",
	})

	init := checkout.NewInitiator("sk_test_123", "https://example.com/booked", zap.NewNop())
	init.CreateSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{ID: "cs_test_abc", ClientSecret: "secret_xyz"}, nil
	}

	store := conversation.NewMemoryStore()
	return NewTools(checker, calc, init, store, zap.NewNop()), store
}

func decodeResult(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v\n%s", err, raw)
	}
	return out
}

func TestExecute_UnknownTool(t *testing.T) {
	tools, _ := newTestTools(t)

	_, err := tools.Execute(context.Background(), "thread-1", "send_rocket", "{}")
	if err == nil {
		t.Fatal("expected hard error for unknown tool")
	}
}

func TestExecute_MalformedArgs(t *testing.T) {
	tools, _ := newTestTools(t)

	_, err := tools.Execute(context.Background(), "thread-1", ToolGetAvailability, "{not json")
	if err == nil {
		t.Fatal("expected hard error for undecodable args")
	}
}

func TestGetAvailability_RequiresGuestCount(t *testing.T) {
	tools, _ := newTestTools(t)

	raw, err := tools.Execute(context.Background(), "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-04"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decodeResult(t, raw)
	if result["error"] != "Guest count is required before checking availability - ask how many guests are coming" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestGetAvailability_RecordsDraft(t *testing.T) {
	tools, store := newTestTools(t)
	ctx := context.Background()

	raw, err := tools.Execute(ctx, "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decodeResult(t, raw)
	if result["available"] != true {
		t.Fatalf("expected available, got %v", result)
	}

	draft, _ := store.GetDraft(ctx, "thread-1")
	if draft[models.DraftCheckIn] != "2025-07-01" || draft[models.DraftCheckOut] != "2025-07-04" {
		t.Fatalf("dates not recorded: %v", draft)
	}
	if draft[models.DraftGuests] != "4" {
		t.Fatalf("guests not recorded: %v", draft)
	}
	if draft[models.DraftCheckedCheckIn] != "2025-07-01" || draft[models.DraftCheckedCheckOut] != "2025-07-04" {
		t.Fatalf("confirmed dates not recorded: %v", draft)
	}
	if draft[models.DraftState] != string(models.StateCheckingAvailability) {
		t.Fatalf("unexpected state %q", draft[models.DraftState])
	}
}

func TestGetAvailability_BlockedDoesNotConfirm(t *testing.T) {
	tools, store := newTestTools(t)
	ctx := context.Background()

	// Minimum-stay violation keeps the range unconfirmed.
	raw, err := tools.Execute(ctx, "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-02","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decodeResult(t, raw)
	if result["available"] != false {
		t.Fatalf("expected blocked, got %v", result)
	}

	draft, _ := store.GetDraft(ctx, "thread-1")
	if draft[models.DraftCheckedCheckIn] != "" {
		t.Fatalf("blocked check must not confirm dates: %v", draft)
	}
	if draft[models.DraftState] != string(models.StateUnavailable) {
		t.Fatalf("unexpected state %q", draft[models.DraftState])
	}
}

func TestGetQuote_RequiresConfirmedAvailability(t *testing.T) {
	tools, _ := newTestTools(t)

	raw, err := tools.Execute(context.Background(), "thread-1", ToolGetQuote,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decodeResult(t, raw)
	if result["error"] != "Availability has not been confirmed for these dates - call get_availability first" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestGetQuote_RejectsChangedDates(t *testing.T) {
	tools, _ := newTestTools(t)
	ctx := context.Background()

	if _, err := tools.Execute(ctx, "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	raw, err := tools.Execute(ctx, "thread-1", ToolGetQuote,
		`{"start_date":"2025-07-02","end_date":"2025-07-05","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if decodeResult(t, raw)["error"] == nil {
		t.Fatal("quote for unchecked dates must be rejected")
	}
}

func TestCreateCheckout_Guards(t *testing.T) {
	tools, _ := newTestTools(t)
	ctx := context.Background()

	// No email.
	raw, err := tools.Execute(ctx, "thread-1", ToolCreateCheckout,
		`{"amount_cents":90000,"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decodeResult(t, raw)
	if result["error"] != "Customer email is required before payment" {
		t.Fatalf("unexpected result: %v", result)
	}

	// Email but no quote.
	raw, err = tools.Execute(ctx, "thread-1", ToolCreateCheckout,
		`{"amount_cents":90000,"customer_email":"guest@example.com","start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result = decodeResult(t, raw)
	if result["error"] != "A quote must be computed before payment - call get_quote first" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestBookingFlow_EndToEnd(t *testing.T) {
	tools, store := newTestTools(t)
	ctx := context.Background()

	raw, err := tools.Execute(ctx, "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("get_availability: %v", err)
	}
	if decodeResult(t, raw)["available"] != true {
		t.Fatalf("unexpected availability: %s", raw)
	}

	raw, err = tools.Execute(ctx, "thread-1", ToolGetQuote,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("get_quote: %v", err)
	}
	quote := decodeResult(t, raw)
	if quote["total"] != float64(900) {
		t.Fatalf("unexpected quote total: %v", quote)
	}

	draft, _ := store.GetDraft(ctx, "thread-1")
	if draft[models.DraftQuoteTotalCents] != "90000" {
		t.Fatalf("quote total not recorded: %v", draft)
	}
	if draft[models.DraftState] != string(models.StateQuoted) {
		t.Fatalf("unexpected state %q", draft[models.DraftState])
	}

	raw, err = tools.Execute(ctx, "thread-1", ToolCreateCheckout,
		`{"amount_cents":90000,"customer_email":"guest@example.com","start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("create_checkout: %v", err)
	}
	session := decodeResult(t, raw)
	if session["session_id"] != "cs_test_abc" {
		t.Fatalf("unexpected session: %v", session)
	}

	draft, _ = store.GetDraft(ctx, "thread-1")
	if draft[models.DraftEmail] != "guest@example.com" {
		t.Fatalf("email not recorded: %v", draft)
	}
	if draft[models.DraftSessionID] != "cs_test_abc" {
		t.Fatalf("session id not recorded: %v", draft)
	}
	if draft[models.DraftState] != string(models.StatePaymentInitiated) {
		t.Fatalf("unexpected state %q", draft[models.DraftState])
	}
}

func TestCreateCheckout_ProviderFailureSurfaces(t *testing.T) {
	tools, _ := newTestTools(t)
	ctx := context.Background()
	tools.Checkout.CreateSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, &stripe.Error{Msg: "Invalid API Key provided"}
	}

	if _, err := tools.Execute(ctx, "thread-1", ToolGetAvailability,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`); err != nil {
		t.Fatalf("get_availability: %v", err)
	}
	if _, err := tools.Execute(ctx, "thread-1", ToolGetQuote,
		`{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`); err != nil {
		t.Fatalf("get_quote: %v", err)
	}

	raw, err := tools.Execute(ctx, "thread-1", ToolCreateCheckout,
		`{"amount_cents":90000,"customer_email":"guest@example.com","start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`)
	if err != nil {
		t.Fatalf("create_checkout: %v", err)
	}
	result := decodeResult(t, raw)
	if result["error"] != "Invalid API Key provided" {
		t.Fatalf("unexpected result: %v", result)
	}
	if _, present := result["session_id"]; !present {
		t.Fatalf("error result must carry a null session_id: %v", result)
	}
}
