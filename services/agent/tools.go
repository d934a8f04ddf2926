package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"dakotahome/models"
	"dakotahome/services/availability"
	"dakotahome/services/checkout"
	"dakotahome/services/conversation"
	"dakotahome/services/pricing"
)

// Tool names exposed to the model.
const (
	ToolGetAvailability = "get_availability"
	ToolGetQuote        = "get_quote"
	ToolCreateCheckout  = "create_checkout"
)

// Tools executes the three business tools on behalf of the model,
// recording progress in the thread's booking draft and enforcing the flow
// guards: a quote needs a confirmed availability check for the same dates,
// and a checkout needs an email plus a positive quoted total. Guard
// violations come back as structured error results for the model to
// narrate — only malformed invocations are hard errors.
type Tools struct {
	Availability *availability.Checker
	Pricing      *pricing.Calculator
	Checkout     *checkout.Initiator
	Store        conversation.Store

	logger *zap.Logger
}

func NewTools(avail *availability.Checker, calc *pricing.Calculator, init *checkout.Initiator, store conversation.Store, logger *zap.Logger) *Tools {
	return &Tools{
		Availability: avail,
		Pricing:      calc,
		Checkout:     init,
		Store:        store,
		logger:       logger,
	}
}

// Definitions lists the tool surface for the providers.
func (t *Tools) Definitions() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolGetAvailability,
			Description: "Check if the requested dates are available for booking. Collect the guest count first.",
			Params: []Param{
				{Name: "start_date", Type: "string", Description: "Check-in date in YYYY-MM-DD format", Required: true},
				{Name: "end_date", Type: "string", Description: "Check-out date in YYYY-MM-DD format", Required: true},
				{Name: "guests", Type: "integer", Description: "Number of guests for the stay"},
			},
		},
		{
			Name:        ToolGetQuote,
			Description: "Calculate pricing for a stay. Only call after availability is confirmed for the dates.",
			Params: []Param{
				{Name: "start_date", Type: "string", Description: "Check-in date in YYYY-MM-DD format", Required: true},
				{Name: "end_date", Type: "string", Description: "Check-out date in YYYY-MM-DD format", Required: true},
				{Name: "guests", Type: "integer", Description: "Number of guests", Required: true},
			},
		},
		{
			Name:        ToolCreateCheckout,
			Description: "Create an embedded checkout session for payment. Only call after the guest shared their email and approved the quote.",
			Params: []Param{
				{Name: "amount_cents", Type: "integer", Description: "Total amount in cents, e.g. 65000 for $650.00", Required: true},
				{Name: "customer_email", Type: "string", Description: "Guest's email address", Required: true},
				{Name: "start_date", Type: "string", Description: "Check-in date in YYYY-MM-DD format", Required: true},
				{Name: "end_date", Type: "string", Description: "Check-out date in YYYY-MM-DD format", Required: true},
				{Name: "guests", Type: "integer", Description: "Number of guests", Required: true},
				{Name: "description", Type: "string", Description: "Optional description for the charge"},
			},
		},
	}
}

// Execute dispatches one tool call and returns the JSON result the model
// sees. A Go error means a malformed invocation (unknown tool, undecodable
// arguments), which propagates as a hard failure.
func (t *Tools) Execute(ctx context.Context, threadID, name, argsJSON string) (string, error) {
	switch name {
	case ToolGetAvailability:
		return t.getAvailability(ctx, threadID, argsJSON)
	case ToolGetQuote:
		return t.getQuote(ctx, threadID, argsJSON)
	case ToolCreateCheckout:
		return t.createCheckout(ctx, threadID, argsJSON)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func (t *Tools) getAvailability(ctx context.Context, threadID, argsJSON string) (string, error) {
	var args struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Guests    int    `json:"guests"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("decode %s args: %w", ToolGetAvailability, err)
	}

	draft, err := t.Store.GetDraft(ctx, threadID)
	if err != nil {
		return "", err
	}

	updates := map[string]string{
		models.DraftCheckIn:  args.StartDate,
		models.DraftCheckOut: args.EndDate,
	}
	if args.Guests > 0 {
		updates[models.DraftGuests] = strconv.Itoa(args.Guests)
	} else if draft[models.DraftGuests] == "" {
		return errResult("Guest count is required before checking availability - ask how many guests are coming")
	}

	state, err := NextState(models.BookingState(draft[models.DraftState]), EventCheckRequested)
	if err != nil {
		return errResult(err.Error())
	}
	updates[models.DraftState] = string(state)

	result := t.Availability.Check(ctx, args.StartDate, args.EndDate)
	if result.Available {
		updates[models.DraftCheckedCheckIn] = args.StartDate
		updates[models.DraftCheckedCheckOut] = args.EndDate
	} else {
		if next, err := NextState(state, EventUnavailable); err == nil {
			updates[models.DraftState] = string(next)
		}
	}
	if _, err := t.Store.UpdateDraft(ctx, threadID, updates); err != nil {
		return "", err
	}

	return marshalResult(result)
}

func (t *Tools) getQuote(ctx context.Context, threadID, argsJSON string) (string, error) {
	var args struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Guests    int    `json:"guests"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("decode %s args: %w", ToolGetQuote, err)
	}

	draft, err := t.Store.GetDraft(ctx, threadID)
	if err != nil {
		return "", err
	}

	// A quote is never produced without a preceding successful
	// availability check for the same date range.
	if draft[models.DraftCheckedCheckIn] != args.StartDate || draft[models.DraftCheckedCheckOut] != args.EndDate {
		return errResult("Availability has not been confirmed for these dates - call get_availability first")
	}

	result := t.Pricing.Quote(args.StartDate, args.EndDate, args.Guests)
	if !result.OK() {
		return marshalResult(map[string]any{
			"error":  result.Err,
			"nights": result.Nights,
			"total":  0,
		})
	}

	state, err := NextState(models.BookingState(draft[models.DraftState]), EventQuoted)
	if err != nil {
		return errResult(err.Error())
	}
	_, err = t.Store.UpdateDraft(ctx, threadID, map[string]string{
		models.DraftGuests:          strconv.Itoa(args.Guests),
		models.DraftQuoteTotalCents: strconv.Itoa(result.Quote.TotalCents),
		models.DraftState:           string(state),
	})
	if err != nil {
		return "", err
	}

	return marshalResult(result.Quote)
}

func (t *Tools) createCheckout(ctx context.Context, threadID, argsJSON string) (string, error) {
	var args struct {
		AmountCents   int64  `json:"amount_cents"`
		CustomerEmail string `json:"customer_email"`
		StartDate     string `json:"start_date"`
		EndDate       string `json:"end_date"`
		Guests        int    `json:"guests"`
		Description   string `json:"description"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("decode %s args: %w", ToolCreateCheckout, err)
	}

	draft, err := t.Store.GetDraft(ctx, threadID)
	if err != nil {
		return "", err
	}

	if args.CustomerEmail == "" {
		return checkoutError("Customer email is required before payment")
	}
	quoted, _ := strconv.Atoi(draft[models.DraftQuoteTotalCents])
	if quoted <= 0 {
		return checkoutError("A quote must be computed before payment - call get_quote first")
	}
	if draft[models.DraftCheckedCheckIn] != args.StartDate || draft[models.DraftCheckedCheckOut] != args.EndDate {
		return checkoutError("Availability has not been confirmed for these dates")
	}

	state := models.BookingState(draft[models.DraftState])
	if next, err := NextState(state, EventEmailProvided); err == nil {
		state = next
	}
	if _, err := t.Store.UpdateDraft(ctx, threadID, map[string]string{
		models.DraftEmail: args.CustomerEmail,
		models.DraftState: string(state),
	}); err != nil {
		return "", err
	}

	description := args.Description
	if description == "" {
		description = fmt.Sprintf("Stay at Dakota Country Home (%s to %s)", args.StartDate, args.EndDate)
	}
	result := t.Checkout.Create(ctx, args.AmountCents, args.CustomerEmail, map[string]string{
		"start_date": args.StartDate,
		"end_date":   args.EndDate,
		"guests":     strconv.Itoa(args.Guests),
	}, description)
	if !result.OK() {
		return checkoutError(result.Err)
	}

	updates := map[string]string{models.DraftSessionID: result.Session.SessionID}
	if next, err := NextState(state, EventCheckoutCreated); err == nil {
		updates[models.DraftState] = string(next)
	}
	if _, err := t.Store.UpdateDraft(ctx, threadID, updates); err != nil {
		return "", err
	}

	t.logger.Info("checkout session created",
		zap.String("thread_id", threadID),
		zap.String("session_id", result.Session.SessionID),
		zap.Int64("amount_cents", args.AmountCents))
	return marshalResult(result.Session)
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

func errResult(msg string) (string, error) {
	return marshalResult(map[string]any{"error": msg})
}

func checkoutError(msg string) (string, error) {
	return marshalResult(map[string]any{"error": msg, "session_id": nil})
}
