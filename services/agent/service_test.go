package agent

import (
	"context"
	"errors"
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

// scriptedProvider replays a fixed sequence of turns.
type scriptedProvider struct {
	turns []Turn
	calls int

	// lastMsgs captures the message history of the most recent call.
	lastMsgs []Message
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, system string, msgs []Message, tools []ToolSpec) (Turn, error) {
	p.lastMsgs = msgs
	if p.calls >= len(p.turns) {
		return Turn{}, errors.New("script exhausted")
	}
	turn := p.turns[p.calls]
	p.calls++
	return turn, nil
}

func newTestService(t *testing.T, provider Provider) (*Service, *conversation.MemoryStore) {
	t.Helper()

	feed := calendar.NewFeedCache("", zap.NewNop())
	checker := availability.NewChecker(feed, zap.NewNop())
	checker.Today = func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	calc := pricing.NewCalculator(pricing.Config{
		NightlyRate: 250, CleaningFee: 150, MaxGuests: 10, BaseGuests: 6, Currency: "usd",
	})
	init := checkout.NewInitiator("sk_test_123", "https://example.com/booked", zap.NewNop())
	init.CreateSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{ID: "cs_test_abc"}, nil
	}

	store := conversation.NewMemoryStore()
	tools := NewTools(checker, calc, init, store, zap.NewNop())
	return NewService(store, provider, tools, zap.NewNop()), store
}

func TestHandleTurn_CreatesThread(t *testing.T) {
	provider := &scriptedProvider{turns: []Turn{
		{Content: "Welcome to Dakota Country Home! When would you like to stay?"},
	}}
	service, store := newTestService(t, provider)

	result, err := service.HandleTurn(context.Background(), "", "Hi, I'd like to book a stay")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Thread.ID == "" {
		t.Fatal("expected a new thread id")
	}
	if result.Reply != "Welcome to Dakota Country Home! When would you like to stay?" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}

	if _, err := store.LoadThread(context.Background(), result.Thread.ID); err != nil {
		t.Fatalf("thread not persisted: %v", err)
	}

	// One user item, one assistant item, no tools.
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 new items, got %d", len(result.Items))
	}
	if result.Items[0].Type != models.ItemTypeUserMessage || result.Items[1].Type != models.ItemTypeAssistantMessage {
		t.Fatalf("unexpected item types: %s, %s", result.Items[0].Type, result.Items[1].Type)
	}
}

func TestHandleTurn_UnknownThread(t *testing.T) {
	provider := &scriptedProvider{turns: []Turn{{Content: "hello"}}}
	service, _ := newTestService(t, provider)

	_, err := service.HandleTurn(context.Background(), "missing-thread", "Hi")
	if !errors.Is(err, conversation.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleTurn_ExecutesToolsAndPersistsResults(t *testing.T) {
	provider := &scriptedProvider{turns: []Turn{
		{ToolCalls: []ToolCall{{
			ID:   "call-1",
			Name: ToolGetAvailability,
			Args: `{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`,
		}}},
		{Content: "Good news, those dates are open!"},
	}}
	service, store := newTestService(t, provider)

	result, err := service.HandleTurn(context.Background(), "", "Is July 1-4 open for 4 of us?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Reply != "Good news, those dates are open!" {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}

	// user, tool_result, assistant.
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 new items, got %d", len(result.Items))
	}
	toolItem := result.Items[1]
	if toolItem.Type != models.ItemTypeToolResult || toolItem.ToolName != ToolGetAvailability {
		t.Fatalf("unexpected tool item: %+v", toolItem)
	}
	if toolItem.ToolOutput == "" {
		t.Fatal("tool output must be persisted")
	}

	// The second provider call must have seen the tool exchange.
	var sawToolMsg bool
	for _, msg := range provider.lastMsgs {
		if msg.Role == "tool" && msg.ToolCallID == "call-1" {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Fatal("tool result was not replayed to the provider")
	}

	// Draft progressed via the tool call.
	draft, _ := store.GetDraft(context.Background(), result.Thread.ID)
	if draft[models.DraftCheckedCheckIn] != "2025-07-01" {
		t.Fatalf("draft not updated by tool: %v", draft)
	}
}

func TestHandleTurn_ProviderErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{}
	service, _ := newTestService(t, provider)

	_, err := service.HandleTurn(context.Background(), "", "Hi")
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

// A provider that never stops calling tools hits the step bound and the
// turn degrades to the fallback reply instead of looping forever.
func TestHandleTurn_ToolLoopBounded(t *testing.T) {
	turns := make([]Turn, maxToolSteps)
	for i := range turns {
		turns[i] = Turn{ToolCalls: []ToolCall{{
			ID:   "call-loop",
			Name: ToolGetAvailability,
			Args: `{"start_date":"2025-07-01","end_date":"2025-07-04","guests":4}`,
		}}}
	}
	provider := &scriptedProvider{turns: turns}
	service, _ := newTestService(t, provider)

	result, err := service.HandleTurn(context.Background(), "", "book me something")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if provider.calls != maxToolSteps {
		t.Fatalf("expected %d provider calls, got %d", maxToolSteps, provider.calls)
	}
	if result.Reply != "Sorry, I couldn't finish that just now. Could you try again?" {
		t.Fatalf("unexpected fallback reply: %q", result.Reply)
	}
}

func TestHandleTurn_ReplaysHistoryOldestFirst(t *testing.T) {
	provider := &scriptedProvider{turns: []Turn{
		{Content: "first reply"},
		{Content: "second reply"},
	}}
	service, _ := newTestService(t, provider)
	ctx := context.Background()

	first, err := service.HandleTurn(ctx, "", "first message")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if _, err := service.HandleTurn(ctx, first.Thread.ID, "second message"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	msgs := provider.lastMsgs
	if len(msgs) != 3 {
		t.Fatalf("expected 3 replayed messages, got %d", len(msgs))
	}
	if msgs[0].Content != "first message" || msgs[1].Content != "first reply" || msgs[2].Content != "second message" {
		t.Fatalf("history out of order: %+v", msgs)
	}
}
