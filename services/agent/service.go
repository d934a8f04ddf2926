package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dakotahome/models"
	"dakotahome/services/conversation"
)

const (
	// maxRecentItems bounds how much history is replayed to the model.
	maxRecentItems = 50
	// maxToolSteps bounds one turn's tool loop.
	maxToolSteps = 8
)

const bookingInstructions = `You are the booking assistant for Dakota Country Home, a beautiful vacation rental.

## Your Role
Guide guests through booking their stay in a friendly, conversational manner.
Ask one question at a time. Be concise but warm.

## Booking Flow
1. Greet the guest and ask about their trip (dates, number of guests)
2. Once you have dates and guest count, check availability using the get_availability tool
3. If available, get a quote using the get_quote tool
4. Show the quote and ask for their email to proceed
5. Create checkout using the create_checkout tool
6. Confirm the checkout was created and guide them to complete payment

## Property Details
- Sleeps up to 10 guests
- Minimum 2 night stay
- Nightly rate: $250
- Cleaning fee: $150
- Located in the beautiful Dakota countryside

## Important Rules
- Never invent availability - always call get_availability
- Never invent prices - always call get_quote
- If dates are unavailable, suggest checking nearby dates
- Be helpful if guests have questions about the property
- Keep responses concise - this is a chat interface

## Tone
Friendly, professional, and helpful. Like a knowledgeable host who wants
guests to have a great experience.`

// Service runs one chat turn end to end: it persists the user message,
// replays recent history to the provider, executes requested tools and
// persists the narrated outcome. Turns for the same thread must be
// serialized by the caller.
type Service struct {
	Store    conversation.Store
	Provider Provider
	Tools    *Tools

	logger *zap.Logger
}

func NewService(store conversation.Store, provider Provider, tools *Tools, logger *zap.Logger) *Service {
	return &Service{
		Store:    store,
		Provider: provider,
		Tools:    tools,
		logger:   logger,
	}
}

// TurnResult is what one chat turn produced.
type TurnResult struct {
	Thread models.Thread       `json:"thread"`
	Reply  string              `json:"reply"`
	Items  []models.ThreadItem `json:"items"`
}

// HandleTurn processes one incoming user message. An empty threadID
// starts a new conversation.
func (s *Service) HandleTurn(ctx context.Context, threadID, userText string) (TurnResult, error) {
	thread, err := s.ensureThread(ctx, threadID)
	if err != nil {
		return TurnResult{}, err
	}

	userItem := models.ThreadItem{
		ID:        uuid.New().String(),
		ThreadID:  thread.ID,
		CreatedAt: time.Now().UTC(),
		Type:      models.ItemTypeUserMessage,
		Role:      "user",
		Content:   userText,
	}
	if err := s.Store.AddThreadItem(ctx, thread.ID, userItem); err != nil {
		return TurnResult{}, err
	}
	newItems := []models.ThreadItem{userItem}

	draft, err := s.Store.GetDraft(ctx, thread.ID)
	if err != nil {
		return TurnResult{}, err
	}
	if state, err := NextState(models.BookingState(draft[models.DraftState]), EventTurnStarted); err == nil {
		if _, err := s.Store.UpdateDraft(ctx, thread.ID, map[string]string{models.DraftState: string(state)}); err != nil {
			return TurnResult{}, err
		}
	}

	msgs, err := s.recentMessages(ctx, thread.ID)
	if err != nil {
		return TurnResult{}, err
	}

	specs := s.Tools.Definitions()
	var reply string
	for step := 0; step < maxToolSteps; step++ {
		turn, err := s.Provider.Complete(ctx, bookingInstructions, msgs, specs)
		if err != nil {
			return TurnResult{}, fmt.Errorf("model completion failed: %w", err)
		}

		if len(turn.ToolCalls) == 0 {
			reply = turn.Content
			break
		}

		msgs = append(msgs, Message{
			Role:      "assistant",
			Content:   turn.Content,
			ToolCalls: turn.ToolCalls,
		})
		for _, call := range turn.ToolCalls {
			output, err := s.Tools.Execute(ctx, thread.ID, call.Name, call.Args)
			if err != nil {
				return TurnResult{}, fmt.Errorf("tool %s failed: %w", call.Name, err)
			}

			toolItem := models.ThreadItem{
				ID:         uuid.New().String(),
				ThreadID:   thread.ID,
				CreatedAt:  time.Now().UTC(),
				Type:       models.ItemTypeToolResult,
				ToolName:   call.Name,
				ToolOutput: output,
			}
			if err := s.Store.AddThreadItem(ctx, thread.ID, toolItem); err != nil {
				return TurnResult{}, err
			}
			newItems = append(newItems, toolItem)

			msgs = append(msgs, Message{
				Role:       "tool",
				Content:    output,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	if reply == "" {
		reply = "Sorry, I couldn't finish that just now. Could you try again?"
	}

	assistantItem := models.ThreadItem{
		ID:        uuid.New().String(),
		ThreadID:  thread.ID,
		CreatedAt: time.Now().UTC(),
		Type:      models.ItemTypeAssistantMessage,
		Role:      "assistant",
		Content:   reply,
	}
	if err := s.Store.AddThreadItem(ctx, thread.ID, assistantItem); err != nil {
		return TurnResult{}, err
	}
	newItems = append(newItems, assistantItem)

	return TurnResult{Thread: thread, Reply: reply, Items: newItems}, nil
}

func (s *Service) ensureThread(ctx context.Context, threadID string) (models.Thread, error) {
	if threadID != "" {
		return s.Store.LoadThread(ctx, threadID)
	}

	thread := models.Thread{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.SaveThread(ctx, thread); err != nil {
		return models.Thread{}, err
	}
	s.logger.Info("thread created", zap.String("thread_id", thread.ID))
	return thread, nil
}

// recentMessages replays the latest conversation items as provider
// messages. Past tool results are surfaced as plain context lines; only
// the current turn carries live tool-call pairing.
func (s *Service) recentMessages(ctx context.Context, threadID string) ([]Message, error) {
	page, err := s.Store.LoadThreadItems(ctx, threadID, maxRecentItems, "", conversation.OrderDesc)
	if err != nil {
		return nil, err
	}
	items := page.Data
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	msgs := make([]Message, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case models.ItemTypeUserMessage:
			msgs = append(msgs, Message{Role: "user", Content: item.Content})
		case models.ItemTypeAssistantMessage:
			msgs = append(msgs, Message{Role: "assistant", Content: item.Content})
		case models.ItemTypeToolResult:
			msgs = append(msgs, Message{
				Role:    "assistant",
				Content: fmt.Sprintf("[%s result] %s", item.ToolName, item.ToolOutput),
			})
		}
	}
	return msgs, nil
}
