package models

import "time"

// ThreadItem payload discriminators.
const (
	ItemTypeUserMessage      = "user_message"
	ItemTypeAssistantMessage = "assistant_message"
	ItemTypeToolResult       = "tool_result"
	ItemTypeClientEffect     = "client_effect"
)

// Thread is one ongoing conversation session.
type Thread struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Title     string            `json:"title,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ThreadItem is one message or event within a thread. The Type field
// discriminates the payload; tool fields are set only for tool results.
type ThreadItem struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	CreatedAt  time.Time `json:"created_at"`
	Type       string    `json:"type"`
	Role       string    `json:"role,omitempty"` // "user" or "assistant" for message items
	Content    string    `json:"content,omitempty"`
	ToolName   string    `json:"tool_name,omitempty"`
	ToolOutput string    `json:"tool_output,omitempty"` // JSON-encoded tool result
}

// ThreadPage is one page of threads from cursor pagination.
type ThreadPage struct {
	Data    []Thread `json:"data"`
	HasMore bool     `json:"has_more"`
	After   string   `json:"after,omitempty"`
}

// ItemPage is one page of thread items from cursor pagination.
type ItemPage struct {
	Data    []ThreadItem `json:"data"`
	HasMore bool         `json:"has_more"`
	After   string       `json:"after,omitempty"`
}
