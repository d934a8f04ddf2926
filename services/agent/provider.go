// Package agent drives the conversational booking flow: it sequences the
// availability, pricing and checkout tools behind a language-model
// tool-calling loop and narrates their structured results back into the
// conversation store.
package agent

import "context"

// Param describes one tool parameter. Types are the JSON-schema
// primitives the providers understand ("string", "integer").
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// ToolSpec is a provider-neutral tool declaration.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// ToolCall is a tool invocation requested by the model. Args is the raw
// JSON argument object.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// Message is one entry of the model conversation.
type Message struct {
	Role    string // "user", "assistant" or "tool"
	Content string
	// Set on assistant messages that requested tools.
	ToolCalls []ToolCall
	// Set on tool messages carrying a result back to the model.
	ToolCallID string
	ToolName   string
}

// Turn is one model response: either free text, tool requests, or both.
type Turn struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider is a pluggable language-model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system string, msgs []Message, tools []ToolSpec) (Turn, error)
}
