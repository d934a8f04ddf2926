package agent

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider runs the tool loop against the OpenAI chat completions
// API using native function calling.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, system string, msgs []Message, tools []ToolSpec) (Turn, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, msg := range msgs {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			})
		}
		messages = append(messages, m)
	}

	oaTools := make([]openai.Tool, 0, len(tools))
	for _, spec := range tools {
		oaTools = append(oaTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  jsonSchema(spec),
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		Tools:    oaTools,
	})
	if err != nil {
		return Turn{}, err
	}
	if len(resp.Choices) == 0 {
		return Turn{}, errors.New("no completion choices returned")
	}

	choice := resp.Choices[0].Message
	turn := Turn{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		})
	}
	return turn, nil
}

// jsonSchema builds the JSON-schema object OpenAI expects for a tool.
func jsonSchema(spec ToolSpec) map[string]any {
	properties := make(map[string]any, len(spec.Params))
	required := make([]string, 0, len(spec.Params))
	for _, param := range spec.Params {
		properties[param.Name] = map[string]any{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
