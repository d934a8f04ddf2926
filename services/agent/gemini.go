package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider runs the tool loop against the Gemini API using function
// declarations and function-response parts.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client: client,
		model:  "models/gemini-1.5-pro",
	}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Complete(ctx context.Context, system string, msgs []Message, tools []ToolSpec) (Turn, error) {
	if len(msgs) == 0 {
		return Turn{}, errors.New("no messages to send")
	}

	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools)}}

	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		content, err := toContent(msg)
		if err != nil {
			return Turn{}, err
		}
		contents = append(contents, content)
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return Turn{}, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Turn{}, errors.New("no candidates returned")
	}

	var turn Turn
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			turn.Content += string(v)
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return Turn{}, fmt.Errorf("encode function call args: %w", err)
			}
			// Gemini has no call ids; the name is the correlation key.
			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID:   v.Name,
				Name: v.Name,
				Args: string(args),
			})
		}
	}
	return turn, nil
}

func toContent(msg Message) (*genai.Content, error) {
	switch msg.Role {
	case "tool":
		var response map[string]any
		if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
			return nil, fmt.Errorf("decode tool result for %s: %w", msg.ToolName, err)
		}
		return &genai.Content{
			Role:  "user",
			Parts: []genai.Part{genai.FunctionResponse{Name: msg.ToolName, Response: response}},
		}, nil
	case "assistant":
		content := &genai.Content{Role: "model"}
		if msg.Content != "" {
			content.Parts = append(content.Parts, genai.Text(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.Args), &args); err != nil {
				return nil, fmt.Errorf("decode tool call args for %s: %w", tc.Name, err)
			}
			content.Parts = append(content.Parts, genai.FunctionCall{Name: tc.Name, Args: args})
		}
		return content, nil
	default:
		return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}}, nil
	}
}

func declarations(tools []ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, spec := range tools {
		properties := make(map[string]*genai.Schema, len(spec.Params))
		required := make([]string, 0, len(spec.Params))
		for _, param := range spec.Params {
			properties[param.Name] = &genai.Schema{
				Type:        schemaType(param.Type),
				Description: param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return decls
}

func schemaType(t string) genai.Type {
	if t == "integer" {
		return genai.TypeInteger
	}
	return genai.TypeString
}
