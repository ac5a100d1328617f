package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GeminiDecisionMaker drives the dispatch loop with Gemini function
// calling. It is used as the fallback when Bedrock is unavailable.
type GeminiDecisionMaker struct {
	client  *genai.Client
	modelID string
}

// NewGeminiDecisionMaker creates a Gemini-backed decision maker.
func NewGeminiDecisionMaker(ctx context.Context, apiKey, modelID string) (*GeminiDecisionMaker, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("agent: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("agent: failed to create gemini client: %w", err)
	}
	return &GeminiDecisionMaker{client: client, modelID: modelID}, nil
}

// Decide implements DecisionMaker.
func (d *GeminiDecisionMaker) Decide(ctx context.Context, system string, history []Message, tools []ToolSpec) (Decision, error) {
	model := d.client.GenerativeModel(d.modelID)
	if strings.TrimSpace(system) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	if len(tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: geminiDeclarations(tools)}}
	}

	contents, err := geminiContents(history)
	if err != nil {
		return Decision{}, err
	}
	if len(contents) == 0 {
		return Decision{}, errors.New("agent: gemini requires at least one message")
	}

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return Decision{}, fmt.Errorf("agent: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Decision{}, errors.New("agent: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Decision{}, errors.New("agent: gemini returned empty content")
	}

	var decision Decision
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return Decision{}, fmt.Errorf("agent: encode gemini function args: %w", err)
			}
			decision.ToolCalls = append(decision.ToolCalls, ToolCall{
				// Gemini does not assign call IDs; mint one so tool
				// results can be correlated in the shared history shape.
				ID:        uuid.NewString(),
				Name:      v.Name,
				Arguments: args,
			})
		}
	}
	decision.Message = strings.TrimSpace(text.String())
	return decision, nil
}

func geminiDeclarations(tools []ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  geminiSchema(tool.Params),
		})
	}
	return decls
}

func geminiSchema(params []ToolParam) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(params)),
	}
	for _, p := range params {
		var prop *genai.Schema
		if p.Type == "object" {
			prop = geminiSchema(p.Properties)
			prop.Description = p.Description
		} else {
			prop = &genai.Schema{Type: genai.TypeString, Description: p.Description}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func geminiContents(history []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case RoleUser:
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})

		case RoleAssistant:
			var parts []genai.Part
			if strings.TrimSpace(msg.Content) != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				var args map[string]any
				if len(call.Arguments) > 0 {
					if err := json.Unmarshal(call.Arguments, &args); err != nil {
						return nil, fmt.Errorf("agent: decode tool call %s: %w", call.Name, err)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: args})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})

		case RoleTool:
			parts := make([]genai.Part, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				var payload map[string]any
				if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
					payload = map[string]any{"result": result.Content}
				}
				parts = append(parts, genai.FunctionResponse{
					Name:     result.Name,
					Response: payload,
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})

		default:
			return nil, fmt.Errorf("agent: unsupported role %q", msg.Role)
		}
	}
	return contents, nil
}
