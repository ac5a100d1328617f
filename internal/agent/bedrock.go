package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockDecisionMaker drives the dispatch loop with Bedrock's Converse
// tool-use API.
type BedrockDecisionMaker struct {
	api     bedrockConverseAPI
	modelID string
}

// NewBedrockDecisionMaker wraps a Bedrock runtime client.
func NewBedrockDecisionMaker(api bedrockConverseAPI, modelID string) (*BedrockDecisionMaker, error) {
	if api == nil {
		return nil, errors.New("agent: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("agent: bedrock model id is required")
	}
	return &BedrockDecisionMaker{api: api, modelID: modelID}, nil
}

// Decide implements DecisionMaker.
func (d *BedrockDecisionMaker) Decide(ctx context.Context, system string, history []Message, tools []ToolSpec) (Decision, error) {
	messages, err := bedrockMessages(history)
	if err != nil {
		return Decision{}, err
	}

	var systemBlocks []brtypes.SystemContentBlock
	if strings.TrimSpace(system) != "" {
		systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: system})
	}

	out, err := d.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:    aws.String(d.modelID),
		System:     systemBlocks,
		Messages:   messages,
		ToolConfig: bedrockToolConfig(tools),
	})
	if err != nil {
		return Decision{}, fmt.Errorf("agent: bedrock converse: %w", err)
	}
	return bedrockDecision(out)
}

func bedrockMessages(history []Message) ([]brtypes.Message, error) {
	messages := make([]brtypes.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case RoleUser:
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			messages = append(messages, brtypes.Message{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: msg.Content},
				},
			})

		case RoleAssistant:
			var blocks []brtypes.ContentBlock
			if strings.TrimSpace(msg.Content) != "" {
				blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				input, err := documentFromJSON(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("agent: encode tool call %s: %w", call.Name, err)
				}
				blocks = append(blocks, &brtypes.ContentBlockMemberToolUse{
					Value: brtypes.ToolUseBlock{
						ToolUseId: aws.String(call.ID),
						Name:      aws.String(call.Name),
						Input:     input,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			messages = append(messages, brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: blocks,
			})

		case RoleTool:
			blocks := make([]brtypes.ContentBlock, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				status := brtypes.ToolResultStatusSuccess
				if result.IsError {
					status = brtypes.ToolResultStatusError
				}
				blocks = append(blocks, &brtypes.ContentBlockMemberToolResult{
					Value: brtypes.ToolResultBlock{
						ToolUseId: aws.String(result.CallID),
						Status:    status,
						Content: []brtypes.ToolResultContentBlock{
							&brtypes.ToolResultContentBlockMemberText{Value: result.Content},
						},
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			messages = append(messages, brtypes.Message{
				Role:    brtypes.ConversationRoleUser,
				Content: blocks,
			})

		default:
			return nil, fmt.Errorf("agent: unsupported role %q", msg.Role)
		}
	}
	return messages, nil
}

func bedrockToolConfig(tools []ToolSpec) *brtypes.ToolConfiguration {
	if len(tools) == 0 {
		return nil
	}
	converted := make([]brtypes.Tool, 0, len(tools))
	for _, tool := range tools {
		converted = append(converted, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(tool.Name),
				Description: aws.String(tool.Description),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(tool.JSONSchema()),
				},
			},
		})
	}
	return &brtypes.ToolConfiguration{Tools: converted}
}

func bedrockDecision(out *bedrockruntime.ConverseOutput) (Decision, error) {
	if out == nil {
		return Decision{}, errors.New("agent: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return Decision{}, errors.New("agent: bedrock response did not include a message output")
	}

	var decision Decision
	var text strings.Builder
	for _, block := range msgOut.Value.Content {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			text.WriteString(v.Value)
		case *brtypes.ContentBlockMemberToolUse:
			args, err := jsonFromDocument(v.Value.Input)
			if err != nil {
				return Decision{}, fmt.Errorf("agent: decode tool input: %w", err)
			}
			decision.ToolCalls = append(decision.ToolCalls, ToolCall{
				ID:        aws.ToString(v.Value.ToolUseId),
				Name:      aws.ToString(v.Value.Name),
				Arguments: args,
			})
		}
	}
	decision.Message = strings.TrimSpace(text.String())

	if decision.Message == "" && len(decision.ToolCalls) == 0 {
		return Decision{}, errors.New("agent: bedrock response contained no text or tool use")
	}
	return decision, nil
}

func documentFromJSON(raw json.RawMessage) (document.Interface, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return document.NewLazyDocument(v), nil
}

func jsonFromDocument(doc document.Interface) (json.RawMessage, error) {
	if doc == nil {
		return json.RawMessage("{}"), nil
	}
	var v map[string]any
	if err := doc.UnmarshalSmithyDocument(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
