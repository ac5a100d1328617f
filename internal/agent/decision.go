// Package agent contains the tool-dispatch loop that lets an external
// decision-maker (an LLM) call the scheduling engine's operations and
// turn the observations into a final answer for the caller.
package agent

import (
	"context"
	"encoding/json"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a conversation history. Assistant messages may
// carry tool calls; tool messages carry the matching results.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall is a decision-maker request to execute one catalog action.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the serialized observation fed back to the
// decision-maker after executing a tool call.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Decision is one round of decision-maker output: either a final
// message (no tool calls) or one or more requested actions.
type Decision struct {
	Message   string
	ToolCalls []ToolCall
}

// ToolParam describes one parameter of a tool's input schema.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Properties  []ToolParam
}

// ToolSpec is the LLM-facing description of a catalog action.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// JSONSchema renders the spec's parameters as a JSON-schema object, the
// shape both Bedrock and Gemini tool configs are built from.
func (s ToolSpec) JSONSchema() map[string]any {
	return paramsSchema(s.Params)
}

func paramsSchema(params []ToolParam) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Type == "object" {
			nested := paramsSchema(p.Properties)
			prop["properties"] = nested["properties"]
			if req, ok := nested["required"]; ok {
				prop["required"] = req
			}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// DecisionMaker is the external capability that chooses the next step:
// given the conversation so far and the action catalog, it returns
// either a final textual answer or a set of action invocations. This is
// the only non-deterministic dependency the loop calls.
type DecisionMaker interface {
	Decide(ctx context.Context, system string, history []Message, tools []ToolSpec) (Decision, error)
}
