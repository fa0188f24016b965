package tools

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ToolTypeFunction is the only supported tool type.
const ToolTypeFunction = "function"

// RoleTool is the role of the chat message with the tool content.
const RoleTool = "tool"

// FunctionCall is the function the model wants to call.
type FunctionCall struct {
	// Name of the function to call.
	Name string `json:"name" yaml:"name"`
	// Arguments to call the function with, as generated by the model in JSON format.
	// Note that the model does not always generate valid JSON.
	Arguments string `json:"arguments" yaml:"arguments"`
}

// UnmarshalJSON accepts the arguments as a JSON string, or as a JSON object.
func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}
	c.Name = raw.Name
	c.Arguments = ""

	args := bytes.TrimSpace(raw.Arguments)
	switch {
	case len(args) == 0 || bytes.Equal(args, []byte("null")):
	case args[0] == '"':
		if err := json.Unmarshal(args, &c.Arguments); err != nil {
			return errors.WithStack(err)
		}
	default:
		c.Arguments = string(args)
	}
	return nil
}

// ToolCall is the function tool call requested by the model.
type ToolCall struct {
	// ID of the tool call, must be referenced when submitting the tool output.
	ID string `json:"id" yaml:"id"`
	// Type of the tool call, always `function`.
	Type string `json:"type" yaml:"type"`
	// Function call definition.
	Function FunctionCall `json:"function" yaml:"function"`
}

// SubmitToolOutputs holds the tool calls required by an assistant run.
type SubmitToolOutputs struct {
	ToolCalls []ToolCall `json:"tool_calls" yaml:"tool_calls"`
}

// ChatCompletionToolMessage is the chat message with the tool content.
type ChatCompletionToolMessage struct {
	// Role is always `tool`.
	Role       string `json:"role" yaml:"role"`
	Content    string `json:"content" yaml:"content"`
	ToolCallID string `json:"tool_call_id" yaml:"tool_call_id"`
}

// ToolOutput is the output of the tool call submitted to an assistant run.
type ToolOutput struct {
	Output     string `json:"output" yaml:"output"`
	ToolCallID string `json:"tool_call_id" yaml:"tool_call_id"`
}

// ToolOutputs is the body submitted to an assistant run.
type ToolOutputs struct {
	ToolOutputs []*ToolOutput `json:"tool_outputs" yaml:"tool_outputs"`
}

// NewToolMessage returns chat message with the tool content.
func NewToolMessage(content, toolCallID string) *ChatCompletionToolMessage {
	return &ChatCompletionToolMessage{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

// NewToolOutput returns assistant tool output.
func NewToolOutput(content, toolCallID string) *ToolOutput {
	return &ToolOutput{
		Output:     content,
		ToolCallID: toolCallID,
	}
}

// Pagination is the list response of the API.
type Pagination[T any] struct {
	// Object is always `list`.
	Object  string  `json:"object" yaml:"object"`
	Data    []T     `json:"data" yaml:"data"`
	FirstID *string `json:"first_id" yaml:"first_id"`
	LastID  *string `json:"last_id" yaml:"last_id"`
	HasMore bool    `json:"has_more" yaml:"has_more"`
}

// NewPagination returns the single page list of the items,
// the IDs of the first and the last items are provided by idFn.
func NewPagination[T any](data []T, idFn func(T) string) *Pagination[T] {
	p := &Pagination[T]{
		Object: "list",
		Data:   data,
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	if len(data) > 0 {
		first := idFn(data[0])
		last := idFn(data[len(data)-1])
		p.FirstID = &first
		p.LastID = &last
	}
	return p
}
