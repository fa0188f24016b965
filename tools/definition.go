package tools

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/sjson"
)

// FunctionDefinition describes the function to the model.
type FunctionDefinition struct {
	// Name of the function to be called.
	Name string `json:"name" yaml:"name"`
	// Description of what the function does.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Parameters the functions accepts, described as a JSON Schema object.
	// Omitting parameters defines a function with an empty parameter list.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Strict enables strict schema adherence when generating the function call.
	Strict *bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// ChatCompletionTool is the tool of the chat completion request.
type ChatCompletionTool struct {
	// Type is always `function`.
	Type     string             `json:"type" yaml:"type"`
	Function FunctionDefinition `json:"function" yaml:"function"`
}

// FunctionTool is the function tool of an assistant.
type FunctionTool struct {
	// Type is always `function`.
	Type     string             `json:"type" yaml:"type"`
	Function FunctionDefinition `json:"function" yaml:"function"`
}

// NewChatCompletionTool returns the chat completion tool for the definition.
func NewChatCompletionTool(def FunctionDefinition) ChatCompletionTool {
	return ChatCompletionTool{Type: ToolTypeFunction, Function: def}
}

// NewFunctionTool returns the assistant function tool for the definition.
func NewFunctionTool(def FunctionDefinition) FunctionTool {
	return FunctionTool{Type: ToolTypeFunction, Function: def}
}

// ToParam returns the generic request param of the value,
// with empty fields omitted.
func ToParam(v any) (map[string]any, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal param")
	}
	var m map[string]any
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal param")
	}
	return m, nil
}

// ToolParamJSON returns the JSON of the tool param with the definition,
// which can be sent as is in the `tools` list of a request.
func ToolParamJSON(def FunctionDefinition) (string, error) {
	doc, err := sjson.Set(`{"type":"function"}`, "function", def)
	if err != nil {
		return "", errors.Wrap(err, "failed to build tool param")
	}
	return doc, nil
}
