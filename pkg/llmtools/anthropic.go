package llmtools

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/effective-security/functic/tools"
)

// AnthropicTools returns the tools param of the messages request.
//
// Returns nil if no tools are provided, which is handled gracefully by the API.
func AnthropicTools(defs ...tools.FunctionDefinition) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	sdkTools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: "object",
		}
		if props, ok := def.Parameters["properties"].(map[string]any); ok && len(props) > 0 {
			inputSchema.Properties = props
		}
		if required := stringList(def.Parameters["required"]); len(required) > 0 {
			inputSchema.Required = required
		}

		param := &anthropic.ToolParam{
			Name:        def.Name,
			InputSchema: inputSchema,
		}
		if def.Description != "" {
			param.Description = anthropic.String(def.Description)
		}
		sdkTools[i] = anthropic.ToolUnionParam{OfTool: param}
	}
	return sdkTools
}

// AnthropicToolResult returns the user message with the tool result.
// Tool responses in Anthropic are sent as user messages containing tool result blocks.
func AnthropicToolResult(msg *tools.ChatCompletionToolMessage, isError bool) anthropic.MessageParam {
	return anthropic.NewUserMessage(anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, isError))
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		res := make([]string, 0, len(list))
		for _, s := range list {
			if str, ok := s.(string); ok {
				res = append(res, str)
			}
		}
		return res
	}
	return nil
}
