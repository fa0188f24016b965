package llmtools

import (
	"github.com/effective-security/functic/tools"
	"github.com/openai/openai-go/v3"
)

// OpenAITools returns the tools param of the chat completion request.
func OpenAITools(defs ...tools.FunctionDefinition) []openai.ChatCompletionToolUnionParam {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionFunctionTool(OpenAIFunctionDefinition(def)))
	}
	return out
}

// OpenAIFunctionDefinition returns the function definition param.
func OpenAIFunctionDefinition(def tools.FunctionDefinition) openai.FunctionDefinitionParam {
	param := openai.FunctionDefinitionParam{
		Name: def.Name,
	}
	if def.Description != "" {
		param.Description = openai.String(def.Description)
	}
	if def.Parameters != nil {
		param.Parameters = openai.FunctionParameters(def.Parameters)
	}
	if def.Strict != nil {
		param.Strict = openai.Bool(*def.Strict)
	}
	return param
}

// OpenAIToolMessage returns the tool message param of the chat completion request.
func OpenAIToolMessage(msg *tools.ChatCompletionToolMessage) openai.ChatCompletionMessageParamUnion {
	return openai.ToolMessage(msg.Content, msg.ToolCallID)
}
