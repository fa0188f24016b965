// Package llmtools converts function definitions and tool results
// to the params of the LLM provider SDKs: OpenAI, Anthropic and Gemini.
package llmtools
