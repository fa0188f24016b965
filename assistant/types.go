package assistant

import "github.com/effective-security/functic/tools"

// Assistant is the OpenAI assistant.
type Assistant struct {
	ID           string            `json:"id" yaml:"id"`
	Object       string            `json:"object" yaml:"object"`
	CreatedAt    int64             `json:"created_at" yaml:"created_at"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Model        string            `json:"model" yaml:"model"`
	Instructions string            `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Tools        []Tool            `json:"tools,omitempty" yaml:"tools,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Tool is the tool of the assistant:
// code_interpreter, file_search or function.
type Tool struct {
	Type     string                    `json:"type" yaml:"type"`
	Function *tools.FunctionDefinition `json:"function,omitempty" yaml:"function,omitempty"`
}

// FunctionNames returns the names of the function tools.
func (a *Assistant) FunctionNames() []string {
	var names []string
	for _, t := range a.Tools {
		if t.Type == tools.ToolTypeFunction && t.Function != nil {
			names = append(names, t.Function.Name)
		}
	}
	return names
}

// CreateRequest is the request to create an assistant.
type CreateRequest struct {
	Model        string            `json:"model" yaml:"model"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions string            `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Tools        []Tool            `json:"tools,omitempty" yaml:"tools,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FunctionTools returns the assistant tools for the definitions.
func FunctionTools(defs ...tools.FunctionDefinition) []Tool {
	list := make([]Tool, 0, len(defs))
	for i := range defs {
		list = append(list, Tool{Type: tools.ToolTypeFunction, Function: &defs[i]})
	}
	return list
}
