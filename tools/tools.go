package tools

import (
	"context"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "tools")

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// ITool is a function tool that can be described to and called by the model.
type ITool interface {
	// Name returns the name of the function.
	Name() string
	// Description returns the description of the function, to be used in the prompt.
	Description() string
	// Parameters returns the JSON schema of the function arguments.
	Parameters() map[string]any
	// Definition returns the function definition.
	Definition() FunctionDefinition
	// ErrorContent returns the content reported to the model when the function fails.
	ErrorContent() string

	// Call executes the tool with the given arguments and returns the tool content.
	// If the arguments can not be parsed, it returns ErrInvalidArguments error.
	// If the function fails, it returns ErrorContent along with the error.
	Call(ctx context.Context, args string) (string, error)
}

// Tool is a function tool with typed input and output.
type Tool[I any, O any] interface {
	ITool
	ParseArgs(args string) (*I, error)
	Run(context.Context, *I) (*O, error)
	Content(*O) string
}

// IExample is implemented by tools that can produce example arguments.
type IExample interface {
	ExampleArguments() (any, error)
}

// Callback receives the tool call events.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, args string)
	OnToolEnd(ctx context.Context, tool ITool, args string, content string)
	OnToolError(ctx context.Context, tool ITool, args string, err error)
	OnToolNotFound(ctx context.Context, name string)
}
