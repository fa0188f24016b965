package tools

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// Registry is the list of the named tools, safe for concurrent use.
type Registry struct {
	lock     sync.RWMutex
	tools    []ITool
	byName   map[string]int
	callback Callback
}

// NewRegistry returns a registry with the tools.
func NewRegistry(list ...ITool) *Registry {
	r := &Registry{
		byName: make(map[string]int),
	}
	r.Register(list...)
	return r
}

// WithCallback sets the callback for the tool call events.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.callback = cb
	return r
}

// Register adds the tools to the registry.
// A tool with the name already registered replaces the previous one,
// keeping its position in the list.
func (r *Registry) Register(list ...ITool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, tool := range list {
		name := tool.Name()
		if idx, ok := r.byName[name]; ok {
			logger.KV(xlog.WARNING,
				"tool", name,
				"reason", "already_registered",
			)
			r.tools[idx] = tool
			continue
		}
		r.byName[name] = len(r.tools)
		r.tools = append(r.tools, tool)
	}
}

// Get returns the tool by name, or ErrToolNotFound.
func (r *Registry) Get(name string) (ITool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if idx, ok := r.byName[name]; ok {
		return r.tools[idx], nil
	}
	return nil, errors.Wrapf(ErrToolNotFound, "function %q", name)
}

// Has returns true if the tool is registered.
func (r *Registry) Has(name string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// List returns the registered tools in the order of registration.
func (r *Registry) List() []ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]ITool(nil), r.tools...)
}

// Names returns the names of the registered tools.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, len(r.tools))
	for i, tool := range r.tools {
		names[i] = tool.Name()
	}
	return names
}

// Definitions returns the definitions of the registered tools.
func (r *Registry) Definitions() []FunctionDefinition {
	list := r.List()
	defs := make([]FunctionDefinition, len(list))
	for i, tool := range list {
		defs[i] = tool.Definition()
	}
	return defs
}

// Len returns the number of the registered tools.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.tools)
}

// Call calls the function and returns the tool content.
func (r *Registry) Call(ctx context.Context, call FunctionCall) (string, error) {
	tool, err := r.find(ctx, call.Name)
	if err != nil {
		return "", err
	}
	return r.call(ctx, tool, call.Arguments)
}

// Execute calls the function requested by the assistant run.
// A failed function returns the output with its ErrorContent and the error.
func (r *Registry) Execute(ctx context.Context, call ToolCall) (*ToolOutput, error) {
	tool, err := r.find(ctx, call.Function.Name)
	if err != nil {
		return nil, err
	}
	content, err := r.call(ctx, tool, call.Function.Arguments)
	if err != nil && content == "" {
		return nil, err
	}
	return NewToolOutput(content, call.ID), err
}

// ExecuteMessage calls the function requested by the chat completion.
func (r *Registry) ExecuteMessage(ctx context.Context, call ToolCall) (*ChatCompletionToolMessage, error) {
	out, err := r.Execute(ctx, call)
	if out == nil {
		return nil, err
	}
	return NewToolMessage(out.Output, out.ToolCallID), err
}

// ExecuteAll checks that all the functions are registered,
// then calls them concurrently. The outputs are in the order of the calls.
// Failed functions report their ErrorContent, invalid arguments fail the batch.
func (r *Registry) ExecuteAll(ctx context.Context, calls []ToolCall) ([]*ToolOutput, error) {
	toolsList := make([]ITool, len(calls))
	for i, call := range calls {
		tool, err := r.find(ctx, call.Function.Name)
		if err != nil {
			return nil, err
		}
		toolsList[i] = tool
	}

	type result struct {
		out *ToolOutput
		err error
	}

	results := make([]result, len(calls))
	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, call := range calls {
		go func(index int, tool ITool, tc ToolCall) {
			defer wg.Done()
			content, err := r.call(ctx, tool, tc.Function.Arguments)
			if err != nil && content == "" {
				results[index] = result{err: err}
				return
			}
			results[index] = result{out: NewToolOutput(content, tc.ID)}
		}(i, toolsList[i], call)
	}
	wg.Wait()

	outputs := make([]*ToolOutput, len(calls))
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		outputs[i] = res.out
	}
	return outputs, nil
}

func (r *Registry) find(ctx context.Context, name string) (ITool, error) {
	tool, err := r.Get(strings.TrimSpace(name))
	if err != nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"tool", name,
			"reason", "not_found",
		)
		if cb := r.getCallback(); cb != nil {
			cb.OnToolNotFound(ctx, name)
		}
		return nil, err
	}
	return tool, nil
}

func (r *Registry) call(ctx context.Context, tool ITool, args string) (string, error) {
	cb := r.getCallback()
	if cb != nil {
		cb.OnToolStart(ctx, tool, args)
	}
	content, err := tool.Call(ctx, args)
	if cb != nil {
		if err != nil {
			cb.OnToolError(ctx, tool, args, err)
		} else {
			cb.OnToolEnd(ctx, tool, args, content)
		}
	}
	return content, err
}

func (r *Registry) getCallback() Callback {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.callback
}
