package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/encoding"
	"github.com/effective-security/functic/pkg/llmutils"
	"github.com/effective-security/functic/pkg/metricskey"
	"github.com/effective-security/functic/pkg/schema"
	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Handler is the implementation of the function.
type Handler[I any, O any] func(ctx context.Context, in *I) (*O, error)

// ContentParser renders the function result as the tool content.
type ContentParser[O any] func(out *O) (string, error)

// Function is a function tool with arguments of type I and result of type O.
// I must be a struct, its JSON schema describes the function parameters.
type Function[I any, O any] struct {
	cfg     Config
	handler Handler[I, O]
	schema  *schema.Schema
	tmpl    *template.Template
	parser  ContentParser[O]
}

// ensure Function implements the interfaces
var (
	_ Tool[struct{}, string] = (*Function[struct{}, string])(nil)
	_ IExample               = (*Function[struct{}, string])(nil)
)

// New returns a function tool.
func New[I any, O any](cfg Config, handler Handler[I, O]) (*Function[I, O], error) {
	if handler == nil {
		return nil, errors.Mark(errors.Newf("function %q: handler is required", cfg.Name), ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Struct {
		return nil, errors.Mark(errors.Newf("function %q: arguments must be a struct, got %s", cfg.Name, t.Kind()), ErrInvalidConfig)
	}

	sc, err := schema.New(t)
	if err != nil {
		return nil, errors.Wrapf(err, "function %q: failed to create schema", cfg.Name)
	}

	f := &Function[I, O]{
		cfg:     cfg,
		handler: handler,
		schema:  sc,
	}

	if cfg.ContentTemplate != "" {
		f.tmpl, err = template.New(cfg.Name).Funcs(sprig.TxtFuncMap()).Parse(cfg.ContentTemplate)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "function %q: invalid content template", cfg.Name), ErrInvalidConfig)
		}
	}

	return f, nil
}

// MustNew returns a function tool, or panics if the config is not valid.
func MustNew[I any, O any](cfg Config, handler Handler[I, O]) *Function[I, O] {
	f, err := New(cfg, handler)
	if err != nil {
		panic(err)
	}
	return f
}

// WithContentParser sets the parser of the function result.
func (f *Function[I, O]) WithContentParser(parser ContentParser[O]) *Function[I, O] {
	f.parser = parser
	return f
}

// Name returns the name of the function.
func (f *Function[I, O]) Name() string {
	return f.cfg.Name
}

// Description returns the description of the function.
func (f *Function[I, O]) Description() string {
	return f.cfg.Description
}

// ErrorContent returns the content reported to the model when the function fails.
func (f *Function[I, O]) ErrorContent() string {
	return f.cfg.GetErrorContent()
}

// Config returns the function config.
func (f *Function[I, O]) Config() Config {
	return f.cfg
}

// Schema returns the schema of the function arguments.
func (f *Function[I, O]) Schema() *schema.Schema {
	return f.schema
}

// Parameters returns the JSON schema of the arguments,
// in the strict form if the function is strict.
func (f *Function[I, O]) Parameters() map[string]any {
	if f.cfg.Strict {
		m, err := f.schema.StrictMap()
		if err == nil {
			return m
		}
		logger.KV(xlog.ERROR,
			"tool", f.cfg.Name,
			"reason", "strict_schema",
			"err", err.Error(),
		)
	}
	return f.schema.Map
}

// Definition returns the function definition.
func (f *Function[I, O]) Definition() FunctionDefinition {
	def := FunctionDefinition{
		Name:        f.cfg.Name,
		Description: f.cfg.Description,
		Parameters:  f.Parameters(),
	}
	if f.cfg.Strict {
		strict := true
		def.Strict = &strict
	}
	return def
}

// ChatCompletionTool returns the tool for chat completion requests.
func (f *Function[I, O]) ChatCompletionTool() ChatCompletionTool {
	return NewChatCompletionTool(f.Definition())
}

// ChatCompletionToolParam returns the generic param of ChatCompletionTool.
func (f *Function[I, O]) ChatCompletionToolParam() (map[string]any, error) {
	return ToParam(f.ChatCompletionTool())
}

// FunctionTool returns the tool for assistants.
func (f *Function[I, O]) FunctionTool() FunctionTool {
	return NewFunctionTool(f.Definition())
}

// FunctionToolParam returns the generic param of FunctionTool.
func (f *Function[I, O]) FunctionToolParam() (map[string]any, error) {
	return ToParam(f.FunctionTool())
}

// ParseArgs parses the arguments generated by the model.
// Empty arguments are an empty object, malformed JSON is repaired,
// missing arguments with default values are filled.
// The returned error is marked with ErrInvalidArguments.
func (f *Function[I, O]) ParseArgs(args string) (*I, error) {
	in, err := f.parseArgs(args)
	if err != nil {
		metricskey.StatsToolArgsInvalid.IncrCounter(1, f.cfg.Name)
		return nil, errors.Mark(errors.Wrapf(err, "function %q", f.cfg.Name), ErrInvalidArguments)
	}
	return in, nil
}

func (f *Function[I, O]) parseArgs(args string) (*I, error) {
	doc, repaired, err := llmutils.RepairJSON(args)
	if err != nil {
		return nil, err
	}
	if repaired {
		metricskey.StatsToolArgsRepaired.IncrCounter(1, f.cfg.Name)
		logger.KV(xlog.DEBUG,
			"tool", f.cfg.Name,
			"status", "repaired_arguments",
		)
	}
	if !gjson.Parse(doc).IsObject() {
		return nil, errors.New("arguments must be a JSON object")
	}

	for key, val := range f.schema.Defaults() {
		path := jsonPath(key)
		if !gjson.Get(doc, path).Exists() {
			doc, err = sjson.Set(doc, path, val)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to set default %q", key)
			}
		}
	}

	if params := f.schema.Parameters; params != nil {
		for _, key := range params.Required {
			if !gjson.Get(doc, jsonPath(key)).Exists() {
				return nil, errors.Newf("missing required argument %q", key)
			}
		}
	}

	in := new(I)
	if err = ljson.Unmarshal([]byte(doc), in); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal arguments")
	}
	if err = validate.Struct(in); err != nil {
		return nil, errors.WithStack(err)
	}

	// validate the arguments sent by the model, after lenient conversion
	js, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal arguments")
	}
	sent, err := projectArgs(gjson.Parse(doc), gjson.ParseBytes(js))
	if err != nil {
		return nil, err
	}
	if err = f.schema.Validate([]byte(sent)); err != nil {
		return nil, err
	}
	return in, nil
}

// projectArgs returns the converted values for the keys present in doc.
// Keys the model did not send are not validated,
// as their zero values come from the Go type.
func projectArgs(doc, converted gjson.Result) (string, error) {
	if !converted.Exists() {
		return doc.Raw, nil
	}

	switch {
	case doc.IsObject() && converted.IsObject():
		out := "{}"
		var err error
		doc.ForEach(func(key, val gjson.Result) bool {
			var raw string
			raw, err = projectArgs(val, converted.Get(jsonPath(key.String())))
			if err == nil {
				out, err = sjson.SetRaw(out, jsonPath(key.String()), raw)
			}
			return err == nil
		})
		if err != nil {
			return "", errors.Wrap(err, "failed to project arguments")
		}
		return out, nil
	case doc.IsArray() && converted.IsArray():
		items := doc.Array()
		convItems := converted.Array()
		if len(items) != len(convItems) {
			return converted.Raw, nil
		}
		out := "[]"
		for i := range items {
			raw, err := projectArgs(items[i], convItems[i])
			if err != nil {
				return "", err
			}
			if out, err = sjson.SetRaw(out, "-1", raw); err != nil {
				return "", errors.Wrap(err, "failed to project arguments")
			}
		}
		return out, nil
	}
	return converted.Raw, nil
}

// Run calls the function handler.
func (f *Function[I, O]) Run(ctx context.Context, in *I) (*O, error) {
	return f.handler(ctx, in)
}

// Content returns the tool content of the function result:
// the custom parser, or the content template, or the string form of the result.
// ErrorContent is returned if the result is nil or can not be rendered.
func (f *Function[I, O]) Content(out *O) string {
	if out == nil {
		return f.ErrorContent()
	}

	switch {
	case f.parser != nil:
		content, err := f.parser(out)
		if err != nil {
			logger.KV(xlog.ERROR,
				"tool", f.cfg.Name,
				"reason", "content_parser",
				"err", err.Error(),
			)
			return f.ErrorContent()
		}
		return content
	case f.tmpl != nil:
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, out); err != nil {
			logger.KV(xlog.ERROR,
				"tool", f.cfg.Name,
				"reason", "content_template",
				"err", err.Error(),
			)
			return f.ErrorContent()
		}
		return buf.String()
	default:
		if s, ok := any(out).(llmutils.Stringer); ok {
			return s.String()
		}
		return ToolContent(*out)
	}
}

// Call parses the arguments, runs the function and returns the tool content.
func (f *Function[I, O]) Call(ctx context.Context, args string) (string, error) {
	in, err := f.ParseArgs(args)
	if err != nil {
		return "", err
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, f.cfg.Name)

	out, err := f.Run(ctx, in)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, f.cfg.Name)
		logger.ContextKV(ctx, xlog.ERROR,
			"tool", f.cfg.Name,
			"reason", "run",
			"err", err.Error(),
		)
		return f.ErrorContent(), errors.Wrapf(err, "function %q failed", f.cfg.Name)
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, f.cfg.Name)

	return f.Content(out), nil
}

// Execute calls the function requested by the assistant run.
func (f *Function[I, O]) Execute(ctx context.Context, call ToolCall) (*ToolOutput, error) {
	return Execute(ctx, f, call)
}

// ExecuteMessage calls the function requested by the chat completion.
func (f *Function[I, O]) ExecuteMessage(ctx context.Context, call ToolCall) (*ChatCompletionToolMessage, error) {
	return ExecuteMessage(ctx, f, call)
}

// ExampleArguments returns fake arguments of the function.
func (f *Function[I, O]) ExampleArguments() (any, error) {
	in, err := encoding.Example[I]()
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", f.cfg.Name)
	}
	return in, nil
}

// ToolContent returns the string form of the function result.
func ToolContent(v any) string {
	return llmutils.Stringify(v)
}

// Execute calls the tool and returns the assistant tool output.
// If the tool fails, the output has the tool ErrorContent and the error is returned.
// If the arguments are not valid, only the error is returned.
func Execute(ctx context.Context, tool ITool, call ToolCall) (*ToolOutput, error) {
	content, err := tool.Call(ctx, call.Function.Arguments)
	if err != nil && content == "" {
		return nil, err
	}
	return NewToolOutput(content, call.ID), err
}

// ExecuteMessage calls the tool and returns the chat tool message.
// Errors are reported as Execute does.
func ExecuteMessage(ctx context.Context, tool ITool, call ToolCall) (*ChatCompletionToolMessage, error) {
	content, err := tool.Call(ctx, call.Function.Arguments)
	if err != nil && content == "" {
		return nil, err
	}
	return NewToolMessage(content, call.ID), err
}

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// jsonPath escapes the key to be used as gjson/sjson path
func jsonPath(key string) string {
	return pathEscaper.Replace(key)
}
