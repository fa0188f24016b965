package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ tools.Callback = (*Noop)(nil)
	_ tools.Callback = (*Printer)(nil)
	_ tools.Callback = (*PackageLogger)(nil)
	_ tools.Callback = (*Fanout)(nil)
	_ tools.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []tools.Callback
}

func NewFanout(callbacks ...tools.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback tools.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, args string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, args)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, args string, content string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, args, content)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, args string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, args, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, name string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, name)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, args string) {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, args string, content string) {
}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, args string, err error) {}
func (l *Noop) OnToolNotFound(ctx context.Context, name string)                          {}

// Printer is a callback handler that prints to the Writer.
// Events of a run are prefixed with the run ID.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) printf(ctx context.Context, format string, args ...any) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if runID := RunID(ctx); runID != "" {
		fmt.Fprintf(l.Out, "[%s] ", runID)
	}
	fmt.Fprintf(l.Out, format, args...)
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, args string) {
	l.printf(ctx, "Tool Start: %s\nArguments: %s\n", tool.Name(), args)
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, args string, content string) {
	if l.Mode == ModeVerbose {
		l.printf(ctx, "Tool End: %s\nContent: %s\n", tool.Name(), content)
		return
	}
	l.printf(ctx, "Tool End: %s\n", tool.Name())
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, args string, err error) {
	l.printf(ctx, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, name string) {
	l.printf(ctx, "Tool Not Found: %s\n", name)
}

// PackageLogger is a callback handler that logs the events,
// content of the tools is logged at DEBUG level only.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, args string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"run", RunID(ctx),
		"tool", tool.Name(),
		"args", args,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, args string, content string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"run", RunID(ctx),
		"tool", tool.Name(),
		"content_bytes", len(content),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, args string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"run", RunID(ctx),
		"tool", tool.Name(),
		"args", args,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, name string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"run", RunID(ctx),
		"tool", name,
	)
}
